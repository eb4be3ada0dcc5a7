package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// Error codes for failures that are not plain validation or lookup errors.
const (
	codePaperUploadFailed  = "PAPER_UPLOAD_FAILED"
	codeAIProcessingFailed = "AI_PROCESSING_FAILED"
	codeAdminActionFailed  = "ADMIN_ACTION_FAILED"
	codeSignupFailed       = "SIGNUP_FAILED"
	codeInternal           = "INTERNAL_ERROR"
)

// writeData wraps a payload in the {"data": ...} envelope.
func writeData(c *fiber.Ctx, status int, v any) error {
	return c.Status(status).JSON(fiber.Map{"data": v})
}

// paramID parses a positive numeric :id route parameter.
func paramID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// queryInt reads an integer query parameter, returning def when it is absent.
func queryInt(c *fiber.Ctx, key string, def int) (int, error) {
	v := c.Query(key)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func invalidID(c *fiber.Ctx) error {
	return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
}
