package handler

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"paperapi/internal/http/middleware"
	"paperapi/internal/model"
	"paperapi/internal/service"
)

type adminActionRequest struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

// AdminAction godoc
// @Summary Run one named admin action
// @Description Actions: approve_submission, reject_submission, delete_paper, update_paper, get_stats.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Router /api/admin/actions [post]
func AdminAction(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body adminActionRequest
		if err := json.Unmarshal(c.Body(), &body); err != nil {
			return writeError(c, fiber.StatusBadRequest, codeAdminActionFailed, "invalid JSON body")
		}
		res, err := svc.Dispatch(c.UserContext(), middleware.ProfileFromCtx(c), body.Action, body.Data)
		if err != nil {
			return serviceError(c, err, codeAdminActionFailed)
		}
		return writeData(c, fiber.StatusOK, res)
	}
}

func AdminStats(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stats, err := svc.Stats(c.UserContext(), middleware.ProfileFromCtx(c))
		if err != nil {
			return serviceError(c, err, codeAdminActionFailed)
		}
		return writeData(c, fiber.StatusOK, stats)
	}
}

func ListSubmissions(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := queryInt(c, "limit", 0)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := queryInt(c, "offset", 0)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.ListSubmissions(c.UserContext(), middleware.ProfileFromCtx(c), limit, offset)
		if err != nil {
			return serviceError(c, err, codeAdminActionFailed)
		}
		return c.JSON(res)
	}
}

func ApproveSubmission(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return invalidID(c)
		}
		p, err := svc.ApproveSubmission(c.UserContext(), middleware.ProfileFromCtx(c), id)
		if err != nil {
			return serviceError(c, err, codeAdminActionFailed)
		}
		return writeData(c, fiber.StatusOK, service.ActionResult{Paper: p, Message: "Submission approved and published"})
	}
}

func RejectSubmission(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return invalidID(c)
		}
		if err := svc.RejectSubmission(c.UserContext(), middleware.ProfileFromCtx(c), id); err != nil {
			return serviceError(c, err, codeAdminActionFailed)
		}
		return writeData(c, fiber.StatusOK, service.ActionResult{Message: "Submission rejected and removed"})
	}
}

// UpdatePaper applies a partial update. Unknown fields are ignored.
func UpdatePaper(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return invalidID(c)
		}
		var u model.PaperUpdate
		if err := json.Unmarshal(c.Body(), &u); err != nil {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body")
		}
		p, err := svc.UpdatePaper(c.UserContext(), middleware.ProfileFromCtx(c), id, u)
		if err != nil {
			return serviceError(c, err, codeAdminActionFailed)
		}
		return writeData(c, fiber.StatusOK, service.ActionResult{Paper: p, Message: "Paper updated successfully"})
	}
}

func DeletePaper(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return invalidID(c)
		}
		if err := svc.DeletePaper(c.UserContext(), middleware.ProfileFromCtx(c), id); err != nil {
			return serviceError(c, err, codeAdminActionFailed)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func ResummarizePaper(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return invalidID(c)
		}
		p, err := svc.ResummarizePaper(c.UserContext(), middleware.ProfileFromCtx(c), id)
		if err != nil {
			return serviceError(c, err, codeAIProcessingFailed)
		}
		return writeData(c, fiber.StatusOK, service.ActionResult{Paper: p, Message: "Summary regenerated"})
	}
}

type createCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func CreateCategory(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body createCategoryRequest
		if err := json.Unmarshal(c.Body(), &body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body")
		}
		cat, err := svc.CreateCategory(c.UserContext(), middleware.ProfileFromCtx(c), body.Name, body.Description)
		if err != nil {
			return serviceError(c, err, codeAdminActionFailed)
		}
		return writeData(c, fiber.StatusCreated, cat)
	}
}
