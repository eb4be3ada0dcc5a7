package handler

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"paperapi/internal/http/middleware"
	"paperapi/internal/service"
)

// Signup godoc
// @Summary Create an account
// @Tags auth
// @Accept json
// @Produce json
// @Router /api/auth/signup [post]
func Signup(svc service.AccountService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body service.SignupRequest
		if err := json.Unmarshal(c.Body(), &body); err != nil {
			return writeError(c, fiber.StatusBadRequest, codeSignupFailed, "invalid JSON body")
		}
		res, err := svc.Signup(c.UserContext(), body)
		if err != nil {
			return serviceError(c, err, codeSignupFailed)
		}
		return writeData(c, fiber.StatusOK, res)
	}
}

// Me returns the caller's stored profile.
func Me(svc service.AccountService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := middleware.ProfileFromCtx(c)
		if caller == nil {
			return fiber.ErrUnauthorized
		}
		p, err := svc.Profile(c.UserContext(), caller.ID)
		if err != nil {
			return serviceError(c, err, codeInternal)
		}
		return writeData(c, fiber.StatusOK, p)
	}
}
