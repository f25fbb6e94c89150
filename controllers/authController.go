package controllers

import (
	"freight-billing-backend/auth"
	"freight-billing-backend/middlewares"

	"github.com/gofiber/fiber/v2"
)

// TokenIssuer is the sign-in half of auth.Gate.
type TokenIssuer interface {
	IssueToken(code string) (auth.Token, error)
}

type AuthController struct {
	Gate TokenIssuer
}

type signInRequest struct {
	AccessCode string `json:"accessCode" validate:"required"`
}

// SignIn exchanges the access code for a bearer token.
func (ac *AuthController) SignIn(c *fiber.Ctx) error {
	var req signInRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}

	token, err := ac.Gate.IssueToken(req.AccessCode)
	if err != nil {
		return err
	}
	return c.JSON(token)
}
