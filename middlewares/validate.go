package middlewares

import (
	"encoding/json"
	"errors"

	"freight-billing-backend/billing"
	"freight-billing-backend/utils"

	"github.com/gofiber/fiber/v2"
)

var validate = utils.NewValidator()

// BindAndValidate parses the request body into dst and validates it.
// A value of the wrong JSON type is reported as a *billing.ValidationError
// naming the field, other parse errors as a 400 fiber.Error, and rule
// violations as validator.ValidationErrors.
func BindAndValidate(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		var ute *json.UnmarshalTypeError
		if errors.As(err, &ute) && ute.Field != "" {
			return &billing.ValidationError{Fields: map[string]string{ute.Field: "type"}}
		}
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	utils.TrimStrings(dst)
	return validate.Struct(dst)
}
