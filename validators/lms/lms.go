package lmsValidator

import (
	"strconv"
	"strings"

	"qlms/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// fieldErrors converts validator.v10 errors into the field->message map the
// response envelope carries.
func fieldErrors(err error) map[string]string {
	errors := make(map[string]string)
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			field := strings.ToLower(fe.Field())
			switch fe.Tag() {
			case "required":
				errors[field] = field + " is required!"
			case "min":
				errors[field] = field + " must be at least " + fe.Param() + "!"
			case "max":
				errors[field] = field + " must be at most " + fe.Param() + "!"
			default:
				errors[field] = field + " is invalid!"
			}
		}
	} else {
		errors["body"] = "Invalid request body!"
	}
	return errors
}

// paramID parses a positive integer path parameter into locals under key.
// Returns false when the 400 response was already written.
func paramID(c *fiber.Ctx, param, key string) bool {
	raw := strings.TrimSpace(c.Params(param))
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		_ = middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid "+param+"!", nil)
		return false
	}
	c.Locals(key, uint(id))
	return true
}

// body parses and validates the JSON body into reqData, replying 400/422 on
// failure. Returns false when a response was already written.
func body(c *fiber.Ctx, reqData interface{}) bool {
	if err := c.BodyParser(reqData); err != nil {
		_ = middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		return false
	}
	if err := validate.Struct(reqData); err != nil {
		_ = middleware.ValidationErrorResponse(c, fieldErrors(err))
		return false
	}
	return true
}
