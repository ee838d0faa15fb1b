package controllers

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	apperrors "github.com/yashrajoria/menu-backend/services/common/errors"
)

var validate = newValidator()

var errInvalidBody = apperrors.Validation("invalid request body")

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	// report json names so messages match the request body
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// bindJSON decodes and validates the request body, returning a validation
// error the error middleware can render.
func bindJSON(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return errInvalidBody
	}
	return validateStruct(req)
}

func validateStruct(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.Validation("validation failed")
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required", "notblank":
		return apperrors.Validation(fe.Field() + " is required")
	default:
		return apperrors.Validation("invalid " + fe.Field())
	}
}

// deleteCategoryQuery binds DELETE /categories?id=
type deleteCategoryQuery struct {
	ID string `form:"id" json:"id" validate:"required,mongodb"`
}
