package handlers

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// getValidator returns the shared validator; it caches struct metadata and is safe for concurrent use
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

var validationMessages = map[string]string{
	"required":  "%s is required",
	"latitude":  "%s must be a valid latitude (-90 to 90)",
	"longitude": "%s must be a valid longitude (-180 to 180)",
}

// validateRequest returns a single user-facing message for the first failing field
func validateRequest(req interface{}) error {
	err := getValidator().Struct(req)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return err
	}

	fe := validationErrs[0]
	field := strings.ToLower(fe.Field())
	if template, ok := validationMessages[fe.Tag()]; ok {
		return fmt.Errorf(template, field)
	}
	if fe.Param() != "" {
		return fmt.Errorf("%s failed %s=%s", field, fe.Tag(), fe.Param())
	}
	return fmt.Errorf("%s failed %s", field, fe.Tag())
}
