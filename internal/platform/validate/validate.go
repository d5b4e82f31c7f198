// Package validate wraps a shared go-playground validator that reports
// field issues under their JSON names.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/yungbote/wellspring-backend/internal/platform/apierr"
)

var (
	once sync.Once
	v    *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
	return v
}

// Struct validates s and returns an *apierr.Error carrying the issues, or nil.
func Struct(s any) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}
	issues := Issues(err)
	if len(issues) == 0 {
		return fmt.Errorf("validate: %w", err)
	}
	return apierr.Validation(issues)
}

// Issues converts validator errors into path/message pairs. Paths drop the
// top-level struct name ("RegisterInput.email" becomes "email").
func Issues(err error) []apierr.Issue {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]apierr.Issue, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, apierr.Issue{Path: path(fe.Namespace()), Message: message(fe)})
	}
	return out
}

func path(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "uuid", "uuid4":
		return "must be a valid id"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
