package validation

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/yigit/facilityhub/internal/pkg/slug"
)

// Field limits shared by request DTOs and services.
const (
	NameMinLength         = 2
	NameMaxLength         = 100
	AbbreviationMaxLength = 50
	SettingKeyMaxLength   = 100
	PasswordMinLength     = 8
)

var registerOnce sync.Once

// RegisterBindingRules adds the custom tags used by request DTOs to gin's
// validator engine. Safe to call more than once.
func RegisterBindingRules() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("unexpected binding validator engine %T", binding.Validator.Engine())
			return
		}
		err = Register(v)
	})
	return err
}

// Register installs the custom tags on v and reports fields by their JSON name.
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	if err := v.RegisterValidation("slug", validateSlug); err != nil {
		return err
	}
	return v.RegisterValidation("settingkey", validateSettingKey)
}

func validateSlug(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == "" || slug.Valid(s)
}

func validateSettingKey(fl validator.FieldLevel) bool {
	return ValidSettingKey(fl.Field().String())
}

// ValidSettingKey accepts lowercase dotted/underscored keys such as
// "department_label" or "housing.max_nights".
func ValidSettingKey(key string) bool {
	if key == "" || len(key) > SettingKeyMaxLength {
		return false
	}
	for _, r := range key {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_' || r == '.') {
			return false
		}
	}
	return !strings.HasPrefix(key, ".") && !strings.HasSuffix(key, ".")
}

// FormatFieldError creates a human-readable validation error message
func FormatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "gte":
		return e.Field() + " must be greater than or equal to " + e.Param()
	case "email":
		return e.Field() + " must be a valid email address"
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	case "slug":
		return e.Field() + " must contain lowercase letters, digits and single dashes"
	case "settingkey":
		return e.Field() + " must contain lowercase letters, digits, '_' or '.'"
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}
