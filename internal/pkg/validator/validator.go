package validator

import (
	stderrors "errors"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/photo-watermark/internal/pkg/errors"
	"github.com/photo-watermark/internal/pkg/utils"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	// report json names in validation errors
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// цвета в форматах, которые понимает рендер
	_ = validate.RegisterValidation("css_color", func(fl validator.FieldLevel) bool {
		_, err := utils.ParseColor(fl.Field().String())
		return err == nil
	})
}

// Validate - валидация структуры. Ошибки полей возвращаются как
// ErrInvalidRequest с картой {поле: правило}.
func Validate(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return errors.ErrInvalidRequest.Wrap(err)
	}

	fields := make(map[string]interface{}, len(fieldErrs))
	for _, fe := range fieldErrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		fields[fieldPath(fe.Namespace())] = rule
	}
	return errors.ErrInvalidRequest.WithDetails(fields)
}

// fieldPath drops the root struct and embedded struct names:
// "PreviewRequest.options.WatermarkConfig.font_size" -> "options.font_size"
func fieldPath(ns string) string {
	parts := strings.Split(ns, ".")
	kept := make([]string, 0, len(parts))
	for _, p := range parts[1:] {
		if p == "" || unicode.IsUpper(rune(p[0])) {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, ".")
}

// GetValidator - получить валидатор для кастомной конфигурации
func GetValidator() *validator.Validate {
	return validate
}
