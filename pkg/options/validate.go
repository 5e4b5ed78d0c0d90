package options

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// 错误信息中使用配置文件里的键名，而不是 Go 字段名
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// ValidateStruct checks the `validate` tags on s and returns one error per
// failing field, prefixed with prefix (e.g. "http.").
func ValidateStruct(prefix string, s any) []error {
	err := structValidator().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []error{err}
	}

	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if fe.Param() != "" {
			errs = append(errs, fmt.Errorf("%s%s: failed %q=%s (got %v)", prefix, field, fe.Tag(), fe.Param(), fe.Value()))
			continue
		}
		errs = append(errs, fmt.Errorf("%s%s: failed %q (got %v)", prefix, field, fe.Tag(), fe.Value()))
	}
	return errs
}
