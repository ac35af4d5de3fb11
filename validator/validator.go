package validator

import (
	"reflect"

	"github.com/go-playground/validator/v10"
)

// ValidateStruct 使用 validator 校验结构体
// nil 指针和非结构体值不做校验，直接通过
func ValidateStruct(object any) error {
	if object == nil {
		return nil
	}

	rv := reflect.ValueOf(object)
	if !rv.IsValid() {
		return nil
	}

	// 逐层解指针，任何一层为 nil 都跳过校验
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}

	if rv.Kind() != reflect.Struct {
		return nil
	}

	// 跳过对某些内置类型的校验，如 time.Time
	rt := rv.Type()
	if rt.PkgPath() == "time" && rt.Name() == "Time" {
		return nil
	}

	validate := validator.New()
	return validate.Struct(rv.Interface())
}
