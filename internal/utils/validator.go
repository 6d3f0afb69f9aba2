package utils

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	Validate     *validator.Validate
	validateOnce sync.Once
)

func InitValidator() {
	validateOnce.Do(func() {
		Validate = validator.New()
	})
}

// ValidateStruct checks v against its validate tags.
func ValidateStruct(v interface{}) error {
	InitValidator()
	return Validate.Struct(v)
}
