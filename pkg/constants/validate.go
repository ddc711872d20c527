package constants

import "github.com/go-playground/validator/v10"

// Validate is the shared validator instance used by boundary DTOs.
var Validate = validator.New()
