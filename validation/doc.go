// Package validation validates configuration structs.
//
// Struct tags cover per-field rules:
//
//	type Config struct {
//	    Bucket string `mapstructure:"bucket" validate:"required"`
//	}
//	err := validation.Validate(cfg)
//
// The programmatic Validator covers rules tags cannot express:
//
//	v := validation.New()
//	v.OneOf("provider", cfg.Provider, providers)
//	err := v.Err()
package validation
