package config

import (
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/testini/testini/packages/markers"
)

// Validate checks the invariants of a configuration. Loading already
// reports malformed documents with positions; this is the net for
// programmatically constructed configs.
func (c *SessionConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Timeout, validation.Min(0)),
		validation.Field(&c.TimeoutMethod,
			validation.Required,
			validation.In(TimeoutThread, TimeoutSignal),
		),
		validation.Field(&c.LogCLILevel,
			validation.Required,
			validation.By(validateLogLevel),
		),
		validation.Field(&c.FilePatterns,
			validation.Required,
			validation.Each(validation.By(validateGlob)),
		),
		validation.Field(&c.ClassPatterns, validation.Each(validation.By(validateGlob))),
		validation.Field(&c.FuncPatterns, validation.Each(validation.By(validateGlob))),
		validation.Field(&c.Markers, validation.By(validateMarkers)),
	)
}

func validateLogLevel(value interface{}) error {
	level, ok := value.(string)
	if !ok || !validLogLevels[level] {
		return validation.NewError("validation_invalid_level", "must be one of DEBUG, INFO, WARNING, ERROR, CRITICAL")
	}
	return nil
}

func validateGlob(value interface{}) error {
	pattern, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}
	if _, err := filepath.Match(pattern, "probe"); err != nil {
		return validation.NewError("validation_invalid_glob", "invalid glob pattern")
	}
	return nil
}

func validateMarkers(value interface{}) error {
	declared, ok := value.([]markers.Marker)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a marker list")
	}
	if _, err := markers.NewRegistry(declared); err != nil {
		return validation.NewError("validation_invalid_markers", err.Error())
	}
	return nil
}
