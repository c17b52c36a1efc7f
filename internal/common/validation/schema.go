// internal/common/validation/schema.go
package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// askRequestSchema constrains the inbound question payload. The question may
// be empty: an empty string is a business-level error with its own answer, so
// only shape and type are enforced here.
var askRequestSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"question": map[string]interface{}{
			"type":      "string",
			"maxLength": 2000,
		},
	},
	"required":             []interface{}{"question"},
	"additionalProperties": false,
}

// ValidateAskRequest checks a decoded request body against the ask schema.
func ValidateAskRequest(body map[string]interface{}) error {
	schemaLoader := gojsonschema.NewGoLoader(askRequestSchema)
	documentLoader := gojsonschema.NewGoLoader(body)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("request validation failed: %v", errs)
	}

	return nil
}
