// internal/common/validation/schema.go
package validation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	commonerrors "unimatch/internal/common/errors"
	"unimatch/pkg/registry"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Validator checks job variables against the inputSchema of each registered activity.
// Schemas are compiled once, on first use.
type Validator struct {
	activities map[string]registry.Activity

	mu       sync.RWMutex
	compiled map[string]*gojsonschema.Schema
}

func NewValidator(reg *registry.ActivityRegistry) *Validator {
	v := &Validator{
		activities: make(map[string]registry.Activity),
		compiled:   make(map[string]*gojsonschema.Schema),
	}
	if reg != nil {
		for _, a := range reg.Activities {
			v.activities[a.TaskType] = a
		}
	}
	return v
}

// ValidateInput validates variables for taskType. Task types without a
// registered schema always pass.
func (v *Validator) ValidateInput(taskType string, variables map[string]interface{}) (*ValidationResult, error) {
	if v == nil {
		return &ValidationResult{Valid: true}, nil
	}
	schema, err := v.schema(taskType)
	if err != nil {
		return nil, err
	}
	if schema == nil {
		return &ValidationResult{Valid: true}, nil
	}

	if variables == nil {
		variables = map[string]interface{}{}
	}
	res, err := schema.Validate(gojsonschema.NewGoLoader(variables))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	return toResult(res), nil
}

// Decode validates the raw job variables of taskType and unmarshals them
// into dest. Malformed or invalid variables yield an INVALID_INPUT error.
func (v *Validator) Decode(taskType, variables string, dest interface{}) error {
	if strings.TrimSpace(variables) == "" {
		variables = "{}"
	}

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(variables), &raw); err != nil {
		return commonerrors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err))
	}

	result, err := v.ValidateInput(taskType, raw)
	if err != nil {
		return commonerrors.NewInternalError(err)
	}
	if !result.Valid {
		return commonerrors.NewInvalidInputError(strings.Join(result.GetErrorMessages(), "; ")).
			WithMetadata("validationErrors", result.Errors)
	}

	if err := json.Unmarshal([]byte(variables), dest); err != nil {
		return commonerrors.NewInvalidInputError(fmt.Sprintf("decode input: %v", err))
	}
	return nil
}

func (v *Validator) schema(taskType string) (*gojsonschema.Schema, error) {
	v.mu.RLock()
	s, ok := v.compiled[taskType]
	v.mu.RUnlock()
	if ok {
		return s, nil
	}

	activity, ok := v.activities[taskType]
	if !ok || len(activity.InputSchema) == 0 {
		return nil, nil
	}

	s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(activity.InputSchema))
	if err != nil {
		return nil, fmt.Errorf("invalid inputSchema for %s: %w", activity.ID, err)
	}

	v.mu.Lock()
	v.compiled[taskType] = s
	v.mu.Unlock()
	return s, nil
}

func toResult(res *gojsonschema.Result) *ValidationResult {
	out := &ValidationResult{Valid: res.Valid()}
	for _, desc := range res.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   fieldName(desc),
			Message: desc.Description(),
			Code:    errorCode(desc.Type()),
		})
	}
	sort.SliceStable(out.Errors, func(i, j int) bool { return out.Errors[i].Field < out.Errors[j].Field })
	return out
}

// fieldName reports the offending property. For a missing required property
// gojsonschema points at the parent, so the property name is appended.
func fieldName(desc gojsonschema.ResultError) string {
	field := desc.Field()
	if desc.Type() == "required" {
		if prop, ok := desc.Details()["property"].(string); ok {
			if field == gojsonschema.STRING_ROOT_SCHEMA_PROPERTY {
				return prop
			}
			return field + "." + prop
		}
	}
	return field
}

func errorCode(kind string) string {
	switch kind {
	case "required":
		return "REQUIRED_FIELD_MISSING"
	case "invalid_type":
		return "INVALID_TYPE"
	case "enum":
		return "INVALID_ENUM_VALUE"
	case "number_gte", "number_gt":
		return "MINIMUM_VIOLATION"
	case "number_lte", "number_lt":
		return "MAXIMUM_VIOLATION"
	case "additional_property_not_allowed":
		return "EXTRA_FIELD"
	case "string_gte":
		return "MIN_LENGTH_VIOLATION"
	case "pattern":
		return "PATTERN_MISMATCH"
	default:
		return strings.ToUpper(kind)
	}
}

var activityIDPattern = regexp.MustCompile(`^[a-z]+\.[a-z]+\.[a-z-]+$`)

// ValidateActivityNaming validates activity ID follows naming convention
func ValidateActivityNaming(activityID string) error {
	if !activityIDPattern.MatchString(activityID) {
		return fmt.Errorf("activity ID must follow format: domain.subdomain.action (e.g., matching.university.search)")
	}
	return nil
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

// GetErrorsForField returns errors for a field and anything nested under it.
func (vr *ValidationResult) GetErrorsForField(field string) []ValidationError {
	var fieldErrors []ValidationError
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") {
			fieldErrors = append(fieldErrors, err)
		}
	}
	return fieldErrors
}
