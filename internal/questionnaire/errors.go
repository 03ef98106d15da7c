package questionnaire

import "fmt"

type ValidationKind string

const (
	ValidationRequired ValidationKind = "required"
	ValidationType     ValidationKind = "type"
	ValidationRange    ValidationKind = "range"
	ValidationCustom   ValidationKind = "custom"
)

// ValidationError is a user-input failure. It travels as a value back to the
// caller, which is expected to re-prompt; it is never raised.
type ValidationError struct {
	Kind    ValidationKind `json:"kind"`
	Message string         `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func requiredError(q *Question) *ValidationError {
	return &ValidationError{
		Kind:    ValidationRequired,
		Message: fmt.Sprintf("question %q requires an answer", q.ID),
	}
}

func typeError(q *Question) *ValidationError {
	return &ValidationError{
		Kind:    ValidationType,
		Message: fmt.Sprintf("question %q expects a numeric answer", q.ID),
	}
}

func rangeError(q *Question, n float64) *ValidationError {
	unit := ""
	if q.Range.Unit != "" {
		unit = " " + q.Range.Unit
	}
	return &ValidationError{
		Kind:    ValidationRange,
		Message: fmt.Sprintf("%g is outside [%g, %g]%s", n, q.Range.Min, q.Range.Max, unit),
	}
}

// CustomError builds the value a registered validator returns on failure.
func CustomError(message string) *ValidationError {
	return &ValidationError{Kind: ValidationCustom, Message: message}
}

// ConfigurationError marks a broken flow definition: a dangling id reference,
// an unregistered condition or validator, or a predicate that panicked. In
// strict policy it surfaces from Advance/Progress so the defect is caught
// before shipping.
type ConfigurationError struct {
	QuestionID string
	Reason     string
}

func (e *ConfigurationError) Error() string {
	if e.QuestionID == "" {
		return "questionnaire config: " + e.Reason
	}
	return fmt.Sprintf("questionnaire config: question %q: %s", e.QuestionID, e.Reason)
}
