package questionnaire

import "testing"

func validateEngine(t *testing.T) *Engine {
	t.Helper()
	flow, err := NewFlow("test", "n", []Question{
		{ID: "n", Kind: NumberInput, Required: true, Range: &NumericRange{Min: 70, Max: 250, Unit: "mmHg"}},
		{ID: "s", Kind: Slider, Range: &NumericRange{Min: 1, Max: 10}},
		{ID: "t", Kind: TextInput, Required: true},
		{ID: "m", Kind: MultipleChoice, Required: true, Options: []Option{
			{ID: "a", Label: "a", Value: Text("a")},
		}},
		{ID: "v", Kind: NumberInput, Range: &NumericRange{Min: 0, Max: 80}, Validate: "whole"},
	})
	if err != nil {
		t.Fatalf("NewFlow: %v", err)
	}
	reg := NewRegistry()
	reg.RegisterValidator("whole", func(v Value) *ValidationError {
		n, ok := v.AsNumber()
		if ok && n != float64(int64(n)) {
			return CustomError("enter a whole number")
		}
		return nil
	})
	return newTestEngine(t, flow, reg, PolicyStrict)
}

func question(t *testing.T, e *Engine, id string) *Question {
	t.Helper()
	q, ok := e.Flow().Question(id)
	if !ok {
		t.Fatalf("fixture question %q missing", id)
	}
	return q
}

func TestValidate_RequiredEmpty(t *testing.T) {
	e := validateEngine(t)
	tests := []struct {
		name  string
		qID   string
		value Value
	}{
		{"unset number", "n", Value{}},
		{"empty text", "t", Text("")},
		{"whitespace text", "t", Text("   ")},
		{"empty list", "m", StringList()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Validate(question(t, e, tt.qID), tt.value)
			if got == nil || got.Kind != ValidationRequired {
				t.Errorf("expected required error, got %v", got)
			}
		})
	}
}

func TestValidate_RequiredWinsOverRange(t *testing.T) {
	// An empty answer on a required number question is a required error no
	// matter what the range says.
	e := validateEngine(t)
	got := e.Validate(question(t, e, "n"), Value{})
	if got == nil || got.Kind != ValidationRequired {
		t.Errorf("expected required error, got %v", got)
	}
}

func TestValidate_OptionalEmptyPasses(t *testing.T) {
	e := validateEngine(t)
	if got := e.Validate(question(t, e, "s"), Value{}); got != nil {
		t.Errorf("optional empty slider should pass, got %v", got)
	}
}

func TestValidate_NumericCoercion(t *testing.T) {
	e := validateEngine(t)
	q := question(t, e, "n")

	if got := e.Validate(q, Text("120")); got != nil {
		t.Errorf("numeric text should coerce, got %v", got)
	}
	if got := e.Validate(q, Text("high")); got == nil || got.Kind != ValidationType {
		t.Errorf("expected type error for non-numeric text, got %v", got)
	}
	if got := e.Validate(q, Bool(true)); got == nil || got.Kind != ValidationType {
		t.Errorf("expected type error for bool, got %v", got)
	}
}

func TestValidate_RangeBounds(t *testing.T) {
	e := validateEngine(t)
	q := question(t, e, "n")
	tests := []struct {
		name  string
		value float64
		want  ValidationKind // "" means pass
	}{
		{"below min", 69, ValidationRange},
		{"at min", 70, ""},
		{"inside", 120, ""},
		{"at max", 250, ""},
		{"above max", 251, ValidationRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Validate(q, Number(tt.value))
			if tt.want == "" {
				if got != nil {
					t.Errorf("expected pass, got %v", got)
				}
				return
			}
			if got == nil || got.Kind != tt.want {
				t.Errorf("expected %s error, got %v", tt.want, got)
			}
		})
	}
}

func TestValidate_CustomRunsLast(t *testing.T) {
	e := validateEngine(t)
	q := question(t, e, "v")

	// Out of range short-circuits before the custom validator.
	if got := e.Validate(q, Number(90.5)); got == nil || got.Kind != ValidationRange {
		t.Errorf("expected range error before custom, got %v", got)
	}
	if got := e.Validate(q, Number(12.5)); got == nil || got.Kind != ValidationCustom {
		t.Errorf("expected custom error, got %v", got)
	}
	if got := e.Validate(q, Number(12)); got != nil {
		t.Errorf("expected pass, got %v", got)
	}
}

func TestValidate_Idempotent(t *testing.T) {
	e := validateEngine(t)
	q := question(t, e, "n")
	first := e.Validate(q, Number(300))
	second := e.Validate(q, Number(300))
	if first == nil || second == nil {
		t.Fatal("expected range errors")
	}
	if first.Kind != second.Kind || first.Message != second.Message {
		t.Errorf("validate not idempotent: %v vs %v", first, second)
	}
}
