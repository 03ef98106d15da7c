package questionnaire

// Condition gates whether a question is currently reachable. Must be pure.
type Condition func(Answers) bool

// Validator runs a question's extra check after the built-in ones pass.
// Returns nil when the value is acceptable. Must be pure.
type Validator func(Value) *ValidationError

// Registry holds the named condition and validator functions a flow
// definition may reference. Keeping behavior behind names (rather than
// embedding closures in the bank) keeps the bank serializable and means the
// engine only ever invokes functions it was explicitly given.
type Registry struct {
	conditions map[string]Condition
	validators map[string]Validator
}

func NewRegistry() *Registry {
	return &Registry{
		conditions: make(map[string]Condition),
		validators: make(map[string]Validator),
	}
}

func (r *Registry) RegisterCondition(name string, fn Condition) {
	if name == "" || fn == nil {
		return
	}
	r.conditions[name] = fn
}

func (r *Registry) RegisterValidator(name string, fn Validator) {
	if name == "" || fn == nil {
		return
	}
	r.validators[name] = fn
}

func (r *Registry) Condition(name string) (Condition, bool) {
	fn, ok := r.conditions[name]
	return fn, ok
}

func (r *Registry) Validator(name string) (Validator, bool) {
	fn, ok := r.validators[name]
	return fn, ok
}
