package questionnaire

import "fmt"

type Kind string

const (
	SingleChoice   Kind = "single_choice"
	MultipleChoice Kind = "multiple_choice"
	NumberInput    Kind = "number"
	TextInput      Kind = "text"
	Slider         Kind = "slider"
)

func (k Kind) valid() bool {
	switch k {
	case SingleChoice, MultipleChoice, NumberInput, TextInput, Slider:
		return true
	}
	return false
}

// IsChoice reports whether questions of this kind carry options.
func (k Kind) IsChoice() bool {
	return k == SingleChoice || k == MultipleChoice
}

// IsNumeric reports whether answers of this kind must coerce to a number.
func (k Kind) IsNumeric() bool {
	return k == NumberInput || k == Slider
}

type NumericRange struct {
	Min  float64 `json:"min" yaml:"min"`
	Max  float64 `json:"max" yaml:"max"`
	Step float64 `json:"step,omitempty" yaml:"step,omitempty"`
	Unit string  `json:"unit,omitempty" yaml:"unit,omitempty"`
}

type Option struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
	Value Value  `json:"value" yaml:"value"`

	// NextQuestionID overrides sequential traversal; SkipToQuestionID is the
	// secondary jump target consulted only when NextQuestionID is absent.
	NextQuestionID   string `json:"nextQuestionId,omitempty" yaml:"next_question_id,omitempty"`
	SkipToQuestionID string `json:"skipToQuestionId,omitempty" yaml:"skip_to_question_id,omitempty"`
}

// Question is one prompt in the flow. Condition and Validate name functions
// in the registry so the definition itself stays plain serializable data.
type Question struct {
	ID          string        `json:"id" yaml:"id"`
	Kind        Kind          `json:"kind" yaml:"kind"`
	Prompt      string        `json:"prompt" yaml:"prompt"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Options     []Option      `json:"options,omitempty" yaml:"options,omitempty"`
	Range       *NumericRange `json:"numericRange,omitempty" yaml:"range,omitempty"`
	Required    bool          `json:"required,omitempty" yaml:"required,omitempty"`
	Condition   string        `json:"condition,omitempty" yaml:"condition,omitempty"`
	Validate    string        `json:"validate,omitempty" yaml:"validate,omitempty"`
}

// Option returns the option with the given id, or nil.
func (q *Question) Option(id string) *Option {
	for i := range q.Options {
		if q.Options[i].ID == id {
			return &q.Options[i]
		}
	}
	return nil
}

// Flow is the whole catalog: ordered questions plus the start id. It is
// immutable after construction and safe to share across concurrent sessions;
// all per-session state lives with the caller.
type Flow struct {
	Name            string
	StartQuestionID string
	Questions       []Question

	index map[string]int
}

func NewFlow(name, startID string, questions []Question) (*Flow, error) {
	index := make(map[string]int, len(questions))
	for i, q := range questions {
		if q.ID == "" {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("question at position %d has no id", i)}
		}
		if _, dup := index[q.ID]; dup {
			return nil, &ConfigurationError{QuestionID: q.ID, Reason: "duplicate question id"}
		}
		index[q.ID] = i
	}
	return &Flow{
		Name:            name,
		StartQuestionID: startID,
		Questions:       questions,
		index:           index,
	}, nil
}

func (f *Flow) Len() int {
	return len(f.Questions)
}

// Question looks up a question by id.
func (f *Flow) Question(id string) (*Question, bool) {
	i, ok := f.index[id]
	if !ok {
		return nil, false
	}
	return &f.Questions[i], true
}

func (f *Flow) position(id string) (int, bool) {
	i, ok := f.index[id]
	return i, ok
}

// Check verifies the flow definition against the registry: the start id and
// every option target must resolve, every named condition and validator must
// be registered, choice questions must carry options and numeric ranges must
// be ordered. It reports the first defect found.
func (f *Flow) Check(reg *Registry) error {
	if len(f.Questions) == 0 {
		return &ConfigurationError{Reason: "flow has no questions"}
	}
	if _, ok := f.index[f.StartQuestionID]; !ok {
		return &ConfigurationError{Reason: fmt.Sprintf("start question %q does not exist", f.StartQuestionID)}
	}

	for i := range f.Questions {
		q := &f.Questions[i]
		if !q.Kind.valid() {
			return &ConfigurationError{QuestionID: q.ID, Reason: fmt.Sprintf("unknown kind %q", q.Kind)}
		}
		if q.Kind.IsChoice() && len(q.Options) == 0 {
			return &ConfigurationError{QuestionID: q.ID, Reason: "choice question has no options"}
		}
		if !q.Kind.IsChoice() && len(q.Options) > 0 {
			return &ConfigurationError{QuestionID: q.ID, Reason: "non-choice question carries options"}
		}
		if q.Range != nil && q.Range.Min > q.Range.Max {
			return &ConfigurationError{QuestionID: q.ID, Reason: "numeric range min exceeds max"}
		}
		if q.Condition != "" {
			if _, ok := reg.Condition(q.Condition); !ok {
				return &ConfigurationError{QuestionID: q.ID, Reason: fmt.Sprintf("condition %q is not registered", q.Condition)}
			}
		}
		if q.Validate != "" {
			if _, ok := reg.Validator(q.Validate); !ok {
				return &ConfigurationError{QuestionID: q.ID, Reason: fmt.Sprintf("validator %q is not registered", q.Validate)}
			}
		}
		for j := range q.Options {
			opt := &q.Options[j]
			if opt.NextQuestionID != "" {
				if _, ok := f.index[opt.NextQuestionID]; !ok {
					return &ConfigurationError{QuestionID: q.ID, Reason: fmt.Sprintf("option %q points to unknown question %q", opt.ID, opt.NextQuestionID)}
				}
			}
			if opt.SkipToQuestionID != "" {
				if _, ok := f.index[opt.SkipToQuestionID]; !ok {
					return &ConfigurationError{QuestionID: q.ID, Reason: fmt.Sprintf("option %q skips to unknown question %q", opt.ID, opt.SkipToQuestionID)}
				}
			}
		}
	}
	return nil
}
