package questionnaire

import (
	"fmt"

	"go.uber.org/zap"
)

// Policy decides how configuration defects found during traversal are
// handled. Strict surfaces them as *ConfigurationError so broken flow
// definitions fail loudly in development; Lenient logs and treats the
// offending question as unreachable so a live assessment keeps going.
type Policy int

const (
	PolicyStrict Policy = iota
	PolicyLenient
)

// Engine walks a Flow. It holds no per-session state: Advance, Progress and
// Validate are pure functions of the arguments (plus the immutable flow), so
// one engine serves any number of concurrent sessions.
type Engine struct {
	flow   *Flow
	reg    *Registry
	policy Policy
	log    *zap.Logger
}

func NewEngine(flow *Flow, reg *Registry, policy Policy, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{flow: flow, reg: reg, policy: policy, log: log}
	if err := flow.Check(reg); err != nil {
		if policy == PolicyStrict {
			return nil, err
		}
		log.Warn("questionnaire flow has configuration defects", zap.String("flow", flow.Name), zap.Error(err))
	}
	return e, nil
}

func (e *Engine) Flow() *Flow {
	return e.flow
}

// Start returns the first reachable question given the (usually empty)
// answers, or nil if even a forward scan from the start finds nothing.
func (e *Engine) Start(ans Answers) (*Question, error) {
	pos, ok := e.flow.position(e.flow.StartQuestionID)
	if !ok {
		return nil, e.defect(e.flow.StartQuestionID, "start question does not exist")
	}
	for i := pos; i < len(e.flow.Questions); i++ {
		q := &e.flow.Questions[i]
		reachable, err := e.reachable(q, ans)
		if err != nil {
			return nil, err
		}
		if reachable {
			return q, nil
		}
	}
	return nil, nil
}

// Advance computes the question after currentID. Resolution order: the
// selected option's NextQuestionID, then its SkipToQuestionID, then the
// first reachable question after currentID in declared order. An explicit
// target whose condition is false falls through to the next rule rather than
// being scanned past. A nil question with nil error means the flow is
// complete. An unknown currentID is the one tolerated stale reference and
// also ends the flow.
func (e *Engine) Advance(currentID string, selected *Option, ans Answers) (*Question, error) {
	pos, ok := e.flow.position(currentID)
	if !ok {
		return nil, nil
	}

	if selected != nil {
		if selected.NextQuestionID != "" {
			q, err := e.resolveTarget(currentID, selected.NextQuestionID, ans)
			if err != nil {
				return nil, err
			}
			if q != nil {
				return q, nil
			}
		}
		if selected.SkipToQuestionID != "" {
			q, err := e.resolveTarget(currentID, selected.SkipToQuestionID, ans)
			if err != nil {
				return nil, err
			}
			if q != nil {
				return q, nil
			}
		}
	}

	for i := pos + 1; i < len(e.flow.Questions); i++ {
		q := &e.flow.Questions[i]
		reachable, err := e.reachable(q, ans)
		if err != nil {
			return nil, err
		}
		if reachable {
			return q, nil
		}
	}
	return nil, nil
}

// resolveTarget accepts an explicit jump target only if it exists and its
// condition holds. A dangling id is a configuration defect; a false
// condition just declines the target.
func (e *Engine) resolveTarget(fromID, targetID string, ans Answers) (*Question, error) {
	q, ok := e.flow.Question(targetID)
	if !ok {
		return nil, e.defect(fromID, fmt.Sprintf("references unknown question %q", targetID))
	}
	reachable, err := e.reachable(q, ans)
	if err != nil {
		return nil, err
	}
	if !reachable {
		return nil, nil
	}
	return q, nil
}

// Progress reports completion over the currently reachable question set as a
// percentage in [0, 100]. The denominator is every question whose condition
// is absent or true given the answers so far; the numerator is the count of
// flow questions already answered. This is a cheap proxy, not an ETA: a new
// answer can reveal conditional questions and briefly dilute the
// denominator, which is accepted. currentID is part of the contract but the
// approximation does not need it.
func (e *Engine) Progress(currentID string, ans Answers) (float64, error) {
	total := 0
	for i := range e.flow.Questions {
		reachable, err := e.reachable(&e.flow.Questions[i], ans)
		if err != nil {
			return 0, err
		}
		if reachable {
			total++
		}
	}
	if total == 0 {
		return 0, nil
	}

	answered := 0
	for id := range ans {
		if _, ok := e.flow.Question(id); ok {
			answered++
		}
	}

	pct := float64(answered) / float64(total) * 100
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return pct, nil
}

// Validate checks a single answer against its question. Required-but-empty
// wins, then numeric coercion and range for number/slider kinds, then the
// question's registered validator. Failures come back as data; a nil result
// means the answer is acceptable.
func (e *Engine) Validate(q *Question, v Value) *ValidationError {
	if v.IsEmpty() {
		if q.Required {
			return requiredError(q)
		}
		return nil
	}

	if q.Kind.IsNumeric() {
		n, ok := v.AsNumber()
		if !ok {
			return typeError(q)
		}
		if q.Range != nil && (n < q.Range.Min || n > q.Range.Max) {
			return rangeError(q, n)
		}
	}

	if q.Validate != "" {
		fn, ok := e.reg.Validator(q.Validate)
		if !ok {
			// Flow.Check flags this at construction; skip here so Validate
			// stays a pure value-in value-out function.
			return nil
		}
		return fn(v)
	}
	return nil
}

// Unanswered lists the reachable required questions that still lack a usable
// answer. The submission path uses it as its completeness gate.
func (e *Engine) Unanswered(ans Answers) ([]string, error) {
	var missing []string
	for i := range e.flow.Questions {
		q := &e.flow.Questions[i]
		if !q.Required {
			continue
		}
		reachable, err := e.reachable(q, ans)
		if err != nil {
			return nil, err
		}
		if reachable && ans[q.ID].IsEmpty() {
			missing = append(missing, q.ID)
		}
	}
	return missing, nil
}

func (e *Engine) reachable(q *Question, ans Answers) (bool, error) {
	if q.Condition == "" {
		return true, nil
	}
	cond, ok := e.reg.Condition(q.Condition)
	if !ok {
		return false, e.defect(q.ID, fmt.Sprintf("condition %q is not registered", q.Condition))
	}
	return e.evalCondition(q, cond, ans)
}

// evalCondition shields traversal from a panicking predicate, routing the
// panic through the same policy as any other configuration defect.
func (e *Engine) evalCondition(q *Question, cond Condition, ans Answers) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			err = e.defect(q.ID, fmt.Sprintf("condition %q panicked: %v", q.Condition, r))
		}
	}()
	return cond(ans), nil
}

func (e *Engine) defect(questionID, reason string) error {
	cfgErr := &ConfigurationError{QuestionID: questionID, Reason: reason}
	if e.policy == PolicyStrict {
		return cfgErr
	}
	e.log.Warn("skipping defective questionnaire entry",
		zap.String("flow", e.flow.Name),
		zap.String("question", questionID),
		zap.String("reason", reason),
	)
	return nil
}
