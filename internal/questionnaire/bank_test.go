package questionnaire

import (
	"encoding/json"
	"testing"
)

const sampleBank = `
name: sample
start: q_mood
questions:
  - id: q_mood
    kind: single_choice
    prompt: How do you feel today?
    required: true
    options:
      - id: good
        label: Good
        value: good
      - id: unwell
        label: Unwell
        value: unwell
        next_question_id: q_temp
  - id: q_notes
    kind: text
    prompt: Notes
  - id: q_temp
    kind: number
    prompt: Body temperature
    range: {min: 34, max: 43, step: 0.1, unit: "C"}
`

func TestParseFlow(t *testing.T) {
	flow, err := ParseFlow([]byte(sampleBank))
	if err != nil {
		t.Fatalf("ParseFlow: %v", err)
	}
	if flow.Name != "sample" {
		t.Errorf("name: got %q, want %q", flow.Name, "sample")
	}
	if flow.StartQuestionID != "q_mood" {
		t.Errorf("start: got %q, want %q", flow.StartQuestionID, "q_mood")
	}
	if flow.Len() != 3 {
		t.Fatalf("expected 3 questions, got %d", flow.Len())
	}

	mood, ok := flow.Question("q_mood")
	if !ok {
		t.Fatal("q_mood missing")
	}
	opt := mood.Option("unwell")
	if opt == nil || opt.NextQuestionID != "q_temp" {
		t.Errorf("unwell option should point at q_temp, got %+v", opt)
	}
	if s, _ := opt.Value.Text(); s != "unwell" {
		t.Errorf("option value: got %q, want %q", s, "unwell")
	}

	temp, ok := flow.Question("q_temp")
	if !ok {
		t.Fatal("q_temp missing")
	}
	if temp.Range == nil || temp.Range.Min != 34 || temp.Range.Max != 43 {
		t.Errorf("range not parsed: %+v", temp.Range)
	}

	if err := flow.Check(NewRegistry()); err != nil {
		t.Errorf("Check: %v", err)
	}
}

func TestParseFlow_BadYAML(t *testing.T) {
	if _, err := ParseFlow([]byte(": not yaml")); err == nil {
		t.Error("expected parse error")
	}
}

func TestValueJSONRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   Value
	}{
		{"number", Number(37.5)},
		{"text", Text("urban")},
		{"list", StringList("thirst", "fatigue")},
		{"bool", Bool(true)},
		{"empty", Value{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.in)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			var out Value
			if err := json.Unmarshal(data, &out); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if !tt.in.Equal(out) {
				t.Errorf("round trip changed value: %v -> %v", tt.in, out)
			}
		})
	}
}

func TestValueJSON_RejectsMixedList(t *testing.T) {
	var v Value
	if err := json.Unmarshal([]byte(`["a", 3]`), &v); err == nil {
		t.Error("expected error for mixed list")
	}
}

func TestAnswersJSONRoundTrip(t *testing.T) {
	in := Answers{
		QAge:      Number(42),
		QLocation: Text("rural"),
		QSymptoms: StringList("thirst"),
	}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out Answers
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("expected %d entries, got %d", len(in), len(out))
	}
	for id, v := range in {
		if !v.Equal(out[id]) {
			t.Errorf("answer %q changed: %v -> %v", id, v, out[id])
		}
	}
}

func TestProviderSwap(t *testing.T) {
	flow, reg := threeStepFlow(t)
	first := newTestEngine(t, flow, reg, PolicyStrict)
	p := NewProvider(first)
	if p.Engine() != first {
		t.Fatal("provider should hand out the initial engine")
	}

	second := newTestEngine(t, DefaultFlow(), DefaultRegistry(), PolicyLenient)
	p.Swap(second)
	if p.Engine() != second {
		t.Error("provider should hand out the swapped engine")
	}
}

func TestDumpFlowRoundTrip(t *testing.T) {
	orig := DefaultFlow()
	data, err := DumpFlow(orig)
	if err != nil {
		t.Fatalf("DumpFlow: %v", err)
	}

	parsed, err := ParseFlow(data)
	if err != nil {
		t.Fatalf("ParseFlow on dumped bank: %v", err)
	}
	if parsed.Name != orig.Name || parsed.StartQuestionID != orig.StartQuestionID {
		t.Errorf("header changed: %q/%q -> %q/%q",
			orig.Name, orig.StartQuestionID, parsed.Name, parsed.StartQuestionID)
	}
	if parsed.Len() != orig.Len() {
		t.Fatalf("question count changed: %d -> %d", orig.Len(), parsed.Len())
	}
	if err := parsed.Check(DefaultRegistry()); err != nil {
		t.Errorf("dumped flow fails Check: %v", err)
	}

	q, ok := parsed.Question(QSmoking)
	if !ok {
		t.Fatalf("question %q lost in round trip", QSmoking)
	}
	if opt := q.Option("never"); opt == nil || opt.SkipToQuestionID != QSymptoms {
		t.Errorf("skip target lost: %+v", opt)
	}
}
