package questionnaire

import "math"

// Question ids of the built-in diabetes screening flow. The screening and
// risk layers look answers up by these ids; the engine itself never does.
const (
	QAge                 = "q_age"
	QHeight              = "q_height"
	QWeight              = "q_weight"
	QBPKnown             = "q_bp_known"
	QSystolicBP          = "q_systolic_bp"
	QFamilyHistory       = "q_family_history"
	QFamilyHistoryDetail = "q_family_history_detail"
	QPhysicalActivity    = "q_physical_activity"
	QDietQuality         = "q_diet_quality"
	QLocation            = "q_location"
	QSmoking             = "q_smoking"
	QSmokingYears        = "q_smoking_years"
	QSymptoms            = "q_symptoms"
	QSymptomDuration     = "q_symptom_duration"
	QNotes               = "q_notes"
)

// DefaultRegistry returns the conditions and validators the built-in flow
// references. All of them are pure functions over the answers or the value.
func DefaultRegistry() *Registry {
	reg := NewRegistry()

	reg.RegisterCondition("knows_blood_pressure", func(a Answers) bool {
		return a.Text(QBPKnown) == "yes"
	})
	reg.RegisterCondition("has_family_history", func(a Answers) bool {
		return a.Text(QFamilyHistory) == "yes"
	})
	reg.RegisterCondition("smokes_or_smoked", func(a Answers) bool {
		t := a.Text(QSmoking)
		return t == "current" || t == "former"
	})
	reg.RegisterCondition("reports_symptoms", func(a Answers) bool {
		list, ok := a[QSymptoms].StringList()
		if !ok || len(list) == 0 {
			return false
		}
		for _, s := range list {
			if s != "none" {
				return true
			}
		}
		return false
	})

	reg.RegisterValidator("adult_age", func(v Value) *ValidationError {
		n, ok := v.AsNumber()
		if ok && n < 18 {
			return CustomError("screening is intended for adults (18 and over)")
		}
		return nil
	})
	reg.RegisterValidator("whole_years", func(v Value) *ValidationError {
		n, ok := v.AsNumber()
		if ok && n != math.Trunc(n) {
			return CustomError("enter whole years")
		}
		return nil
	})

	return reg
}

// DefaultFlow is the GlucoGard diabetes screening questionnaire. It collects
// exactly the inputs the risk model consumes plus the conditional follow-ups
// the clinical team asked for. Used whenever no bank file is configured.
func DefaultFlow() *Flow {
	yes := Option{ID: "yes", Label: "Yes", Value: Text("yes")}
	no := Option{ID: "no", Label: "No", Value: Text("no")}

	questions := []Question{
		{
			ID:       QAge,
			Kind:     NumberInput,
			Prompt:   "How old are you?",
			Required: true,
			Range:    &NumericRange{Min: 1, Max: 120, Step: 1, Unit: "years"},
			Validate: "adult_age",
		},
		{
			ID:       QHeight,
			Kind:     NumberInput,
			Prompt:   "What is your height?",
			Required: true,
			Range:    &NumericRange{Min: 50, Max: 250, Step: 1, Unit: "cm"},
		},
		{
			ID:       QWeight,
			Kind:     NumberInput,
			Prompt:   "What is your weight?",
			Required: true,
			Range:    &NumericRange{Min: 10, Max: 300, Step: 0.5, Unit: "kg"},
		},
		{
			ID:       QBPKnown,
			Kind:     SingleChoice,
			Prompt:   "Do you know your most recent systolic blood pressure?",
			Required: true,
			Options: []Option{
				yes,
				{ID: "no", Label: "No", Value: Text("no"), SkipToQuestionID: QFamilyHistory},
			},
		},
		{
			ID:        QSystolicBP,
			Kind:      NumberInput,
			Prompt:    "What was the reading?",
			Required:  true,
			Condition: "knows_blood_pressure",
			Range:     &NumericRange{Min: 70, Max: 250, Step: 1, Unit: "mmHg"},
		},
		{
			ID:          QFamilyHistory,
			Kind:        SingleChoice,
			Prompt:      "Has anyone in your family been diagnosed with diabetes?",
			Description: "Parents, siblings or grandparents.",
			Required:    true,
			Options: []Option{
				yes,
				no,
				{ID: "unknown", Label: "I don't know", Value: Text("unknown")},
			},
		},
		{
			ID:        QFamilyHistoryDetail,
			Kind:      MultipleChoice,
			Prompt:    "Who was diagnosed?",
			Condition: "has_family_history",
			Options: []Option{
				{ID: "parent", Label: "Parent", Value: Text("parent")},
				{ID: "sibling", Label: "Sibling", Value: Text("sibling")},
				{ID: "grandparent", Label: "Grandparent", Value: Text("grandparent")},
				{ID: "other", Label: "Other relative", Value: Text("other")},
			},
		},
		{
			ID:       QPhysicalActivity,
			Kind:     SingleChoice,
			Prompt:   "How often are you physically active?",
			Required: true,
			Options: []Option{
				{ID: "none", Label: "Rarely or never", Value: Text("none")},
				{ID: "occasional", Label: "Once or twice a week", Value: Text("occasional")},
				{ID: "regular", Label: "Three or more times a week", Value: Text("regular")},
				{ID: "daily", Label: "Every day", Value: Text("daily")},
			},
		},
		{
			ID:          QDietQuality,
			Kind:        Slider,
			Prompt:      "How would you rate your diet overall?",
			Description: "1 is mostly processed food, 10 is balanced and varied.",
			Required:    true,
			Range:       &NumericRange{Min: 1, Max: 10, Step: 1},
		},
		{
			ID:       QLocation,
			Kind:     SingleChoice,
			Prompt:   "Where do you live?",
			Required: true,
			Options: []Option{
				{ID: "urban", Label: "In or near a city", Value: Text("urban")},
				{ID: "rural", Label: "In a rural area", Value: Text("rural")},
			},
		},
		{
			ID:       QSmoking,
			Kind:     SingleChoice,
			Prompt:   "Do you smoke?",
			Required: true,
			Options: []Option{
				{ID: "never", Label: "Never", Value: Text("never"), SkipToQuestionID: QSymptoms},
				{ID: "former", Label: "I used to", Value: Text("former")},
				{ID: "current", Label: "Yes", Value: Text("current")},
			},
		},
		{
			ID:        QSmokingYears,
			Kind:      NumberInput,
			Prompt:    "For how many years?",
			Condition: "smokes_or_smoked",
			Range:     &NumericRange{Min: 0, Max: 80, Step: 1, Unit: "years"},
			Validate:  "whole_years",
		},
		{
			ID:       QSymptoms,
			Kind:     MultipleChoice,
			Prompt:   "Have you noticed any of these in the last few months?",
			Required: true,
			Options: []Option{
				{ID: "thirst", Label: "Unusual thirst", Value: Text("thirst")},
				{ID: "urination", Label: "Frequent urination", Value: Text("urination")},
				{ID: "fatigue", Label: "Persistent fatigue", Value: Text("fatigue")},
				{ID: "blurred_vision", Label: "Blurred vision", Value: Text("blurred_vision")},
				{ID: "slow_healing", Label: "Slow-healing wounds", Value: Text("slow_healing")},
				{ID: "none", Label: "None of these", Value: Text("none"), NextQuestionID: QNotes},
			},
		},
		{
			ID:        QSymptomDuration,
			Kind:      NumberInput,
			Prompt:    "Roughly how many weeks have the symptoms lasted?",
			Condition: "reports_symptoms",
			Range:     &NumericRange{Min: 0, Max: 520, Step: 1, Unit: "weeks"},
		},
		{
			ID:     QNotes,
			Kind:   TextInput,
			Prompt: "Anything else you want the clinician to know?",
		},
	}

	// Ids are hand-maintained above; NewFlow only rejects duplicates.
	flow, err := NewFlow("diabetes_screening", QAge, questions)
	if err != nil {
		panic(err)
	}
	return flow
}
