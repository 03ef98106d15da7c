package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"glucogard_backend/internal/config"
	"glucogard_backend/internal/model"
	"glucogard_backend/internal/questionnaire"
	"glucogard_backend/pkg/logger"

	"go.uber.org/zap"
)

// defaultSystolicBP stands in when the respondent does not know their
// reading. 120 mmHg is the normotensive reference value.
const defaultSystolicBP = 120

// RiskInput is the feature vector the AI engine consumes. Field names match
// its request schema.
type RiskInput struct {
	Age              float64 `json:"age"`
	BMI              float64 `json:"bmi"`
	Weight           float64 `json:"weight"`
	Height           float64 `json:"height"`
	SystolicBP       float64 `json:"systolic_bp"`
	FamilyHistory    int     `json:"family_history"`
	PhysicalActivity int     `json:"physical_activity"`
	DietQuality      float64 `json:"diet_quality"`
	Location         int     `json:"location"`
	Smoking          int     `json:"smoking"`
}

// RiskResult is what both the remote engine and the local fallback produce.
type RiskResult struct {
	Category      string             `json:"risk_category"`
	Level         int                `json:"risk_level"`
	Probabilities map[string]float64 `json:"probabilities,omitempty"`
	Source        string             `json:"source"`
}

// RiskService scores a completed screening. It calls the remote AI engine
// first and falls back to a rule-based heuristic when the engine is down or
// slow, so a submission never fails for lack of a score.
type RiskService struct {
	Cfg    config.ScoringConfig
	Client *http.Client
}

func NewRiskService(cfg config.ScoringConfig) *RiskService {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &RiskService{
		Cfg:    cfg,
		Client: &http.Client{Timeout: timeout},
	}
}

// BuildRiskInput derives the feature vector from raw answers. Categorical
// answers are encoded the way the AI engine's training pipeline encodes them:
// activity none..daily as 0..3, location rural=0 urban=1, smoking
// never/former/current as 0/1/2, family history yes=1 otherwise 0.
func BuildRiskInput(ans questionnaire.Answers) RiskInput {
	in := RiskInput{SystolicBP: defaultSystolicBP}

	if n, ok := ans[questionnaire.QAge].AsNumber(); ok {
		in.Age = n
	}
	if n, ok := ans[questionnaire.QHeight].AsNumber(); ok {
		in.Height = n
	}
	if n, ok := ans[questionnaire.QWeight].AsNumber(); ok {
		in.Weight = n
	}
	if in.Height > 0 {
		m := in.Height / 100
		in.BMI = in.Weight / (m * m)
	}
	if n, ok := ans[questionnaire.QSystolicBP].AsNumber(); ok {
		in.SystolicBP = n
	}
	if ans.Text(questionnaire.QFamilyHistory) == "yes" {
		in.FamilyHistory = 1
	}
	switch ans.Text(questionnaire.QPhysicalActivity) {
	case "occasional":
		in.PhysicalActivity = 1
	case "regular":
		in.PhysicalActivity = 2
	case "daily":
		in.PhysicalActivity = 3
	}
	if n, ok := ans[questionnaire.QDietQuality].AsNumber(); ok {
		in.DietQuality = n
	}
	if ans.Text(questionnaire.QLocation) == "urban" {
		in.Location = 1
	}
	switch ans.Text(questionnaire.QSmoking) {
	case "former":
		in.Smoking = 1
	case "current":
		in.Smoking = 2
	}
	return in
}

// Score never returns an error: a remote failure is logged and answered by
// the fallback heuristic instead.
func (s *RiskService) Score(ctx context.Context, ans questionnaire.Answers) *RiskResult {
	in := BuildRiskInput(ans)

	if s.Cfg.BaseURL != "" {
		res, err := s.remote(ctx, in)
		if err == nil {
			return res
		}
		logger.Log.Warn("risk engine unavailable, using fallback heuristic",
			zap.String("base_url", s.Cfg.BaseURL),
			zap.Error(err),
		)
	}
	return Fallback(ans)
}

func (s *RiskService) remote(ctx context.Context, in RiskInput) (*RiskResult, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Cfg.BaseURL+"/predict-risk", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("risk engine returned status %d", resp.StatusCode)
	}

	var res RiskResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, err
	}
	if !validCategory(res.Category) {
		return nil, fmt.Errorf("risk engine returned unknown category %q", res.Category)
	}
	res.Source = model.RiskSourceRemote
	return &res, nil
}

func validCategory(c string) bool {
	switch c {
	case model.RiskNonDiabetic, model.RiskLow, model.RiskModerate, model.RiskHigh, model.RiskCritical:
		return true
	}
	return false
}

// Fallback is a deterministic points-based heuristic over the same answers.
// Thresholds follow the clinical advisors' screening card: WHO BMI bands,
// ACC/AHA blood pressure stages, and symptom load.
func Fallback(ans questionnaire.Answers) *RiskResult {
	in := BuildRiskInput(ans)
	points := 0

	switch {
	case in.Age >= 60:
		points += 2
	case in.Age >= 45:
		points++
	}
	switch {
	case in.BMI >= 30:
		points += 2
	case in.BMI >= 25:
		points++
	}
	switch {
	case in.SystolicBP >= 140:
		points += 2
	case in.SystolicBP >= 130:
		points++
	}
	if in.FamilyHistory == 1 {
		points += 2
	}
	switch in.PhysicalActivity {
	case 0:
		points += 2
	case 1:
		points++
	}
	if in.DietQuality > 0 && in.DietQuality <= 4 {
		points++
	}
	switch in.Smoking {
	case 2:
		points += 2
	case 1:
		points++
	}
	switch n := symptomCount(ans); {
	case n >= 2:
		points += 2
	case n == 1:
		points++
	}

	level := 0
	switch {
	case points >= 10:
		level = 4
	case points >= 7:
		level = 3
	case points >= 4:
		level = 2
	case points >= 2:
		level = 1
	}

	categories := []string{
		model.RiskNonDiabetic,
		model.RiskLow,
		model.RiskModerate,
		model.RiskHigh,
		model.RiskCritical,
	}
	return &RiskResult{
		Category: categories[level],
		Level:    level,
		Source:   model.RiskSourceFallback,
	}
}

func symptomCount(ans questionnaire.Answers) int {
	list, ok := ans[questionnaire.QSymptoms].StringList()
	if !ok {
		return 0
	}
	n := 0
	for _, s := range list {
		if s != "none" {
			n++
		}
	}
	return n
}
