package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"glucogard_backend/internal/model"
	"glucogard_backend/internal/questionnaire"
	"glucogard_backend/internal/repository"
	"glucogard_backend/internal/util"
	"glucogard_backend/pkg/logger"
	"glucogard_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SubmissionStore is the sink for completed screenings. The service only
// depends on this slice of the repository so the submission pipeline can be
// tested without a database.
type SubmissionStore interface {
	Create(sub *model.ScreeningSubmission) error
	FindBySessionID(sessionID string) (*model.ScreeningSubmission, error)
	ListByUser(userID uint, page, limit int) ([]model.ScreeningSubmission, int64, error)
	LatestByUser(userID uint) (*model.ScreeningSubmission, error)
}

// DraftStore parks in-progress sessions so a client can resume later.
type DraftStore interface {
	Save(ctx context.Context, userID uint, draft *repository.ScreeningDraft) error
	Find(ctx context.Context, userID uint) (*repository.ScreeningDraft, error)
	Delete(ctx context.Context, userID uint) error
}

// RiskScorer produces a risk result for a completed answer set.
type RiskScorer interface {
	Score(ctx context.Context, ans questionnaire.Answers) *RiskResult
}

// RiskCacheStore keeps the latest per-user risk summary warm for the
// dashboard. Optional; submission works without it.
type RiskCacheStore interface {
	Save(ctx context.Context, userID uint, entry *repository.CachedRisk) error
	Find(ctx context.Context, userID uint) (*repository.CachedRisk, error)
}

// AnswerError reports which answer failed validation during submission.
type AnswerError struct {
	QuestionID string
	Cause      *questionnaire.ValidationError
}

func (e *AnswerError) Error() string {
	return fmt.Sprintf("answer for %s: %s", e.QuestionID, e.Cause.Message)
}

// ScreeningService drives the adaptive questionnaire for API clients and
// turns finished sessions into stored, scored submissions. Session state
// lives with the caller (request payloads and Redis drafts); the engine
// itself is shared and stateless.
type ScreeningService struct {
	Provider  *questionnaire.Provider
	Store     SubmissionStore
	Drafts    DraftStore
	Risk      RiskScorer
	RiskCache RiskCacheStore
}

func NewScreeningService(provider *questionnaire.Provider, store SubmissionStore, drafts DraftStore, risk RiskScorer, cache RiskCacheStore) *ScreeningService {
	return &ScreeningService{
		Provider:  provider,
		Store:     store,
		Drafts:    drafts,
		Risk:      risk,
		RiskCache: cache,
	}
}

// AdvanceRequest carries the caller-owned session state for one step.
type AdvanceRequest struct {
	CurrentQuestionID string                `json:"currentQuestionId" binding:"required"`
	OptionID          string                `json:"optionId"`
	Answers           questionnaire.Answers `json:"answers"`
}

// StepResponse is one traversal step. Question is nil when the flow is
// complete.
type StepResponse struct {
	Question  *questionnaire.Question `json:"question,omitempty"`
	Completed bool                    `json:"completed"`
	Progress  float64                 `json:"progress"`
}

// SubmitRequest finalizes a session. SessionID is the client-generated
// idempotency key; submitting the same session twice returns the stored row.
type SubmitRequest struct {
	SessionID string                `json:"sessionId" binding:"required"`
	Answers   questionnaire.Answers `json:"answers" binding:"required"`
}

// SubmitResult reports the stored submission; Duplicate marks a replay.
type SubmitResult struct {
	Submission *model.ScreeningSubmission `json:"submission"`
	Duplicate  bool                       `json:"duplicate"`
}

// Flow exposes the active questionnaire definition for client rendering.
func (s *ScreeningService) Flow() *questionnaire.Flow {
	return s.Provider.Engine().Flow()
}

// Start returns the first reachable question. Answers may be non-empty when
// resuming a draft whose current question has been edited out of the flow.
func (s *ScreeningService) Start(ans questionnaire.Answers) (*StepResponse, error) {
	eng := s.Provider.Engine()
	q, err := eng.Start(ans)
	if err != nil {
		return nil, err
	}
	progress := 0.0
	if q != nil {
		progress, err = eng.Progress(q.ID, ans)
		if err != nil {
			return nil, err
		}
	}
	return &StepResponse{Question: q, Completed: q == nil, Progress: progress}, nil
}

// Advance resolves the next question for the given state. An unknown option
// id on a known question is a client error; an unknown current question id is
// tolerated and ends the flow, so drafts survive bank edits.
func (s *ScreeningService) Advance(req *AdvanceRequest) (*StepResponse, error) {
	eng := s.Provider.Engine()

	var selected *questionnaire.Option
	if q, ok := eng.Flow().Question(req.CurrentQuestionID); ok && req.OptionID != "" {
		selected = q.Option(req.OptionID)
		if selected == nil {
			return nil, util.ErrOptionNotFound
		}
	}

	next, err := eng.Advance(req.CurrentQuestionID, selected, req.Answers)
	if err != nil {
		return nil, err
	}
	progress, err := eng.Progress(req.CurrentQuestionID, req.Answers)
	if err != nil {
		return nil, err
	}
	return &StepResponse{Question: next, Completed: next == nil, Progress: progress}, nil
}

// ValidateAnswer checks one answer and returns the failure as data. The
// second return is for unknown question ids and configuration defects only.
func (s *ScreeningService) ValidateAnswer(questionID string, v questionnaire.Value) (*questionnaire.ValidationError, error) {
	eng := s.Provider.Engine()
	q, ok := eng.Flow().Question(questionID)
	if !ok {
		return nil, util.ErrQuestionNotFound
	}
	return eng.Validate(q, v), nil
}

func (s *ScreeningService) SaveDraft(ctx context.Context, userID uint, draft *repository.ScreeningDraft) error {
	if draft.FlowName == "" {
		draft.FlowName = s.Flow().Name
	}
	return s.Drafts.Save(ctx, userID, draft)
}

func (s *ScreeningService) ResumeDraft(ctx context.Context, userID uint) (*repository.ScreeningDraft, error) {
	return s.Drafts.Find(ctx, userID)
}

func (s *ScreeningService) DiscardDraft(ctx context.Context, userID uint) error {
	return s.Drafts.Delete(ctx, userID)
}

// Submit validates and scores a finished session, then stores it. The
// pipeline runs at most once per session id: replays and create races both
// resolve to the already-stored submission.
func (s *ScreeningService) Submit(ctx context.Context, userID uint, req *SubmitRequest) (*SubmitResult, error) {
	if existing, err := s.Store.FindBySessionID(req.SessionID); err == nil {
		return &SubmitResult{Submission: existing, Duplicate: true}, nil
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	eng := s.Provider.Engine()
	flow := eng.Flow()

	for id, v := range req.Answers {
		q, ok := flow.Question(id)
		if !ok {
			continue
		}
		if verr := eng.Validate(q, v); verr != nil {
			return nil, &AnswerError{QuestionID: id, Cause: verr}
		}
	}

	missing, err := eng.Unanswered(req.Answers)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", util.ErrScreeningIncomplete, strings.Join(missing, ", "))
	}

	risk := s.Risk.Score(ctx, req.Answers)

	answersJSON, err := json.Marshal(req.Answers)
	if err != nil {
		return nil, err
	}
	var probsJSON json.RawMessage
	if len(risk.Probabilities) > 0 {
		probsJSON, err = json.Marshal(risk.Probabilities)
		if err != nil {
			return nil, err
		}
	}

	sub := &model.ScreeningSubmission{
		UserID:        userID,
		SessionID:     req.SessionID,
		FlowName:      flow.Name,
		Answers:       answersJSON,
		RiskCategory:  risk.Category,
		RiskLevel:     risk.Level,
		RiskSource:    risk.Source,
		Probabilities: probsJSON,
		CompletedAt:   time.Now(),
	}

	if err := s.Store.Create(sub); err != nil {
		// Two clients racing on the same session id hit the unique index;
		// the loser returns the winner's row.
		if existing, findErr := s.Store.FindBySessionID(req.SessionID); findErr == nil {
			return &SubmitResult{Submission: existing, Duplicate: true}, nil
		}
		return nil, err
	}

	monitoring.ScreeningsCompleted.WithLabelValues(risk.Category, risk.Source).Inc()

	if s.RiskCache != nil {
		entry := &repository.CachedRisk{
			Category:    risk.Category,
			Level:       risk.Level,
			Source:      risk.Source,
			CompletedAt: sub.CompletedAt,
		}
		if err := s.RiskCache.Save(ctx, userID, entry); err != nil {
			logger.Log.Warn("failed to cache latest risk result",
				zap.Uint("user_id", userID), zap.Error(err))
		}
	}

	if s.Drafts != nil {
		if err := s.Drafts.Delete(ctx, userID); err != nil {
			logger.Log.Warn("failed to clear screening draft after submit",
				zap.Uint("user_id", userID), zap.Error(err))
		}
	}

	return &SubmitResult{Submission: sub, Duplicate: false}, nil
}

func (s *ScreeningService) History(userID uint, page, limit int) ([]model.ScreeningSubmission, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.Store.ListByUser(userID, page, limit)
}

func (s *ScreeningService) Latest(userID uint) (*model.ScreeningSubmission, error) {
	sub, err := s.Store.LatestByUser(userID)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrSubmissionNotFound
	}
	return sub, err
}
