package service

import (
	"context"
	"errors"
	"testing"

	"glucogard_backend/internal/model"
	"glucogard_backend/internal/questionnaire"
	"glucogard_backend/internal/repository"
	"glucogard_backend/internal/util"

	"gorm.io/gorm"
)

type fakeStore struct {
	subs    map[string]*model.ScreeningSubmission
	creates int
	// createErr simulates a lost insert race; the conflicting row is added
	// to subs so the retry lookup finds the winner.
	createErr error
	winner    *model.ScreeningSubmission
}

func newFakeStore() *fakeStore {
	return &fakeStore{subs: map[string]*model.ScreeningSubmission{}}
}

func (f *fakeStore) Create(sub *model.ScreeningSubmission) error {
	if f.createErr != nil {
		if f.winner != nil {
			f.subs[f.winner.SessionID] = f.winner
		}
		return f.createErr
	}
	f.creates++
	f.subs[sub.SessionID] = sub
	return nil
}

func (f *fakeStore) FindBySessionID(sessionID string) (*model.ScreeningSubmission, error) {
	if sub, ok := f.subs[sessionID]; ok {
		return sub, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeStore) ListByUser(userID uint, page, limit int) ([]model.ScreeningSubmission, int64, error) {
	var out []model.ScreeningSubmission
	for _, sub := range f.subs {
		if sub.UserID == userID {
			out = append(out, *sub)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeStore) LatestByUser(userID uint) (*model.ScreeningSubmission, error) {
	for _, sub := range f.subs {
		if sub.UserID == userID {
			return sub, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeDrafts struct {
	saved   map[uint]*repository.ScreeningDraft
	deletes int
}

func newFakeDrafts() *fakeDrafts {
	return &fakeDrafts{saved: map[uint]*repository.ScreeningDraft{}}
}

func (f *fakeDrafts) Save(ctx context.Context, userID uint, draft *repository.ScreeningDraft) error {
	f.saved[userID] = draft
	return nil
}

func (f *fakeDrafts) Find(ctx context.Context, userID uint) (*repository.ScreeningDraft, error) {
	if d, ok := f.saved[userID]; ok {
		return d, nil
	}
	return nil, util.ErrDraftNotFound
}

func (f *fakeDrafts) Delete(ctx context.Context, userID uint) error {
	delete(f.saved, userID)
	f.deletes++
	return nil
}

type fakeScorer struct {
	res   *RiskResult
	calls int
}

func (f *fakeScorer) Score(ctx context.Context, ans questionnaire.Answers) *RiskResult {
	f.calls++
	return f.res
}

func newTestService(t *testing.T, store SubmissionStore, drafts DraftStore, scorer RiskScorer) *ScreeningService {
	t.Helper()
	eng, err := questionnaire.NewEngine(questionnaire.DefaultFlow(), questionnaire.DefaultRegistry(), questionnaire.PolicyStrict, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return NewScreeningService(questionnaire.NewProvider(eng), store, drafts, scorer, nil)
}

// completeAnswers satisfies every required question reachable with these
// choices: blood pressure unknown, no family history, never smoked, no
// symptoms.
func completeAnswers() questionnaire.Answers {
	return questionnaire.Answers{
		questionnaire.QAge:              questionnaire.Number(50),
		questionnaire.QHeight:           questionnaire.Number(170),
		questionnaire.QWeight:           questionnaire.Number(78),
		questionnaire.QBPKnown:          questionnaire.Text("no"),
		questionnaire.QFamilyHistory:    questionnaire.Text("no"),
		questionnaire.QPhysicalActivity: questionnaire.Text("regular"),
		questionnaire.QDietQuality:      questionnaire.Number(6),
		questionnaire.QLocation:         questionnaire.Text("urban"),
		questionnaire.QSmoking:          questionnaire.Text("never"),
		questionnaire.QSymptoms:         questionnaire.StringList("none"),
	}
}

func moderateResult() *RiskResult {
	return &RiskResult{
		Category: model.RiskModerate,
		Level:    2,
		Source:   model.RiskSourceFallback,
	}
}

func TestSubmit_StoresScoredSubmission(t *testing.T) {
	store := newFakeStore()
	drafts := newFakeDrafts()
	scorer := &fakeScorer{res: moderateResult()}
	svc := newTestService(t, store, drafts, scorer)

	res, err := svc.Submit(context.Background(), 7, &SubmitRequest{
		SessionID: "sess-1",
		Answers:   completeAnswers(),
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Duplicate {
		t.Error("Duplicate = true, want false")
	}
	sub := res.Submission
	if sub.UserID != 7 || sub.SessionID != "sess-1" {
		t.Errorf("stored user/session = %d/%q, want 7/sess-1", sub.UserID, sub.SessionID)
	}
	if sub.FlowName != "diabetes_screening" {
		t.Errorf("FlowName = %q, want diabetes_screening", sub.FlowName)
	}
	if sub.RiskCategory != model.RiskModerate || sub.RiskLevel != 2 {
		t.Errorf("risk = %q/%d, want moderate/2", sub.RiskCategory, sub.RiskLevel)
	}
	if sub.CompletedAt.IsZero() {
		t.Error("CompletedAt is zero")
	}
	if scorer.calls != 1 {
		t.Errorf("scorer calls = %d, want 1", scorer.calls)
	}
	if drafts.deletes != 1 {
		t.Errorf("draft deletes = %d, want 1", drafts.deletes)
	}
}

func TestSubmit_ExactlyOncePerSession(t *testing.T) {
	store := newFakeStore()
	scorer := &fakeScorer{res: moderateResult()}
	svc := newTestService(t, store, newFakeDrafts(), scorer)

	first, err := svc.Submit(context.Background(), 7, &SubmitRequest{SessionID: "sess-1", Answers: completeAnswers()})
	if err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	second, err := svc.Submit(context.Background(), 7, &SubmitRequest{SessionID: "sess-1", Answers: completeAnswers()})
	if err != nil {
		t.Fatalf("second Submit: %v", err)
	}

	if !second.Duplicate {
		t.Error("second submit Duplicate = false, want true")
	}
	if second.Submission != first.Submission {
		t.Error("second submit did not return the stored submission")
	}
	if store.creates != 1 {
		t.Errorf("store creates = %d, want 1", store.creates)
	}
	if scorer.calls != 1 {
		t.Errorf("scorer calls = %d, want 1", scorer.calls)
	}
}

func TestSubmit_CreateRaceReturnsWinner(t *testing.T) {
	store := newFakeStore()
	winner := &model.ScreeningSubmission{SessionID: "sess-1", UserID: 9, RiskCategory: model.RiskLow}
	store.createErr = errors.New("Error 1062: Duplicate entry")
	store.winner = winner
	svc := newTestService(t, store, newFakeDrafts(), &fakeScorer{res: moderateResult()})

	res, err := svc.Submit(context.Background(), 7, &SubmitRequest{SessionID: "sess-1", Answers: completeAnswers()})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !res.Duplicate {
		t.Error("Duplicate = false, want true")
	}
	if res.Submission != winner {
		t.Error("did not return the row that won the insert race")
	}
}

func TestSubmit_IncompleteRejected(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store, newFakeDrafts(), &fakeScorer{res: moderateResult()})

	ans := completeAnswers()
	delete(ans, questionnaire.QSymptoms)

	_, err := svc.Submit(context.Background(), 7, &SubmitRequest{SessionID: "sess-1", Answers: ans})
	if !errors.Is(err, util.ErrScreeningIncomplete) {
		t.Fatalf("err = %v, want ErrScreeningIncomplete", err)
	}
	if store.creates != 0 {
		t.Errorf("store creates = %d, want 0", store.creates)
	}
}

func TestSubmit_GatedRequiredNotDemanded(t *testing.T) {
	// Systolic BP is required but gated behind answering "yes" to knowing
	// it; with "no" the submission must pass without a reading.
	svc := newTestService(t, newFakeStore(), newFakeDrafts(), &fakeScorer{res: moderateResult()})

	_, err := svc.Submit(context.Background(), 7, &SubmitRequest{SessionID: "sess-1", Answers: completeAnswers()})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
}

func TestSubmit_InvalidAnswerRejected(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store, newFakeDrafts(), &fakeScorer{res: moderateResult()})

	ans := completeAnswers()
	ans[questionnaire.QAge] = questionnaire.Text("forty")

	_, err := svc.Submit(context.Background(), 7, &SubmitRequest{SessionID: "sess-1", Answers: ans})
	var answerErr *AnswerError
	if !errors.As(err, &answerErr) {
		t.Fatalf("err = %v, want *AnswerError", err)
	}
	if answerErr.QuestionID != questionnaire.QAge {
		t.Errorf("QuestionID = %q, want %q", answerErr.QuestionID, questionnaire.QAge)
	}
	if store.creates != 0 {
		t.Errorf("store creates = %d, want 0", store.creates)
	}
}

func TestStart_ReturnsFirstQuestion(t *testing.T) {
	svc := newTestService(t, newFakeStore(), newFakeDrafts(), &fakeScorer{res: moderateResult()})

	step, err := svc.Start(nil)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if step.Completed {
		t.Fatal("Completed = true at start")
	}
	if step.Question.ID != questionnaire.QAge {
		t.Errorf("first question = %q, want %q", step.Question.ID, questionnaire.QAge)
	}
}

func TestAdvance_SkipRouting(t *testing.T) {
	svc := newTestService(t, newFakeStore(), newFakeDrafts(), &fakeScorer{res: moderateResult()})

	ans := questionnaire.Answers{questionnaire.QBPKnown: questionnaire.Text("no")}
	step, err := svc.Advance(&AdvanceRequest{
		CurrentQuestionID: questionnaire.QBPKnown,
		OptionID:          "no",
		Answers:           ans,
	})
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if step.Question == nil || step.Question.ID != questionnaire.QFamilyHistory {
		t.Errorf("next = %v, want %q", step.Question, questionnaire.QFamilyHistory)
	}
	if step.Progress <= 0 {
		t.Errorf("Progress = %v, want > 0", step.Progress)
	}
}

func TestAdvance_UnknownOptionRejected(t *testing.T) {
	svc := newTestService(t, newFakeStore(), newFakeDrafts(), &fakeScorer{res: moderateResult()})

	_, err := svc.Advance(&AdvanceRequest{
		CurrentQuestionID: questionnaire.QBPKnown,
		OptionID:          "maybe",
	})
	if !errors.Is(err, util.ErrOptionNotFound) {
		t.Fatalf("err = %v, want ErrOptionNotFound", err)
	}
}

func TestAdvance_StaleQuestionCompletes(t *testing.T) {
	svc := newTestService(t, newFakeStore(), newFakeDrafts(), &fakeScorer{res: moderateResult()})

	step, err := svc.Advance(&AdvanceRequest{CurrentQuestionID: "q_removed_by_edit"})
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if !step.Completed || step.Question != nil {
		t.Errorf("step = %+v, want completed with no question", step)
	}
}

func TestValidateAnswer(t *testing.T) {
	svc := newTestService(t, newFakeStore(), newFakeDrafts(), &fakeScorer{res: moderateResult()})

	verr, err := svc.ValidateAnswer(questionnaire.QAge, questionnaire.Number(12))
	if err != nil {
		t.Fatalf("ValidateAnswer: %v", err)
	}
	if verr == nil || verr.Kind != questionnaire.ValidationCustom {
		t.Errorf("verr = %+v, want custom adult-age failure", verr)
	}

	if _, err := svc.ValidateAnswer("q_unknown", questionnaire.Number(1)); !errors.Is(err, util.ErrQuestionNotFound) {
		t.Errorf("err = %v, want ErrQuestionNotFound", err)
	}
}

func TestDraftLifecycle(t *testing.T) {
	drafts := newFakeDrafts()
	svc := newTestService(t, newFakeStore(), drafts, &fakeScorer{res: moderateResult()})
	ctx := context.Background()

	draft := &repository.ScreeningDraft{
		SessionID:         "sess-1",
		CurrentQuestionID: questionnaire.QWeight,
		Answers: questionnaire.Answers{
			questionnaire.QAge:    questionnaire.Number(50),
			questionnaire.QHeight: questionnaire.Number(170),
		},
	}
	if err := svc.SaveDraft(ctx, 7, draft); err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}
	if draft.FlowName != "diabetes_screening" {
		t.Errorf("FlowName = %q, want diabetes_screening", draft.FlowName)
	}

	got, err := svc.ResumeDraft(ctx, 7)
	if err != nil {
		t.Fatalf("ResumeDraft: %v", err)
	}
	if got.CurrentQuestionID != questionnaire.QWeight {
		t.Errorf("CurrentQuestionID = %q, want %q", got.CurrentQuestionID, questionnaire.QWeight)
	}

	if err := svc.DiscardDraft(ctx, 7); err != nil {
		t.Fatalf("DiscardDraft: %v", err)
	}
	if _, err := svc.ResumeDraft(ctx, 7); !errors.Is(err, util.ErrDraftNotFound) {
		t.Errorf("err = %v, want ErrDraftNotFound", err)
	}
}
