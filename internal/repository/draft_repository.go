package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"glucogard_backend/internal/questionnaire"
	"glucogard_backend/internal/util"
	"time"

	"github.com/go-redis/redis/v8"
)

// draftTTL bounds how long an abandoned screening can be resumed.
const draftTTL = 7 * 24 * time.Hour

// ScreeningDraft is the caller-owned session state parked in Redis so the
// mobile client can resume after closing the app. The engine never sees it.
type ScreeningDraft struct {
	SessionID         string                `json:"sessionId"`
	FlowName          string                `json:"flowName"`
	CurrentQuestionID string                `json:"currentQuestionId"`
	Answers           questionnaire.Answers `json:"answers"`
	UpdatedAt         time.Time             `json:"updatedAt"`
}

type DraftRepository struct {
	RDB *redis.Client
}

func NewDraftRepository(rdb *redis.Client) *DraftRepository {
	return &DraftRepository{RDB: rdb}
}

func draftKey(userID uint) string {
	return fmt.Sprintf("screening:draft:%d", userID)
}

func (r *DraftRepository) Save(ctx context.Context, userID uint, draft *ScreeningDraft) error {
	draft.UpdatedAt = time.Now()
	data, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	return r.RDB.Set(ctx, draftKey(userID), data, draftTTL).Err()
}

func (r *DraftRepository) Find(ctx context.Context, userID uint) (*ScreeningDraft, error) {
	data, err := r.RDB.Get(ctx, draftKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, util.ErrDraftNotFound
	}
	if err != nil {
		return nil, err
	}
	var draft ScreeningDraft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

func (r *DraftRepository) Delete(ctx context.Context, userID uint) error {
	return r.RDB.Del(ctx, draftKey(userID)).Err()
}
