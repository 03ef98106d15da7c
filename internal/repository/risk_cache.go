package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"glucogard_backend/internal/util"

	"github.com/go-redis/redis/v8"
)

const riskCacheTTL = 30 * 24 * time.Hour

// CachedRisk is the latest risk summary per user, kept in Redis so the
// dashboard does not hit MySQL on every app open. MySQL stays the source of
// truth; a miss is backfilled from there.
type CachedRisk struct {
	Category    string    `json:"category"`
	Level       int       `json:"level"`
	Source      string    `json:"source"`
	CompletedAt time.Time `json:"completedAt"`
}

type RiskCache struct {
	RDB *redis.Client
}

func NewRiskCache(rdb *redis.Client) *RiskCache {
	return &RiskCache{RDB: rdb}
}

func riskKey(userID uint) string {
	return fmt.Sprintf("screening:latest_risk:%d", userID)
}

func (c *RiskCache) Save(ctx context.Context, userID uint, entry *CachedRisk) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return c.RDB.Set(ctx, riskKey(userID), data, riskCacheTTL).Err()
}

func (c *RiskCache) Find(ctx context.Context, userID uint) (*CachedRisk, error) {
	data, err := c.RDB.Get(ctx, riskKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, util.ErrSubmissionNotFound
	}
	if err != nil {
		return nil, err
	}
	var entry CachedRisk
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}
