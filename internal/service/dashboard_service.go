package service

import (
	"context"

	"glucogard_backend/internal/model"
	"glucogard_backend/internal/repository"
	"glucogard_backend/internal/util"
	"glucogard_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DashboardService aggregates screening data for the two dashboard views:
// a patient's own risk picture and the clinician-facing population summary.
type DashboardService struct {
	ScreeningRepo *repository.ScreeningRepository
	DraftRepo     *repository.DraftRepository
	RiskCache     *repository.RiskCache
}

func NewDashboardService(screeningRepo *repository.ScreeningRepository, draftRepo *repository.DraftRepository, riskCache *repository.RiskCache) *DashboardService {
	return &DashboardService{ScreeningRepo: screeningRepo, DraftRepo: draftRepo, RiskCache: riskCache}
}

// PatientDashboard is what the mobile home screen renders. LatestRisk comes
// from the Redis cache when warm, backfilled from the latest submission
// otherwise.
type PatientDashboard struct {
	LatestRisk     *repository.CachedRisk     `json:"latestRisk,omitempty"`
	Latest         *model.ScreeningSubmission `json:"latest,omitempty"`
	TotalScreened  int64                      `json:"totalScreened"`
	HasDraft       bool                       `json:"hasDraft"`
	DraftUpdatedAt string                     `json:"draftUpdatedAt,omitempty"`
}

// PopulationOverview summarizes all submissions for clinicians.
type PopulationOverview struct {
	ByCategory map[string]int64 `json:"byCategory"`
	Total      int64            `json:"total"`
}

func (s *DashboardService) PatientDashboard(ctx context.Context, userID uint) (*PatientDashboard, error) {
	dash := &PatientDashboard{}

	latest, err := s.ScreeningRepo.LatestByUser(userID)
	if err == nil {
		dash.Latest = latest
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	if cached, err := s.RiskCache.Find(ctx, userID); err == nil {
		dash.LatestRisk = cached
	} else if dash.Latest != nil {
		dash.LatestRisk = &repository.CachedRisk{
			Category:    dash.Latest.RiskCategory,
			Level:       dash.Latest.RiskLevel,
			Source:      dash.Latest.RiskSource,
			CompletedAt: dash.Latest.CompletedAt,
		}
		if err := s.RiskCache.Save(ctx, userID, dash.LatestRisk); err != nil {
			logger.Log.Debug("risk cache backfill failed", zap.Error(err))
		}
	}

	_, dash.TotalScreened, err = s.listCount(userID)
	if err != nil {
		return nil, err
	}

	if draft, err := s.DraftRepo.Find(ctx, userID); err == nil {
		dash.HasDraft = true
		dash.DraftUpdatedAt = draft.UpdatedAt.Format("2006-01-02T15:04:05Z07:00")
	} else if err != util.ErrDraftNotFound {
		return nil, err
	}

	return dash, nil
}

func (s *DashboardService) listCount(userID uint) ([]model.ScreeningSubmission, int64, error) {
	return s.ScreeningRepo.ListByUser(userID, 1, 1)
}

func (s *DashboardService) PopulationOverview() (*PopulationOverview, error) {
	byCategory, err := s.ScreeningRepo.CountByCategory()
	if err != nil {
		return nil, err
	}
	var total int64
	for _, n := range byCategory {
		total += n
	}
	return &PopulationOverview{ByCategory: byCategory, Total: total}, nil
}
