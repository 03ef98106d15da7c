package repository

import (
	"glucogard_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type ScreeningRepository struct {
	DB *gorm.DB
}

func NewScreeningRepository(db *gorm.DB) *ScreeningRepository {
	return &ScreeningRepository{DB: db}
}

func (r *ScreeningRepository) Create(sub *model.ScreeningSubmission) error {
	return r.DB.Create(sub).Error
}

func (r *ScreeningRepository) FindByID(id string) (*model.ScreeningSubmission, error) {
	var sub model.ScreeningSubmission
	err := r.DB.Preload("User").Where("id = ?", id).First(&sub).Error
	return &sub, err
}

func (r *ScreeningRepository) FindBySessionID(sessionID string) (*model.ScreeningSubmission, error) {
	var sub model.ScreeningSubmission
	err := r.DB.Where("session_id = ?", sessionID).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *ScreeningRepository) ListByUser(userID uint, page, limit int) ([]model.ScreeningSubmission, int64, error) {
	var subs []model.ScreeningSubmission
	var total int64
	query := r.DB.Model(&model.ScreeningSubmission{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("completed_at desc").Offset(offset).Limit(limit).Find(&subs).Error
	return subs, total, err
}

func (r *ScreeningRepository) LatestByUser(userID uint) (*model.ScreeningSubmission, error) {
	var sub model.ScreeningSubmission
	err := r.DB.Where("user_id = ?", userID).Order("completed_at desc").First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListCompletedBetween feeds the research export. Results are ordered by
// completion time so export objects are stable for a given window.
func (r *ScreeningRepository) ListCompletedBetween(from, to time.Time) ([]model.ScreeningSubmission, error) {
	var subs []model.ScreeningSubmission
	err := r.DB.Where("completed_at >= ? AND completed_at < ?", from, to).
		Order("completed_at asc").Find(&subs).Error
	return subs, err
}

// CountByCategory summarizes submissions for the clinician dashboard.
func (r *ScreeningRepository) CountByCategory() (map[string]int64, error) {
	type row struct {
		RiskCategory string
		N            int64
	}
	var rows []row
	err := r.DB.Model(&model.ScreeningSubmission{}).
		Select("risk_category, count(*) as n").
		Group("risk_category").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.RiskCategory] = r.N
	}
	return out, nil
}
