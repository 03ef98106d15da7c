package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"glucogard_backend/internal/config"
	"glucogard_backend/internal/model"
	"glucogard_backend/internal/repository"
	"glucogard_backend/internal/util"
	"glucogard_backend/pkg/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// ResearchService exports anonymized screening batches to object storage for
// the public-health research pipeline. User identity never leaves the
// database: rows carry a salted hash of the user id instead.
type ResearchService struct {
	ScreeningRepo *repository.ScreeningRepository
	Cfg           *config.StorageConfig
	Client        *minio.Client
	salt          string
}

// ExportRecord is one anonymized row of an export object.
type ExportRecord struct {
	SubjectHash   string          `json:"subjectHash"`
	FlowName      string          `json:"flowName"`
	Answers       json.RawMessage `json:"answers"`
	RiskCategory  string          `json:"riskCategory"`
	RiskLevel     int             `json:"riskLevel"`
	RiskSource    string          `json:"riskSource"`
	CompletedAt   time.Time       `json:"completedAt"`
	Probabilities json.RawMessage `json:"probabilities,omitempty"`
}

// ExportSummary describes a finished export.
type ExportSummary struct {
	Object  string    `json:"object"`
	Records int       `json:"records"`
	From    time.Time `json:"from"`
	To      time.Time `json:"to"`
}

// NewResearchService connects to MinIO. A missing endpoint disables exports
// rather than failing startup; deployments without the research pipeline run
// fine without it.
func NewResearchService(screeningRepo *repository.ScreeningRepository, cfg *config.StorageConfig, salt string) *ResearchService {
	s := &ResearchService{ScreeningRepo: screeningRepo, Cfg: cfg, salt: salt}

	if cfg.MinioEndpoint == "" {
		logger.Log.Info("research export disabled: no object storage configured")
		return s
	}

	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		logger.Log.Error("failed to connect to object storage, research export disabled",
			zap.String("endpoint", cfg.MinioEndpoint), zap.Error(err))
		return s
	}
	s.Client = client
	return s
}

// Export uploads all submissions completed in [from, to) as one JSON object.
func (s *ResearchService) Export(ctx context.Context, from, to time.Time) (*ExportSummary, error) {
	if s.Client == nil {
		return nil, util.ErrExportNotConfigured
	}

	subs, err := s.ScreeningRepo.ListCompletedBetween(from, to)
	if err != nil {
		return nil, err
	}

	records := make([]ExportRecord, 0, len(subs))
	for i := range subs {
		records = append(records, s.anonymize(&subs[i]))
	}

	payload, err := json.Marshal(records)
	if err != nil {
		return nil, err
	}

	object := fmt.Sprintf("screenings/%s_%s.json", from.UTC().Format("20060102"), to.UTC().Format("20060102"))
	_, err = s.Client.PutObject(ctx, s.Cfg.MinioBucket, object, bytes.NewReader(payload), int64(len(payload)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("research export uploaded",
		zap.String("object", object), zap.Int("records", len(records)))

	return &ExportSummary{Object: object, Records: len(records), From: from, To: to}, nil
}

func (s *ResearchService) anonymize(sub *model.ScreeningSubmission) ExportRecord {
	return ExportRecord{
		SubjectHash:   s.SubjectHash(sub.UserID),
		FlowName:      sub.FlowName,
		Answers:       sub.Answers,
		RiskCategory:  sub.RiskCategory,
		RiskLevel:     sub.RiskLevel,
		RiskSource:    sub.RiskSource,
		CompletedAt:   sub.CompletedAt,
		Probabilities: sub.Probabilities,
	}
}

// SubjectHash is stable per user so researchers can follow repeat screenings
// without learning who the subject is.
func (s *ResearchService) SubjectHash(userID uint) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d", s.salt, userID)))
	return hex.EncodeToString(sum[:16])
}
