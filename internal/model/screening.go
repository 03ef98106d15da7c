package model

import (
	"encoding/json"
	"time"
)

// Risk categories and levels as the AI engine reports them. The local
// fallback heuristic produces the same set.
const (
	RiskNonDiabetic = "non-diabetic"
	RiskLow         = "low"
	RiskModerate    = "moderate"
	RiskHigh        = "high"
	RiskCritical    = "critical"
)

// Where a submission's risk result came from.
const (
	RiskSourceRemote   = "remote"
	RiskSourceFallback = "fallback"
)

// ScreeningSubmission is one completed questionnaire session with its risk
// result. SessionID is unique: the submission pipeline runs exactly once per
// session, a repeat submit returns the stored row.
// swagger:model ScreeningSubmission
type ScreeningSubmission struct {
	UUIDBase
	UserID        uint            `gorm:"index;type:bigint unsigned" json:"userId"`
	User          *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	SessionID     string          `gorm:"uniqueIndex;size:36;not null" json:"sessionId"`
	FlowName      string          `gorm:"size:100" json:"flowName"`
	Answers       json.RawMessage `gorm:"type:json" json:"answers"`
	RiskCategory  string          `gorm:"size:20" json:"riskCategory"`
	RiskLevel     int             `json:"riskLevel"` // 0..4
	RiskSource    string          `gorm:"size:10" json:"riskSource"` // remote, fallback
	Probabilities json.RawMessage `gorm:"type:json" json:"probabilities,omitempty"`
	CompletedAt   time.Time       `json:"completedAt"`
}

func (ScreeningSubmission) TableName() string {
	return "screening_submissions"
}
