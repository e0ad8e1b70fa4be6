package revenue

import (
	"time"

	"github.com/google/uuid"
)

// SyncDirection tells whether the log was written by the pushing device or the receiving server
type SyncDirection string

const (
	SyncDirectionPush    SyncDirection = "push"
	SyncDirectionReceive SyncDirection = "receive"
)

// SyncOutcome summarizes a sync run
type SyncOutcome string

const (
	SyncOutcomeSuccess SyncOutcome = "success"
	SyncOutcomePartial SyncOutcome = "partial"
	SyncOutcomeFailed  SyncOutcome = "failed"
)

// SyncLog is the audit record of one sync run
type SyncLog struct {
	ID               uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	PartnerID        uuid.UUID     `gorm:"type:uuid;not null;index" json:"partner_id"`
	DeviceID         string        `gorm:"type:varchar(100);index" json:"device_id"`
	Direction        SyncDirection `gorm:"type:varchar(10);not null" json:"direction"`
	Entity           string        `gorm:"type:varchar(50);not null" json:"entity"`
	Status           SyncOutcome   `gorm:"type:varchar(10);not null;index" json:"status"`
	RecordsTotal     int           `gorm:"not null;default:0" json:"records_total"`
	RecordsSucceeded int           `gorm:"not null;default:0" json:"records_succeeded"`
	RecordsFailed    int           `gorm:"not null;default:0" json:"records_failed"`
	Error            string        `gorm:"type:text" json:"error,omitempty"`
	StartedAt        time.Time     `gorm:"not null;index" json:"started_at"`
	FinishedAt       time.Time     `gorm:"not null" json:"finished_at"`
	DurationMs       int64         `gorm:"not null;default:0" json:"duration_ms"`
}

// TableName returns the table name for GORM
func (SyncLog) TableName() string {
	return "sync_logs"
}

// StartSyncLog opens a log for a run starting now
func StartSyncLog(partnerID uuid.UUID, deviceID string, direction SyncDirection, entity string) *SyncLog {
	return &SyncLog{
		ID:        uuid.New(),
		PartnerID: partnerID,
		DeviceID:  deviceID,
		Direction: direction,
		Entity:    entity,
		StartedAt: time.Now(),
	}
}

// Succeeded counts a record that went through
func (l *SyncLog) Succeeded() {
	l.RecordsTotal++
	l.RecordsSucceeded++
}

// Failed counts a record that did not go through. The first error is kept.
func (l *SyncLog) Failed(err error) {
	l.RecordsTotal++
	l.RecordsFailed++
	if l.Error == "" && err != nil {
		l.Error = err.Error()
	}
}

// Finish stamps the end time and derives the outcome
func (l *SyncLog) Finish() {
	l.FinishedAt = time.Now()
	l.DurationMs = l.FinishedAt.Sub(l.StartedAt).Milliseconds()
	switch {
	case l.RecordsFailed == 0:
		l.Status = SyncOutcomeSuccess
	case l.RecordsSucceeded == 0:
		l.Status = SyncOutcomeFailed
	default:
		l.Status = SyncOutcomePartial
	}
}
