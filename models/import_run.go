package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	ImportStatusRunning = "running"
	ImportStatusSuccess = "success"
	ImportStatusFailed  = "failed"

	ImportKindGtk     = "gtk"
	ImportKindSekolah = "sekolah"
)

type ImportRun struct {
	ID            uint           `json:"run_id" gorm:"primaryKey;autoIncrement"`
	Kind          string         `json:"kind" gorm:"type:enum('gtk','sekolah');not null"`
	TriggerSource string         `json:"trigger_source" gorm:"type:varchar(64);not null"`
	FileName      string         `json:"file_name" gorm:"column:file_name;type:varchar(255);not null"`
	StoredObject  *string        `json:"stored_object,omitempty" gorm:"column:stored_object;type:varchar(512)"`
	ActorUserID   *string        `json:"actor_user_id,omitempty" gorm:"column:actor_user_id;type:char(36)"`
	Status        string         `json:"status" gorm:"type:enum('running','success','failed');not null;default:'running'"`
	Outcome       *string        `json:"outcome,omitempty" gorm:"column:outcome;type:varchar(32)"`
	Organization  *string        `json:"organization,omitempty" gorm:"column:organization;type:varchar(255)"`
	ErrorMessage  *string        `json:"error_message,omitempty" gorm:"type:text"`
	StartedAt     time.Time      `json:"started_at" gorm:"column:started_at;autoCreateTime"`
	FinishedAt    *time.Time     `json:"finished_at,omitempty" gorm:"column:finished_at"`
	Duration      *float64       `json:"duration_seconds,omitempty" gorm:"column:duration_seconds"`
	TotalCount    uint           `json:"total_count" gorm:"column:total_count;not null;default:0"`
	ImportedCount uint           `json:"imported_count" gorm:"column:imported_count;not null;default:0"`
	SkippedCount  uint           `json:"skipped_count" gorm:"column:skipped_count;not null;default:0"`
	ErroredCount  uint           `json:"errored_count" gorm:"column:errored_count;not null;default:0"`
	CreatedAt     time.Time      `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time      `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"column:deleted_at;index"`
}

func (ImportRun) TableName() string { return "import_runs" }
