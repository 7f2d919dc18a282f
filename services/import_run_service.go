package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sim-talenta-gtk-api/config"
	"sim-talenta-gtk-api/models"

	"gorm.io/gorm"
)

var ErrImportRunNotFound = errors.New("import run not found")

// ImportRunStart describes a run about to begin.
type ImportRunStart struct {
	Kind          string
	TriggerSource string
	FileName      string
	StoredObject  *string
	ActorUserID   *string
}

// ImportRunRecorder persists the bookkeeping row of an import run.
type ImportRunRecorder interface {
	Start(ctx context.Context, start ImportRunStart) (*models.ImportRun, error)
	Finish(ctx context.Context, runID uint, result *ImportRunResult, runErr error, duration time.Duration) error
}

type ImportRunService struct {
	db *gorm.DB
}

func NewImportRunService(db *gorm.DB) *ImportRunService {
	if db == nil {
		db = config.DB
	}
	return &ImportRunService{db: db}
}

func (s *ImportRunService) Start(ctx context.Context, start ImportRunStart) (*models.ImportRun, error) {
	trigger := strings.TrimSpace(start.TriggerSource)
	if trigger == "" {
		trigger = "unknown"
	}
	run := &models.ImportRun{
		Kind:          start.Kind,
		TriggerSource: trigger,
		FileName:      start.FileName,
		StoredObject:  start.StoredObject,
		ActorUserID:   start.ActorUserID,
		Status:        models.ImportStatusRunning,
	}
	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

// Finish marks the run success when the result completed, failed otherwise.
func (s *ImportRunService) Finish(ctx context.Context, runID uint, result *ImportRunResult, runErr error, duration time.Duration) error {
	status := models.ImportStatusSuccess
	if !result.Completed() {
		status = models.ImportStatusFailed
	}
	updates := map[string]interface{}{
		"status":           status,
		"finished_at":      time.Now(),
		"duration_seconds": duration.Seconds(),
	}
	if result != nil {
		updates["outcome"] = result.Outcome
		updates["organization"] = result.Organization
		updates["total_count"] = result.Total
		updates["imported_count"] = result.Imported
		updates["skipped_count"] = result.Skipped
		updates["errored_count"] = result.Errored
	}
	if runErr != nil {
		msg := runErr.Error()
		if len(msg) > 2000 {
			msg = fmt.Sprintf("%s...", msg[:1997])
		}
		updates["error_message"] = msg
	}
	res := s.db.WithContext(ctx).Model(&models.ImportRun{}).Where("id = ?", runID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrImportRunNotFound
	}
	return nil
}

func (s *ImportRunService) GetByID(id uint) (*models.ImportRun, error) {
	var run models.ImportRun
	if err := s.db.Where("id = ?", id).First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrImportRunNotFound
		}
		return nil, err
	}
	return &run, nil
}

// GetRunning returns nil when no run of kind is in progress.
func (s *ImportRunService) GetRunning(kind string) (*models.ImportRun, error) {
	var run models.ImportRun
	err := s.db.Where("status = ? AND kind = ?", models.ImportStatusRunning, kind).
		Order("started_at DESC").
		First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}

// List pages through runs newest first; kind may be empty for all kinds.
func (s *ImportRunService) List(kind string, limit, offset int) ([]models.ImportRun, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	query := s.db.Model(&models.ImportRun{})
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var runs []models.ImportRun
	err := query.Order("started_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, 0, err
	}
	return runs, total, nil
}
