package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/growthlab/sitescope/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store persists analysis requests, reports and the notification outbox.
// All writes are single-row updates; concurrent updates to the same row are
// last-write-wins, with no optimistic-concurrency token.
type Store struct {
	db *gorm.DB
}

// Open connects to the SQLite database at path and migrates the schema.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return New(db)
}

// New wraps an existing gorm connection and migrates the schema.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&models.AnalysisRecord{}, &models.OutboxEmail{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &Store{db: db}, nil
}

// DB exposes the underlying connection for callers that share it.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// CreateRequest inserts a new analysis request in the pending state.
func (s *Store) CreateRequest(record *models.AnalysisRecord) error {
	if record.Status == "" {
		record.Status = models.StatusPending
	}
	return s.db.Create(record).Error
}

// GetRequest loads one request row by its ID.
func (s *Store) GetRequest(requestID string) (*models.AnalysisRecord, error) {
	var record models.AnalysisRecord
	if err := s.db.Where("request_id = ?", requestID).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// ListRequests returns request rows, optionally filtered by status, newest
// first.
func (s *Store) ListRequests(status models.Status) ([]models.AnalysisRecord, error) {
	var records []models.AnalysisRecord
	query := s.db.Model(&models.AnalysisRecord{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// UpdateStatus moves a request to a new status after checking the transition
// table. The write is a single-row update and the last writer wins.
func (s *Store) UpdateStatus(requestID string, to models.Status) (*models.AnalysisRecord, error) {
	record, err := s.GetRequest(requestID)
	if err != nil {
		return nil, err
	}

	if !models.CanTransition(record.Status, to) {
		return nil, &models.ErrInvalidTransition{From: record.Status, To: to}
	}

	updates := map[string]interface{}{"status": to}
	if to == models.StatusCompleted {
		now := time.Now().UTC()
		updates["completed_at"] = &now
	}

	if err := s.db.Model(&models.AnalysisRecord{}).
		Where("request_id = ?", requestID).
		Updates(updates).Error; err != nil {
		return nil, err
	}

	record.Status = to
	return record, nil
}

// SaveReport persists the collector output and the assembled report as JSON
// blobs on the request row.
func (s *Store) SaveReport(requestID string, data models.AnalysisData, report *models.CompositeReport) error {
	analysisJSON, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis data: %w", err)
	}

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	return s.db.Model(&models.AnalysisRecord{}).
		Where("request_id = ?", requestID).
		Updates(map[string]interface{}{
			"analysis_data": string(analysisJSON),
			"report_data":   string(reportJSON),
		}).Error
}

// EnqueueEmail writes a durable outbox row for later delivery.
func (s *Store) EnqueueEmail(email *models.OutboxEmail) error {
	if email.Status == "" {
		email.Status = models.OutboxPending
	}
	return s.db.Create(email).Error
}

// PendingEmails returns outbox rows awaiting delivery, oldest first.
func (s *Store) PendingEmails(limit int) ([]models.OutboxEmail, error) {
	var emails []models.OutboxEmail
	err := s.db.Where("status = ?", models.OutboxPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&emails).Error
	return emails, err
}

// MarkEmailSent records a successful delivery.
func (s *Store) MarkEmailSent(id uint, attempts int) error {
	now := time.Now().UTC()
	return s.db.Model(&models.OutboxEmail{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":   models.OutboxSent,
			"attempts": attempts,
			"sent_at":  &now,
		}).Error
}

// MarkEmailFailed records a failed attempt. The row stays pending until the
// attempt cap is reached, after which it is marked failed for good.
func (s *Store) MarkEmailFailed(id uint, attempts, maxAttempts int, lastError string) error {
	status := models.OutboxPending
	if attempts >= maxAttempts {
		status = models.OutboxFailed
	}
	return s.db.Model(&models.OutboxEmail{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"attempts":   attempts,
			"last_error": lastError,
		}).Error
}
