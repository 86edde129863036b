package service

import (
	"errors"
	"errorwatch/models"
	"errorwatch/state"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a stored error does not exist
var ErrNotFound = errors.New("stored error not found")

// ErrorQuery filters and paginates stored errors
type ErrorQuery struct {
	Page     int
	PageSize int
	Keyword  string // Matched against message, path and stack
	Path     string // Exact source path
}

// ErrorService handles stored error business logic
type ErrorService struct {
	db        *gorm.DB
	hub       *state.Hub
	maxStored int
}

// NewErrorService constructs an error service. maxStored <= 0 disables pruning.
// hub may be nil when no live stream is served.
func NewErrorService(db *gorm.DB, hub *state.Hub, maxStored int) *ErrorService {
	return &ErrorService{db: db, hub: hub, maxStored: maxStored}
}

// Save persists an ingested payload, prunes the oldest rows beyond the
// retention cap and publishes the record to live subscribers. Insert and
// prune commit together: on error nothing is stored and nothing is published.
func (s *ErrorService) Save(p models.ErrorPayload, remoteAddr string) (*models.StoredError, error) {
	p.Normalize()

	row := models.NewStoredError(p, remoteAddr)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(row).Error; err != nil {
			return fmt.Errorf("failed to store error: %w", err)
		}
		return s.prune(tx)
	})
	if err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.Publish(row.Read())
	}
	return row, nil
}

func (s *ErrorService) prune(tx *gorm.DB) error {
	if s.maxStored <= 0 {
		return nil
	}

	var total int64
	if err := tx.Model(&models.StoredError{}).Count(&total).Error; err != nil {
		return fmt.Errorf("failed to count stored errors: %w", err)
	}
	excess := int(total) - s.maxStored
	if excess <= 0 {
		return nil
	}

	oldest := tx.Model(&models.StoredError{}).Select("id").Order("received_at asc").Limit(excess)
	if err := tx.Where("id IN (?)", oldest).Delete(&models.StoredError{}).Error; err != nil {
		return fmt.Errorf("failed to prune stored errors: %w", err)
	}
	return nil
}

// List returns a page of stored errors, newest first, and the filtered total
func (s *ErrorService) List(q ErrorQuery) ([]models.StoredError, int64, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = 20
	}

	filtered := func() *gorm.DB {
		tx := s.db.Model(&models.StoredError{})
		if kw := strings.TrimSpace(q.Keyword); kw != "" {
			like := "%" + kw + "%"
			tx = tx.Where("message LIKE ? OR path LIKE ? OR stack_json LIKE ?", like, like, like)
		}
		if path := strings.TrimSpace(q.Path); path != "" {
			tx = tx.Where("path = ?", path)
		}
		return tx
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count stored errors: %w", err)
	}

	var rows []models.StoredError
	offset := (q.Page - 1) * q.PageSize
	if err := filtered().Order("received_at desc").Offset(offset).Limit(q.PageSize).Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list stored errors: %w", err)
	}
	return rows, total, nil
}

// Get fetches a stored error by id
func (s *ErrorService) Get(id string) (*models.StoredError, error) {
	var row models.StoredError
	if err := s.db.First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get stored error: %w", err)
	}
	return &row, nil
}

// Clear deletes every stored error and returns how many were removed
func (s *ErrorService) Clear() (int64, error) {
	res := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.StoredError{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to clear stored errors: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Count returns the number of stored errors
func (s *ErrorService) Count() (int64, error) {
	var total int64
	if err := s.db.Model(&models.StoredError{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count stored errors: %w", err)
	}
	return total, nil
}
