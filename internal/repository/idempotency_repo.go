package repository

import (
	"errors"
	"time"

	"brass-inventory/internal/model"

	"gorm.io/gorm"
)

type IdempotencyRepository interface {
	// Reserve returns the stored record for rec.Key, creating rec as pending when absent.
	// created reports whether this call made the reservation.
	Reserve(rec *model.IdempotencyKey) (stored *model.IdempotencyKey, created bool, err error)
	Complete(key string, status int, body []byte) error
	Release(key string) error
}

type idempotencyRepo struct {
	db *gorm.DB
}

func NewIdempotencyRepo(db *gorm.DB) IdempotencyRepository {
	return &idempotencyRepo{db}
}

func (r *idempotencyRepo) Reserve(rec *model.IdempotencyKey) (*model.IdempotencyKey, bool, error) {
	var existing model.IdempotencyKey
	err := r.db.Where("idem_key = ?", rec.Key).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	if err := r.db.Create(rec).Error; err != nil {
		// lost a unique race, read the winner
		if err := r.db.Where("idem_key = ?", rec.Key).First(&existing).Error; err != nil {
			return nil, false, err
		}
		return &existing, false, nil
	}
	return rec, true, nil
}

func (r *idempotencyRepo) Complete(key string, status int, body []byte) error {
	now := time.Now().UTC()
	blob := make([]byte, len(body))
	copy(blob, body)
	return r.db.Model(&model.IdempotencyKey{}).
		Where("idem_key = ?", key).
		Updates(map[string]interface{}{
			"response_status": status,
			"response_body":   blob,
			"completed_at":    &now,
		}).Error
}

// Release drops a pending key so a failed request can be retried with the same key.
func (r *idempotencyRepo) Release(key string) error {
	return r.db.Where("idem_key = ? AND response_status = 0", key).Delete(&model.IdempotencyKey{}).Error
}
