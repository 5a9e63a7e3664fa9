package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/tnqbao/gau-register-service/entity"
	"github.com/tnqbao/gau-register-service/exception"
	"github.com/tnqbao/gau-register-service/query"
	"gorm.io/gorm"
)

// AuditTrailRepository stores the append-only mutation log. Entries are
// immutable once written; only administrative cleanup removes them.
type AuditTrailRepository struct {
	db *gorm.DB
}

func NewAuditTrailRepository(db *gorm.DB) *AuditTrailRepository {
	return &AuditTrailRepository{db: db}
}

func (r *AuditTrailRepository) Create(ctx context.Context, entry *entity.AuditTrail) error {
	if entry.UUID == "" {
		entry.UUID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *AuditTrailRepository) Find(ctx context.Context, id uint64) (*entity.AuditTrail, error) {
	var entry entity.AuditTrail
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, exception.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// FindAllForObject pages through an object's trail, newest first.
func (r *AuditTrailRepository) FindAllForObject(ctx context.Context, objectUUID string, q *query.ObjectQuery) ([]entity.AuditTrail, int64, error) {
	tx := r.db.WithContext(ctx).Model(&entity.AuditTrail{}).Where("object_uuid = ?", objectUUID)
	if q != nil {
		if action, ok := q.Filters["action"].(string); ok {
			tx = tx.Where("action = ?", action)
		}
		if user, ok := q.Filters["user"].(string); ok {
			tx = tx.Where("user_id = ?", user)
		}
		if q.Search != "" {
			tx = tx.Where("CAST(changed AS TEXT) ILIKE ?", "%"+q.Search+"%")
		}
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	tx = tx.Order("created_at DESC, id DESC")
	if q != nil {
		if q.Limit > 0 {
			tx = tx.Limit(q.Limit)
		}
		if q.Offset > 0 {
			tx = tx.Offset(q.Offset)
		}
	}
	var entries []entity.AuditTrail
	if err := tx.Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// TrailForObject returns the full trail newest first, for revert walks.
func (r *AuditTrailRepository) TrailForObject(ctx context.Context, objectUUID string) ([]entity.AuditTrail, error) {
	var entries []entity.AuditTrail
	err := r.db.WithContext(ctx).
		Where("object_uuid = ?", objectUUID).
		Order("created_at DESC, id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// DeleteForObject is the administrative mass-deletion of an object's
// trail. Outside of it the trail is read-only.
func (r *AuditTrailRepository) DeleteForObject(ctx context.Context, objectUUID string) (int64, error) {
	tx := r.db.WithContext(ctx).Where("object_uuid = ?", objectUUID).Delete(&entity.AuditTrail{})
	return tx.RowsAffected, tx.Error
}
