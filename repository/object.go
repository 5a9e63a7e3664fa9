package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tnqbao/gau-register-service/entity"
	"github.com/tnqbao/gau-register-service/exception"
	"github.com/tnqbao/gau-register-service/query"
	"gorm.io/gorm"
)

// ObjectRepository is the mapper for object entities: CRUD, soft
// delete, locking, relation lookup and translator-backed search. The
// register/schema context constrains every lookup; an object reached
// through the wrong context is treated as absent.
type ObjectRepository struct {
	db           *gorm.DB
	translator   query.Translator
	lockDuration time.Duration
}

func NewObjectRepository(db *gorm.DB, translator query.Translator, lockDuration time.Duration) *ObjectRepository {
	if lockDuration <= 0 {
		lockDuration = time.Hour
	}
	return &ObjectRepository{
		db:           db,
		translator:   translator,
		lockDuration: lockDuration,
	}
}

func (r *ObjectRepository) scoped(ctx context.Context, registerID, schemaID uint64) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&entity.ObjectEntity{}).
		Where("register = ? AND schema = ?", registerID, schemaID)
}

// Find resolves an object inside a register/schema context by numeric
// id or uuid.
func (r *ObjectRepository) Find(ctx context.Context, registerID, schemaID uint64, identifier string, includeDeleted bool) (*entity.ObjectEntity, error) {
	id, uuidStr, err := ParseIdentifier(identifier)
	if err != nil {
		return nil, err
	}
	tx := r.scoped(ctx, registerID, schemaID)
	if !includeDeleted {
		tx = tx.Where("deleted IS NULL")
	}
	var object entity.ObjectEntity
	if id > 0 {
		err = tx.Where("id = ?", id).First(&object).Error
	} else {
		err = tx.Where("uuid = ?", uuidStr).First(&object).Error
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, exception.ErrNotFound
		}
		return nil, err
	}
	return &object, nil
}

// checkIdentifiers rejects malformed entries in the _ids allow-list up
// front. Silently matching nothing would hide the client's mistake.
func (r *ObjectRepository) checkIdentifiers(q *query.ObjectQuery) error {
	for _, identifier := range q.IDs {
		if _, _, err := ParseIdentifier(identifier); err != nil {
			return fmt.Errorf("identifier %q: %w", identifier, err)
		}
	}
	return nil
}

func (r *ObjectRepository) applyQuery(tx *gorm.DB, q *query.ObjectQuery, excludeFilter string) *gorm.DB {
	filters := q.Filters
	if excludeFilter != "" {
		filters = query.WithoutFilter(filters, excludeFilter)
	}
	tx = r.translator.ApplyFilters(tx, filters)
	tx = r.translator.ApplySearch(tx, q.Search)
	if !q.IncludeDeleted {
		tx = tx.Where("deleted IS NULL")
	}
	if q.Published {
		now := time.Now()
		tx = tx.Where("published IS NOT NULL AND published <= ?", now).
			Where("depublished IS NULL OR depublished > ?", now)
	}
	if len(q.IDs) > 0 {
		var ids []uint64
		var uuids []string
		for _, identifier := range q.IDs {
			// Already validated by checkIdentifiers.
			id, uuidStr, err := ParseIdentifier(identifier)
			if err != nil {
				continue
			}
			if id > 0 {
				ids = append(ids, id)
			} else {
				uuids = append(uuids, uuidStr)
			}
		}
		tx = tx.Where("id IN ? OR uuid IN ?", ids, uuids)
	}
	if q.Uses != "" {
		tx = tx.Where("relations @> to_jsonb(?::text)", q.Uses)
	}
	return tx
}

// FindAll returns the page of objects matching the query.
func (r *ObjectRepository) FindAll(ctx context.Context, registerID, schemaID uint64, q *query.ObjectQuery) ([]entity.ObjectEntity, error) {
	if err := r.checkIdentifiers(q); err != nil {
		return nil, err
	}
	tx := r.applyQuery(r.scoped(ctx, registerID, schemaID), q, "")
	tx = r.translator.ApplySort(tx, q.Sort)
	// Stable fallback so pages concatenate without duplicates.
	tx = tx.Order("id ASC")
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	if q.Offset > 0 {
		tx = tx.Offset(q.Offset)
	}
	var objects []entity.ObjectEntity
	if err := tx.Find(&objects).Error; err != nil {
		return nil, err
	}
	return objects, nil
}

// CountAll counts objects matching the query without pagination.
func (r *ObjectRepository) CountAll(ctx context.Context, registerID, schemaID uint64, q *query.ObjectQuery) (int64, error) {
	if err := r.checkIdentifiers(q); err != nil {
		return 0, err
	}
	tx := r.applyQuery(r.scoped(ctx, registerID, schemaID), q, "")
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// Facets runs the aggregation engine over the query's facet fields.
// Each field gets a fresh scoped builder with its own filter omitted.
func (r *ObjectRepository) Facets(ctx context.Context, registerID, schemaID uint64, q *query.ObjectQuery) (query.Facets, error) {
	if len(q.Facets) == 0 {
		return query.Facets{}, nil
	}
	if err := r.checkIdentifiers(q); err != nil {
		return nil, err
	}
	base := func(excludeFilter string) *gorm.DB {
		return r.applyQuery(r.scoped(ctx, registerID, schemaID), q, excludeFilter)
	}
	return r.translator.Aggregate(base, q.Facets)
}

func (r *ObjectRepository) Create(ctx context.Context, object *entity.ObjectEntity) error {
	if object.UUID == "" {
		object.UUID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(object).Error
}

func (r *ObjectRepository) Update(ctx context.Context, object *entity.ObjectEntity) error {
	return r.db.WithContext(ctx).Save(object).Error
}

// Delete soft-deletes: the row stays, default queries skip it.
func (r *ObjectRepository) Delete(ctx context.Context, object *entity.ObjectEntity) error {
	now := time.Now()
	object.Deleted = &now
	return r.Update(ctx, object)
}

// Restore clears the soft-delete marker.
func (r *ObjectRepository) Restore(ctx context.Context, object *entity.ObjectEntity) error {
	object.Deleted = nil
	return r.Update(ctx, object)
}

// Destroy removes the row outright. Irreversible; audit entries are
// not cascaded.
func (r *ObjectRepository) Destroy(ctx context.Context, object *entity.ObjectEntity) error {
	return r.db.WithContext(ctx).Delete(object).Error
}

// LockObject acquires or refreshes a lock. Holding again extends the
// expiry; a different holder gets a conflict carrying the owner.
func (r *ObjectRepository) LockObject(ctx context.Context, registerID, schemaID uint64, identifier, holder, process string, duration time.Duration) (*entity.ObjectEntity, error) {
	object, err := r.Find(ctx, registerID, schemaID, identifier, false)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if lock := object.Lock(now); lock != nil && lock.LockedBy != holder {
		return nil, &exception.LockedError{LockedBy: lock.LockedBy, Process: lock.Process, Until: lock.Until}
	}
	if duration <= 0 {
		duration = r.lockDuration
	}
	until := now.Add(duration)
	object.LockedBy = holder
	object.LockedProcess = process
	object.LockedUntil = &until
	if err := r.Update(ctx, object); err != nil {
		return nil, err
	}
	return object, nil
}

// UnlockObject releases a lock. Unlocking an unlocked object succeeds;
// a different holder gets a conflict.
func (r *ObjectRepository) UnlockObject(ctx context.Context, registerID, schemaID uint64, identifier, holder string) (*entity.ObjectEntity, error) {
	object, err := r.Find(ctx, registerID, schemaID, identifier, false)
	if err != nil {
		return nil, err
	}
	lock := object.Lock(time.Now())
	if lock == nil {
		return object, nil
	}
	if lock.LockedBy != holder {
		return nil, &exception.LockedError{LockedBy: lock.LockedBy, Process: lock.Process, Until: lock.Until}
	}
	object.ClearLock()
	if err := r.Update(ctx, object); err != nil {
		return nil, err
	}
	return object, nil
}

// FindAnywhere resolves an object by id or uuid without a register
// scope. Relation expansion uses it since relations may cross registers.
func (r *ObjectRepository) FindAnywhere(ctx context.Context, identifier string) (*entity.ObjectEntity, error) {
	id, uuidStr, err := ParseIdentifier(identifier)
	if err != nil {
		return nil, err
	}
	tx := r.db.WithContext(ctx).Model(&entity.ObjectEntity{}).Where("deleted IS NULL")
	var object entity.ObjectEntity
	if id > 0 {
		err = tx.Where("id = ?", id).First(&object).Error
	} else {
		err = tx.Where("uuid = ?", uuidStr).First(&object).Error
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, exception.ErrNotFound
		}
		return nil, err
	}
	return &object, nil
}

// FindByRelation returns objects whose stored relations reference the
// given uri/uuid, exactly or as a substring.
func (r *ObjectRepository) FindByRelation(ctx context.Context, uri string, partialMatch bool) ([]entity.ObjectEntity, error) {
	tx := r.db.WithContext(ctx).Model(&entity.ObjectEntity{}).Where("deleted IS NULL")
	if partialMatch {
		tx = tx.Where("CAST(relations AS TEXT) ILIKE ?", "%"+uri+"%")
	} else {
		tx = tx.Where("relations @> to_jsonb(?::text)", uri)
	}
	var objects []entity.ObjectEntity
	if err := tx.Order("id ASC").Find(&objects).Error; err != nil {
		return nil, err
	}
	return objects, nil
}

// Statistics summarizes object counts and payload size for a register
// and optionally one schema. Each aggregate degrades to zero on
// failure instead of failing the whole response.
type Statistics struct {
	Total   int64 `json:"total"`
	Size    int64 `json:"size"`
	Invalid int64 `json:"invalid"`
	Deleted int64 `json:"deleted"`
}

func (r *ObjectRepository) GetStatistics(ctx context.Context, registerID, schemaID uint64) Statistics {
	var stats Statistics
	base := func() *gorm.DB {
		tx := r.db.WithContext(ctx).Model(&entity.ObjectEntity{})
		if registerID > 0 {
			tx = tx.Where("register = ?", registerID)
		}
		if schemaID > 0 {
			tx = tx.Where("schema = ?", schemaID)
		}
		return tx
	}
	_ = base().Where("deleted IS NULL").Count(&stats.Total).Error
	_ = base().Where("deleted IS NULL").
		Select("COALESCE(SUM(octet_length(object::text)), 0)").
		Scan(&stats.Size).Error
	_ = base().Where("deleted IS NULL AND validation_errors IS NOT NULL").Count(&stats.Invalid).Error
	_ = base().Where("deleted IS NOT NULL").Count(&stats.Deleted).Error
	return stats
}

// RestoreMany clears the soft-delete marker on every listed object.
// Not constrained to a register/schema; callers should scope the id
// list themselves before handing it over.
func (r *ObjectRepository) RestoreMany(ctx context.Context, identifiers []string) (int64, error) {
	ids, uuids := splitIdentifiers(identifiers)
	tx := r.db.WithContext(ctx).Model(&entity.ObjectEntity{}).
		Where("id IN ? OR uuid IN ?", ids, uuids).
		Update("deleted", nil)
	return tx.RowsAffected, tx.Error
}

// DestroyMany permanently removes every listed object. Same scoping
// caveat as RestoreMany, and there is no way back.
func (r *ObjectRepository) DestroyMany(ctx context.Context, identifiers []string) (int64, error) {
	ids, uuids := splitIdentifiers(identifiers)
	tx := r.db.WithContext(ctx).
		Where("id IN ? OR uuid IN ?", ids, uuids).
		Delete(&entity.ObjectEntity{})
	return tx.RowsAffected, tx.Error
}

func splitIdentifiers(identifiers []string) ([]uint64, []string) {
	var ids []uint64
	var uuids []string
	for _, identifier := range identifiers {
		id, uuidStr, err := ParseIdentifier(identifier)
		if err != nil {
			continue
		}
		if id > 0 {
			ids = append(ids, id)
		} else {
			uuids = append(uuids, uuidStr)
		}
	}
	return ids, uuids
}
