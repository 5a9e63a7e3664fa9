package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/tnqbao/gau-register-service/entity"
	"github.com/tnqbao/gau-register-service/exception"
	"gorm.io/gorm"
)

type SchemaRepository struct {
	db *gorm.DB
}

func NewSchemaRepository(db *gorm.DB) *SchemaRepository {
	return &SchemaRepository{db: db}
}

func (r *SchemaRepository) Create(ctx context.Context, schema *entity.Schema) error {
	if schema.UUID == "" {
		schema.UUID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(schema).Error
}

func (r *SchemaRepository) Update(ctx context.Context, schema *entity.Schema) error {
	return r.db.WithContext(ctx).Save(schema).Error
}

func (r *SchemaRepository) Delete(ctx context.Context, schema *entity.Schema) error {
	return r.db.WithContext(ctx).Delete(schema).Error
}

// Find resolves a schema by numeric id or uuid.
func (r *SchemaRepository) Find(ctx context.Context, identifier string) (*entity.Schema, error) {
	id, uuidStr, err := ParseIdentifier(identifier)
	if err != nil {
		return nil, err
	}
	var schema entity.Schema
	tx := r.db.WithContext(ctx)
	if id > 0 {
		err = tx.Where("id = ?", id).First(&schema).Error
	} else {
		err = tx.Where("uuid = ?", uuidStr).First(&schema).Error
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, exception.ErrNotFound
		}
		return nil, err
	}
	return &schema, nil
}

func (r *SchemaRepository) FindAll(ctx context.Context, limit, offset int) ([]entity.Schema, int64, error) {
	var schemas []entity.Schema
	var total int64
	tx := r.db.WithContext(ctx).Model(&entity.Schema{})
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	if err := tx.Offset(offset).Order("id ASC").Find(&schemas).Error; err != nil {
		return nil, 0, err
	}
	return schemas, total, nil
}
