package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/tnqbao/gau-register-service/entity"
	"github.com/tnqbao/gau-register-service/exception"
	"gorm.io/gorm"
)

type RegisterRepository struct {
	db *gorm.DB
}

func NewRegisterRepository(db *gorm.DB) *RegisterRepository {
	return &RegisterRepository{db: db}
}

func (r *RegisterRepository) Create(ctx context.Context, register *entity.Register) error {
	if register.UUID == "" {
		register.UUID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(register).Error
}

func (r *RegisterRepository) Update(ctx context.Context, register *entity.Register) error {
	return r.db.WithContext(ctx).Save(register).Error
}

func (r *RegisterRepository) Delete(ctx context.Context, register *entity.Register) error {
	// Objects stay addressable by register id after deletion, nothing
	// cascades.
	return r.db.WithContext(ctx).Delete(register).Error
}

// Find resolves a register by numeric id or uuid.
func (r *RegisterRepository) Find(ctx context.Context, identifier string) (*entity.Register, error) {
	id, uuidStr, err := ParseIdentifier(identifier)
	if err != nil {
		return nil, err
	}
	var register entity.Register
	tx := r.db.WithContext(ctx)
	if id > 0 {
		err = tx.Where("id = ?", id).First(&register).Error
	} else {
		err = tx.Where("uuid = ?", uuidStr).First(&register).Error
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, exception.ErrNotFound
		}
		return nil, err
	}
	return &register, nil
}

func (r *RegisterRepository) FindAll(ctx context.Context, limit, offset int) ([]entity.Register, int64, error) {
	var registers []entity.Register
	var total int64
	tx := r.db.WithContext(ctx).Model(&entity.Register{})
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	if err := tx.Offset(offset).Order("id ASC").Find(&registers).Error; err != nil {
		return nil, 0, err
	}
	return registers, total, nil
}
