package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	ErrEmailTaken       = errors.New("email already registered")
	ErrAlreadyExists    = errors.New("already exists")
	ErrUnknownReference = errors.New("unknown reference")
)

type GormRepo struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepo {
	return &GormRepo{DB: db}
}

func (r *GormRepo) Ping(ctx context.Context) error {
	sqlDB, err := r.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// exists reports whether a row of model matches the given condition.
func exists(tx *gorm.DB, model any, query string, args ...any) (bool, error) {
	var n int64
	if err := tx.Model(model).Where(query, args...).Limit(1).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
