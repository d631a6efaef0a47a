package repository

import (
	"context"

	"etf-advisor/pkg/utils"

	"gorm.io/gorm"
)

// UnitOfWork groups repository writes into one transaction. Run hands fn a
// DBOption bound to the transaction; repositories invoked without it stay on
// the root connection.
type UnitOfWork interface {
	Run(ctx context.Context, fn func(opts ...utils.DBOption) error) error
}

type unitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &unitOfWork{
		db: db,
	}
}

func (u *unitOfWork) Run(ctx context.Context, fn func(opts ...utils.DBOption) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(utils.WithTx(tx))
	})
}
