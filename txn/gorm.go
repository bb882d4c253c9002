package txn

import (
	"context"

	"gorm.io/gorm"
)

// GormManager implements Manager on a *gorm.DB. The scope is the transaction
// handle itself, so repositories can pick it up from the context with DB().
type GormManager struct {
	db *gorm.DB
}

// NewGormManager wraps an open gorm connection.
func NewGormManager(db *gorm.DB) *GormManager {
	return &GormManager{db: db}
}

func (m *GormManager) Begin(ctx context.Context) (Scope, error) {
	tx := m.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, &Error{Op: "begin", Err: tx.Error}
	}
	return tx, nil
}

func (m *GormManager) Commit(scope Scope) error {
	tx, ok := scope.(*gorm.DB)
	if !ok {
		return &Error{Op: "commit", Err: gorm.ErrInvalidTransaction}
	}
	if err := tx.Commit().Error; err != nil {
		return &Error{Op: "commit", Err: err}
	}
	return nil
}

func (m *GormManager) Rollback(scope Scope) error {
	tx, ok := scope.(*gorm.DB)
	if !ok {
		return &Error{Op: "rollback", Err: gorm.ErrInvalidTransaction}
	}
	if err := tx.Rollback().Error; err != nil {
		return &Error{Op: "rollback", Err: err}
	}
	return nil
}

// DB returns the handle repositories should run queries on: the ambient
// transaction when one is open, the base connection otherwise.
//
//	func (r *UserRepository) Find(ctx context.Context, id uint) (*User, error) {
//	    var u User
//	    err := txn.DB(ctx, r.db).First(&u, id).Error
//	    ...
//	}
func DB(ctx context.Context, base *gorm.DB) *gorm.DB {
	if scope, ok := FromContext(ctx); ok {
		if tx, ok := scope.(*gorm.DB); ok {
			return tx
		}
	}
	return base.WithContext(ctx)
}
