package repository

import (
	"context"
	"time"

	"books-storefront/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TransactionRepository interface {
	Create(ctx context.Context, txn *model.PaymentTransaction) error
	FindByTrackingID(ctx context.Context, orderTrackingID string) (*model.PaymentTransaction, error)
	MarkFollowed(ctx context.Context, orderTrackingID string) error
	ListByEmail(ctx context.Context, email string) ([]*model.PaymentTransaction, error)
}

type transactionRepoImpl struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepoImpl{
		db: db,
	}
}

// Create records an initiated payment. A tracking id seen twice keeps the first record.
func (r *transactionRepoImpl) Create(ctx context.Context, txn *model.PaymentTransaction) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(txn).Error
}

func (r *transactionRepoImpl) FindByTrackingID(ctx context.Context, orderTrackingID string) (*model.PaymentTransaction, error) {
	var txn model.PaymentTransaction
	err := r.db.WithContext(ctx).
		Where("order_tracking_id = ?", orderTrackingID).
		First(&txn).Error

	if err != nil {
		return nil, err
	}

	return &txn, nil
}

func (r *transactionRepoImpl) MarkFollowed(ctx context.Context, orderTrackingID string) error {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&model.PaymentTransaction{}).
		Where("order_tracking_id = ?", orderTrackingID).
		Updates(map[string]interface{}{
			"followed_at": &now,
			"updated_at":  now,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *transactionRepoImpl) ListByEmail(ctx context.Context, email string) ([]*model.PaymentTransaction, error) {
	var txns []*model.PaymentTransaction
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		Order("created_at desc").
		Find(&txns).Error

	if err != nil {
		return nil, err
	}

	return txns, nil
}
