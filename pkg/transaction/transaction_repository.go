package transaction

import (
	"context"
	"errors"
	"foodia-handoff/domain"
	"foodia-handoff/entities"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	TransactionRepository interface {
		GetTransactionByID(ctx context.Context, id string) (*entities.Transaction, error)
		GetTransactionByShareDigest(ctx context.Context, digest string) (*entities.Transaction, error)
		ListTransactionsByStatus(ctx context.Context, status domain.TransactionStatus) ([]*entities.Transaction, error)
		// UpdateTransactionFields writes only the given columns. With a non-empty
		// statuses list the write applies only while the row is in one of them,
		// and the returned bool reports whether it did.
		UpdateTransactionFields(ctx context.Context, id string, statuses []domain.TransactionStatus, fields map[string]interface{}) (bool, error)
	}

	transactionRepository struct {
		db *gorm.DB
	}
)

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) GetTransactionByID(ctx context.Context, id string) (*entities.Transaction, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrTransactionNotFound
	}

	var transaction entities.Transaction
	if err := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("Requester").
		Preload("FoodItem").
		Where("id = ?", id).
		First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return &transaction, nil
}

func (r *transactionRepository) GetTransactionByShareDigest(ctx context.Context, digest string) (*entities.Transaction, error) {
	var transaction entities.Transaction
	if err := r.db.WithContext(ctx).
		Preload("Owner").
		Where("share_token_digest = ?", digest).
		First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrShareNotFound
		}
		return nil, err
	}
	return &transaction, nil
}

func (r *transactionRepository) ListTransactionsByStatus(ctx context.Context, status domain.TransactionStatus) ([]*entities.Transaction, error) {
	var transactions []*entities.Transaction
	if err := r.db.WithContext(ctx).
		Where("status = ?", string(status)).
		Order("updated_at asc").
		Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

func (r *transactionRepository) UpdateTransactionFields(ctx context.Context, id string, statuses []domain.TransactionStatus, fields map[string]interface{}) (bool, error) {
	query := r.db.WithContext(ctx).Model(&entities.Transaction{}).Where("id = ?", id)
	if len(statuses) > 0 {
		allowed := make([]string, 0, len(statuses))
		for _, s := range statuses {
			allowed = append(allowed, string(s))
		}
		query = query.Where("status IN ?", allowed)
	}

	result := query.Updates(fields)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
