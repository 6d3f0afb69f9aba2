// Package transactiontest provides an in-memory TransactionRepository for tests.
package transactiontest

import (
	"context"
	"fmt"
	"foodia-handoff/domain"
	"foodia-handoff/entities"
	"sync"
	"time"

	"github.com/google/uuid"
)

type MemoryRepository struct {
	mu   sync.Mutex
	rows map[string]*entities.Transaction

	// Err, when set, is returned by every call.
	Err error
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{rows: make(map[string]*entities.Transaction)}
}

// Add stores a transaction in status with fresh parties and food item.
func (m *MemoryRepository) Add(status domain.TransactionStatus) *entities.Transaction {
	owner := &entities.User{ID: uuid.New(), Name: "Owner", Email: "owner@foodia.test"}
	requester := &entities.User{ID: uuid.New(), Name: "Requester", Email: "requester@foodia.test"}
	food := &entities.FoodItem{ID: uuid.New(), UserID: owner.ID, Name: "Nasi Kuning"}
	tx := &entities.Transaction{
		ID:               uuid.New(),
		RequesterID:      requester.ID,
		OwnerID:          owner.ID,
		FoodItemID:       food.ID,
		Status:           string(status),
		PickupOrDelivery: domain.ModePickup,
		Requester:        requester,
		Owner:            owner,
		FoodItem:         food,
	}
	m.mu.Lock()
	m.rows[tx.ID.String()] = tx
	m.mu.Unlock()
	return m.Get(tx.ID.String())
}

// Get returns a copy of the stored row, or nil.
func (m *MemoryRepository) Get(id string) *entities.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil
	}
	cp := *row
	return &cp
}

func (m *MemoryRepository) SetStatus(id string, status domain.TransactionStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[id].Status = string(status)
}

func (m *MemoryRepository) GetTransactionByID(ctx context.Context, id string) (*entities.Transaction, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if tx := m.Get(id); tx != nil {
		return tx, nil
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MemoryRepository) GetTransactionByShareDigest(ctx context.Context, digest string) (*entities.Transaction, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.ShareTokenDigest != nil && *row.ShareTokenDigest == digest {
			cp := *row
			return &cp, nil
		}
	}
	return nil, domain.ErrShareNotFound
}

func (m *MemoryRepository) ListTransactionsByStatus(ctx context.Context, status domain.TransactionStatus) ([]*entities.Transaction, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entities.Transaction
	for _, row := range m.rows {
		if row.Status == string(status) {
			cp := *row
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MemoryRepository) UpdateTransactionFields(ctx context.Context, id string, statuses []domain.TransactionStatus, fields map[string]interface{}) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return false, nil
	}
	if len(statuses) > 0 {
		allowed := false
		for _, s := range statuses {
			if row.Status == string(s) {
				allowed = true
			}
		}
		if !allowed {
			return false, nil
		}
	}

	updated := *row
	for column, value := range fields {
		if err := apply(&updated, column, value); err != nil {
			return false, err
		}
	}
	updated.UpdatedAt = time.Now()
	m.rows[id] = &updated
	return true, nil
}

func apply(row *entities.Transaction, column string, value interface{}) error {
	switch column {
	case "status":
		row.Status = value.(string)
	case "handoff_point":
		row.HandoffPoint = value.(string)
	case "requester_location":
		row.RequesterLocation = value.(string)
	case "owner_location":
		row.OwnerLocation = value.(string)
	case "feedback":
		row.Feedback = value.(string)
	case "rating":
		r := value.(int)
		row.Rating = &r
	case "share_enabled":
		row.ShareEnabled = value.(bool)
	case "route_archive_url":
		row.RouteArchiveURL = value.(string)
	case "confirmed_by":
		id := value.(uuid.UUID)
		row.ConfirmedBy = &id
	case "share_token_digest":
		if value == nil {
			row.ShareTokenDigest = nil
		} else {
			d := value.(string)
			row.ShareTokenDigest = &d
		}
	case "accepted_at", "collected_at", "confirmed_at", "share_expires_at":
		var t *time.Time
		if value != nil {
			v := value.(time.Time)
			t = &v
		}
		switch column {
		case "accepted_at":
			row.AcceptedAt = t
		case "collected_at":
			row.CollectedAt = t
		case "confirmed_at":
			row.ConfirmedAt = t
		default:
			row.ShareExpiresAt = t
		}
	default:
		return fmt.Errorf("transactiontest: unknown column %q", column)
	}
	return nil
}
