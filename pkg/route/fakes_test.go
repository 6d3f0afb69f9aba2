package route

import (
	"context"
	"foodia-handoff/domain"
	"foodia-handoff/entities"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// memoryStore stands in for both the transaction and route tables and applies
// the same append rules as the gorm repository.
type memoryStore struct {
	mu           sync.Mutex
	transactions map[string]*entities.Transaction
	points       map[string][]*entities.RoutePoint
	archiveURLs  map[string]string
	appendErr    error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		transactions: make(map[string]*entities.Transaction),
		points:       make(map[string][]*entities.RoutePoint),
		archiveURLs:  make(map[string]string),
	}
}

func (m *memoryStore) addTransaction(status domain.TransactionStatus) (*entities.Transaction, string, string) {
	tx := &entities.Transaction{
		ID:          uuid.New(),
		OwnerID:     uuid.New(),
		RequesterID: uuid.New(),
		Status:      string(status),
	}
	m.mu.Lock()
	m.transactions[tx.ID.String()] = tx
	m.mu.Unlock()
	return tx, tx.OwnerID.String(), tx.RequesterID.String()
}

func (m *memoryStore) setStatus(id string, status domain.TransactionStatus) {
	m.mu.Lock()
	m.transactions[id].Status = string(status)
	m.mu.Unlock()
}

func (m *memoryStore) GetTransactionByID(ctx context.Context, id string) (*entities.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, ok := m.transactions[id]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	cp := *tx
	cp.RouteArchiveURL = m.archiveURLs[id]
	return &cp, nil
}

func (m *memoryStore) AppendRoutePoint(ctx context.Context, transactionID string, p domain.RoutePoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return m.appendErr
	}
	tx, ok := m.transactions[transactionID]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	if tx.Status != string(domain.StatusAccepted) {
		return domain.ErrRouteFrozen
	}
	rows := m.points[transactionID]
	if len(rows) > 0 && p.Timestamp <= rows[len(rows)-1].RecordedAt {
		return domain.ErrStaleRoutePoint
	}
	m.points[transactionID] = append(rows, &entities.RoutePoint{
		TransactionID: tx.ID,
		Seq:           len(rows),
		Lat:           p.Lat,
		Lng:           p.Lng,
		RecordedAt:    p.Timestamp,
	})
	return nil
}

func (m *memoryStore) GetRoutePoints(ctx context.Context, transactionID string) ([]*entities.RoutePoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := append([]*entities.RoutePoint(nil), m.points[transactionID]...)
	sort.Slice(rows, func(i, j int) bool { return rows[i].RecordedAt < rows[j].RecordedAt })
	return rows, nil
}

func (m *memoryStore) GetLastRoutePoint(ctx context.Context, transactionID string) (*entities.RoutePoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.points[transactionID]
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[len(rows)-1], nil
}

func (m *memoryStore) SetArchiveURL(ctx context.Context, transactionID string, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.archiveURLs[transactionID] = url
	return nil
}

func (m *memoryStore) count(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.points[id])
}

type memoryS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	err     error
}

func (s *memoryS3) PutObject(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	if s.objects == nil {
		s.objects = make(map[string][]byte)
	}
	s.objects[key] = body
	return key, nil
}

func (s *memoryS3) DeleteFile(ctx context.Context, objectKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.deleted = append(s.deleted, objectKey)
	delete(s.objects, objectKey)
	return nil
}

func (s *memoryS3) GetPublicLinkKey(objectKey string) string {
	return "https://bucket.example/" + objectKey
}

func (s *memoryS3) GetObjectKeyFromLink(link string) string {
	if !strings.HasPrefix(link, "https://bucket.example/") {
		return ""
	}
	return strings.TrimPrefix(link, "https://bucket.example/")
}
