// Package share issues and resolves trip share links. A resolved link only
// ever yields a domain.ShareProjection.
package share

import (
	"context"
	"encoding/hex"
	"errors"
	"foodia-handoff/domain"
	"foodia-handoff/entities"
	"foodia-handoff/pkg/food"
	"foodia-handoff/pkg/lifecycle"
	"foodia-handoff/pkg/tracking"
	"foodia-handoff/pkg/transaction"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/sha3"
)

type (
	Config struct {
		// BaseURL is the public origin share links point at.
		BaseURL string        `validate:"required,url"`
		TTL     time.Duration `validate:"gt=0"`
		// RecheckInterval bounds how long a stream outlives a revoked link.
		RecheckInterval time.Duration `validate:"gt=0"`
	}

	ShareService interface {
		Enable(ctx context.Context, transactionID string, actorID string) (*domain.ShareLink, error)
		Disable(ctx context.Context, transactionID string, actorID string) error
		Resolve(ctx context.Context, token string) (*domain.ShareProjection, error)
		// Stream emits the projection on every live change until ctx ends or the
		// link stops resolving.
		Stream(ctx context.Context, token string, emit func(domain.ShareProjection) error) error
	}

	shareService struct {
		cfg                   Config
		transactionRepository transaction.TransactionRepository
		foodRepository        food.FoodRepository
		monitor               *tracking.Monitor
		now                   func() time.Time
	}
)

var shareableStatuses = []domain.TransactionStatus{domain.StatusAccepted, domain.StatusCollected}

func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:         baseURL,
		TTL:             24 * time.Hour,
		RecheckInterval: 30 * time.Second,
	}
}

func NewShareService(cfg Config, transactionRepository transaction.TransactionRepository, foodRepository food.FoodRepository, monitor *tracking.Monitor) ShareService {
	if cfg.RecheckInterval <= 0 {
		cfg.RecheckInterval = 30 * time.Second
	}
	return &shareService{
		cfg:                   cfg,
		transactionRepository: transactionRepository,
		foodRepository:        foodRepository,
		monitor:               monitor,
		now:                   time.Now,
	}
}

// newToken returns 32 random bytes, hex encoded, drawn from two v4 UUIDs.
func newToken() (string, error) {
	raw := make([]byte, 0, 32)
	for i := 0; i < 2; i++ {
		u, err := uuid.NewRandom()
		if err != nil {
			return "", err
		}
		raw = append(raw, u[:]...)
	}
	return hex.EncodeToString(raw), nil
}

// Digest is the at-rest form of a token.
func Digest(token string) string {
	sum := sha3.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (s *shareService) URL(token string) string {
	return strings.TrimRight(s.cfg.BaseURL, "/") + "/shared-trip/" + token
}

func (s *shareService) requireParty(ctx context.Context, transactionID, actorID string) (*entities.Transaction, error) {
	tx, err := s.transactionRepository.GetTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if actorID == "" || transaction.ToDomain(tx).PartyOf(actorID) == "" {
		return nil, domain.NewFieldError(domain.ErrNotTransactionParty, actorID, domain.FieldShare, "only the requester or owner may share a trip")
	}
	return tx, nil
}

func (s *shareService) Enable(ctx context.Context, transactionID string, actorID string) (*domain.ShareLink, error) {
	tx, err := s.requireParty(ctx, transactionID, actorID)
	if err != nil {
		return nil, err
	}
	if !lifecycle.Shareable(domain.TransactionStatus(tx.Status)) {
		return nil, domain.NewFieldError(domain.ErrInvalidTransition, actorID, domain.FieldShare, "trip is "+tx.Status)
	}

	token, err := newToken()
	if err != nil {
		return nil, domain.Transient("generate share token", err)
	}
	expiresAt := s.now().Add(s.cfg.TTL)
	applied, err := s.transactionRepository.UpdateTransactionFields(ctx, transactionID, shareableStatuses, map[string]interface{}{
		"share_token_digest": Digest(token),
		"share_enabled":      true,
		"share_expires_at":   expiresAt,
	})
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, domain.NewFieldError(domain.ErrInvalidTransition, actorID, domain.FieldShare, "status changed concurrently")
	}

	return &domain.ShareLink{
		Token:     token,
		URL:       s.URL(token),
		ExpiresAt: expiresAt,
	}, nil
}

// Disable revokes the link. A finished trip is never resolvable, so nothing is written then.
func (s *shareService) Disable(ctx context.Context, transactionID string, actorID string) error {
	tx, err := s.requireParty(ctx, transactionID, actorID)
	if err != nil {
		return err
	}
	if lifecycle.Terminal(domain.TransactionStatus(tx.Status)) {
		return nil
	}
	_, err = s.transactionRepository.UpdateTransactionFields(ctx, transactionID, nil, map[string]interface{}{
		"share_enabled":      false,
		"share_token_digest": nil,
		"share_expires_at":   nil,
	})
	return err
}

// lookup returns the transaction behind token, or ErrShareNotFound for every
// token that is unknown, revoked, expired or whose trip is over.
func (s *shareService) lookup(ctx context.Context, token string) (*entities.Transaction, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.ErrShareNotFound
	}
	tx, err := s.transactionRepository.GetTransactionByShareDigest(ctx, Digest(token))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrShareNotFound
		}
		return nil, domain.Transient("resolve share", err)
	}
	if !tx.ShareEnabled {
		return nil, domain.ErrShareNotFound
	}
	if tx.ShareExpiresAt != nil && !s.now().Before(*tx.ShareExpiresAt) {
		return nil, domain.ErrShareNotFound
	}
	if !lifecycle.Shareable(domain.TransactionStatus(tx.Status)) {
		return nil, domain.ErrShareNotFound
	}
	return tx, nil
}

func (s *shareService) project(ctx context.Context, tx *entities.Transaction) *domain.ShareProjection {
	p := &domain.ShareProjection{
		RequesterLocation: domain.DecodeCoordinate(tx.RequesterLocation),
		OwnerLocation:     domain.DecodeCoordinate(tx.OwnerLocation),
		HandoffPoint:      domain.DecodeCoordinate(tx.HandoffPoint),
		ShareEnabled:      tx.ShareEnabled,
		PickupOrDelivery:  tx.PickupOrDelivery,
	}
	if tx.Owner != nil {
		p.OwnerName = tx.Owner.Name
	}
	if s.foodRepository != nil {
		if item, err := s.foodRepository.GetFoodItemByID(ctx, tx.FoodItemID.String()); err == nil {
			p.FoodItemTitle = item.Name
		}
	}
	return p
}

func (s *shareService) Resolve(ctx context.Context, token string) (*domain.ShareProjection, error) {
	tx, err := s.lookup(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.project(ctx, tx), nil
}

func (s *shareService) Stream(ctx context.Context, token string, emit func(domain.ShareProjection) error) error {
	tx, err := s.lookup(ctx, token)
	if err != nil {
		return err
	}
	if err := emit(*s.project(ctx, tx)); err != nil {
		return err
	}
	if s.monitor == nil {
		return nil
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	go func() {
		ticker := time.NewTicker(s.cfg.RecheckInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.lookup(ctx, token); err != nil {
					cancel(err)
					return
				}
			}
		}
	}()

	err = s.monitor.Run(ctx, transaction.ToDomain(tx), "", func(domain.TrackingEvent) error {
		if ctx.Err() != nil {
			return nil
		}
		p, err := s.Resolve(ctx, token)
		if err != nil {
			return err
		}
		return emit(*p)
	})
	if err != nil {
		return err
	}
	if cause := context.Cause(ctx); cause != nil && errors.Is(cause, domain.ErrShareNotFound) {
		return domain.ErrShareNotFound
	}
	return nil
}
