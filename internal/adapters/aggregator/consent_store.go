package aggregator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/exitdebt/exitdebt_backend/internal/apperrors"
	"github.com/exitdebt/exitdebt_backend/internal/core/domain"
	"github.com/exitdebt/exitdebt_backend/internal/core/ports/providers"
	"github.com/redis/go-redis/v9"
)

// MemoryConsentStore keeps consents for the life of the process.
type MemoryConsentStore struct {
	mu       sync.RWMutex
	consents map[string]domain.AggregatorConsent
}

// NewMemoryConsentStore creates an empty store.
func NewMemoryConsentStore() *MemoryConsentStore {
	return &MemoryConsentStore{consents: make(map[string]domain.AggregatorConsent)}
}

var _ providers.ConsentStore = (*MemoryConsentStore)(nil)

func (s *MemoryConsentStore) PutConsent(_ context.Context, consent domain.AggregatorConsent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consents[consent.ID] = consent
	return nil
}

func (s *MemoryConsentStore) GetConsent(_ context.Context, consentID string) (*domain.AggregatorConsent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	consent, ok := s.consents[consentID]
	if !ok {
		return nil, fmt.Errorf("%w: consent %s", apperrors.ErrNotFound, consentID)
	}
	return &consent, nil
}

// DefaultConsentTTL bounds how long a consent is kept in redis.
const DefaultConsentTTL = 24 * time.Hour

// RedisConsentStore keeps consents as JSON values so every instance sees them.
type RedisConsentStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisConsentStore creates a store under prefix. A non-positive ttl uses DefaultConsentTTL.
func NewRedisConsentStore(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisConsentStore {
	if prefix == "" {
		prefix = "exitdebt:aa_consent"
	}
	if ttl <= 0 {
		ttl = DefaultConsentTTL
	}
	return &RedisConsentStore{client: client, prefix: prefix, ttl: ttl}
}

var _ providers.ConsentStore = (*RedisConsentStore)(nil)

func (s *RedisConsentStore) key(consentID string) string {
	return s.prefix + ":" + consentID
}

func (s *RedisConsentStore) PutConsent(ctx context.Context, consent domain.AggregatorConsent) error {
	payload, err := json.Marshal(consent)
	if err != nil {
		return fmt.Errorf("failed to encode consent %s: %w", consent.ID, err)
	}
	if err := s.client.Set(ctx, s.key(consent.ID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store consent %s: %w", consent.ID, err)
	}
	return nil
}

func (s *RedisConsentStore) GetConsent(ctx context.Context, consentID string) (*domain.AggregatorConsent, error) {
	val, err := s.client.Get(ctx, s.key(consentID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: consent %s", apperrors.ErrNotFound, consentID)
		}
		return nil, fmt.Errorf("failed to load consent %s: %w", consentID, err)
	}
	var consent domain.AggregatorConsent
	if err := json.Unmarshal(val, &consent); err != nil {
		return nil, fmt.Errorf("failed to decode consent %s: %w", consentID, err)
	}
	return &consent, nil
}
