package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const storeKey = "clinicbook:settings:catalog"

// Store persists the service catalog in Redis.
type Store struct {
	redis *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{redis: client}
}

// Get retrieves the configured catalog, falling back to the coded default
// when nothing has been saved yet.
func (s *Store) Get(ctx context.Context) (*Catalog, error) {
	data, err := s.redis.Get(ctx, storeKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: get: %w", err)
	}

	var cat Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("catalog: unmarshal: %w", err)
	}

	return &cat, nil
}

// Set validates and saves the catalog.
func (s *Store) Set(ctx context.Context, cat *Catalog) error {
	if err := cat.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(cat)
	if err != nil {
		return fmt.Errorf("catalog: marshal: %w", err)
	}

	if err := s.redis.Set(ctx, storeKey, data, 0).Err(); err != nil {
		return fmt.Errorf("catalog: set: %w", err)
	}

	return nil
}
