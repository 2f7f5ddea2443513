package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const storeKey = "clinicbook:settings:schedule"

// Store persists the week schedule in Redis. Shift hours are deliberately not
// validated beyond JSON shape: a shift that never matches is treated as such
// by the slot math rather than rejected here.
type Store struct {
	redis *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{redis: client}
}

// Get retrieves the configured week, falling back to the coded default.
func (s *Store) Get(ctx context.Context) (*WeekSchedule, error) {
	data, err := s.redis.Get(ctx, storeKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return DefaultWeek(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("schedule: get: %w", err)
	}

	var ws WeekSchedule
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("schedule: unmarshal: %w", err)
	}

	return &ws, nil
}

// Set saves the week schedule.
func (s *Store) Set(ctx context.Context, ws *WeekSchedule) error {
	data, err := json.Marshal(ws)
	if err != nil {
		return fmt.Errorf("schedule: marshal: %w", err)
	}

	if err := s.redis.Set(ctx, storeKey, data, 0).Err(); err != nil {
		return fmt.Errorf("schedule: set: %w", err)
	}

	return nil
}
