package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// presenceTTL is how long a user counts as online after their last
// heartbeat. Socket pongs refresh the key well inside this window.
const presenceTTL = 90 * time.Second

// PresenceTracker records which users currently hold a live connection.
// Key format: presence:<user_id>, expiring presenceTTL seconds after the
// last heartbeat so crashed connections age out on their own.
type PresenceTracker struct {
	client *redis.Client
}

func NewPresenceTracker(client *redis.Client) *PresenceTracker {
	return &PresenceTracker{client: client}
}

// Heartbeat marks userID online and refreshes the expiry.
func (p *PresenceTracker) Heartbeat(ctx context.Context, userID string) error {
	return p.client.Set(ctx, p.key(userID), "1", presenceTTL).Err()
}

// Offline removes the user's presence key immediately (clean disconnect).
func (p *PresenceTracker) Offline(ctx context.Context, userID string) error {
	return p.client.Del(ctx, p.key(userID)).Err()
}

// IsOnline reports whether the user has a live heartbeat.
func (p *PresenceTracker) IsOnline(ctx context.Context, userID string) (bool, error) {
	n, err := p.client.Exists(ctx, p.key(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("presence check: %w", err)
	}
	return n > 0, nil
}

func (p *PresenceTracker) key(userID string) string {
	return "presence:" + userID
}
