package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/EryGltkn/CN-termproject/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
)

// ScoreArchive stores each finished session's final scores under
// quiz:results:{timestamp} as a hash of nickname -> score, expiring after
// ttl. Archival is best effort; the session never fails on archive errors.
type ScoreArchive struct {
	client *redis.Client
	ttl    time.Duration
	clock  clockwork.Clock
}

func NewScoreArchive(client *redis.Client, ttl time.Duration) *ScoreArchive {
	return &ScoreArchive{client: client, ttl: ttl, clock: clockwork.NewRealClock()}
}

// NewScoreArchiveWithClock is test-only for deterministic keys.
func NewScoreArchiveWithClock(client *redis.Client, ttl time.Duration, clock clockwork.Clock) *ScoreArchive {
	return &ScoreArchive{client: client, ttl: ttl, clock: clock}
}

func (a *ScoreArchive) ArchiveFinalScores(ctx context.Context, entries []domain.SnapshotEntry) error {
	if len(entries) == 0 {
		return nil
	}
	key := a.key()
	pipe := a.client.Pipeline()
	for _, e := range entries {
		pipe.HSet(ctx, key, e.Nickname, strconv.Itoa(e.Score))
	}
	if a.ttl > 0 {
		pipe.Expire(ctx, key, a.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (a *ScoreArchive) key() string {
	return "quiz:results:" + a.clock.Now().UTC().Format("20060102T150405.000Z")
}
