package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	recordKeyPrefix  = "confirmation:"
	eventChannelName = "confirmation_events"

	// Records outlive the longest plausible suspension, then expire so
	// abandoned conversations do not leak keys.
	recordTTL = 7 * 24 * time.Hour
)

// RedisStore keeps ConfirmationRecords in Redis so a suspended run can
// resume on any instance. Every write publishes to a pub/sub channel,
// which backs Watch for event-driven resumption.
type RedisStore struct {
	rdb *redis.Client
}

var _ Store = &RedisStore{}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{
		rdb: rdb,
	}
}

func recordKey(conversationId uuid.UUID) string {
	return recordKeyPrefix + conversationId.String()
}

func (s *RedisStore) Get(ctx context.Context, conversationId uuid.UUID) (*ConfirmationRecord, error) {
	data, err := s.rdb.Get(ctx, recordKey(conversationId)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("read confirmation record: %w", err)
	}

	var rec ConfirmationRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode confirmation record: %w", err)
	}
	return &rec, nil
}

func (s *RedisStore) Set(ctx context.Context, record *ConfirmationRecord) error {
	record.UpdatedAt = time.Now()

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode confirmation record: %w", err)
	}

	if err := s.rdb.Set(ctx, recordKey(record.ConversationId), data, recordTTL).Err(); err != nil {
		return fmt.Errorf("write confirmation record: %w", err)
	}

	// Wake any run suspended on this conversation.
	s.rdb.Publish(ctx, eventChannelName, record.ConversationId.String())
	return nil
}

func (s *RedisStore) Watch(ctx context.Context, conversationId uuid.UUID) (<-chan struct{}, func(), error) {
	pubsub := s.rdb.Subscribe(ctx, eventChannelName)

	// Confirm the subscription is live before the caller starts waiting.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe confirmation events: %w", err)
	}

	ch := make(chan struct{}, 1)
	done := make(chan struct{})

	go func() {
		msgs := pubsub.Channel()
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				if msg.Payload != conversationId.String() {
					continue
				}
				select {
				case ch <- struct{}{}:
				default:
				}
			case <-done:
				return
			}
		}
	}()

	stop := func() {
		close(done)
		pubsub.Close()
	}
	return ch, stop, nil
}

func (s *RedisStore) Clear(ctx context.Context, conversationId uuid.UUID) error {
	if err := s.rdb.Del(ctx, recordKey(conversationId)).Err(); err != nil {
		return fmt.Errorf("clear confirmation record: %w", err)
	}
	return nil
}
