package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hindrance-reporter/internal/domain"
	redisRepo "github.com/hindrance-reporter/internal/repository/redis"
)

const testStream = "test:stream:report:submitted"

func newTestStream(t *testing.T) (*redis.Client, *redisRepo.ReportEventStream) {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379", DB: 1})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for integration tests: %v", err)
	}

	client.Del(ctx, testStream)
	t.Cleanup(func() {
		client.Del(context.Background(), testStream)
		client.Close()
	})

	return client, redisRepo.NewReportEventStream(client, testStream, zap.NewNop())
}

func submitted(objects int) domain.ReportSubmittedEvent {
	return domain.ReportSubmittedEvent{
		ReportID:    uuid.New(),
		UserID:      "pilot-1",
		ObjectCount: objects,
		SubmittedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func next(t *testing.T, ch <-chan domain.EventDelivery) domain.EventDelivery {
	t.Helper()
	select {
	case d, ok := <-ch:
		require.True(t, ok, "deliveries channel closed")
		return d
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for report event")
	}
	return domain.EventDelivery{}
}

func TestReportEventStream_EnsureGroupIsIdempotent(t *testing.T) {
	client, stream := newTestStream(t)
	ctx := context.Background()

	require.NoError(t, stream.EnsureGroup(ctx, "export"))
	require.NoError(t, stream.EnsureGroup(ctx, "export"))

	groups, err := client.XInfoGroups(ctx, testStream).Result()
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "export", groups[0].Name)
}

func TestReportEventStream_PublishDeliverAck(t *testing.T) {
	client, stream := newTestStream(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, stream.EnsureGroup(ctx, "export"))
	event := submitted(2)
	id, err := stream.PublishSubmitted(ctx, event)
	require.NoError(t, err)

	deliveries, err := stream.Deliveries(ctx, "export", "consumer-1")
	require.NoError(t, err)

	d := next(t, deliveries)
	assert.Equal(t, id, d.ID)
	assert.False(t, d.Redelivered)

	decoded, err := domain.DecodeReportSubmitted(d.Payload)
	require.NoError(t, err)
	assert.Equal(t, event.ReportID, decoded.ReportID)
	assert.Equal(t, 2, decoded.ObjectCount)

	require.NoError(t, stream.Ack(ctx, "export", d.ID))
	pending, err := client.XPending(ctx, testStream, "export").Result()
	require.NoError(t, err)
	assert.Zero(t, pending.Count)
}

func TestReportEventStream_RedeliversUnackedAfterRestart(t *testing.T) {
	_, stream := newTestStream(t)
	ctx := context.Background()
	require.NoError(t, stream.EnsureGroup(ctx, "export"))

	event := submitted(1)
	_, err := stream.PublishSubmitted(ctx, event)
	require.NoError(t, err)

	firstCtx, stopFirst := context.WithCancel(ctx)
	first, err := stream.Deliveries(firstCtx, "export", "consumer-1")
	require.NoError(t, err)
	d := next(t, first)
	stopFirst()

	secondCtx, stopSecond := context.WithTimeout(ctx, 5*time.Second)
	defer stopSecond()
	second, err := stream.Deliveries(secondCtx, "export", "consumer-1")
	require.NoError(t, err)

	again := next(t, second)
	assert.Equal(t, d.ID, again.ID)
	assert.True(t, again.Redelivered)
}
