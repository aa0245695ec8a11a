package emitter

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"example.com/rotation/internal/events"
)

type capturedMessage struct {
	topic string
	msg   kafka.Message
}

type stubProducer struct {
	messages []capturedMessage
}

func (s *stubProducer) WriteMessages(_ context.Context, topic string, msgs ...kafka.Message) error {
	for _, msg := range msgs {
		s.messages = append(s.messages, capturedMessage{topic: topic, msg: msg})
	}
	return nil
}

func headerValue(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestEmitterTaskCompletedFraming(t *testing.T) {
	producer := &stubProducer{}
	emitter := NewEmitter(producer)

	event := events.TaskCompleted{
		EventID:      "evt-1",
		GroupID:      "g1",
		GroupName:    "Block A crew",
		BuildingID:   "b1",
		Area:         "Kitchen",
		Date:         "2025-10-28",
		PerformedBy:  []string{"r1"},
		QualityScore: 4,
		OccurredAt:   time.Date(2025, time.October, 28, 18, 0, 0, 0, time.UTC),
	}
	require.NoError(t, emitter.TaskCompleted(context.Background(), event))
	require.Len(t, producer.messages, 1)

	captured := producer.messages[0]
	require.Equal(t, TopicTaskEvents, captured.topic)
	require.Equal(t, "g1", string(captured.msg.Key))
	require.Equal(t, events.TypeTaskCompleted, headerValue(captured.msg, "event_type"))
	require.Equal(t, "b1", headerValue(captured.msg, "building_id"))

	value := captured.msg.Value
	require.GreaterOrEqual(t, len(value), 5)
	require.Equal(t, byte(0), value[0])
	require.Equal(t, uint32(schemaTaskCompleted), binary.BigEndian.Uint32(value[1:5]))

	var decoded events.TaskCompleted
	require.NoError(t, json.Unmarshal(value[5:], &decoded))
	require.Equal(t, event, decoded)
}

func TestEmitterKeysAndTopics(t *testing.T) {
	producer := &stubProducer{}
	emitter := NewEmitter(producer)
	ctx := context.Background()

	require.NoError(t, emitter.BadgeAwarded(ctx, events.BadgeAwarded{
		EventID: "evt-2", ResidentID: "r1", BuildingID: "b1", BadgeType: "CONSISTENT",
	}))
	require.NoError(t, emitter.ScheduleUpdated(ctx, events.ScheduleUpdated{
		EventID: "evt-3", GroupID: "g1", BuildingID: "b1", WeekStart: "2025-10-27",
	}))
	require.Len(t, producer.messages, 2)

	badge := producer.messages[0]
	require.Equal(t, TopicBadgeEvents, badge.topic)
	require.Equal(t, "r1", string(badge.msg.Key), "badge events are keyed by resident")
	require.Equal(t, uint32(schemaBadgeAwarded), binary.BigEndian.Uint32(badge.msg.Value[1:5]))

	schedule := producer.messages[1]
	require.Equal(t, TopicScheduleEvents, schedule.topic)
	require.Equal(t, "g1", string(schedule.msg.Key), "schedule events are keyed by group")
	require.Equal(t, uint32(schemaScheduleUpdated), binary.BigEndian.Uint32(schedule.msg.Value[1:5]))
}
