package emitter

import (
	"context"
	"encoding/binary"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"example.com/rotation/internal/events"
)

// Topics carrying rotation events.
const (
	TopicTaskEvents     = "rota.task.events"
	TopicBadgeEvents    = "rota.badge.events"
	TopicScheduleEvents = "rota.schedule.events"
)

// Fixed schema ids embedded in the value header. The wire format (magic byte,
// 4-byte big-endian schema id, JSON payload) matches what the consumer
// decodes; there is no registry round-trip for these payloads.
const (
	schemaTaskCompleted   = 1
	schemaBadgeAwarded    = 2
	schemaScheduleUpdated = 3
)

type messageWriter interface {
	WriteMessages(context.Context, string, ...kafka.Message) error
}

// Emitter implements the notification boundary on top of Kafka.
type Emitter struct {
	producer messageWriter
}

// NewEmitter constructs an Emitter.
func NewEmitter(producer messageWriter) *Emitter {
	return &Emitter{producer: producer}
}

// TaskCompleted publishes a task.completed event keyed by group id.
func (e *Emitter) TaskCompleted(ctx context.Context, event events.TaskCompleted) error {
	return e.publish(ctx, TopicTaskEvents, events.TypeTaskCompleted, event.BuildingID, event.GroupID, schemaTaskCompleted, event)
}

// BadgeAwarded publishes a badge.awarded event keyed by resident id.
func (e *Emitter) BadgeAwarded(ctx context.Context, event events.BadgeAwarded) error {
	return e.publish(ctx, TopicBadgeEvents, events.TypeBadgeAwarded, event.BuildingID, event.ResidentID, schemaBadgeAwarded, event)
}

// ScheduleUpdated publishes a schedule.updated event keyed by group id.
func (e *Emitter) ScheduleUpdated(ctx context.Context, event events.ScheduleUpdated) error {
	return e.publish(ctx, TopicScheduleEvents, events.TypeScheduleUpdated, event.BuildingID, event.GroupID, schemaScheduleUpdated, event)
}

func (e *Emitter) publish(ctx context.Context, topic, eventType, buildingID, key string, schemaID int, payload interface{}) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	value := make([]byte, 5+len(encoded))
	value[0] = 0
	binary.BigEndian.PutUint32(value[1:5], uint32(schemaID))
	copy(value[5:], encoded)

	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
			{Key: "building_id", Value: []byte(buildingID)},
		},
	}
	return e.producer.WriteMessages(ctx, topic, msg)
}
