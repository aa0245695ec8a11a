package consumer

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

func framedValue(schemaID int, payload []byte) []byte {
	value := make([]byte, 5+len(payload))
	binary.BigEndian.PutUint32(value[1:5], uint32(schemaID))
	copy(value[5:], payload)
	return value
}

func taskMessage(offset int64) kafka.Message {
	return kafka.Message{
		Topic:     "rota.task.events",
		Partition: 0,
		Offset:    offset,
		Value:     framedValue(1, []byte(`{"group_id":"g1"}`)),
		Time:      time.Now().UTC(),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("rota.task.completed")},
			{Key: "building_id", Value: []byte("b1")},
		},
	}
}

func TestProcessorCommitsMessages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &stubReader{msgs: []kafka.Message{taskMessage(12)}, errAfter: context.Canceled}
	handler := &RecordingHandler{}
	proc := NewProcessor(reader, handler)

	err := proc.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, handler.count)
	require.Equal(t, 1, reader.commitCount)

	require.Equal(t, "rota.task.completed", handler.last.EventType)
	require.Equal(t, "b1", handler.last.BuildingID)
	require.Equal(t, 1, handler.last.SchemaID)
	require.JSONEq(t, `{"group_id":"g1"}`, string(handler.last.Payload))
}

func TestProcessorSkipsCommitOnHandlerError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &stubReader{msgs: []kafka.Message{taskMessage(3)}, errAfter: context.Canceled}
	handler := &RecordingHandler{err: errors.New("boom")}
	proc := NewProcessor(reader, handler)

	err := proc.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, handler.count)
	require.Equal(t, 0, reader.commitCount, "failed messages must be retried, not committed")
}

func TestProcessorCommitsMalformedMessages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Too short for the framed format and missing the event_type header.
	bad := kafka.Message{Topic: "rota.task.events", Offset: 7, Value: []byte{0, 0}}

	reader := &stubReader{msgs: []kafka.Message{bad}, errAfter: context.Canceled}
	handler := &RecordingHandler{}
	proc := NewProcessor(reader, handler)

	err := proc.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 0, handler.count, "malformed messages never reach the handler")
	require.Equal(t, 1, reader.commitCount, "malformed messages are committed to avoid poison-pill loops")
}

func TestDecodeMessageRequiresEventType(t *testing.T) {
	msg := kafka.Message{Value: framedValue(1, []byte(`{}`))}
	_, err := decodeMessage(msg)
	require.Error(t, err)
}

type stubReader struct {
	msgs        []kafka.Message
	idx         int
	commitCount int
	errAfter    error
}

func (r *stubReader) FetchMessage(context.Context) (kafka.Message, error) {
	if r.idx >= len(r.msgs) {
		return kafka.Message{}, r.errAfter
	}
	msg := r.msgs[r.idx]
	r.idx++
	return msg, nil
}

func (r *stubReader) CommitMessages(_ context.Context, _ ...kafka.Message) error {
	r.commitCount++
	return nil
}

func (r *stubReader) Close() error { return nil }

type RecordingHandler struct {
	count int
	last  Message
	err   error
}

var _ Handler = (*RecordingHandler)(nil)

func (h *RecordingHandler) Handle(_ context.Context, msg Message) error {
	h.count++
	h.last = msg
	return h.err
}
