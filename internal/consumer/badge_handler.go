package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"example.com/rotation/internal/events"
	"example.com/rotation/internal/observability"
)

// BadgeAwarder is the slice of the domain service the handler needs.
type BadgeAwarder interface {
	AwardBadges(ctx context.Context, residentID string) ([]string, error)
}

// BadgeHandler reacts to task.completed events by re-evaluating badge
// eligibility for every resident who performed the task. Awarding is
// idempotent downstream, so replays are safe.
type BadgeHandler struct {
	awarder BadgeAwarder
	logger  *log.Logger
}

// NewBadgeHandler constructs a BadgeHandler.
func NewBadgeHandler(awarder BadgeAwarder, logger *log.Logger) *BadgeHandler {
	if logger == nil {
		logger = log.New(log.Writer(), "[badges] ", log.LstdFlags)
	}
	return &BadgeHandler{awarder: awarder, logger: logger}
}

// Handle implements Handler.
func (h *BadgeHandler) Handle(ctx context.Context, msg Message) error {
	if msg.EventType != events.TypeTaskCompleted {
		return nil
	}

	var event events.TaskCompleted
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return fmt.Errorf("decode task.completed payload: %w", err)
	}

	for _, residentID := range event.PerformedBy {
		awarded, err := h.awarder.AwardBadges(ctx, residentID)
		if err != nil {
			return fmt.Errorf("award badges for %s: %w", residentID, err)
		}
		for _, badgeType := range awarded {
			observability.RecordBadgeAwarded(badgeType)
			h.logger.Printf("awarded %s to %s", badgeType, residentID)
		}
	}
	return nil
}
