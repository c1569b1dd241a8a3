package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// Sender delivers one broadcast message to one user.
type Sender interface {
	Broadcast(userID int64, text string) error
}

// BroadcastStore is the slice of the persistence gateway the broadcaster
// needs. *storage.Storage satisfies it.
type BroadcastStore interface {
	ListUserIDs() ([]int64, error)
	LogBroadcast(message, sentBy string, sent, failed int) error
}

// Broadcaster fans a message out to every registered user. It is meant to
// run off the conversational event loop; the limiter enforces a minimum
// delay between sends to respect the Telegram rate limit.
type Broadcaster struct {
	store   BroadcastStore
	sender  Sender
	limiter *rate.Limiter
}

func NewBroadcaster(store BroadcastStore, sender Sender, interval time.Duration) *Broadcaster {
	return &Broadcaster{
		store:   store,
		sender:  sender,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Run sends the message to every registered user and logs the tally.
// Per-recipient failures are counted, never fatal. Cancelling the context
// stops the fan-out early; whatever was sent is still logged.
func (b *Broadcaster) Run(ctx context.Context, message, sentBy string) (Tally, error) {
	ids, err := b.store.ListUserIDs()
	if err != nil {
		return Tally{}, fmt.Errorf("broadcast: %w", err)
	}

	var tally Tally
	for _, id := range ids {
		if err := b.limiter.Wait(ctx); err != nil {
			slog.Warn("workflow: Broadcast cancelled", "error", err, "sent", tally.Sent)
			break
		}
		if err := b.sender.Broadcast(id, message); err != nil {
			slog.Warn("workflow: Broadcast delivery failed", "error", err, "user_id", id)
			tally.Failed++
			continue
		}
		tally.Sent++
	}

	if err := b.store.LogBroadcast(message, sentBy, tally.Sent, tally.Failed); err != nil {
		slog.Error("workflow: Failed to log broadcast", "error", err)
	}

	slog.Info("workflow: Broadcast finished", "sent", tally.Sent, "failed", tally.Failed, "sent_by", sentBy)
	return tally, nil
}
