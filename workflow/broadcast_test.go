package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBroadcastStore struct {
	ids  []int64
	logs []struct {
		message      string
		sentBy       string
		sent, failed int
	}
}

func (f *fakeBroadcastStore) ListUserIDs() ([]int64, error) {
	return f.ids, nil
}

func (f *fakeBroadcastStore) LogBroadcast(message, sentBy string, sent, failed int) error {
	f.logs = append(f.logs, struct {
		message      string
		sentBy       string
		sent, failed int
	}{message, sentBy, sent, failed})
	return nil
}

type fakeSender struct {
	delivered []int64
	blocked   map[int64]bool
}

func (f *fakeSender) Broadcast(userID int64, text string) error {
	if f.blocked[userID] {
		return errors.New("blocked by user")
	}
	f.delivered = append(f.delivered, userID)
	return nil
}

func TestBroadcaster_Run(t *testing.T) {
	store := &fakeBroadcastStore{ids: []int64{1, 2, 3}}
	sender := &fakeSender{blocked: map[int64]bool{2: true}}
	b := NewBroadcaster(store, sender, time.Microsecond)

	tally, err := b.Run(context.Background(), "Hello everyone", "admin")
	require.NoError(t, err)

	assert.Equal(t, Tally{Sent: 2, Failed: 1}, tally)
	assert.Equal(t, []int64{1, 3}, sender.delivered)

	require.Len(t, store.logs, 1)
	assert.Equal(t, "Hello everyone", store.logs[0].message)
	assert.Equal(t, "admin", store.logs[0].sentBy)
	assert.Equal(t, 2, store.logs[0].sent)
	assert.Equal(t, 1, store.logs[0].failed)
}

func TestBroadcaster_CancelStopsFanOut(t *testing.T) {
	store := &fakeBroadcastStore{ids: []int64{1, 2, 3}}
	sender := &fakeSender{}
	b := NewBroadcaster(store, sender, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tally, err := b.Run(ctx, "never sent", "admin")
	require.NoError(t, err)

	assert.Zero(t, tally.Sent)
	assert.Len(t, store.logs, 1, "partial tally is still logged")
}
