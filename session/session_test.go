package session

import (
	"testing"

	"github.com/garajhub/garajhub-bot/dialog"
)

func TestStore(t *testing.T) {
	store := NewStore()

	if _, ok := store.Get(1); ok {
		t.Fatal("fresh store should have no state")
	}

	store.Set(1, dialog.CreationState{Step: dialog.AwaitingName})

	state, ok := store.Get(1)
	if !ok {
		t.Fatal("state not found after Set")
	}
	if _, ok := state.(dialog.CreationState); !ok {
		t.Fatalf("state has type %T, want CreationState", state)
	}

	if _, ok := store.Get(2); ok {
		t.Error("state leaked to another user")
	}

	// Set replaces whatever dialog was in flight.
	store.Set(1, dialog.ProfileEditState{Field: dialog.FieldPhone})
	state, _ = store.Get(1)
	if _, ok := state.(dialog.ProfileEditState); !ok {
		t.Fatalf("state has type %T after replace, want ProfileEditState", state)
	}

	store.Clear(1)
	if _, ok := store.Get(1); ok {
		t.Error("state survived Clear")
	}

	// Clearing an absent user is a no-op.
	store.Clear(42)
}
