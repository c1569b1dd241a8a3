// Package workflow owns the lifecycle transitions for startups and join
// requests. Every transition goes through a conditional update in the
// store, so concurrent approvals resolve to exactly one winner and the
// loser sees ErrAlreadyProcessed. Notifications are best-effort side
// effects: a delivery failure is logged and never rolls a transition back.
package workflow

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/garajhub/garajhub-bot/dialog"
	"github.com/garajhub/garajhub-bot/storage"
)

var (
	// ErrAlreadyProcessed reports a transition attempted on an entity no
	// longer in the expected status. Benign: the caller should tell the
	// operator "nothing to do", not fail.
	ErrAlreadyProcessed = errors.New("already processed")
	// ErrStartupNotActive reports a join approval on a startup that has
	// left the active status.
	ErrStartupNotActive = errors.New("startup is not active")
	// ErrCompletionDegraded reports a completion whose status transition
	// succeeded but whose results write or member fan-out did not. The
	// startup stays completed; only the success report must not stand.
	ErrCompletionDegraded = errors.New("completion partially failed")
)

// Store is the slice of the persistence gateway the controller needs.
// *storage.Storage satisfies it.
type Store interface {
	GetUser(telegramID int64) (*storage.User, error)
	GetStartup(id uint) (*storage.Startup, error)
	CreateStartup(s *storage.Startup) error
	TransitionStartup(id uint, from, to storage.StartupStatus) (bool, error)
	SetStartupResults(id uint, results string) error
	AddMembership(startupID uint, userID int64) (*storage.Membership, bool, error)
	GetMembership(id uint) (*storage.Membership, error)
	TransitionMembership(id uint, from, to storage.MembershipStatus) (bool, error)
	ListAcceptedMemberIDs(startupID uint) ([]int64, error)
}

// Notifier delivers one-sided messages to the parties a transition
// affects. Implementations may fail per call; the controller never
// escalates those failures.
type Notifier interface {
	StartupSubmitted(s *storage.Startup, owner *storage.User) error
	StartupApproved(s *storage.Startup) error
	StartupRejected(s *storage.Startup) error
	AnnounceStartup(s *storage.Startup, owner *storage.User) error
	StartupCompleted(memberID int64, s *storage.Startup, photoID string) error
	JoinRequested(req *storage.Membership, s *storage.Startup, requester *storage.User) error
	JoinApproved(userID int64, s *storage.Startup) error
	JoinRejected(userID int64) error
}

// Tally is the delivery outcome of a fan-out operation.
type Tally struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

type Controller struct {
	store  Store
	notify Notifier
}

func NewController(store Store, notify Notifier) *Controller {
	return &Controller{store: store, notify: notify}
}

// SubmitForApproval persists a finished creation draft as a pending
// startup and notifies the admin queue.
func (c *Controller) SubmitForApproval(draft dialog.StartupDraft, ownerID int64) (*storage.Startup, error) {
	s := &storage.Startup{
		Name:        draft.Name,
		Description: draft.Description,
		Logo:        draft.Logo,
		GroupLink:   draft.GroupLink,
		OwnerID:     ownerID,
		Status:      storage.StartupPending,
	}
	if err := c.store.CreateStartup(s); err != nil {
		return nil, fmt.Errorf("submit startup: %w", err)
	}

	owner, err := c.store.GetUser(ownerID)
	if err != nil {
		slog.Error("workflow: Failed to load owner for admin notification", "error", err, "owner_id", ownerID)
		owner = &storage.User{TelegramID: ownerID}
	}
	if err := c.notify.StartupSubmitted(s, owner); err != nil {
		slog.Error("workflow: Failed to notify admin about submission", "error", err, "startup_id", s.ID)
	}

	return s, nil
}

// ApproveStartup moves a pending startup to active, stamps started_at,
// notifies the owner and posts the public announcement. Calling it twice
// is safe: the second call reports ErrAlreadyProcessed.
func (c *Controller) ApproveStartup(id uint) error {
	ok, err := c.store.TransitionStartup(id, storage.StartupPending, storage.StartupActive)
	if err != nil {
		return fmt.Errorf("approve startup: %w", err)
	}
	if !ok {
		return ErrAlreadyProcessed
	}

	s, err := c.store.GetStartup(id)
	if err != nil {
		slog.Error("workflow: Startup approved but reload failed", "error", err, "startup_id", id)
		return nil
	}

	if err := c.notify.StartupApproved(s); err != nil {
		slog.Error("workflow: Failed to notify owner about approval", "error", err, "startup_id", id)
	}

	owner, err := c.store.GetUser(s.OwnerID)
	if err != nil {
		owner = &storage.User{TelegramID: s.OwnerID}
	}
	if err := c.notify.AnnounceStartup(s, owner); err != nil {
		slog.Error("workflow: Failed to post announcement", "error", err, "startup_id", id)
	}

	return nil
}

// RejectStartup moves a pending startup to rejected and notifies the
// owner. Rejected is terminal.
func (c *Controller) RejectStartup(id uint) error {
	ok, err := c.store.TransitionStartup(id, storage.StartupPending, storage.StartupRejected)
	if err != nil {
		return fmt.Errorf("reject startup: %w", err)
	}
	if !ok {
		return ErrAlreadyProcessed
	}

	s, err := c.store.GetStartup(id)
	if err != nil {
		slog.Error("workflow: Startup rejected but reload failed", "error", err, "startup_id", id)
		return nil
	}
	if err := c.notify.StartupRejected(s); err != nil {
		slog.Error("workflow: Failed to notify owner about rejection", "error", err, "startup_id", id)
	}

	return nil
}

// CompleteStartup moves an active startup to completed, stores the
// results and fans the results photo out to every accepted member.
// Unreachable members are counted, not fatal: the transition stands and
// the caller reports the tally. A store failure after the transition
// also leaves the startup completed, but it surfaces as
// ErrCompletionDegraded so the caller does not report a clean success.
func (c *Controller) CompleteStartup(id uint, results, photoID string) (Tally, error) {
	ok, err := c.store.TransitionStartup(id, storage.StartupActive, storage.StartupCompleted)
	if err != nil {
		return Tally{}, fmt.Errorf("complete startup: %w", err)
	}
	if !ok {
		return Tally{}, ErrAlreadyProcessed
	}

	if err := c.store.SetStartupResults(id, results); err != nil {
		slog.Error("workflow: Failed to store results", "error", err, "startup_id", id)
		return Tally{}, fmt.Errorf("%w: store results: %v", ErrCompletionDegraded, err)
	}

	s, err := c.store.GetStartup(id)
	if err != nil {
		slog.Error("workflow: Startup completed but reload failed", "error", err, "startup_id", id)
		return Tally{}, fmt.Errorf("%w: reload startup: %v", ErrCompletionDegraded, err)
	}

	members, err := c.store.ListAcceptedMemberIDs(id)
	if err != nil {
		slog.Error("workflow: Failed to list members for completion fan-out", "error", err, "startup_id", id)
		return Tally{}, fmt.Errorf("%w: list members: %v", ErrCompletionDegraded, err)
	}

	var tally Tally
	for _, memberID := range members {
		if err := c.notify.StartupCompleted(memberID, s, photoID); err != nil {
			slog.Warn("workflow: Failed to deliver completion notice", "error", err,
				"startup_id", id, "member_id", memberID)
			tally.Failed++
			continue
		}
		tally.Sent++
	}

	slog.Info("workflow: Startup completed", "startup_id", id, "sent", tally.Sent, "failed", tally.Failed)
	return tally, nil
}

// RequestJoin records a join request. Idempotent: if a membership already
// exists for (startup, user) in any status, the existing row is returned
// with already=true and no notification is sent.
func (c *Controller) RequestJoin(startupID uint, userID int64) (*storage.Membership, bool, error) {
	req, created, err := c.store.AddMembership(startupID, userID)
	if err != nil {
		return nil, false, fmt.Errorf("request join: %w", err)
	}
	if !created {
		return req, true, nil
	}

	s, err := c.store.GetStartup(startupID)
	if err != nil {
		slog.Error("workflow: Join recorded but startup reload failed", "error", err, "startup_id", startupID)
		return req, false, nil
	}
	requester, err := c.store.GetUser(userID)
	if err != nil {
		requester = &storage.User{TelegramID: userID}
	}
	if err := c.notify.JoinRequested(req, s, requester); err != nil {
		slog.Error("workflow: Failed to notify owner about join request", "error", err,
			"startup_id", startupID, "request_id", req.ID)
	}

	return req, false, nil
}

// ApproveJoin accepts a pending join request and sends the requester the
// group link. The startup must still be active: a membership can only
// reach accepted while its startup is.
func (c *Controller) ApproveJoin(requestID uint) error {
	req, err := c.store.GetMembership(requestID)
	if err != nil {
		return fmt.Errorf("approve join: %w", err)
	}

	s, err := c.store.GetStartup(req.StartupID)
	if err != nil {
		return fmt.Errorf("approve join: %w", err)
	}
	if s.Status != storage.StartupActive {
		return ErrStartupNotActive
	}

	ok, err := c.store.TransitionMembership(requestID, storage.MembershipPending, storage.MembershipAccepted)
	if err != nil {
		return fmt.Errorf("approve join: %w", err)
	}
	if !ok {
		return ErrAlreadyProcessed
	}

	if err := c.notify.JoinApproved(req.UserID, s); err != nil {
		slog.Error("workflow: Failed to notify requester about acceptance", "error", err, "request_id", requestID)
	}

	return nil
}

// RejectJoin declines a pending join request and notifies the requester.
func (c *Controller) RejectJoin(requestID uint) error {
	req, err := c.store.GetMembership(requestID)
	if err != nil {
		return fmt.Errorf("reject join: %w", err)
	}

	ok, err := c.store.TransitionMembership(requestID, storage.MembershipPending, storage.MembershipRejected)
	if err != nil {
		return fmt.Errorf("reject join: %w", err)
	}
	if !ok {
		return ErrAlreadyProcessed
	}

	if err := c.notify.JoinRejected(req.UserID); err != nil {
		slog.Error("workflow: Failed to notify requester about rejection", "error", err, "request_id", requestID)
	}

	return nil
}
