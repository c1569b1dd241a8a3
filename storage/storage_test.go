package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)
	return s
}

func TestSaveUser(t *testing.T) {
	s := testStorage(t)

	user, err := s.SaveUser(100, "aziz", "Aziz")
	require.NoError(t, err)
	assert.Equal(t, int64(100), user.TelegramID)
	assert.Equal(t, UserActive, user.Status)

	// Profile data entered by the user survives the refresh on re-contact.
	require.NoError(t, s.UpdateUserField(100, "first_name", "Азиз"))
	require.NoError(t, s.UpdateUserField(100, "phone", "+998901234567"))

	_, err = s.SaveUser(100, "aziz_new", "Aziz")
	require.NoError(t, err)

	user, err = s.GetUser(100)
	require.NoError(t, err)
	assert.Equal(t, "aziz_new", user.Username)
	assert.Equal(t, "Азиз", user.FirstName)
	assert.Equal(t, "+998901234567", user.Phone)
}

func TestGetUser_NotFound(t *testing.T) {
	s := testStorage(t)

	_, err := s.GetUser(404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateUserField(t *testing.T) {
	s := testStorage(t)
	_, err := s.SaveUser(100, "aziz", "Aziz")
	require.NoError(t, err)

	require.NoError(t, s.UpdateUserField(100, "bio", "I build things"))
	user, err := s.GetUser(100)
	require.NoError(t, err)
	assert.Equal(t, "I build things", user.Bio)

	assert.ErrorIs(t, s.UpdateUserField(100, "status", "admin"), ErrUnknownField)
	assert.ErrorIs(t, s.UpdateUserField(404, "bio", "x"), ErrNotFound)
}

func TestListUserIDs(t *testing.T) {
	s := testStorage(t)
	for _, id := range []int64{100, 200, 300} {
		_, err := s.SaveUser(id, "", "U")
		require.NoError(t, err)
	}

	ids, err := s.ListUserIDs()
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{100, 200, 300}, ids)
}

func TestTransitionStartup(t *testing.T) {
	s := testStorage(t)

	startup := &Startup{Name: "X", OwnerID: 100, Status: StartupPending}
	require.NoError(t, s.CreateStartup(startup))

	ok, err := s.TransitionStartup(startup.ID, StartupPending, StartupActive)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := s.GetStartup(startup.ID)
	require.NoError(t, err)
	assert.Equal(t, StartupActive, got.Status)
	assert.NotNil(t, got.StartedAt)
	assert.Nil(t, got.EndedAt)

	// A second transition from pending finds no matching row.
	ok, err = s.TransitionStartup(startup.ID, StartupPending, StartupRejected)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err = s.GetStartup(startup.ID)
	require.NoError(t, err)
	assert.Equal(t, StartupActive, got.Status)

	ok, err = s.TransitionStartup(startup.ID, StartupActive, StartupCompleted)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err = s.GetStartup(startup.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.EndedAt)
}

func TestListStartupsByStatus(t *testing.T) {
	s := testStorage(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.CreateStartup(&Startup{Name: "P", OwnerID: 1, Status: StartupPending}))
	}
	require.NoError(t, s.CreateStartup(&Startup{Name: "A", OwnerID: 1, Status: StartupActive}))

	pending, total, err := s.ListStartupsByStatus(StartupPending, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, pending, 2)

	pending, _, err = s.ListStartupsByStatus(StartupPending, 2, 2)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	active, total, err := s.ListStartupsByStatus(StartupActive, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, active, 1)
}

func TestAddMembership_Idempotent(t *testing.T) {
	s := testStorage(t)

	startup := &Startup{Name: "X", OwnerID: 100, Status: StartupActive}
	require.NoError(t, s.CreateStartup(startup))

	first, created, err := s.AddMembership(startup.ID, 200)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, MembershipPending, first.Status)

	second, created, err := s.AddMembership(startup.ID, 200)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	// Existing row keeps its status even after a decision.
	ok, err := s.TransitionMembership(first.ID, MembershipPending, MembershipRejected)
	require.NoError(t, err)
	require.True(t, ok)

	third, created, err := s.AddMembership(startup.ID, 200)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, MembershipRejected, third.Status)
}

func TestTransitionMembership(t *testing.T) {
	s := testStorage(t)

	startup := &Startup{Name: "X", OwnerID: 100, Status: StartupActive}
	require.NoError(t, s.CreateStartup(startup))
	m, _, err := s.AddMembership(startup.ID, 200)
	require.NoError(t, err)

	ok, err := s.TransitionMembership(m.ID, MembershipPending, MembershipAccepted)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := s.GetMembership(m.ID)
	require.NoError(t, err)
	assert.Equal(t, MembershipAccepted, got.Status)
	assert.NotNil(t, got.JoinedAt)

	ok, err = s.TransitionMembership(m.ID, MembershipPending, MembershipRejected)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListMembers(t *testing.T) {
	s := testStorage(t)

	startup := &Startup{Name: "X", OwnerID: 100, Status: StartupActive}
	require.NoError(t, s.CreateStartup(startup))

	for _, id := range []int64{201, 202, 203} {
		_, err := s.SaveUser(id, "", "U")
		require.NoError(t, err)
		m, _, err := s.AddMembership(startup.ID, id)
		require.NoError(t, err)
		if id != 203 {
			_, err = s.TransitionMembership(m.ID, MembershipPending, MembershipAccepted)
			require.NoError(t, err)
		}
	}

	members, total, err := s.ListMembers(startup.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, members, 2)

	ids, err := s.ListAcceptedMemberIDs(startup.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{201, 202}, ids)
}

func TestStatistics(t *testing.T) {
	s := testStorage(t)

	_, err := s.SaveUser(100, "", "U")
	require.NoError(t, err)
	require.NoError(t, s.CreateStartup(&Startup{Name: "P", OwnerID: 100, Status: StartupPending}))
	require.NoError(t, s.CreateStartup(&Startup{Name: "A", OwnerID: 100, Status: StartupActive}))
	require.NoError(t, s.CreateStartup(&Startup{Name: "C", OwnerID: 100, Status: StartupCompleted}))

	stats, err := s.Statistics()
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalUsers)
	assert.Equal(t, int64(3), stats.TotalStartups)
	assert.Equal(t, int64(1), stats.PendingStartups)
	assert.Equal(t, int64(1), stats.ActiveStartups)
	assert.Equal(t, int64(1), stats.CompletedStartups)
	assert.Equal(t, int64(0), stats.RejectedStartups)
}

func TestLogBroadcast(t *testing.T) {
	s := testStorage(t)

	require.NoError(t, s.LogBroadcast("hello", "admin", 10, 2))

	var entry BroadcastLog
	require.NoError(t, s.db.First(&entry).Error)
	assert.Equal(t, "hello", entry.Message)
	assert.Equal(t, "admin", entry.SentBy)
	assert.Equal(t, 10, entry.SentCount)
	assert.Equal(t, 2, entry.FailedCount)
}
