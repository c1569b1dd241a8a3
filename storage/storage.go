package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrUnknownField = errors.New("unknown user field")
)

// Fields of User the profile editor is allowed to touch.
var userFields = map[string]bool{
	"first_name": true,
	"last_name":  true,
	"gender":     true,
	"phone":      true,
	"birth_date": true,
	"bio":        true,
}

type Storage struct {
	db *gorm.DB
}

func New(dbPath string) (*Storage, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		slog.Error("storage: Failed to connect to database", "error", err, "path", dbPath)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Storage{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Storage) migrate() error {
	err := s.db.AutoMigrate(&User{}, &Startup{}, &Membership{}, &BroadcastLog{})
	if err != nil {
		slog.Error("storage: Failed to migrate database", "error", err)
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// SaveUser upserts a user on first contact, refreshing the Telegram
// identity fields without touching profile data the user entered.
func (s *Storage) SaveUser(telegramID int64, username, firstName string) (*User, error) {
	var user User
	result := s.db.Where("telegram_id = ?", telegramID).First(&user)

	if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		slog.Error("storage: Failed to look up user", "error", result.Error, "telegram_id", telegramID)
		return nil, fmt.Errorf("failed to look up user: %w", result.Error)
	}

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		user = User{
			TelegramID: telegramID,
			Username:   username,
			FirstName:  firstName,
			Status:     UserActive,
		}
		if err := s.db.Create(&user).Error; err != nil {
			slog.Error("storage: Failed to create user", "error", err, "telegram_id", telegramID)
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		return &user, nil
	}

	updates := map[string]any{"username": username}
	if user.FirstName == "" {
		updates["first_name"] = firstName
	}
	if err := s.db.Model(&user).Updates(updates).Error; err != nil {
		slog.Error("storage: Failed to refresh user", "error", err, "telegram_id", telegramID)
		return nil, fmt.Errorf("failed to refresh user: %w", err)
	}
	return &user, nil
}

// GetUser retrieves a user by Telegram id.
func (s *Storage) GetUser(telegramID int64) (*User, error) {
	var user User
	result := s.db.Where("telegram_id = ?", telegramID).First(&user)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if result.Error != nil {
		slog.Error("storage: Failed to get user", "error", result.Error, "telegram_id", telegramID)
		return nil, fmt.Errorf("failed to get user: %w", result.Error)
	}
	return &user, nil
}

// UpdateUserField sets a single whitelisted profile column.
func (s *Storage) UpdateUserField(telegramID int64, field, value string) error {
	if !userFields[field] {
		return ErrUnknownField
	}

	result := s.db.Model(&User{}).Where("telegram_id = ?", telegramID).Update(field, value)
	if result.Error != nil {
		slog.Error("storage: Failed to update user field", "error", result.Error,
			"telegram_id", telegramID, "field", field)
		return fmt.Errorf("failed to update user field: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListUserIDs returns the Telegram ids of all registered users.
func (s *Storage) ListUserIDs() ([]int64, error) {
	var ids []int64
	result := s.db.Model(&User{}).Pluck("telegram_id", &ids)
	if result.Error != nil {
		slog.Error("storage: Failed to list user ids", "error", result.Error)
		return nil, fmt.Errorf("failed to list user ids: %w", result.Error)
	}
	return ids, nil
}

// ListUsers returns one page of users, newest first, with the total count.
func (s *Storage) ListUsers(page, perPage int) ([]User, int64, error) {
	var total int64
	if err := s.db.Model(&User{}).Count(&total).Error; err != nil {
		slog.Error("storage: Failed to count users", "error", err)
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	var users []User
	result := s.db.Order("created_at DESC").Offset((page - 1) * perPage).Limit(perPage).Find(&users)
	if result.Error != nil {
		slog.Error("storage: Failed to list users", "error", result.Error, "page", page)
		return nil, 0, fmt.Errorf("failed to list users: %w", result.Error)
	}
	return users, total, nil
}

// CreateStartup persists a new startup. Status must be set by the caller.
func (s *Storage) CreateStartup(startup *Startup) error {
	result := s.db.Create(startup)
	if result.Error != nil {
		slog.Error("storage: Failed to create startup", "error", result.Error,
			"name", startup.Name, "owner_id", startup.OwnerID)
		return fmt.Errorf("failed to create startup: %w", result.Error)
	}
	return nil
}

// GetStartup retrieves a startup by id.
func (s *Storage) GetStartup(id uint) (*Startup, error) {
	var startup Startup
	result := s.db.First(&startup, id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if result.Error != nil {
		slog.Error("storage: Failed to get startup", "error", result.Error, "startup_id", id)
		return nil, fmt.Errorf("failed to get startup: %w", result.Error)
	}
	return &startup, nil
}

// ListStartupsByOwner returns every startup owned by a user, newest first.
func (s *Storage) ListStartupsByOwner(ownerID int64) ([]Startup, error) {
	var startups []Startup
	result := s.db.Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&startups)
	if result.Error != nil {
		slog.Error("storage: Failed to list startups by owner", "error", result.Error, "owner_id", ownerID)
		return nil, fmt.Errorf("failed to list startups by owner: %w", result.Error)
	}
	return startups, nil
}

// ListStartupsByStatus returns one page of startups in a status with the
// total count for that status.
func (s *Storage) ListStartupsByStatus(status StartupStatus, page, perPage int) ([]Startup, int64, error) {
	var total int64
	if err := s.db.Model(&Startup{}).Where("status = ?", status).Count(&total).Error; err != nil {
		slog.Error("storage: Failed to count startups", "error", err, "status", status)
		return nil, 0, fmt.Errorf("failed to count startups: %w", err)
	}

	var startups []Startup
	result := s.db.Where("status = ?", status).
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&startups)
	if result.Error != nil {
		slog.Error("storage: Failed to list startups", "error", result.Error, "status", status, "page", page)
		return nil, 0, fmt.Errorf("failed to list startups: %w", result.Error)
	}
	return startups, total, nil
}

// TransitionStartup applies a conditional status update: the write only
// takes effect if the stored status still equals from. The returned bool
// reports whether a row actually changed, which makes concurrent
// double-approval a safe no-op.
func (s *Storage) TransitionStartup(id uint, from, to StartupStatus) (bool, error) {
	updates := map[string]any{"status": to}
	now := time.Now()
	switch to {
	case StartupActive:
		updates["started_at"] = &now
	case StartupCompleted:
		updates["ended_at"] = &now
	}

	result := s.db.Model(&Startup{}).Where("id = ? AND status = ?", id, from).Updates(updates)
	if result.Error != nil {
		slog.Error("storage: Failed to transition startup", "error", result.Error,
			"startup_id", id, "from", from, "to", to)
		return false, fmt.Errorf("failed to transition startup: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// SetStartupResults stores the completion summary text.
func (s *Storage) SetStartupResults(id uint, results string) error {
	result := s.db.Model(&Startup{}).Where("id = ?", id).Update("results", results)
	if result.Error != nil {
		slog.Error("storage: Failed to set startup results", "error", result.Error, "startup_id", id)
		return fmt.Errorf("failed to set startup results: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FindMembership returns the membership row for (startup, user) if any.
func (s *Storage) FindMembership(startupID uint, userID int64) (*Membership, error) {
	var m Membership
	result := s.db.Where("startup_id = ? AND user_id = ?", startupID, userID).First(&m)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if result.Error != nil {
		slog.Error("storage: Failed to find membership", "error", result.Error,
			"startup_id", startupID, "user_id", userID)
		return nil, fmt.Errorf("failed to find membership: %w", result.Error)
	}
	return &m, nil
}

// AddMembership creates a pending join request. If a row already exists
// for (startup, user) it is returned untouched and created is false,
// whatever its status.
func (s *Storage) AddMembership(startupID uint, userID int64) (*Membership, bool, error) {
	existing, err := s.FindMembership(startupID, userID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	m := &Membership{
		StartupID: startupID,
		UserID:    userID,
		Status:    MembershipPending,
	}
	result := s.db.Create(m)
	if result.Error != nil {
		slog.Error("storage: Failed to add membership", "error", result.Error,
			"startup_id", startupID, "user_id", userID)
		return nil, false, fmt.Errorf("failed to add membership: %w", result.Error)
	}
	return m, true, nil
}

// GetMembership retrieves a join request by id.
func (s *Storage) GetMembership(id uint) (*Membership, error) {
	var m Membership
	result := s.db.First(&m, id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if result.Error != nil {
		slog.Error("storage: Failed to get membership", "error", result.Error, "request_id", id)
		return nil, fmt.Errorf("failed to get membership: %w", result.Error)
	}
	return &m, nil
}

// TransitionMembership applies the same conditional-update discipline as
// TransitionStartup to a join request.
func (s *Storage) TransitionMembership(id uint, from, to MembershipStatus) (bool, error) {
	updates := map[string]any{"status": to}
	if to == MembershipAccepted {
		now := time.Now()
		updates["joined_at"] = &now
	}

	result := s.db.Model(&Membership{}).Where("id = ? AND status = ?", id, from).Updates(updates)
	if result.Error != nil {
		slog.Error("storage: Failed to transition membership", "error", result.Error,
			"request_id", id, "from", from, "to", to)
		return false, fmt.Errorf("failed to transition membership: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// ListMembers returns one page of users with an accepted membership in a
// startup, plus the total accepted count.
func (s *Storage) ListMembers(startupID uint, page, perPage int) ([]User, int64, error) {
	sub := s.db.Model(&Membership{}).
		Select("user_id").
		Where("startup_id = ? AND status = ?", startupID, MembershipAccepted)

	var total int64
	if err := s.db.Model(&User{}).Where("telegram_id IN (?)", sub).Count(&total).Error; err != nil {
		slog.Error("storage: Failed to count members", "error", err, "startup_id", startupID)
		return nil, 0, fmt.Errorf("failed to count members: %w", err)
	}

	var users []User
	result := s.db.Where("telegram_id IN (?)", sub).
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&users)
	if result.Error != nil {
		slog.Error("storage: Failed to list members", "error", result.Error, "startup_id", startupID)
		return nil, 0, fmt.Errorf("failed to list members: %w", result.Error)
	}
	return users, total, nil
}

// ListAcceptedMemberIDs returns the Telegram ids of every accepted member.
func (s *Storage) ListAcceptedMemberIDs(startupID uint) ([]int64, error) {
	var ids []int64
	result := s.db.Model(&Membership{}).
		Where("startup_id = ? AND status = ?", startupID, MembershipAccepted).
		Pluck("user_id", &ids)
	if result.Error != nil {
		slog.Error("storage: Failed to list accepted members", "error", result.Error, "startup_id", startupID)
		return nil, fmt.Errorf("failed to list accepted members: %w", result.Error)
	}
	return ids, nil
}

// Statistics returns the dashboard counters.
func (s *Storage) Statistics() (*Stats, error) {
	stats := &Stats{}

	if err := s.db.Model(&User{}).Count(&stats.TotalUsers).Error; err != nil {
		slog.Error("storage: Failed to count users", "error", err)
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if err := s.db.Model(&Startup{}).Count(&stats.TotalStartups).Error; err != nil {
		slog.Error("storage: Failed to count startups", "error", err)
		return nil, fmt.Errorf("failed to count startups: %w", err)
	}

	for status, target := range map[StartupStatus]*int64{
		StartupPending:   &stats.PendingStartups,
		StartupActive:    &stats.ActiveStartups,
		StartupCompleted: &stats.CompletedStartups,
		StartupRejected:  &stats.RejectedStartups,
	} {
		if err := s.db.Model(&Startup{}).Where("status = ?", status).Count(target).Error; err != nil {
			slog.Error("storage: Failed to count startups by status", "error", err, "status", status)
			return nil, fmt.Errorf("failed to count startups by status: %w", err)
		}
	}

	return stats, nil
}

// LogBroadcast records a finished broadcast with its tally.
func (s *Storage) LogBroadcast(message, sentBy string, sent, failed int) error {
	entry := BroadcastLog{
		Message:     message,
		SentBy:      sentBy,
		SentCount:   sent,
		FailedCount: failed,
	}
	if err := s.db.Create(&entry).Error; err != nil {
		slog.Error("storage: Failed to log broadcast", "error", err)
		return fmt.Errorf("failed to log broadcast: %w", err)
	}
	return nil
}
