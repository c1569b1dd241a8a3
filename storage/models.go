package storage

import (
	"time"

	"gorm.io/gorm"
)

// StartupStatus values move one-directionally:
// pending -> active -> completed, or pending -> rejected.
type StartupStatus string

const (
	StartupPending   StartupStatus = "pending"
	StartupActive    StartupStatus = "active"
	StartupCompleted StartupStatus = "completed"
	StartupRejected  StartupStatus = "rejected"
)

// MembershipStatus values move pending -> accepted or pending -> rejected.
type MembershipStatus string

const (
	MembershipPending  MembershipStatus = "pending"
	MembershipAccepted MembershipStatus = "accepted"
	MembershipRejected MembershipStatus = "rejected"
)

const UserActive = "active"

// User is a Telegram user known to the bot. Users are created on first
// contact and never hard-deleted.
type User struct {
	gorm.Model
	TelegramID int64 `gorm:"uniqueIndex"`
	Username   string
	FirstName  string
	LastName   string
	Gender     string
	Phone      string
	BirthDate  string
	Bio        string
	Status     string
}

// Startup is a crowdsourcing proposal. OwnerID is the owner's Telegram id
// and is immutable after creation.
type Startup struct {
	gorm.Model
	Name        string
	Description string
	Logo        string // Telegram file id, optional
	GroupLink   string
	OwnerID     int64         `gorm:"index"`
	Status      StartupStatus `gorm:"index"`
	StartedAt   *time.Time
	EndedAt     *time.Time
	Results     string
}

// Membership is a join request. A user has at most one row per startup.
type Membership struct {
	gorm.Model
	StartupID uint  `gorm:"uniqueIndex:idx_startup_user"`
	UserID    int64 `gorm:"uniqueIndex:idx_startup_user"`
	Status    MembershipStatus
	JoinedAt  *time.Time
}

// BroadcastLog records one admin broadcast with its delivery tally.
type BroadcastLog struct {
	gorm.Model
	Message     string
	SentBy      string
	SentCount   int
	FailedCount int
}

// Stats is the aggregate snapshot shown on admin dashboards.
type Stats struct {
	TotalUsers        int64 `json:"total_users"`
	TotalStartups     int64 `json:"total_startups"`
	PendingStartups   int64 `json:"pending_startups"`
	ActiveStartups    int64 `json:"active_startups"`
	CompletedStartups int64 `json:"completed_startups"`
	RejectedStartups  int64 `json:"rejected_startups"`
}
