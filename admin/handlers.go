package admin

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/garajhub/garajhub-bot/storage"
	"github.com/garajhub/garajhub-bot/workflow"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type BroadcastRequest struct {
	Message string `json:"message" binding:"required"`
}

func (s *Server) login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if req.Username != s.cfg.AdminUser ||
		bcrypt.CompareHashAndPassword(s.passwordHash, []byte(req.Password)) != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := s.generateJWT()
	if err != nil {
		slog.Error("admin: Failed to generate JWT", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"token": token})
}

func (s *Server) getStatistics(ctx *gin.Context) {
	stats, err := s.storage.Statistics()
	if err != nil {
		slog.Error("admin: Failed to load statistics", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, stats)
}

func (s *Server) listStartups(ctx *gin.Context) {
	status := storage.StartupStatus(ctx.DefaultQuery("status", string(storage.StartupPending)))
	switch status {
	case storage.StartupPending, storage.StartupActive, storage.StartupCompleted, storage.StartupRejected:
	default:
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status"})
		return
	}

	page := queryInt(ctx, "page", 1)

	startups, total, err := s.storage.ListStartupsByStatus(status, page, pageSize)
	if err != nil {
		slog.Error("admin: Failed to list startups", "error", err, "status", status)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"startups": startups,
		"total":    total,
		"page":     page,
	})
}

func (s *Server) getStartup(ctx *gin.Context) {
	id, err := pathID(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid startup ID"})
		return
	}

	startup, err := s.storage.GetStartup(id)
	if errors.Is(err, storage.ErrNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Startup not found"})
		return
	}
	if err != nil {
		slog.Error("admin: Failed to load startup", "error", err, "startup_id", id)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, startup)
}

func (s *Server) approveStartup(ctx *gin.Context) {
	s.decideStartup(ctx, s.flow.ApproveStartup, "approved")
}

func (s *Server) rejectStartup(ctx *gin.Context) {
	s.decideStartup(ctx, s.flow.RejectStartup, "rejected")
}

func (s *Server) decideStartup(ctx *gin.Context, decide func(uint) error, verb string) {
	id, err := pathID(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid startup ID"})
		return
	}

	err = decide(id)
	switch {
	case errors.Is(err, workflow.ErrAlreadyProcessed):
		ctx.JSON(http.StatusConflict, gin.H{"error": "Startup is no longer pending"})
	case errors.Is(err, storage.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Startup not found"})
	case err != nil:
		slog.Error("admin: Startup decision failed", "error", err, "startup_id", id)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	default:
		ctx.JSON(http.StatusOK, gin.H{"status": verb})
	}
}

func (s *Server) listUsers(ctx *gin.Context) {
	page := queryInt(ctx, "page", 1)

	users, total, err := s.storage.ListUsers(page, pageSize)
	if err != nil {
		slog.Error("admin: Failed to list users", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"users": users,
		"total": total,
		"page":  page,
	})
}

// broadcast accepts the message and returns immediately. Delivery is
// rate-limited and can take minutes on a large user base.
func (s *Server) broadcast(ctx *gin.Context) {
	var req BroadcastRequest
	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	go func() {
		if _, err := s.broadcaster.Run(context.Background(), req.Message, s.cfg.AdminUser); err != nil {
			slog.Error("admin: Broadcast failed", "error", err)
		}
	}()

	ctx.JSON(http.StatusAccepted, gin.H{"status": "broadcast started"})
}

const pageSize = 20

func pathID(ctx *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func queryInt(ctx *gin.Context, key string, fallback int) int {
	value, err := strconv.Atoi(ctx.Query(key))
	if err != nil || value < 1 {
		return fallback
	}
	return value
}
