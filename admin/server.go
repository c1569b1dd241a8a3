package admin

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/garajhub/garajhub-bot/config"
	"github.com/garajhub/garajhub-bot/storage"
	"github.com/garajhub/garajhub-bot/workflow"
)

// Server is the HTTP API behind the admin panel. It shares the storage
// and workflow controller with the bot, so an approval made here behaves
// exactly like one made through the in-chat panel.
type Server struct {
	cfg         *config.Config
	storage     *storage.Storage
	flow        *workflow.Controller
	broadcaster *workflow.Broadcaster

	// bcrypt hash of the configured admin password, computed once at
	// startup so the plaintext never sticks around.
	passwordHash []byte
}

func NewServer(cfg *config.Config, st *storage.Storage, flow *workflow.Controller, bc *workflow.Broadcaster) (*Server, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}

	return &Server{
		cfg:          cfg,
		storage:      st,
		flow:         flow,
		broadcaster:  bc,
		passwordHash: hash,
	}, nil
}

func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", s.healthCheck)
		api.POST("/login", s.login)

		panel := api.Group("", s.authMiddleware())
		{
			panel.GET("/statistics", s.getStatistics)
			panel.GET("/startups", s.listStartups)
			panel.GET("/startups/:id", s.getStartup)
			panel.POST("/startups/:id/approve", s.approveStartup)
			panel.POST("/startups/:id/reject", s.rejectStartup)
			panel.GET("/users", s.listUsers)
			panel.POST("/broadcast", s.broadcast)
		}
	}

	return r
}

// Run blocks serving the admin API until the listener fails.
func (s *Server) Run() error {
	addr := ":" + s.cfg.HTTPPort
	slog.Info("admin: Starting HTTP API", "addr", addr)
	return s.Router().Run(addr)
}

func (s *Server) healthCheck(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
