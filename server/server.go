package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/techagentng/earnly/config"
	"github.com/techagentng/earnly/db"
	"github.com/techagentng/earnly/logger"
	"github.com/techagentng/earnly/services"
)

// Server holds the HTTP dependencies
type Server struct {
	Config              *config.Config
	DB                  *db.GormDB
	AuthRepository      db.AuthRepository
	AuthService         services.AuthService
	MediaService        services.MediaService
	TaskService         services.TaskService
	PostService         services.PostService
	WalletService       services.WalletService
	CreatorService      services.CreatorService
	AdminService        services.AdminService
	NotificationService services.NotificationService
	GoogleOAuth         *services.GoogleOAuth
	Hub                 *Hub
	LocalMedia          *services.MemoryStorage
}

// Start serves until SIGINT or SIGTERM, then drains open requests.
func (s *Server) Start() {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.Config.Port),
		Handler:           s.setupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", "port", s.Config.Port, "env", s.Config.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	if s.Hub != nil {
		s.Hub.Close()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shut down", "error", err)
	}
	logger.Info("server stopped")
}
