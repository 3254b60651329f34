// Package status exposes the read-only query and admin HTTP API used by
// external tooling: the current player list and the game settings. It is
// deliberately separate from the client-facing websocket port.
package status

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pixil98/go-log"
	"github.com/skylight-games/scenesync/internal/relay"
	"github.com/skylight-games/scenesync/internal/settings"
)

type Server struct {
	port  uint16
	relay *relay.Relay
}

func NewServer(port uint16, r *relay.Relay) *Server {
	return &Server{
		port:  port,
		relay: r,
	}
}

// Start serves the status API until the context is canceled.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.router(),
	}

	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		case <-done:
		}
	}()

	log.GetLogger(ctx).Infof("status api listening on port %d", s.port)

	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving status api on port %d: %w", s.port, err)
	}

	return nil
}

func (s *Server) router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", s.getHealth)
	router.GET("/api/players", s.getPlayers)
	router.GET("/api/settings", s.getSettings)
	router.PUT("/api/settings", s.putSettings)

	return router
}

func (s *Server) getHealth(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// getPlayers returns the (username, scene, team, skin) projection of
// every connected player.
func (s *Server) getPlayers(c *gin.Context) {
	c.JSON(http.StatusOK, s.relay.Players())
}

func (s *Server) getSettings(c *gin.Context) {
	c.JSON(http.StatusOK, s.relay.Settings())
}

// putSettings swaps the game settings and pushes them to all clients.
func (s *Server) putSettings(c *gin.Context) {
	var gs settings.GameSettings
	if err := c.ShouldBindJSON(&gs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.relay.UpdateSettings(&gs)
	c.JSON(http.StatusOK, &gs)
}
