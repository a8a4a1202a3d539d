package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"chatbot-platform/internal/audit"
	"chatbot-platform/internal/auth"
	"chatbot-platform/internal/eventlog"
	"chatbot-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Pinger reports backend liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers is the admin HTTP surface over the routing store. Handlers stay
// thin: parse input, call eventlog, map errors to status codes.
type Handlers struct {
	Auth     *auth.Manager
	Store    eventlog.Store
	Settings *eventlog.Settings
	// Resolver, when set, rejects destinations the bot cannot reach.
	Resolver eventlog.DestinationResolver
	Health   Pinger
	// Audit, when set, records every applied change.
	Audit *audit.Service
	Now   func() time.Time
}

func (h Handlers) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// --- Health ---

func (h Handlers) Healthz(c *gin.Context) {
	if h.Health == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.Health.Ping(ctx); err != nil {
		logger.FromGin(c).Warn("health check failed", "err", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// --- Auth ---

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh exchanges a refresh token for a new pair.
func (h Handlers) Refresh(c *gin.Context) {
	if h.Auth == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "refresh_token required"})
		return
	}
	pair, err := h.Auth.Refresh(req.RefreshToken, h.now())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	c.JSON(http.StatusOK, pair)
}

// --- Routing ---

type setDestinationRequest struct {
	ChannelID string `json:"channel_id"`
}

// GetRouting returns the caller's routing table as a settings view.
func (h Handlers) GetRouting(c *gin.Context) {
	ws, ok := workspace(c)
	if !ok {
		return
	}
	v, err := h.Settings.View(c.Request.Context(), ws)
	if err != nil {
		abortWithStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// PutDestination routes one kind to a channel.
func (h Handlers) PutDestination(c *gin.Context) {
	ws, ok := workspace(c)
	if !ok {
		return
	}
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	var req setDestinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	channelID := strings.TrimSpace(req.ChannelID)
	if channelID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "channel_id required"})
		return
	}

	ctx := c.Request.Context()
	if h.Resolver != nil {
		if _, err := h.Resolver.Resolve(ctx, ws, channelID); err != nil {
			logger.FromGin(c).Info("destination rejected", "workspace_id", ws, "channel_id", channelID, "err", err)
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "channel not reachable in this workspace"})
			return
		}
	}
	if err := h.Store.SetDestination(ctx, ws, kind, channelID); err != nil {
		abortWithStoreError(c, err)
		return
	}
	logger.FromGin(c).Info("log destination updated", "workspace_id", ws, "kind", kind, "channel_id", channelID)
	h.recordChange(c, ws, kind, channelID)

	v, err := h.Settings.View(ctx, ws)
	if err != nil {
		abortWithStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// DeleteDestination is the settings reset control for one kind.
func (h Handlers) DeleteDestination(c *gin.Context) {
	ws, ok := workspace(c)
	if !ok {
		return
	}
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	v, cleared, err := h.Settings.Reset(c.Request.Context(), ws, kind)
	if err != nil {
		abortWithStoreError(c, err)
		return
	}
	if cleared {
		logger.FromGin(c).Info("log destination reset", "workspace_id", ws, "kind", kind)
		h.recordChange(c, ws, kind, "")
	}
	c.JSON(http.StatusOK, v)
}

// recordChange is best-effort; the change itself already succeeded.
func (h Handlers) recordChange(c *gin.Context, ws string, kind eventlog.Kind, channelID string) {
	if h.Audit == nil {
		return
	}
	id, _ := auth.IdentityFrom(c.Request.Context())
	err := h.Audit.RecordChange(c.Request.Context(), audit.Change{
		WorkspaceID: ws,
		Kind:        kind.Key(),
		ChannelID:   channelID,
		ActorID:     id.OperatorID,
		ActorRole:   id.Role,
		Source:      audit.SourceAPI,
		IPAddress:   c.ClientIP(),
	})
	if err != nil {
		logger.FromGin(c).Warn("audit append failed", "workspace_id", ws, "kind", kind, "err", err)
	}
}

func workspace(c *gin.Context) (string, bool) {
	ws, err := auth.WorkspaceID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "workspace_id required"})
		return "", false
	}
	return ws, true
}

func kindParam(c *gin.Context) (eventlog.Kind, bool) {
	k, err := eventlog.ParseKind(c.Param("kind"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "unknown event kind"})
		return "", false
	}
	return k, true
}

func abortWithStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, eventlog.ErrInvalidArgument), errors.Is(err, eventlog.ErrUnknownKind):
		logger.FromGin(c).Info("routing request rejected", "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid routing request"})
	case errors.Is(err, eventlog.ErrStoreUnavailable):
		logger.FromGin(c).Error("routing store unavailable", "err", err)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "routing store unavailable, try again later"})
	default:
		logger.FromGin(c).Error("routing request failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
