package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Tapedynamics/Twittich/internal/auth"
	"github.com/Tapedynamics/Twittich/internal/domain"
	"github.com/Tapedynamics/Twittich/internal/repository"
	"github.com/Tapedynamics/Twittich/internal/service"
	pkglog "github.com/Tapedynamics/Twittich/pkg/log"
	"github.com/Tapedynamics/Twittich/pkg/response"
)

const (
	defaultPageSize     = 20
	maxPageSize         = 100
	defaultChatLogLimit = 50
	maxChatLogLimit     = 200
)

// HTTPHandler serves the session lifecycle REST API.
type HTTPHandler struct {
	sessions      service.SessionService
	authenticator *auth.Authenticator
}

// NewHTTPHandler creates a new HTTP handler.
func NewHTTPHandler(sessions service.SessionService, authenticator *auth.Authenticator) *HTTPHandler {
	return &HTTPHandler{
		sessions:      sessions,
		authenticator: authenticator,
	}
}

// RegisterRoutes mounts the API on a router group.
func (h *HTTPHandler) RegisterRoutes(r *gin.RouterGroup) {
	live := r.Group("/live")
	{
		live.GET("/current", h.GetCurrentSession)
		live.GET("", h.ListSessions)
		live.GET("/:id/chat", h.GetChatHistory)

		authed := live.Group("", h.authenticator.RequireAuth())
		{
			authed.POST("", h.StartSession)
			authed.DELETE("/:id", h.EndSession)
		}
	}
}

// StartSession handles POST /live.
func (h *HTTPHandler) StartSession(c *gin.Context) {
	user := auth.GetUser(c)

	var req domain.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	session, err := h.sessions.StartSession(c.Request.Context(), user, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotAdmin):
			response.Forbidden(c, "only admins can start a live session")
		case errors.Is(err, service.ErrSessionActive):
			response.Conflict(c, "a live session is already active")
		default:
			l := pkglog.Ctx(c.Request.Context())
			l.Error().Err(err).Msg("failed to start live session")
			response.InternalError(c, "failed to start live session")
		}
		return
	}

	response.Created(c, session)
}

// EndSession handles DELETE /live/:id.
func (h *HTTPHandler) EndSession(c *gin.Context) {
	user := auth.GetUser(c)
	sessionID := c.Param("id")

	err := h.sessions.EndSession(c.Request.Context(), user, sessionID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSessionNotFound):
			response.NotFound(c, "session not found")
		case errors.Is(err, service.ErrNotBroadcaster):
			response.Forbidden(c, "only the broadcaster can end this session")
		default:
			l := pkglog.Ctx(c.Request.Context())
			l.Error().Err(err).Str(pkglog.FieldSessionID, sessionID).Msg("failed to end live session")
			response.InternalError(c, "failed to end live session")
		}
		return
	}

	response.Success(c, gin.H{"id": sessionID, "status": domain.SessionStatusEnded})
}

// GetCurrentSession handles GET /live/current.
func (h *HTTPHandler) GetCurrentSession(c *gin.Context) {
	session, err := h.sessions.GetCurrentSession(c.Request.Context())
	if err != nil {
		l := pkglog.Ctx(c.Request.Context())
		l.Error().Err(err).Msg("failed to fetch current live session")
		response.InternalError(c, "failed to fetch current live session")
		return
	}

	// No active session is an empty result, not an error.
	response.Success(c, gin.H{"session": session})
}

// ListSessions handles GET /live.
func (h *HTTPHandler) ListSessions(c *gin.Context) {
	var req domain.ListSessionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid pagination parameters")
		return
	}
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = defaultPageSize
	}
	if req.PageSize > maxPageSize {
		req.PageSize = maxPageSize
	}

	sessions, total, err := h.sessions.ListSessions(c.Request.Context(), req.Page, req.PageSize)
	if err != nil {
		l := pkglog.Ctx(c.Request.Context())
		l.Error().Err(err).Msg("failed to list live sessions")
		response.InternalError(c, "failed to list live sessions")
		return
	}

	response.Success(c, gin.H{
		"sessions": sessions,
		"total":    total,
		"page":     req.Page,
		"limit":    req.PageSize,
	})
}

// GetChatHistory handles GET /live/:id/chat.
func (h *HTTPHandler) GetChatHistory(c *gin.Context) {
	sessionID := c.Param("id")

	limit := defaultChatLogLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			response.BadRequest(c, "invalid limit")
			return
		}
		limit = parsed
	}
	if limit > maxChatLogLimit {
		limit = maxChatLogLimit
	}

	messages, err := h.sessions.GetChatHistory(c.Request.Context(), sessionID, limit)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			response.NotFound(c, "session not found")
			return
		}
		l := pkglog.Ctx(c.Request.Context())
		l.Error().Err(err).Str(pkglog.FieldSessionID, sessionID).Msg("failed to fetch chat history")
		response.InternalError(c, "failed to fetch chat history")
		return
	}

	response.Success(c, gin.H{"messages": messages})
}
