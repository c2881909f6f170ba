package http

import (
	"net/http"
	"time"

	"github.com/caps24escola/pixel-world/internal/hub"
	"github.com/caps24escola/pixel-world/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SessionHandler serves the session registry endpoints.
type SessionHandler struct {
	sessionService *service.SessionService
	hub            *hub.Hub
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(sessionService *service.SessionService, h *hub.Hub) *SessionHandler {
	return &SessionHandler{sessionService: sessionService, hub: h}
}

// CreateSessionResponse is returned by CreateSession.
type CreateSessionResponse struct {
	Message    string `json:"message"`
	SessionID  string `json:"session_id"`
	PanelURL   string `json:"panel_url"`
	SurfaceURL string `json:"surface_url"`
}

// SessionResponse describes one session.
type SessionResponse struct {
	SessionID  string             `json:"session_id"`
	CreatedAt  time.Time          `json:"created_at"`
	LastActive time.Time          `json:"last_active"`
	Running    bool               `json:"running"`
	Status     *hub.SessionStatus `json:"status,omitempty"`
}

// CreateSession handles POST /api/sessions.
func (h *SessionHandler) CreateSession(c *gin.Context) {
	session, err := h.sessionService.CreateSession(c.Request.Context())
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	logrus.WithField("session_id", session.ID).Info("Handler.CreateSession: Session created")
	SuccessResponse(c, http.StatusCreated, CreateSessionResponse{
		Message:    "Session created successfully",
		SessionID:  session.ID,
		PanelURL:   "/ws/session/" + session.ID + "/" + string(hub.RolePanel),
		SurfaceURL: "/ws/session/" + session.ID + "/" + string(hub.RoleSurface),
	})
}

// GetSession handles GET /api/sessions/:sessionId.
func (h *SessionHandler) GetSession(c *gin.Context) {
	session, err := h.sessionService.GetSession(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	resp := SessionResponse{
		SessionID:  session.ID,
		CreatedAt:  session.CreatedAt,
		LastActive: session.LastActive,
	}
	if status, ok := h.hub.Status(session.ID); ok {
		resp.Running = true
		resp.Status = &status
	}
	SuccessResponse(c, http.StatusOK, resp)
}

// EndSession handles DELETE /api/sessions/:sessionId.
func (h *SessionHandler) EndSession(c *gin.Context) {
	id := c.Param("sessionId")
	if err := h.sessionService.EndSession(c.Request.Context(), id); err != nil {
		HandleServiceError(c, err)
		return
	}
	h.hub.CloseSession(id)
	logrus.WithField("session_id", id).Info("Handler.EndSession: Session ended")
	c.Status(http.StatusNoContent)
}
