package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/viguzmanp/boda-consu-seba/internal/greeting"
	"github.com/viguzmanp/boda-consu-seba/internal/store"
)

// InvitationStore is the subset of store operations the landing page needs.
type InvitationStore interface {
	GetByName(ctx context.Context, name string) (*store.Invitation, error)
	UpdateStatus(ctx context.Context, id int64, status store.Status, sentAt *time.Time) (bool, error)
}

// ViewRecorder appends page views to an invitation's history.
type ViewRecorder interface {
	RecordView(ctx context.Context, id int64, at time.Time) error
}

// Handler implements ServerInterface.
type Handler struct {
	store InvitationStore
	views ViewRecorder
	now   func() time.Time
}

func NewHandler(s InvitationStore, v ViewRecorder) *Handler {
	return &Handler{store: s, views: v, now: time.Now}
}

var _ ServerInterface = (*Handler)(nil)

func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// PostTrackView marks the named invitation as viewed. Invitations already
// viewed or confirmed keep their status; the view is still logged.
func (h *Handler) PostTrackView(c *gin.Context) {
	var body TrackViewRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, Error{Message: "invalid request body"})
		return
	}
	if strings.TrimSpace(body.Name) == "" {
		c.JSON(http.StatusBadRequest, Error{Message: "name is required"})
		return
	}

	ctx := c.Request.Context()
	logger := log.WithField("name", body.Name)

	inv, err := h.store.GetByName(ctx, body.Name)
	if err != nil {
		logger.WithError(err).Error("failed to look up invitation")
		c.JSON(http.StatusInternalServerError, Error{Message: "internal error"})
		return
	}
	if inv == nil {
		c.JSON(http.StatusNotFound, Error{Message: "invitation not found"})
		return
	}
	logger = logger.WithField("invitation_id", inv.ID)

	if inv.Status.Viewable() {
		if _, err := h.store.UpdateStatus(ctx, inv.ID, store.StatusViewed, nil); err != nil {
			logger.WithError(err).Error("failed to mark invitation viewed")
			c.JSON(http.StatusInternalServerError, Error{Message: "internal error"})
			return
		}
		logger.WithField("from", inv.Status).Info("invitation viewed")
	}

	if h.views != nil {
		if err := h.views.RecordView(ctx, inv.ID, h.now()); err != nil {
			// Reason: the status change is already committed, history is best-effort
			logger.WithError(err).Warn("failed to record view")
		}
	}

	c.JSON(http.StatusOK, TrackViewResponse{Success: true})
}

func (h *Handler) GetGreeting(c *gin.Context, params GetGreetingParams) {
	var name, typ string
	if params.Name != nil {
		name = *params.Name
	}
	if params.Type != nil {
		typ = *params.Type
	}

	c.JSON(http.StatusOK, GreetingResponse{Text: greeting.Text(name, store.Type(typ))})
}
