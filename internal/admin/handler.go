package admin

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/viguzmanp/boda-consu-seba/internal/greeting"
	"github.com/viguzmanp/boda-consu-seba/internal/store"
)

// AdminStore defines the store operations needed by the generator.
type AdminStore interface {
	Create(ctx context.Context, name string, t store.Type, url string) (*store.Invitation, error)
	GetAll(ctx context.Context) ([]store.Invitation, error)
	GetByID(ctx context.Context, id int64) (*store.Invitation, error)
	GetByName(ctx context.Context, name string) (*store.Invitation, error)
	UpdateStatus(ctx context.Context, id int64, status store.Status, sentAt *time.Time) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	GetStats(ctx context.Context) (store.Stats, error)
}

// ViewHistoryStore reads and clears per-invitation view history.
type ViewHistoryStore interface {
	Views(ctx context.Context, id int64) ([]time.Time, error)
	Forget(ctx context.Context, id int64) error
}

type Handler struct {
	store   AdminStore
	views   ViewHistoryStore
	baseURL string
}

// NewHandler builds the generator handler. baseURL is the public landing page
// address used for previewed links.
func NewHandler(s AdminStore, v ViewHistoryStore, baseURL string) *Handler {
	return &Handler{store: s, views: v, baseURL: baseURL}
}

var _ ServerInterface = (*Handler)(nil)

func internalError(c *gin.Context, logger *log.Entry, err error, msg string) {
	logger.WithError(err).Error(msg)
	c.JSON(http.StatusInternalServerError, Error{Message: "internal error"})
}

func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) GetInvitations(c *gin.Context) {
	invitations, err := h.store.GetAll(c.Request.Context())
	if err != nil {
		internalError(c, log.WithField("route", "/invitations"), err, "failed to list invitations")
		return
	}

	c.JSON(http.StatusOK, invitations)
}

// PostInvitation creates a pending invitation. The duplicate-name check and
// the insert are separate statements; concurrent creates of the same name
// can both succeed.
func (h *Handler) PostInvitation(c *gin.Context) {
	var body InvitationCreate
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, Error{Message: "invalid request body"})
		return
	}

	if strings.TrimSpace(body.Name) == "" || body.Type == "" || strings.TrimSpace(body.URL) == "" {
		c.JSON(http.StatusBadRequest, Error{Message: "missing required fields: name, type, url"})
		return
	}

	ctx := c.Request.Context()
	logger := log.WithField("name", body.Name)

	existing, err := h.store.GetByName(ctx, body.Name)
	if err != nil {
		internalError(c, logger, err, "failed to look up invitation")
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, Error{Message: "an invitation for this guest already exists"})
		return
	}

	inv, err := h.store.Create(ctx, body.Name, store.Type(body.Type), body.URL)
	var verr *store.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, Error{Message: verr.Error()})
		return
	}
	if err != nil {
		internalError(c, logger, err, "failed to create invitation")
		return
	}

	logger.WithField("invitation_id", inv.ID).Info("invitation created")
	c.JSON(http.StatusCreated, inv)
}

// PutInvitation sets the status of an invitation. Any status may follow any
// other; sent_at is only replaced when the body carries one.
func (h *Handler) PutInvitation(c *gin.Context, id int64) {
	logger := log.WithField("invitation_id", id)

	var body InvitationUpdate
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, Error{Message: "invalid request body"})
		return
	}
	if body.Status == "" {
		c.JSON(http.StatusBadRequest, Error{Message: "status is required"})
		return
	}

	ctx := c.Request.Context()

	inv, err := h.store.GetByID(ctx, id)
	if err != nil {
		internalError(c, logger, err, "failed to get invitation")
		return
	}
	if inv == nil {
		c.JSON(http.StatusNotFound, Error{Message: "invitation not found"})
		return
	}

	updated, err := h.store.UpdateStatus(ctx, id, store.Status(body.Status), body.SentAt)
	var verr *store.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, Error{Message: verr.Error()})
		return
	}
	if err != nil {
		internalError(c, logger, err, "failed to update invitation")
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, Error{Message: "invitation not found"})
		return
	}

	inv, err = h.store.GetByID(ctx, id)
	if err != nil {
		internalError(c, logger, err, "failed to reload invitation")
		return
	}
	if inv == nil {
		c.JSON(http.StatusNotFound, Error{Message: "invitation not found"})
		return
	}

	logger.WithField("status", inv.Status).Info("invitation status updated")
	c.JSON(http.StatusOK, inv)
}

func (h *Handler) DeleteInvitation(c *gin.Context, id int64) {
	logger := log.WithField("invitation_id", id)
	ctx := c.Request.Context()

	deleted, err := h.store.Delete(ctx, id)
	if err != nil {
		internalError(c, logger, err, "failed to delete invitation")
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, Error{Message: "invitation not found"})
		return
	}

	if h.views != nil {
		if err := h.views.Forget(ctx, id); err != nil {
			logger.WithError(err).Warn("failed to forget view history")
		}
	}

	logger.Info("invitation deleted")
	c.JSON(http.StatusOK, Message{Message: "invitation deleted"})
}

func (h *Handler) GetInvitationViews(c *gin.Context, id int64) {
	logger := log.WithField("invitation_id", id)
	ctx := c.Request.Context()

	inv, err := h.store.GetByID(ctx, id)
	if err != nil {
		internalError(c, logger, err, "failed to get invitation")
		return
	}
	if inv == nil {
		c.JSON(http.StatusNotFound, Error{Message: "invitation not found"})
		return
	}

	views := make([]time.Time, 0)
	if h.views != nil {
		views, err = h.views.Views(ctx, id)
		if err != nil {
			internalError(c, logger, err, "failed to read view history")
			return
		}
	}

	c.JSON(http.StatusOK, ViewHistory{ID: id, Views: views})
}

func (h *Handler) GetStats(c *gin.Context) {
	st, err := h.store.GetStats(c.Request.Context())
	if err != nil {
		internalError(c, log.WithField("route", "/stats"), err, "failed to get stats")
		return
	}

	c.JSON(http.StatusOK, st)
}

// GetPreview renders the greeting and link the generator would hand out for a
// guest, without storing anything.
func (h *Handler) GetPreview(c *gin.Context, params GetPreviewParams) {
	typ := store.Type(params.Type)
	if !typ.Valid() {
		c.JSON(http.StatusBadRequest, Error{Message: "type must be one of male, female, couple"})
		return
	}

	var name string
	if params.Name != nil {
		name = *params.Name
	}

	link, err := greeting.Link(h.baseURL, name, typ)
	if err != nil {
		internalError(c, log.WithField("base_url", h.baseURL), err, "failed to build invitation link")
		return
	}

	c.JSON(http.StatusOK, Preview{Text: greeting.Text(name, typ), URL: link})
}
