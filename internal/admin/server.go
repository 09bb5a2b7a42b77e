package admin

import (
	_ "embed"
	"fmt"
	"net/http"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"
)

//go:embed openapi.yaml
var openapiSpec []byte

// GetSwagger returns the OpenAPI document describing the generator API.
func GetSwagger() (*openapi3.T, error) {
	doc, err := openapi3.NewLoader().LoadFromData(openapiSpec)
	if err != nil {
		return nil, fmt.Errorf("loading admin openapi spec: %w", err)
	}
	return doc, nil
}

type Error struct {
	Message string `json:"message"`
}

type Message struct {
	Message string `json:"message"`
}

type InvitationCreate struct {
	Name string `json:"name"`
	Type string `json:"type"`
	URL  string `json:"url"`
}

type InvitationUpdate struct {
	Status string     `json:"status"`
	SentAt *time.Time `json:"sent_at,omitempty"`
}

type ViewHistory struct {
	ID    int64       `json:"id"`
	Views []time.Time `json:"views"`
}

type Preview struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

type GetPreviewParams struct {
	Name *string `form:"name" json:"name,omitempty"`
	Type string  `form:"type" json:"type"`
}

// ServerInterface is the set of operations in openapi.yaml.
type ServerInterface interface {
	GetHealth(c *gin.Context)
	GetInvitations(c *gin.Context)
	PostInvitation(c *gin.Context)
	PutInvitation(c *gin.Context, id int64)
	DeleteInvitation(c *gin.Context, id int64)
	GetInvitationViews(c *gin.Context, id int64)
	GetStats(c *gin.Context)
	GetPreview(c *gin.Context, params GetPreviewParams)
}

type serverWrapper struct {
	handler ServerInterface
}

func bindID(c *gin.Context) (int64, bool) {
	var id int64
	err := runtime.BindStyledParameterWithOptions("simple", "id", c.Param("id"), &id, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, Error{Message: fmt.Sprintf("invalid format for parameter id: %v", err)})
		return 0, false
	}
	return id, true
}

func (w *serverWrapper) putInvitation(c *gin.Context) {
	if id, ok := bindID(c); ok {
		w.handler.PutInvitation(c, id)
	}
}

func (w *serverWrapper) deleteInvitation(c *gin.Context) {
	if id, ok := bindID(c); ok {
		w.handler.DeleteInvitation(c, id)
	}
}

func (w *serverWrapper) getInvitationViews(c *gin.Context) {
	if id, ok := bindID(c); ok {
		w.handler.GetInvitationViews(c, id)
	}
}

func (w *serverWrapper) getPreview(c *gin.Context) {
	var params GetPreviewParams

	if err := runtime.BindQueryParameter("form", true, false, "name", c.Request.URL.Query(), &params.Name); err != nil {
		c.JSON(http.StatusBadRequest, Error{Message: fmt.Sprintf("invalid format for parameter name: %v", err)})
		return
	}
	if err := runtime.BindQueryParameter("form", true, true, "type", c.Request.URL.Query(), &params.Type); err != nil {
		c.JSON(http.StatusBadRequest, Error{Message: fmt.Sprintf("invalid format for parameter type: %v", err)})
		return
	}

	w.handler.GetPreview(c, params)
}

// RegisterHandlers mounts every generator operation on router.
func RegisterHandlers(router gin.IRoutes, si ServerInterface) {
	w := &serverWrapper{handler: si}

	router.GET("/health", si.GetHealth)
	router.GET("/invitations", si.GetInvitations)
	router.POST("/invitations", si.PostInvitation)
	router.PUT("/invitations/:id", w.putInvitation)
	router.DELETE("/invitations/:id", w.deleteInvitation)
	router.GET("/invitations/:id/views", w.getInvitationViews)
	router.GET("/stats", si.GetStats)
	router.GET("/preview", w.getPreview)
}

