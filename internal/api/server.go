package api

import (
	_ "embed"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"
)

//go:embed openapi.yaml
var openapiSpec []byte

// GetSwagger returns the OpenAPI document describing the public API.
func GetSwagger() (*openapi3.T, error) {
	doc, err := openapi3.NewLoader().LoadFromData(openapiSpec)
	if err != nil {
		return nil, fmt.Errorf("loading public openapi spec: %w", err)
	}
	return doc, nil
}

type Error struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type TrackViewRequest struct {
	Name string `json:"name"`
}

type TrackViewResponse struct {
	Success bool `json:"success"`
}

type GreetingResponse struct {
	Text string `json:"text"`
}

type GetGreetingParams struct {
	Name *string `form:"name" json:"name,omitempty"`
	Type *string `form:"type" json:"type,omitempty"`
}

// ServerInterface is the set of operations in openapi.yaml.
type ServerInterface interface {
	GetHealth(c *gin.Context)
	PostTrackView(c *gin.Context)
	GetGreeting(c *gin.Context, params GetGreetingParams)
}

type serverWrapper struct {
	handler ServerInterface
}

func (w *serverWrapper) getGreeting(c *gin.Context) {
	var params GetGreetingParams

	if err := runtime.BindQueryParameter("form", true, false, "name", c.Request.URL.Query(), &params.Name); err != nil {
		c.JSON(http.StatusBadRequest, Error{Message: fmt.Sprintf("invalid format for parameter name: %v", err)})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "type", c.Request.URL.Query(), &params.Type); err != nil {
		c.JSON(http.StatusBadRequest, Error{Message: fmt.Sprintf("invalid format for parameter type: %v", err)})
		return
	}

	w.handler.GetGreeting(c, params)
}

// RegisterHandlers mounts every public operation on router.
func RegisterHandlers(router gin.IRoutes, si ServerInterface) {
	w := &serverWrapper{handler: si}

	router.GET("/health", si.GetHealth)
	router.POST("/track-view", si.PostTrackView)
	router.GET("/greeting", w.getGreeting)
}
