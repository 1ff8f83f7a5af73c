// Package v1 serves the REST API: health and status probes, the chat and
// journey endpoints, and conversation management.
package v1

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/citycompass/citycompass/dialog"
	"github.com/citycompass/citycompass/internal/profile"
	"github.com/citycompass/citycompass/location"
	"github.com/citycompass/citycompass/store"
)

type APIV1Service struct {
	Profile *profile.Profile
	Store   *store.Store
	Session *dialog.SessionService

	startTime time.Time
}

func NewAPIV1Service(profile *profile.Profile, store *store.Store, session *dialog.SessionService) *APIV1Service {
	return &APIV1Service{
		Profile:   profile,
		Store:     store,
		Session:   session,
		startTime: time.Now(),
	}
}

// RegisterRoutes mounts every v1 endpoint on the echo instance.
func (s *APIV1Service) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")

	api.GET("/health", s.getHealth)
	api.GET("/status", s.getStatus)
	api.POST("/chat", s.postChat)
	api.POST("/journey", s.postJourney)

	api.GET("/conversations", s.listConversations)
	api.POST("/conversations", s.createConversation)
	api.GET("/conversations/:id", s.getConversation)
	api.PATCH("/conversations/:id", s.renameConversation)
	api.DELETE("/conversations/:id", s.deleteConversation)
}

type healthResponse struct {
	Status   string          `json:"status"`
	Message  string          `json:"message"`
	Features map[string]bool `json:"features"`
}

func (s *APIV1Service) getHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, &healthResponse{
		Status:  "OK",
		Message: "Urban Mobility API with Ollama and Location Services is running",
		Features: map[string]bool{
			"ollama":        true,
			"locationAware": true,
			"googleMaps":    s.Profile.IsMapsEnabled(),
		},
	})
}

type statusResponse struct {
	Status    string            `json:"status"`
	Uptime    int64             `json:"uptime"`
	Memory    memoryStats       `json:"memory"`
	Features  map[string]bool   `json:"features"`
	Endpoints map[string]string `json:"endpoints"`
}

type memoryStats struct {
	Alloc      uint64 `json:"alloc"`
	TotalAlloc uint64 `json:"totalAlloc"`
	Sys        uint64 `json:"sys"`
	NumGC      uint32 `json:"numGC"`
	Goroutines int    `json:"goroutines"`
}

func (s *APIV1Service) getStatus(c echo.Context) error {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return c.JSON(http.StatusOK, &statusResponse{
		Status: "running",
		Uptime: int64(time.Since(s.startTime).Seconds()),
		Memory: memoryStats{
			Alloc:      m.Alloc,
			TotalAlloc: m.TotalAlloc,
			Sys:        m.Sys,
			NumGC:      m.NumGC,
			Goroutines: runtime.NumGoroutine(),
		},
		Features: map[string]bool{
			"ollama":                true,
			"locationServices":      true,
			"googleMapsIntegration": s.Profile.IsMapsEnabled(),
			"webSocketSupport":      true,
			"conversationHistory":   true,
		},
		Endpoints: map[string]string{
			"health":  "/api/health",
			"chat":    "/api/chat",
			"journey": "/api/journey",
			"status":  "/api/status",
		},
	})
}

type chatRequest struct {
	Message        string             `json:"message"`
	UserID         string             `json:"userId"`
	ConversationID string             `json:"conversationId"`
	UserLocation   *location.GeoPoint `json:"userLocation"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (s *APIV1Service) postChat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, &errorResponse{Error: "Invalid request body", Details: err.Error()})
	}
	if req.Message == "" {
		return c.JSON(http.StatusBadRequest, &errorResponse{Error: "message is required"})
	}

	envelope, err := s.Session.Process(c.Request().Context(), dialog.SessionInput{
		ConversationID: req.ConversationID,
		UserID:         req.UserID,
		Message:        req.Message,
		UserLocation:   req.UserLocation,
	})
	if err != nil {
		if errors.Is(err, store.ErrConversationNotFound) {
			return c.JSON(http.StatusNotFound, &errorResponse{Error: "conversation not found"})
		}
		return c.JSON(http.StatusInternalServerError, &errorResponse{
			Error:   "Failed to process message",
			Details: err.Error(),
		})
	}
	return c.JSON(http.StatusOK, envelope)
}

type journeyRequest struct {
	Origin       string             `json:"origin"`
	Destination  string             `json:"destination"`
	UserLocation *location.GeoPoint `json:"userLocation"`
}

func (s *APIV1Service) postJourney(c echo.Context) error {
	var req journeyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, &errorResponse{Error: "Invalid request body", Details: err.Error()})
	}
	if req.Origin == "" || req.Destination == "" {
		return c.JSON(http.StatusBadRequest, &errorResponse{Error: "origin and destination are required"})
	}

	message := fmt.Sprintf("Plan a journey from %s to %s", req.Origin, req.Destination)
	envelope, err := s.Session.Process(c.Request().Context(), dialog.SessionInput{
		UserID:       "api-user",
		Message:      message,
		UserLocation: req.UserLocation,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, &errorResponse{
			Error:   "Failed to plan journey",
			Details: err.Error(),
		})
	}
	return c.JSON(http.StatusOK, envelope)
}

func (s *APIV1Service) listConversations(c echo.Context) error {
	find := &store.FindConversation{}
	if userID := c.QueryParam("userId"); userID != "" {
		find.UserID = &userID
	}

	list, err := s.Store.ListConversations(c.Request().Context(), find)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, &errorResponse{Error: "Failed to list conversations", Details: err.Error()})
	}
	if list == nil {
		list = []*store.Conversation{}
	}
	return c.JSON(http.StatusOK, list)
}

type createConversationRequest struct {
	UserID string `json:"userId"`
}

func (s *APIV1Service) createConversation(c echo.Context) error {
	var req createConversationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, &errorResponse{Error: "Invalid request body", Details: err.Error()})
	}

	conversation, err := s.Store.CreateConversation(c.Request().Context(), req.UserID, dialog.WelcomeMessage)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, &errorResponse{Error: "Failed to create conversation", Details: err.Error()})
	}
	return c.JSON(http.StatusCreated, conversation)
}

func (s *APIV1Service) getConversation(c echo.Context) error {
	conversation, err := s.Store.GetConversation(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrConversationNotFound) {
			return c.JSON(http.StatusNotFound, &errorResponse{Error: "conversation not found"})
		}
		return c.JSON(http.StatusInternalServerError, &errorResponse{Error: "Failed to load conversation", Details: err.Error()})
	}
	return c.JSON(http.StatusOK, conversation)
}

type renameConversationRequest struct {
	Title string `json:"title"`
}

func (s *APIV1Service) renameConversation(c echo.Context) error {
	var req renameConversationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, &errorResponse{Error: "Invalid request body", Details: err.Error()})
	}
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, &errorResponse{Error: "title is required"})
	}

	if err := s.Store.RenameConversation(c.Request().Context(), c.Param("id"), req.Title); err != nil {
		if errors.Is(err, store.ErrConversationNotFound) {
			return c.JSON(http.StatusNotFound, &errorResponse{Error: "conversation not found"})
		}
		return c.JSON(http.StatusInternalServerError, &errorResponse{Error: "Failed to rename conversation", Details: err.Error()})
	}

	conversation, err := s.Store.GetConversation(c.Request().Context(), c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, &errorResponse{Error: "Failed to load conversation", Details: err.Error()})
	}
	return c.JSON(http.StatusOK, conversation)
}

func (s *APIV1Service) deleteConversation(c echo.Context) error {
	if err := s.Store.DeleteConversation(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, store.ErrConversationNotFound) {
			return c.JSON(http.StatusNotFound, &errorResponse{Error: "conversation not found"})
		}
		return c.JSON(http.StatusInternalServerError, &errorResponse{Error: "Failed to delete conversation", Details: err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}
