package analysis

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"chatlens-backend/internal/llm"
	"chatlens-backend/internal/shared/server/middleware"
	"chatlens-backend/internal/shared/server/respond"
	"chatlens-backend/internal/shared/util"
	"chatlens-backend/internal/summaries"
)

// Handler exposes the analysis API over gin.
type Handler struct {
	Service   *Service
	Summaries summaries.Repo
}

// NewHandler constructs a Handler.
func NewHandler(service *Service, summariesRepo summaries.Repo) *Handler {
	return &Handler{Service: service, Summaries: summariesRepo}
}

// RegisterRoutes wires the analysis endpoints onto the group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyses", h.Create)
	rg.GET("/summaries/:chatId", h.GetSummaries)
	rg.GET("/runs/:runId/artifacts/:name", h.GetRunArtifact)
	rg.GET("/presets", h.ListPresets)
	rg.GET("/providers", h.ListProviders)
}

// Create runs an analysis synchronously or enqueues it for the worker.
func (h *Handler) Create(c *gin.Context) {
	var req createAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Invalid request body", err.Error())
		return
	}
	c.Set("chatId", req.ChatID)

	params := RunParams{
		ChatID:   req.ChatID,
		GroupID:  req.GroupID,
		Title:    req.Title,
		Date:     req.Date,
		Preset:   req.Preset,
		Steps:    req.Steps,
		Provider: req.Provider,
		Model:    req.Model,
		Messages: req.toMessages(),
	}

	if req.Async {
		analysisID, err := h.Service.Enqueue(c.Request.Context(), params, middleware.RequestIDFromContext(c))
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.Set("analysisId", analysisID)
		respond.JSON(c, http.StatusAccepted, enqueuedResponse{AnalysisID: analysisID, Status: "queued"})
		return
	}

	result, err := h.Service.Run(c.Request.Context(), params)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond.OK(c, result)
}

// GetSummaries returns the saved summary for a day or the recent history.
func (h *Handler) GetSummaries(c *gin.Context) {
	if h.Summaries == nil {
		respond.Error(c, http.StatusNotImplemented, "not_configured", "Summary storage is not configured", nil)
		return
	}
	chatID := c.Param("chatId")
	c.Set("chatId", chatID)

	if rawDate := c.Query("date"); rawDate != "" {
		day, err := time.Parse("2006-01-02", rawDate)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "date must be YYYY-MM-DD", nil)
			return
		}
		summary, err := h.Summaries.GetByChatAndDate(c.Request.Context(), chatID, day)
		if errors.Is(err, summaries.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "No summary for this day", nil)
			return
		}
		if err != nil {
			respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to load summary", nil)
			return
		}
		respond.OK(c, summary)
		return
	}

	limit := 30
	if rawLimit := c.Query("limit"); rawLimit != "" {
		if parsed, err := strconv.Atoi(rawLimit); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	list, err := h.Summaries.ListByChat(c.Request.Context(), chatID, limit)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to list summaries", nil)
		return
	}
	respond.OK(c, gin.H{"summaries": list})
}

// GetRunArtifact streams one archived run-log artifact from the object store.
func (h *Handler) GetRunArtifact(c *gin.Context) {
	if h.Service == nil || h.Service.Store == nil {
		respond.Error(c, http.StatusNotImplemented, "not_configured", "Artifact storage is not configured", nil)
		return
	}
	runID, err := util.SanitizeFileName(c.Param("runId"))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Invalid run id", nil)
		return
	}
	name, err := util.SanitizeFileName(c.Param("name"))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Invalid artifact name", nil)
		return
	}

	rc, err := h.Service.Store.Open(c.Request.Context(), fmt.Sprintf("runs/%s/%s", runID, name))
	if err != nil {
		respond.Error(c, http.StatusNotFound, "not_found", "No such artifact", nil)
		return
	}
	defer rc.Close()

	contentType := "text/plain; charset=utf-8"
	if strings.HasSuffix(name, ".json") {
		contentType = "application/json"
	}
	c.DataFromReader(http.StatusOK, -1, contentType, rc, nil)
}

// ListPresets returns the preset catalog.
func (h *Handler) ListPresets(c *gin.Context) {
	respond.OK(c, gin.H{"presets": AllPresets()})
}

// ListProviders probes and returns the registered providers.
func (h *Handler) ListProviders(c *gin.Context) {
	respond.OK(c, gin.H{"providers": h.Service.Providers.ListAvailable(c.Request.Context())})
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrDependencyUnsatisfied):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, llm.ErrUnknownProvider):
		respond.Error(c, http.StatusBadRequest, "unknown_provider", err.Error(), nil)
	case errors.Is(err, ErrProviderNotReady):
		respond.Error(c, http.StatusServiceUnavailable, "provider_unavailable", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", err.Error(), nil)
	}
}
