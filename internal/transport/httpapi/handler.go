// Package httpapi exposes the scoring pipeline over HTTP.
package httpapi

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"StoryScanner/internal/domain"
	"StoryScanner/internal/ports"
	"StoryScanner/internal/usecase"
)

// Handler routes scoring and queue requests to the pipeline.
type Handler struct {
	pipeline *usecase.Pipeline
	repo     ports.StoryRepository
	logger   *slog.Logger
}

// NewRouter builds the gin engine with all routes registered. repo may
// be nil when no story database is configured; inline scoring still
// works without it.
func NewRouter(pipeline *usecase.Pipeline, repo ports.StoryRepository, logger *slog.Logger) *gin.Engine {
	h := &Handler{pipeline: pipeline, repo: repo, logger: logger}

	router := gin.New()
	router.Use(gin.Recovery())

	router.POST("/score", h.ScoreLocal)
	router.POST("/score/enhanced", h.ScoreEnhanced)
	router.POST("/stories/:id/enhance", h.EnqueueEnhancement)
	router.GET("/jobs/:id", h.JobStatus)
	router.GET("/queue/stats", h.QueueStats)

	return router
}

type scoreRequest struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	SourceURL string `json:"sourceUrl"`
	CompanyID string `json:"companyId"`
}

func (r scoreRequest) content() domain.StoryContent {
	return domain.StoryContent{
		ID:        r.ID,
		Title:     r.Title,
		Body:      r.Body,
		SourceURL: r.SourceURL,
		CompanyID: r.CompanyID,
	}
}

// ScoreLocal runs the deterministic scorers only.
func (h *Handler) ScoreLocal(c *gin.Context) {
	req, company, ok := h.bindScoreRequest(c)
	if !ok {
		return
	}

	result := h.pipeline.ScoreLocal(c.Request.Context(), req.content(), company)
	c.JSON(http.StatusOK, result)
}

// ScoreEnhanced runs local scoring plus one synchronous enhancement
// attempt, falling back to the local result when the service is out.
func (h *Handler) ScoreEnhanced(c *gin.Context) {
	req, company, ok := h.bindScoreRequest(c)
	if !ok {
		return
	}

	result := h.pipeline.ScoreWithEnhancement(c.Request.Context(), req.content(), company)
	c.JSON(http.StatusOK, result)
}

// EnqueueEnhancement schedules background enhancement for a stored
// story and returns the job id immediately.
func (h *Handler) EnqueueEnhancement(c *gin.Context) {
	storyID := strings.TrimSpace(c.Param("id"))
	if storyID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "story id is required"})
		return
	}

	jobID, err := h.pipeline.EnqueueEnhancement(c.Request.Context(), storyID)
	if err != nil {
		h.logger.Error("enqueue enhancement failed", "story_id", storyID, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "enhancement queue unavailable"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"jobId": jobID, "status": string(domain.JobWaiting)})
}

// JobStatus reports the state of an enhancement job.
func (h *Handler) JobStatus(c *gin.Context) {
	job, err := h.pipeline.JobStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("job lookup failed", "job_id", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "job lookup failed"})
		return
	}
	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}

	c.JSON(http.StatusOK, job)
}

// QueueStats reports per-status job counts.
func (h *Handler) QueueStats(c *gin.Context) {
	stats, err := h.pipeline.QueueStats(c.Request.Context())
	if err != nil {
		h.logger.Error("queue stats failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "queue stats failed"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) bindScoreRequest(c *gin.Context) (scoreRequest, *domain.CompanyContext, bool) {
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return scoreRequest{}, nil, false
	}

	var company *domain.CompanyContext
	if req.CompanyID != "" && h.repo != nil {
		found, err := h.repo.FetchCompany(c.Request.Context(), req.CompanyID)
		if err != nil {
			h.logger.Warn("company lookup failed, scoring without context",
				"company_id", req.CompanyID, "error", err)
		} else {
			company = found
		}
	}

	return req, company, true
}
