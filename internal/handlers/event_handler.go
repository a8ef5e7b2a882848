package handlers

import (
	"net/http"
	"strconv"
	"time"

	"ticket-aggregator/internal/repository"
	"ticket-aggregator/internal/scrape"
	"ticket-aggregator/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EventHandler struct {
	repo    *repository.Repository
	ingest  *services.IngestService
	sources []scrape.Source
}

func NewEventHandler(repo *repository.Repository, ingest *services.IngestService, sources []scrape.Source) *EventHandler {
	return &EventHandler{repo: repo, ingest: ingest, sources: sources}
}

// GetEvents returns upcoming aggregated events with links and tickets
func (h *EventHandler) GetEvents(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	events, total, err := h.repo.ListUpcomingEvents(c.Request.Context(), time.Now(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch events"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    events,
		"total":   total,
	})
}

// GetEventByID returns a single event with its links and tickets
func (h *EventHandler) GetEventByID(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event id"})
		return
	}

	event, err := h.repo.GetEventByID(c.Request.Context(), eventID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    event,
	})
}

// TriggerCrawl runs one ingest session synchronously and returns its
// structured result
func (h *EventHandler) TriggerCrawl(c *gin.Context) {
	var req struct {
		Query string `json:"query" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if len(h.sources) == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "No scrape sources configured"})
		return
	}

	result, err := h.ingest.RunSession(c.Request.Context(), h.sources, req.Query)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "data": result})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}
