package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"leadboard/internal/models"
	"leadboard/internal/pipeline"
)

// LeadHandler serves the documented lead endpoints over the store.
type LeadHandler struct {
	Store *Store
}

func NewLeadHandler(store *Store) *LeadHandler {
	return &LeadHandler{Store: store}
}

func listParams(c *gin.Context) (page, limit int, search string) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit, c.Query("search")
}

func listJSON(c *gin.Context, leads []models.Lead, totalPages, totalRecords int) {
	c.JSON(http.StatusOK, gin.H{
		"data": leads,
		"pagination": gin.H{
			"totalPages":   totalPages,
			"totalRecords": totalRecords,
		},
	})
}

func (h *LeadHandler) List(c *gin.Context) {
	page, limit, search := listParams(c)
	leads, totalPages, totalRecords := h.Store.List(page, limit, search)
	listJSON(c, leads, totalPages, totalRecords)
}

func (h *LeadHandler) ListByStatus(c *gin.Context) {
	status := pipeline.Status(c.Param("status"))
	if !pipeline.Known(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown lead status"})
		return
	}
	page, limit, search := listParams(c)
	leads, totalPages, totalRecords := h.Store.ListByStatus(status, page, limit, search)
	listJSON(c, leads, totalPages, totalRecords)
}

func (h *LeadHandler) Get(c *gin.Context) {
	lead, ok := h.Store.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": errLeadNotFound.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": lead})
}

type statusUpdateRequest struct {
	LeadStatus pipeline.Status `json:"leadStatus" binding:"required"`
}

func (h *LeadHandler) UpdateStatus(c *gin.Context) {
	var req statusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Store.UpdateStatus(c.Param("id"), req.LeadStatus); err != nil {
		status := http.StatusBadRequest
		if err == errLeadNotFound {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	lead, _ := h.Store.Get(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"data": lead})
}

func (h *LeadHandler) AddFollowUp(c *gin.Context) {
	var fu models.FollowUp
	if err := c.ShouldBindJSON(&fu); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if fu.Date.IsZero() || fu.Description == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date and description are required"})
		return
	}
	if err := h.Store.AddFollowUp(c.Param("id"), fu); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": fu})
}

func (h *LeadHandler) ToggleItem(c *gin.Context) {
	lead, err := h.Store.ToggleItem(c.Param("id"), c.Param("itemId"))
	if err != nil {
		status := http.StatusNotFound
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": lead})
}
