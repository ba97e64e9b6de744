package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"go.ngs.io/geo-skeletons/internal/domain"
	"go.ngs.io/geo-skeletons/internal/usecase"
)

// Handler handles HTTP requests for the dataset catalog.
type Handler struct {
	catalog *usecase.Catalog
}

// NewHandler creates a new HTTP handler.
func NewHandler(catalog *usecase.Catalog) *Handler {
	return &Handler{
		catalog: catalog,
	}
}

// fail writes err with a status matching its kind.
func fail(c *gin.Context, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, usecase.ErrDatasetNotFound),
		errors.Is(err, usecase.ErrEmptyField),
		errors.Is(err, domain.ErrUnknownName):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrNoProjectionSet):
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// parsePosition reads the lon and lat query parameters.
func parsePosition(c *gin.Context) (lon, lat float64, ok bool) {
	lonStr, latStr := c.Query("lon"), c.Query("lat")
	if lonStr == "" || latStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lon and lat parameters are required"})
		return 0, 0, false
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid longitude: %v", err)})
		return 0, 0, false
	}
	lat, err = strconv.ParseFloat(latStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid latitude: %v", err)})
		return 0, 0, false
	}
	return lon, lat, true
}

// ListDatasets handles GET /v1/datasets.
func (h *Handler) ListDatasets(c *gin.Context) {
	datasets := h.catalog.List()
	c.JSON(http.StatusOK, gin.H{
		"datasets": datasets,
		"count":    len(datasets),
	})
}

// GetDataset handles GET /v1/datasets/:name.
func (h *Handler) GetDataset(c *gin.Context) {
	info, err := h.catalog.Describe(c.Param("name"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// GetField handles GET /v1/datasets/:name/fields/:field.
func (h *Handler) GetField(c *gin.Context) {
	resp, err := h.catalog.Field(c.Param("name"), c.Param("field"), c.Query("convention"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetNearest handles GET /v1/datasets/:name/nearest.
func (h *Handler) GetNearest(c *gin.Context) {
	lon, lat, ok := parsePosition(c)
	if !ok {
		return
	}
	req := usecase.NearestRequest{Lon: lon, Lat: lat}
	if fastStr := c.Query("fast"); fastStr != "" {
		fast, err := strconv.ParseBool(fastStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid fast flag: %v", err)})
			return
		}
		req.Fast = fast
	}

	resp, err := h.catalog.Nearest(c.Param("name"), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetSample handles GET /v1/datasets/:name/sample.
func (h *Handler) GetSample(c *gin.Context) {
	lon, lat, ok := parsePosition(c)
	if !ok {
		return
	}
	field := c.Query("field")
	if field == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "field parameter is required"})
		return
	}

	resp, err := h.catalog.Sample(c.Param("name"), usecase.SampleRequest{Lon: lon, Lat: lat, Field: field})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetXY handles GET /v1/datasets/:name/xy.
func (h *Handler) GetXY(c *gin.Context) {
	resp, err := h.catalog.XY(c.Param("name"), c.Query("zone"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"datasets": len(h.catalog.Names()),
		"time":     time.Now().UTC().Format(time.RFC3339),
	})
}
