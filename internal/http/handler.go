package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"go.climdata.io/sunshine-api/internal/usecase"
)

// Handler handles HTTP requests for dataset inspection.
type Handler struct {
	inspectUC *usecase.InspectUseCase
}

// NewHandler creates a new HTTP handler.
func NewHandler(inspectUC *usecase.InspectUseCase) *Handler {
	return &Handler{inspectUC: inspectUC}
}

// GetDataset handles GET /v1/dataset.
func (h *Handler) GetDataset(c *gin.Context) {
	info, err := h.inspectUC.Describe()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, info)
}

// GetStats handles GET /v1/stats.
func (h *Handler) GetStats(c *gin.Context) {
	resp, err := h.inspectUC.Stats(c.Query("unit"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetPoint handles GET /v1/point.
func (h *Handler) GetPoint(c *gin.Context) {
	latStr := c.Query("lat")
	lonStr := c.Query("lon")
	if latStr == "" || lonStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lon parameters are required"})
		return
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid latitude: %v", err)})
		return
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid longitude: %v", err)})
		return
	}

	resp, err := h.inspectUC.Sample(lat, lon)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetRender handles GET /v1/render.
func (h *Handler) GetRender(c *gin.Context) {
	req := usecase.RenderRequest{
		Style:      c.Query("style"),
		Projection: c.Query("projection"),
		Unit:       c.Query("unit"),
	}

	var err error
	if req.Width, err = intQuery(c, "width", 0); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Height, err = intQuery(c, "height", 0); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", "image/png")
	c.Status(http.StatusOK)
	if err := h.inspectUC.Render(req, c.Writer); err != nil {
		// Headers are already out; all we can do is drop the connection.
		_ = c.Error(err)
		c.Abort()
	}
}

// GetTidy handles GET /v1/tidy.
func (h *Handler) GetTidy(c *gin.Context) {
	keepMissing := true
	switch c.DefaultQuery("missing", "keep") {
	case "keep":
	case "drop":
		keepMissing = false
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing must be keep or drop"})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="tidy.csv"`)
	c.Status(http.StatusOK)
	if err := h.inspectUC.TidyCSV(c.Writer, keepMissing, c.Query("unit")); err != nil {
		_ = c.Error(err)
		c.Abort()
	}
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func intQuery(c *gin.Context, name string, def int) (int, error) {
	s := c.Query(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", name, err)
	}
	return v, nil
}
