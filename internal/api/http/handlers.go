package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zhangjie25/VideoBoard-Develop/internal/domain/canvas"
	"github.com/zhangjie25/VideoBoard-Develop/internal/infrastructure/monitoring"
	"github.com/zhangjie25/VideoBoard-Develop/internal/shared/types"
	"github.com/zhangjie25/VideoBoard-Develop/internal/shared/utils"
)

// Version is reported by the root endpoint
const Version = "0.3.0"

// Handlers contains all HTTP handlers
type Handlers struct {
	workspace *canvas.Workspace
	metrics   *monitoring.Metrics
	logger    *zap.Logger
}

// NewHandlers creates a new handler set. metrics may be nil.
func NewHandlers(workspace *canvas.Workspace, metrics *monitoring.Metrics, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		workspace: workspace,
		metrics:   metrics,
		logger:    logger,
	}
}

// Register mounts every canvas route on r
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.GET("/palette", h.Palette)

	// Nodes
	r.GET("/nodes", h.ListNodes)
	r.POST("/nodes", h.CreateNode)

	node := r.Group("/nodes/:id", h.validateParams)
	node.GET("", h.GetNode)
	node.DELETE("", h.DeleteNode)
	node.POST("/toggle", h.ToggleExpand)

	// Tabs
	node.POST("/tabs", h.AddTab)
	node.POST("/tabs/:tabId/select", h.SelectTab)
	node.PUT("/tabs/:tabId/text", h.UpdateText)
	node.PUT("/tabs/:tabId/media", h.UpdateMedia)

	// Geometry and drag state
	r.PUT("/layout", h.UpdateLayout)
	r.GET("/drag", h.DragState)

	if h.metrics != nil {
		r.GET("/metrics/json", h.MetricsJSON)
	}
}

// Root handles the liveness check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "Canvas Service (Go)",
		"version": Version,
	})
}

// Health reports the editing session
func (h *Handlers) Health(c *gin.Context) {
	snap := h.workspace.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"version": snap.Version,
		"nodes":   len(snap.Nodes),
		"drag":    snap.Drag,
	})
}

// Palette lists the node kinds that can be dropped onto the canvas
func (h *Handlers) Palette(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.workspace.Palette()})
}

// ListNodes returns the full render state
func (h *Handlers) ListNodes(c *gin.Context) {
	c.JSON(http.StatusOK, h.workspace.Snapshot())
}

// CreateNodeRequest is a palette drop at a screen position
type CreateNodeRequest struct {
	Kind types.NodeKind `json:"kind" binding:"required"`
	X    float64        `json:"x"`
	Y    float64        `json:"y"`
}

// CreateNode handles a palette drop
func (h *Handlers) CreateNode(c *gin.Context) {
	var req CreateNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.workspace.AddFromPalette(req.Kind, types.Point{X: req.X, Y: req.Y})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// GetNode returns one node
func (h *Handlers) GetNode(c *gin.Context) {
	view, err := h.workspace.Node(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// DeleteNode removes a node
func (h *Handlers) DeleteNode(c *gin.Context) {
	nodeID := c.Param("id")
	if err := h.workspace.RemoveNode(nodeID); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "node_id": nodeID})
}

// ToggleExpand flips a card between expanded and collapsed
func (h *Handlers) ToggleExpand(c *gin.Context) {
	expanded, err := h.workspace.ToggleExpand(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"isExpanded": expanded})
}

// AddTab appends a new empty tab
func (h *Handlers) AddTab(c *gin.Context) {
	tab, err := h.workspace.AddTab(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, tab)
}

// SelectTab makes a tab active
func (h *Handlers) SelectTab(c *gin.Context) {
	if err := h.workspace.SelectTab(c.Param("id"), c.Param("tabId")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "activeTab": c.Param("tabId")})
}

// TextRequest carries a tab's full text
type TextRequest struct {
	Text *string `json:"text" binding:"required"`
}

// UpdateText stores a tab's text; the write is debounced
func (h *Handlers) UpdateText(c *gin.Context) {
	var req TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := utils.ValidateText(*req.Text); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.workspace.EditText(c.Param("id"), c.Param("tabId"), *req.Text); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"success": true})
}

// UpdateMedia stores a media selection on a tab
func (h *Handlers) UpdateMedia(c *gin.Context) {
	var req types.MediaPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.workspace.SelectMedia(c.Param("id"), c.Param("tabId"), req); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// UpdateLayout replaces the rendered geometry
func (h *Handlers) UpdateLayout(c *gin.Context) {
	var req canvas.Layout
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.workspace.UpdateLayout(req); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DragState returns the shared drag context
func (h *Handlers) DragState(c *gin.Context) {
	c.JSON(http.StatusOK, h.workspace.DragState())
}

// MetricsJSON returns the current metric values
func (h *Handlers) MetricsJSON(c *gin.Context) {
	c.JSON(http.StatusOK, h.metrics.Snapshot())
}

// validateParams rejects malformed node and tab IDs before they reach the workspace
func (h *Handlers) validateParams(c *gin.Context) {
	if err := utils.ValidateID(c.Param("id"), "node_id"); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if tabID, ok := c.Params.Get("tabId"); ok {
		if err := utils.ValidateID(tabID, "tab_id"); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	c.Next()
}

// fail maps workspace errors onto status codes
func (h *Handlers) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, canvas.ErrNodeNotFound), errors.Is(err, canvas.ErrTabNotFound):
		return http.StatusNotFound
	case errors.Is(err, canvas.ErrNoTabs),
		errors.Is(err, canvas.ErrInvalidMedia),
		errors.Is(err, canvas.ErrUnknownKind),
		errors.Is(err, utils.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, canvas.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
