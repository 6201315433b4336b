package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/zhangjie25/VideoBoard-Develop/internal/domain/canvas"
	"github.com/zhangjie25/VideoBoard-Develop/internal/domain/dnd"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in dev
	},
}

// Metrics receives connection and message counts
type Metrics interface {
	IncWSConnections()
	DecWSConnections()
	RecordWSMessage(direction, msgType string)
}

// Handler manages WebSocket connections
type Handler struct {
	workspace *canvas.Workspace
	metrics   Metrics
	logger    *zap.Logger

	mu      sync.Mutex
	clients map[string]*client // Protected by mu
	closed  bool               // Protected by mu
	wg      sync.WaitGroup
}

// NewHandler creates a new WebSocket handler. metrics may be nil.
func NewHandler(workspace *canvas.Workspace, metrics Metrics, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		workspace: workspace,
		metrics:   metrics,
		logger:    logger,
		clients:   make(map[string]*client),
	}
}

// HandleConnection handles WebSocket upgrade and messages
func (h *Handler) HandleConnection(c *gin.Context) {
	if h.isClosed() {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "stream closed"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	connID := uuid.NewString()
	cl := newClient(connID, conn, h.logger.With(zap.String("conn_id", connID)))
	if !h.register(cl) {
		_ = conn.Close()
		return
	}
	defer h.unregister(cl)

	go func() {
		defer h.wg.Done()
		cl.writePump()
	}()

	unsubscribe := h.workspace.Subscribe(func(s canvas.Snapshot) {
		env := newEnvelope(TypeSnapshot)
		env.Snapshot = &s
		h.send(cl, env)
	})
	defer unsubscribe()

	welcome := newEnvelope(TypeSystem)
	welcome.ConnectionID = cl.id
	welcome.Message = "Connected to Canvas Service (Go)"
	h.send(cl, welcome)

	initial := h.workspace.Snapshot()
	snap := newEnvelope(TypeSnapshot)
	snap.Snapshot = &initial
	h.send(cl, snap)

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				cl.logger.Debug("WebSocket read error", zap.Error(err))
			}
			return
		}

		msg, err := decode(data)
		if err != nil {
			h.record("in", "invalid")
			h.sendError(cl, err.Error())
			continue
		}
		h.record("in", msg.Type)
		h.dispatch(cl, msg)
	}
}

func (h *Handler) dispatch(cl *client, msg Message) {
	switch msg.Type {
	case TypePing:
		h.send(cl, newEnvelope(TypePong))

	case TypeLayout:
		if msg.Layout == nil {
			h.sendError(cl, "layout message without layout")
			return
		}
		if err := h.workspace.UpdateLayout(*msg.Layout); err != nil {
			h.sendError(cl, err.Error())
		}

	case TypeDragStart:
		if msg.NodeID == "" || msg.TabID == "" {
			h.sendError(cl, "drag_start requires nodeId and tabId")
			return
		}
		handled := h.workspace.DragStart(msg.NodeID, msg.TabID)
		env := newEnvelope(TypeDragStarted)
		env.Handled = &handled
		state := h.workspace.DragState()
		env.Drag = &state
		h.send(cl, env)

	case TypeDragEnd:
		handled := h.workspace.DragEnd(msg.NodeID, msg.event())
		h.ack(cl, msg.Type, handled)

	default:
		if msg.NodeID == "" {
			h.sendError(cl, msg.Type+" requires nodeId")
			return
		}
		handler := h.nodeHandler(msg.Type)
		h.ack(cl, msg.Type, handler(msg.NodeID, msg.event()))
	}
}

// nodeHandler returns the workspace entry point of a per-node drag event
func (h *Handler) nodeHandler(typ string) func(string, dnd.Event) bool {
	switch typ {
	case TypeDragOver:
		return h.workspace.DragOver
	case TypeDragEnter:
		return h.workspace.DragEnter
	case TypeDragLeave:
		return h.workspace.DragLeave
	default:
		return h.workspace.Drop
	}
}

func (h *Handler) ack(cl *client, event string, handled bool) {
	env := newEnvelope(TypeAck)
	env.Event = event
	env.Handled = &handled
	h.send(cl, env)
}

func (h *Handler) send(cl *client, env Envelope) {
	frame, err := env.encode()
	if err != nil {
		cl.logger.Error("Failed to encode frame", zap.String("type", env.Type), zap.Error(err))
		return
	}
	if cl.enqueue(frame) {
		h.record("out", env.Type)
	}
}

func (h *Handler) sendError(cl *client, message string) {
	env := newEnvelope(TypeError)
	env.Message = message
	h.send(cl, env)
}

func (h *Handler) record(direction, typ string) {
	if h.metrics != nil {
		h.metrics.RecordWSMessage(direction, typ)
	}
}

// register adds cl and reserves its writer in the wait group. It refuses
// clients once Close has started.
func (h *Handler) register(cl *client) bool {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return false
	}
	h.clients[cl.id] = cl
	h.wg.Add(1)
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.IncWSConnections()
	}
	cl.logger.Info("WebSocket connected")
	return true
}

func (h *Handler) isClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

func (h *Handler) unregister(cl *client) {
	h.mu.Lock()
	delete(h.clients, cl.id)
	h.mu.Unlock()

	cl.close()
	if h.metrics != nil {
		h.metrics.DecWSConnections()
	}
	cl.logger.Info("WebSocket disconnected")
}

// Connections returns the number of open connections
func (h *Handler) Connections() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client, refuses new ones and waits for the writers
func (h *Handler) Close() {
	h.mu.Lock()
	h.closed = true
	for _, cl := range h.clients {
		cl.close()
	}
	h.mu.Unlock()
	h.wg.Wait()
}
