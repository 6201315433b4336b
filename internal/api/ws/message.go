package ws

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/zhangjie25/VideoBoard-Develop/internal/domain/canvas"
	"github.com/zhangjie25/VideoBoard-Develop/internal/domain/dnd"
	"github.com/zhangjie25/VideoBoard-Develop/internal/shared/types"
)

// Client → server message types
const (
	TypeLayout    = "layout"
	TypeDragStart = "drag_start"
	TypeDragOver  = "drag_over"
	TypeDragEnter = "drag_enter"
	TypeDragLeave = "drag_leave"
	TypeDrop      = "drop"
	TypeDragEnd   = "drag_end"
	TypePing      = "ping"
)

// Server → client message types
const (
	TypeSystem      = "system"
	TypeDragStarted = "drag_started"
	TypeAck         = "ack"
	TypeSnapshot    = "snapshot"
	TypePong        = "pong"
	TypeError       = "error"
)

var inbound = map[string]bool{
	TypeLayout:    true,
	TypeDragStart: true,
	TypeDragOver:  true,
	TypeDragEnter: true,
	TypeDragLeave: true,
	TypeDrop:      true,
	TypeDragEnd:   true,
	TypePing:      true,
}

// Message is one client → server frame
type Message struct {
	Type      string         `json:"type" validate:"required,msgtype"`
	NodeID    string         `json:"nodeId,omitempty" validate:"max=128"`
	TabID     string         `json:"tabId,omitempty" validate:"max=128"`
	Pointer   types.Point    `json:"pointer"`
	Payload   *dnd.Payload   `json:"payload,omitempty"`
	Cancelled bool           `json:"cancelled,omitempty"`
	Layout    *canvas.Layout `json:"layout,omitempty"`
}

// Envelope is one server → client frame
type Envelope struct {
	Type         string           `json:"type"`
	ConnectionID string           `json:"connectionId,omitempty"`
	Message      string           `json:"message,omitempty"`
	Event        string           `json:"event,omitempty"`
	Handled      *bool            `json:"handled,omitempty"`
	Drag         *dnd.State       `json:"drag,omitempty"`
	Snapshot     *canvas.Snapshot `json:"snapshot,omitempty"`
	Timestamp    int64            `json:"timestamp"`
}

func newEnvelope(typ string) Envelope {
	return Envelope{Type: typ, Timestamp: time.Now().UnixMilli()}
}

func (e Envelope) encode() ([]byte, error) {
	return sonic.Marshal(e)
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// getValidator returns the shared validator with the message rules registered
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = validate.RegisterValidation("msgtype", func(fl validator.FieldLevel) bool {
			return inbound[fl.Field().String()]
		})
	})
	return validate
}

// decode parses and validates a frame. An invalid drag payload is dropped
// rather than rejected: the controllers treat a missing payload as a drag
// they do not own.
func decode(data []byte) (Message, error) {
	var msg Message
	if err := sonic.Unmarshal(data, &msg); err != nil {
		return msg, fmt.Errorf("malformed message: %w", err)
	}

	v := getValidator()
	if msg.Payload != nil {
		if err := v.Struct(msg.Payload); err != nil {
			msg.Payload = nil
		}
	}
	if err := v.Struct(msg); err != nil {
		return msg, fmt.Errorf("invalid message: %w", err)
	}
	return msg, nil
}

func (m Message) event() dnd.Event {
	return dnd.Event{
		Pointer:   m.Pointer,
		Payload:   m.Payload,
		Cancelled: m.Cancelled,
	}
}
