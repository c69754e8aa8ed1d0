package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	mdwerror "github.com/msto63/recordpad/foundation/core/error"
	mdwlog "github.com/msto63/recordpad/foundation/core/log"
	"github.com/msto63/recordpad/foundation/utils/stringx"
	"github.com/msto63/recordpad/internal/analyzer/service"
)

const (
	wsReadTimeout  = 120 * time.Second
	wsWriteTimeout = 10 * time.Second
)

// WebSocket upgrader with permissive settings for local editors
var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler analyzes sources as an editor sends them
type WebSocketHandler struct {
	service *service.Service
	logger  *mdwlog.Logger
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(svc *service.Service, logger *mdwlog.Logger) *WebSocketHandler {
	if logger == nil {
		logger = mdwlog.GetDefault()
	}
	return &WebSocketHandler{
		service: svc,
		logger:  logger.WithField("component", "websocket"),
	}
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string          `json:"type"`              // "analyze", "tokens", "ping"
	ID      string          `json:"id,omitempty"`      // Echoed in the response
	Payload json.RawMessage `json:"payload,omitempty"` // Message-specific payload
}

// WSResponse represents a WebSocket response
type WSResponse struct {
	Type    string      `json:"type"` // "result", "tokens", "error", "pong"
	ID      string      `json:"id,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
}

// WSErrorPayload represents an error payload
type WSErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ServeHTTP handles WebSocket upgrade and connections
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnWithErr("WebSocket upgrade failed", err)
		return
	}
	h.handleConnection(r.Context(), conn, r.Header.Get("Accept-Language"))
}

// handleConnection serves one connection. Messages are handled in order
// so results arrive in the order the sources were sent.
func (h *WebSocketHandler) handleConnection(ctx context.Context, conn *websocket.Conn, acceptLanguage string) {
	defer conn.Close()

	connID := uuid.NewString()
	logger := h.logger.WithField("conn_id", connID)
	logger.Info("WebSocket connection established", mdwlog.Fields{"remote": conn.RemoteAddr().String()})

	// A hijacked connection outlives the request context
	ctx = context.WithoutCancel(ctx)

	conn.SetReadLimit(maxBodyBytes)
	conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	})

	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.WarnWithErr("WebSocket read error", err)
			} else {
				logger.Info("WebSocket connection closed")
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		switch msg.Type {
		case "ping":
			h.send(conn, logger, WSResponse{Type: "pong", ID: msg.ID})

		case "analyze":
			var req AnalyzeRequest
			if err := json.Unmarshal(msg.Payload, &req); err != nil {
				h.sendError(conn, logger, msg.ID, "invalid_payload", "Invalid analyze payload")
				continue
			}
			analysis, err := h.service.Analyze(ctx, service.Request{
				Name:      req.Name,
				Content:   req.Source,
				Locale:    stringx.FirstNonBlank(req.Locale, acceptLanguage),
				Tokens:    req.Tokens,
				RequestID: connID,
				Origin:    "websocket",
			})
			if err != nil {
				h.sendErr(conn, logger, msg.ID, err)
				continue
			}
			h.send(conn, logger, WSResponse{Type: "result", ID: msg.ID, Payload: analysis.Document})

		case "tokens":
			var req AnalyzeRequest
			if err := json.Unmarshal(msg.Payload, &req); err != nil {
				h.sendError(conn, logger, msg.ID, "invalid_payload", "Invalid tokens payload")
				continue
			}
			rows, err := h.service.Tokens(req.Source, stringx.FirstNonBlank(req.Locale, acceptLanguage))
			if err != nil {
				h.sendErr(conn, logger, msg.ID, err)
				continue
			}
			h.send(conn, logger, WSResponse{Type: "tokens", ID: msg.ID, Payload: rows})

		default:
			h.sendError(conn, logger, msg.ID, "unknown_type", "Unknown message type: "+msg.Type)
		}
	}
}

// send sends a response message via WebSocket
func (h *WebSocketHandler) send(conn *websocket.Conn, logger *mdwlog.Logger, resp WSResponse) {
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := conn.WriteJSON(resp); err != nil {
		logger.WarnWithErr("WebSocket send error", err)
	}
}

// sendError sends an error response via WebSocket
func (h *WebSocketHandler) sendError(conn *websocket.Conn, logger *mdwlog.Logger, id, code, message string) {
	h.send(conn, logger, WSResponse{
		Type: "error",
		ID:   id,
		Payload: WSErrorPayload{
			Code:    code,
			Message: message,
		},
	})
}

func (h *WebSocketHandler) sendErr(conn *websocket.Conn, logger *mdwlog.Logger, id string, err error) {
	code := strings.ToLower(string(mdwerror.GetCode(err)))
	h.sendError(conn, logger, id, code, err.Error())
}
