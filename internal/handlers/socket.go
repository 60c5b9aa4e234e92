package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"debateroom/internal/debate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxInboundSize = 16 << 10

	invalidFormatNotice = "Invalid message format."
	wrongUserNotice     = "Messages must be sent as the connected user."
)

type inboundFrame struct {
	Username string  `json:"username"`
	Side     string  `json:"side"`
	Message  *string `json:"message"`
}

// complete reports whether username, side and message are all present.
func (in inboundFrame) complete() bool {
	return strings.TrimSpace(in.Username) != "" &&
		strings.TrimSpace(in.Side) != "" &&
		in.Message != nil
}

type SocketHandler struct {
	coordinator *debate.Coordinator
	log         *slog.Logger
	upgrader    websocket.Upgrader
}

func NewSocketHandler(coordinator *debate.Coordinator, log *slog.Logger) *SocketHandler {
	return &SocketHandler{
		coordinator: coordinator,
		log:         log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Usernames are self-asserted and the API is public.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (h *SocketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{id}", h.stream)
}

func (h *SocketHandler) stream(w http.ResponseWriter, r *http.Request) {
	topicID := chi.URLParam(r, "id")
	username := strings.TrimSpace(r.URL.Query().Get("username"))

	// Register before upgrading so refusals keep their HTTP status.
	session, err := h.coordinator.Connect(topicID, username)
	if err != nil {
		writeError(w, err)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.coordinator.Disconnect(session)
		h.log.Warn("Websocket upgrade failed", "topic", topicID, "username", username, "error", err)
		return
	}

	done := make(chan struct{})
	go h.writeLoop(conn, session, done)
	h.readLoop(conn, session)

	h.coordinator.Disconnect(session)
	<-done
}

// readLoop turns inbound frames into submissions until the socket fails.
func (h *SocketHandler) readLoop(conn *websocket.Conn, session *debate.Session) {
	conn.SetReadLimit(maxInboundSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Debug("Websocket read failed", "topic", session.TopicID, "username", session.Username, "error", err)
			}
			return
		}

		var in inboundFrame
		if err := json.Unmarshal(data, &in); err != nil || !in.complete() {
			h.coordinator.Notify(session, invalidFormatNotice)
			continue
		}
		if strings.TrimSpace(in.Username) != session.Username {
			h.coordinator.Notify(session, wrongUserNotice)
			continue
		}
		side, err := debate.ParseSide(in.Side)
		if err != nil {
			h.coordinator.Notify(session, err.Error())
			continue
		}
		if err := h.coordinator.Submit(session.TopicID, session.Username, side, *in.Message); err != nil {
			h.coordinator.Notify(session, err.Error())
		}
	}
}

// writeLoop is the only writer on conn. It ends when the session is closed by
// the coordinator or a write fails, and closes the socket either way.
func (h *SocketHandler) writeLoop(conn *websocket.Conn, session *debate.Session, done chan<- struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
		close(done)
	}()

	for {
		select {
		case frame, ok := <-session.Frames():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteJSON(frame); err != nil {
				h.log.Debug("Websocket write failed", "topic", session.TopicID, "username", session.Username, "error", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
