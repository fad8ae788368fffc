package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/moat-bus/moatcfg/internal/logging"
	"github.com/moat-bus/moatcfg/internal/store"
)

const (
	// Time allowed to write a message to the agent
	writeWait = 10 * time.Second

	// An agent that stays quiet longer than this is dropped
	idleWait = 5 * time.Minute
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Agents live on the bench network; no browser origins involved.
	CheckOrigin: func(*http.Request) bool { return true },
}

// helloMessage is the agent's request for one device configuration.
type helloMessage struct {
	Serial string `json:"serial"`
}

// ackMessage follows every blob (or failure) the server sends.
type ackMessage struct {
	OK     bool   `json:"ok"`
	Serial string `json:"serial"`
	Bytes  int    `json:"bytes,omitempty"`
	Error  string `json:"error,omitempty"`
}

// handleWebSocket upgrades the connection and serves blob requests until
// the agent disconnects. Each request is a JSON hello; each response is one
// binary message with the blob, then a JSON ack.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}
	remoteAddr := conn.RemoteAddr().String()
	logging.LogClient(remoteAddr, "agent_connected")

	defer func() {
		conn.Close()
		logging.LogClient(remoteAddr, "agent_disconnected")
	}()

	for {
		if err := conn.SetReadDeadline(time.Now().Add(idleWait)); err != nil {
			return
		}

		var hello helloMessage
		if err := conn.ReadJSON(&hello); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logging.Warn("Agent connection error",
					zap.String("remote_addr", remoteAddr),
					zap.Error(err),
				)
			}
			return
		}

		if err := s.serveAgentRequest(conn, remoteAddr, hello.Serial); err != nil {
			logging.Warn("Failed to answer agent",
				zap.String("remote_addr", remoteAddr),
				zap.String("serial", hello.Serial),
				zap.Error(err),
			)
			return
		}
	}
}

// serveAgentRequest answers one hello: blob plus ack, or an error ack.
func (s *Server) serveAgentRequest(conn *websocket.Conn, remoteAddr, serial string) error {
	writeAck := func(ack ackMessage) error {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(ack)
	}

	if serial == "" {
		return writeAck(ackMessage{OK: false, Error: "hello without serial"})
	}

	blob, err := s.inventory.Get(serial)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logging.Warn("Agent asked for unknown serial",
				zap.String("remote_addr", remoteAddr),
				zap.String("serial", serial),
			)
			return writeAck(ackMessage{OK: false, Serial: serial, Error: "unknown serial"})
		}
		writeAck(ackMessage{OK: false, Serial: serial, Error: "inventory error"})
		return err
	}

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.BinaryMessage, blob); err != nil {
		return err
	}

	logging.Info("Sent configuration to agent",
		zap.String("remote_addr", remoteAddr),
		zap.String("serial", serial),
		zap.Int("bytes", len(blob)),
	)
	return writeAck(ackMessage{OK: true, Serial: serial, Bytes: len(blob)})
}
