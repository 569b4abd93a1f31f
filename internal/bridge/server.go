// Package bridge receives raw chat events from the in-game bridge over a
// local WebSocket and feeds normalized messages to the chat log manager.
// The host dispatches events one at a time and expects a handled flag back
// for each; recording never consumes a message, so the answer is always
// false.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/john/chatter/internal/chatlog"
	"github.com/john/chatter/internal/config"
	"github.com/john/chatter/internal/message"
	"github.com/john/chatter/internal/timekeeper"
)

// event is one raw chat event as the in-game bridge sends it.
type event struct {
	Type     string             `json:"type"`
	SenderID uint64             `json:"senderId"`
	Sender   message.ChatString `json:"sender"`
	Message  message.ChatString `json:"message"`
}

// reply answers each event with the handled decision the host expects.
type reply struct {
	Handled bool `json:"handled"`
}

// Server is the host-bridge WebSocket endpoint.
type Server struct {
	manager  *chatlog.Manager
	clock    timekeeper.Clock
	server   *http.Server
	upgrader websocket.Upgrader

	mu     sync.RWMutex
	labels map[message.ChatType]string
}

// New creates the bridge server on the configured listen address.
func New(cfg *config.Config, clock timekeeper.Clock, manager *chatlog.Manager) *Server {
	s := &Server{
		manager: manager,
		clock:   clock,
		labels:  cfg.ChatLabels,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/chat", s.handleChat)
	s.server = &http.Server{
		Addr:    cfg.Bridge.Listen,
		Handler: mux,
	}
	return s
}

// UpdateLabels swaps in the label table from a reloaded configuration.
func (s *Server) UpdateLabels(cfg *config.Config) {
	s.mu.Lock()
	s.labels = cfg.ChatLabels
	s.mu.Unlock()
}

// Start begins serving bridge connections.
func (s *Server) Start() error {
	log.Printf("Bridge listening on %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down bridge server...")
	return s.server.Shutdown(ctx)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Bridge upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// Short id for correlating this connection's log lines.
	id := uuid.NewString()[:8]
	log.Printf("Bridge connection %s established from %s", id, r.RemoteAddr)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("Bridge connection %s read error: %v", id, err)
			} else {
				log.Printf("Bridge connection %s closed", id)
			}
			return
		}

		msg, err := s.normalize(data)
		if err != nil {
			log.Printf("Bridge connection %s dropped event: %v", id, err)
		} else {
			s.manager.HandleMessage(msg)
		}

		// Reply after the write so the host's serialized dispatch is
		// preserved end to end.
		if err := conn.WriteJSON(reply{Handled: false}); err != nil {
			log.Printf("Bridge connection %s reply error: %v", id, err)
			return
		}
	}
}

// normalize decodes one raw event into a ChatMessage, resolving the chat
// type, attaching its configured label, and stamping the receipt time.
func (s *Server) normalize(data []byte) (*message.ChatMessage, error) {
	var ev event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	chatType, err := message.ParseChatType(ev.Type)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	label := s.labels[chatType]
	s.mu.RUnlock()

	// The sender chat string is normally a single player segment; a bare
	// text sender (system-generated lines) falls back to its rendering.
	sender, ok := ev.Sender.InitialPlayer()
	if !ok {
		sender = message.PlayerID{Name: ev.Sender.Render(false)}
	}

	return &message.ChatMessage{
		Type:     chatType,
		Label:    label,
		SenderID: ev.SenderID,
		Sender:   sender,
		Body:     ev.Message,
		When:     s.clock.Now(),
	}, nil
}
