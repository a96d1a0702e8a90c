package server

import (
	"context"
	"encoding/json"
	"net/http"

	"stock-forecaster/src/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	envelopeResult = "result"
	envelopeStatus = "status"
	envelopePong   = "pong"
	envelopeError  = "error"
)

// directMessage is a reply meant for one session only.
type directMessage struct {
	client  *Client
	payload interface{}
}

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop. It owns the clients map; the mutex
// only guards readers outside the loop.
func (s *FastAPIServer) handleWebsockets() {
	for {
		select {
		case <-s.quit:
			s.stateMutex.Lock()
			for client := range s.clients {
				delete(s.clients, client)
				close(client.send)
			}
			s.stateMutex.Unlock()
			return

		case client := <-s.register:
			s.stateMutex.Lock()
			s.clients[client] = struct{}{}
			latest := s.latestStatus
			s.stateMutex.Unlock()
			s.Metrics.SessionOpened()

			if latest != nil {
				client.send <- models.MEnvelope{Type: envelopeStatus, Session: client.id, Data: latest}
			}

		case client := <-s.unregister:
			s.dropClient(client)

		case msg := <-s.direct:
			s.stateMutex.RLock()
			_, ok := s.clients[msg.client]
			s.stateMutex.RUnlock()
			if !ok {
				continue
			}
			select {
			case msg.client.send <- msg.payload:
			default:
				s.dropClient(msg.client)
			}

		case payload := <-s.broadcast:
			s.stateMutex.Lock()
			s.latestStatus = payload
			s.stateMutex.Unlock()

			for client := range s.clients {
				select {
				case client.send <- models.MEnvelope{Type: envelopeStatus, Session: client.id, Data: payload}:
				default:
					// slow consumer
					s.dropClient(client)
				}
			}
		}
	}
}

func (s *FastAPIServer) dropClient(client *Client) {
	s.stateMutex.Lock()
	_, ok := s.clients[client]
	if ok {
		delete(s.clients, client)
		close(client.send)
	}
	s.stateMutex.Unlock()

	if ok {
		s.Metrics.SessionClosed()
	}
}

// -----------------------------------------------------------------------------
// Data Exchange Interface Implementation
// -----------------------------------------------------------------------------

// Broadcast queues payload for every session. It is dropped when the queue
// is full or the server is stopping.
func (s *FastAPIServer) Broadcast(payload interface{}) {
	select {
	case s.broadcast <- payload:
	case <-s.quit:
	default:
		s.Logger.Warning("Broadcast queue full, dropping update")
	}
}

func (s *FastAPIServer) sendTo(client *Client, payload interface{}) {
	select {
	case s.direct <- directMessage{client: client, payload: payload}:
	case <-s.quit:
	}
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:  s,
		conn: conn,
		id:   uuid.NewString(),
		send: make(chan interface{}, 16),
	}

	select {
	case s.register <- client:
	case <-s.quit:
		conn.Close()
		return
	}
	s.Logger.Debug("Session %s connected from %s", client.id, c.ClientIP())

	go client.deliver()
	go client.listen()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

// HandleClientMessage runs the pipeline for a "run" command off the read
// loop so pongs keep being processed while the forecast is fitted.
func (s *FastAPIServer) HandleClientMessage(client *Client, message []byte) {
	var cmd models.MRunCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.Logger.Info("Failed to parse client command: %v", err)
		s.sendTo(client, models.MEnvelope{Type: envelopeError, Session: client.id, Data: "invalid command"})
		return
	}

	switch cmd.Command {
	case "ping":
		s.sendTo(client, models.MEnvelope{Type: envelopePong, Session: client.id})

	case "run":
		req := models.MPageRequest{Symbol: cmd.Symbol, ManualSymbol: cmd.ManualSymbol, Years: cmd.Years}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
			defer cancel()

			res := s.Pages.BuildPage(ctx, req)
			s.sendTo(client, models.MEnvelope{Type: envelopeResult, Session: client.id, Data: res})
		}()

	default:
		s.sendTo(client, models.MEnvelope{Type: envelopeError, Session: client.id, Data: "unknown command " + cmd.Command})
	}
}
