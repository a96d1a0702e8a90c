package server

import (
	"time"

	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Session timing
// -----------------------------------------------------------------------------

const (
	writeWait      = 5 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

// -----------------------------------------------------------------------------
// Client
// -----------------------------------------------------------------------------

// Client is one browser session. send is closed by the hub only.
type Client struct {
	hub  *FastAPIServer
	conn *websocket.Conn
	id   string
	send chan interface{}
}

// leave hands the session back to the hub unless the hub is already gone.
func (c *Client) leave() {
	select {
	case c.hub.unregister <- c:
	case <-c.hub.quit:
	}
	c.conn.Close()
	c.hub.Logger.Debug("Session %s disconnected", c.id)
}

// -----------------------------------------------------------------------------
// Inbound
// -----------------------------------------------------------------------------

// listen reads run and ping commands until the browser goes away or stops
// answering pings.
func (c *Client) listen() {
	defer c.leave()

	c.conn.SetReadLimit(maxMessageSize)
	c.extendDeadline()
	c.conn.SetPongHandler(func(string) error {
		c.extendDeadline()
		return nil
	})

	for {
		_, command, err := c.conn.ReadMessage()
		if err == nil {
			c.hub.HandleClientMessage(c, command)
			continue
		}
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
			c.hub.Logger.Info("Session %s read failed: %v", c.id, err)
		}
		return
	}
}

func (c *Client) extendDeadline() {
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
}

// -----------------------------------------------------------------------------
// Outbound
// -----------------------------------------------------------------------------

// deliver writes queued envelopes as JSON and pings on an idle connection.
func (c *Client) deliver() {
	keepAlive := time.NewTicker(pingPeriod)
	defer keepAlive.Stop()
	defer c.conn.Close()

	for {
		select {
		case envelope, open := <-c.send:
			if !open {
				_ = c.writeFrame(websocket.CloseMessage, nil)
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(envelope); err != nil {
				c.hub.Logger.Info("Session %s write failed: %v", c.id, err)
				return
			}

		case <-keepAlive.C:
			if err := c.writeFrame(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) writeFrame(kind int, payload []byte) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(kind, payload)
}
