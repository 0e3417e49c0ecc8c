/*
This file defines the Client struct, representing an active WebSocket connection.
It manages the connection's lifecycle and its message communication loops (ReadPump
and WritePump), and forwards parsed events to the Room.
*/
package room

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"aucroom/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a message sent by the client.
	maxMessageSize = 4096

	// sendQueueSize is the per-connection outbound frame buffer.
	sendQueueSize = 256

	// Inbound event budget per connection. Movement events arrive at pointer
	// frequency, so the limit is generous; it only exists to stop floods.
	inboundRate  = 60
	inboundBurst = 120
)

// Client is one active WebSocket connection. It implements the Room's outlet.
type Client struct {
	room *Room
	conn *websocket.Conn

	// id is the opaque connection identity shared with the Room and clients.
	id string

	// send queues marshaled frames waiting to go out on the wire.
	send chan []byte

	// limiter caps the inbound event rate for this connection.
	limiter *rate.Limiter

	logger zerolog.Logger
}

// NewClient constructs a Client for an upgraded connection.
func NewClient(room *Room, conn *websocket.Conn, connectionID string) *Client {
	clientLogger := logx.Logger().With().
		Str("connection_id", connectionID).
		Logger()

	return &Client{
		room:    room,
		conn:    conn,
		id:      connectionID,
		send:    make(chan []byte, sendQueueSize),
		limiter: rate.NewLimiter(rate.Limit(inboundRate), inboundBurst),
		logger:  clientLogger,
	}
}

// ID returns the opaque connection identity.
func (c *Client) ID() string {
	return c.id
}

// Send queues one marshaled frame for delivery. It never blocks: when the
// queue is full the frame is dropped for this connection only, so one slow
// client cannot stall delivery to the rest.
func (c *Client) Send(data []byte) {
	select {
	case c.send <- data:
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send queue full, dropping frame.")
	}
}

// ReadPump reads frames from the WebSocket connection, parses them, and hands
// them to the Room. It handles heartbeats (Pong) and performs cleanup when the
// connection closes for any reason.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (Client close/going away)")
			}
			break
		}

		if !c.limiter.Allow() {
			c.logger.Warn().Msg("Client exceeded inbound event rate, dropping event.")
			continue
		}

		var env Envelope
		if err := json.Unmarshal(messageBytes, &env); err != nil {
			c.logger.Warn().Err(err).Msg("Client sent invalid JSON")
			continue
		}

		c.room.HandleEvent(c.id, env)
	}
}

// cleanupOnDisconnect detaches the connection from the Room and closes the
// underlying socket when the ReadPump terminates.
func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Msg("Client connection cleanup starting.")

	c.room.Detach(c.id)

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Client connection close error")
	}
}

// WritePump writes queued frames to the WebSocket connection and keeps the
// connection alive with periodic Ping messages.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline")
				return
			}

			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Error().Err(err).Msg("Error writing message")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
				return
			}

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Error().Err(err).Msg("Error writing ping")
				return
			}
		}
	}
}
