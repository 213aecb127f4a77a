package realtime

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum inbound message size; hold/release requests are tiny.
	maxMessageSize = 512
	// Outbound buffer per client. A member that falls this far behind the
	// room's event stream is dropped and must rejoin for a fresh snapshot.
	sendBufferSize = 32
)

// Client is one WebSocket connection viewing one showtime slot room.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	slotID   uint64
	holderID uint64
	connID   string
	send     chan []byte
	done     chan struct{}
	closing  sync.Once
}

// NewClient wraps an upgraded connection for a slot room. The caller is
// expected to call hub.Join, send the join snapshot, then start the pumps.
func NewClient(hub *Hub, conn *websocket.Conn, slotID, holderID uint64, connID string) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		slotID:   slotID,
		holderID: holderID,
		connID:   connID,
		send:     make(chan []byte, sendBufferSize),
		done:     make(chan struct{}),
	}
}

// HolderID returns the holder identity bound to this connection.
func (c *Client) HolderID() uint64 { return c.holderID }

// SendSnapshot serializes the snapshot frame onto the outbound queue.
func (c *Client) SendSnapshot(s Snapshot) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}
	c.enqueue(payload)
	return nil
}

// Run starts the read and write pumps and blocks until the connection is
// gone. Leaving the room (and releasing the holder's seats) happens exactly
// once regardless of which pump fails first.
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

// enqueue places a marshaled frame on the outbound queue, disconnecting
// the client instead of blocking when the queue is full.
func (c *Client) enqueue(payload []byte) {
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.send <- payload:
	default:
		log.Printf("realtime: dropping slow client %s in slot %d", c.connID, c.slotID)
		c.close()
	}
}

func (c *Client) close() {
	c.closing.Do(func() {
		close(c.done)
		c.hub.Leave(c)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
}

func (c *Client) readPump() {
	defer c.close()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("realtime: read error for client %s: %v", c.connID, err)
			}
			return
		}
		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.sendAck(ackFrame{Type: frameError, OK: false, Code: "bad_message"})
			continue
		}
		c.handle(msg)
	}
}

// handle applies a hold/release request against the registry, answers the
// requester synchronously and fans the state change out to the rest of the
// room. The originator is excluded from its own broadcasts.
func (c *Client) handle(msg clientMessage) {
	switch msg.Action {
	case "hold":
		if err := c.hub.registry.Acquire(c.slotID, msg.SeatLabel, c.holderID); err != nil {
			c.sendAck(ackFrame{Type: frameAck, Action: msg.Action, SeatLabel: msg.SeatLabel, OK: false, Code: "hold_conflict"})
			return
		}
		c.sendAck(ackFrame{Type: frameAck, Action: msg.Action, SeatLabel: msg.SeatLabel, OK: true})
		c.hub.Broadcast(c.slotID, Event{Type: EventSeatHeld, SeatLabel: msg.SeatLabel, HolderID: c.holderID}, c)
	case "release":
		released := c.hub.registry.Release(c.slotID, msg.SeatLabel, c.holderID)
		c.sendAck(ackFrame{Type: frameAck, Action: msg.Action, SeatLabel: msg.SeatLabel, OK: true})
		if released {
			c.hub.Broadcast(c.slotID, Event{Type: EventSeatReleased, SeatLabel: msg.SeatLabel}, c)
		}
	default:
		c.sendAck(ackFrame{Type: frameError, Action: msg.Action, OK: false, Code: "unknown_action"})
	}
}

func (c *Client) sendAck(a ackFrame) {
	payload, err := json.Marshal(a)
	if err != nil {
		return
	}
	c.enqueue(payload)
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()
	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
