package services

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/selamgames/bingo-server/utils/logger"
)

// inboundMessage is the envelope clients send. The player identity comes
// from the authenticated connection, never from the message body.
type inboundMessage struct {
	Type        string `json:"type"`
	DisplayName string `json:"displayName"`
	CardID      int    `json:"cardId"`
	Pattern     string `json:"pattern"`
}

type Client struct {
	playerID int64
	name     string
	conn     *websocket.Conn
	lobby    *Lobby
	send     chan []byte
	once     sync.Once
}

func (c *Client) Close() {
	c.once.Do(func() {
		close(c.send)
		c.conn.Close()
	})
}

// trySend queues a message, dropping it if the client's buffer is full. A
// slow consumer must not stall the lobby.
func (c *Client) trySend(msg []byte) {
	defer func() {
		if r := recover(); r != nil {
			logger.Debugf("[Lobby %d] send to closed client %d", c.lobby.Stake, c.playerID)
		}
	}()
	select {
	case c.send <- msg:
	default:
		logger.Warnf("[Lobby %d] dropping message to player %d", c.lobby.Stake, c.playerID)
	}
}

func (c *Client) readPump() {
	defer func() {
		c.lobby.removeClient(c)
		c.conn.Close()
	}()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debugf("[Client %d] disconnected", c.playerID)
			} else {
				logger.Debugf("[Client %d] read error: %v", c.playerID, err)
			}
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			logger.Debugf("[Client %d] invalid message: %v", c.playerID, err)
			continue
		}
		c.lobby.handleMessage(c, msg)
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			logger.Debugf("[Client %d] write error: %v", c.playerID, err)
			return
		}
	}
}
