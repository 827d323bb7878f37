package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Igoorx/godfield-flash/internal/domain"
	"github.com/Igoorx/godfield-flash/internal/engine"
	"github.com/Igoorx/godfield-flash/pkg/api"
	"github.com/Igoorx/godfield-flash/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Настройки WebSocket
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	joinTimeout    = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client - посредник между Websocket и engine.Service
type Client struct {
	Game     *engine.Service
	Conn     *websocket.Conn
	Send     chan api.ServerResponse
	RoomID   string
	PlayerID string
	log      *logrus.Entry
}

func NewClient(game *engine.Service, conn *websocket.Conn) *Client {
	return &Client{
		Game: game,
		Conn: conn,
		Send: make(chan api.ServerResponse, 256),
		log:  logger.For("client"),
	}
}

// handshake ждет JOIN и входит в комнату.
func (c *Client) handshake() error {
	var joinCmd api.ClientCommand
	if err := c.Conn.ReadJSON(&joinCmd); err != nil {
		return err
	}
	if domain.ParseAction(joinCmd.Action) != domain.ActionJoin {
		return errHandshake
	}
	var payload api.JoinPayload
	if err := json.Unmarshal(joinCmd.Payload, &payload); err != nil {
		return err
	}
	if err := payload.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), joinTimeout)
	defer cancel()
	room, player, err := c.Game.Join(ctx, payload, joinCmd.Token)
	if err != nil {
		return err
	}
	c.RoomID = room.ID
	c.PlayerID = player.ID
	return nil
}

// readPump читает команды от клиента
func (c *Client) readPump() {
	var updates chan api.ServerResponse
	log := c.log
	defer func() {
		if updates != nil && c.Game.Hub.Unregister(c.PlayerID, updates) {
			// Сообщаем комнате, что игрок ушел: в партии его заменит бот
			c.Game.Disconnect(c.RoomID, c.PlayerID)
			log.Info("Client disconnected")
		}
		if updates == nil {
			// writePump допишет ошибку и закроет соединение сам
			close(c.Send)
			return
		}
		if err := c.Conn.Close(); err != nil {
			log.WithError(err).Debug("failed to close websocket connection")
		}
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.WithError(err).Warn("failed to set read deadline")
	}
	c.Conn.SetPongHandler(func(string) error {
		if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.WithError(err).Warn("failed to set pong read deadline")
		}
		return nil
	})

	// 1. HANDSHAKE (JOIN)
	if err := c.handshake(); err != nil {
		log.WithError(err).Warn("Handshake failed")
		c.Send <- api.ServerResponse{Type: domain.EventError.String(), Error: err.Error()}
		return
	}
	log = log.WithFields(logrus.Fields{"room": c.RoomID, "player": c.PlayerID})
	log.Info("Client joined")

	// 2. ПОДПИСКА НА ОБНОВЛЕНИЯ
	updates = c.Game.Hub.Register(c.PlayerID)
	go func(ch chan api.ServerResponse) {
		for msg := range ch {
			c.Send <- msg
		}
		close(c.Send)
	}(updates)

	// Первый снимок: JOIN-событие комнаты ушло до подписки
	c.Game.ProcessCommand(c.RoomID, c.PlayerID, api.ClientCommand{Action: domain.ActionState.String()})

	// 3. ЦИКЛ ЧТЕНИЯ КОМАНД
	for {
		var cmd api.ClientCommand
		err := c.Conn.ReadJSON(&cmd)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.WithError(err).Error("WS error")
			}
			break
		}
		c.Game.ProcessCommand(c.RoomID, c.PlayerID, cmd)
	}
}

// writePump отправляет данные клиенту + Ping
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := c.Conn.Close(); err != nil {
			c.log.WithError(err).Debug("failed to close websocket connection in writePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.Send:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.log.WithError(err).Warn("failed to set write deadline")
			}
			if !ok {
				if err := c.Conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.log.WithError(err).Debug("write close message failed")
				}
				return
			}
			if err := c.Conn.WriteJSON(message); err != nil {
				c.log.WithError(err).Debug("write json message failed")
				return
			}

		case <-ticker.C:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.log.WithError(err).Warn("failed to set ping write deadline")
			}
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.log.WithError(err).Debug("ping failed")
				return
			}
		}
	}
}
