package ipc

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/smilemakc/bars/internal/domain/errors"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Channel is the client's single connection to the coordination
// server. It owns the websocket connection exclusively; a background
// goroutine reads frames into an internal queue, and the façade drains
// that queue non-blockingly from tick() (§5: "message receive is a
// non-blocking poll"). Writes go straight to the connection, guarded
// by a mutex against the ping goroutine.
type Channel struct {
	id   uuid.UUID
	conn *websocket.Conn
	log  zerolog.Logger

	inbox  chan Downstream
	closed chan struct{}

	writeMu chan struct{} // 1-buffered mutex
}

// Dial opens a channel to addr, authenticating with a signed JWT built
// from token (the shared secret configured out of band), and starts
// the background read/keepalive goroutines.
func Dial(ctx context.Context, addr, token string, log zerolog.Logger) (*Channel, error) {
	id := uuid.New()

	signed, err := signHandshake(token, id)
	if err != nil {
		return nil, errors.New(errors.ErrCodeChannelClosed, "sign handshake token", err)
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+signed)

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, addr, header)
	if err != nil {
		return nil, errors.New(errors.ErrCodeChannelClosed, "dial channel", err)
	}

	ch := &Channel{
		id:      id,
		conn:    conn,
		log:     log.With().Str("channel_id", id.String()).Logger(),
		inbox:   make(chan Downstream, 256),
		closed:  make(chan struct{}),
		writeMu: make(chan struct{}, 1),
	}
	ch.writeMu <- struct{}{}

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go ch.readPump()
	go ch.pingPump()

	return ch, nil
}

// signHandshake builds a short-lived JWT carrying the channel's
// correlation id, signed with the shared secret from process config.
func signHandshake(secret string, id uuid.UUID) (string, error) {
	claims := jwt.MapClaims{
		"channel_id": id.String(),
		"iat":        time.Now().Unix(),
		"exp":        time.Now().Add(time.Minute).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString([]byte(secret))
}

func (c *Channel) readPump() {
	defer close(c.closed)
	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			c.log.Debug().Err(err).Msg("channel read loop exiting")
			return
		}

		var msg Downstream
		if kind == websocket.BinaryMessage {
			// A bare framed Config blob arriving as its own frame; wrap
			// it rather than requiring the server to base64 it inside
			// JSON.
			msg = Downstream{Kind: DownstreamConfig, Data: data}
		} else {
			if err := json.Unmarshal(data, &msg); err != nil {
				c.log.Warn().Err(err).Msg("dropping malformed downstream message")
				continue
			}
		}

		select {
		case c.inbox <- msg:
		default:
			c.log.Warn().Msg("inbox full, dropping downstream message")
		}
	}
}

func (c *Channel) pingPump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			<-c.writeMu
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := c.conn.WriteMessage(websocket.PingMessage, nil)
			c.writeMu <- struct{}{}
			if err != nil {
				return
			}
		case <-c.closed:
			return
		}
	}
}

// Poll returns the next queued downstream message without blocking.
// ok is false once the channel has no more buffered messages for this
// tick (§5).
func (c *Channel) Poll() (msg Downstream, ok bool) {
	select {
	case msg, ok = <-c.inbox:
		return msg, ok
	default:
		return Downstream{}, false
	}
}

// Send writes an upstream message as a JSON text frame.
func (c *Channel) Send(msg Upstream) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return errors.New(errors.ErrCodeEncodeFailed, "marshal upstream message", err)
	}

	<-c.writeMu
	defer func() { c.writeMu <- struct{}{} }()

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return errors.New(errors.ErrCodeChannelClosed, "write upstream message", err)
	}
	return nil
}

// Close closes the underlying connection.
func (c *Channel) Close() error {
	return c.conn.Close()
}
