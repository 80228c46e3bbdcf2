package feed

import (
	"context"
	"net/http"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/mdrrmo/fieldsync/pkg/types"
)

// Conn is one live change-feed connection.
type Conn interface {
	// ReadEvent blocks until the next event arrives or the connection
	// fails.
	ReadEvent(ctx context.Context) (types.ChangeEvent, error)

	// Close releases the connection.
	Close() error
}

// Transport establishes change-feed connections. It exists so tests can
// feed events without a network.
type Transport interface {
	Dial(ctx context.Context) (Conn, error)
}

// WebsocketTransport subscribes to the backend's CDC stream over a
// websocket carrying one JSON ChangeEvent per message.
type WebsocketTransport struct {
	// URL is the websocket endpoint, including the channel query for the
	// subscribed record families.
	URL string

	// Token is the bearer token presented on dial, if any.
	Token string
}

func (t *WebsocketTransport) Dial(ctx context.Context) (Conn, error) {
	opts := &websocket.DialOptions{}
	if t.Token != "" {
		opts.HTTPHeader = http.Header{"Authorization": []string{"Bearer " + t.Token}}
	}
	c, _, err := websocket.Dial(ctx, t.URL, opts)
	if err != nil {
		return nil, err
	}
	// The feed is push-only and bursty; don't let the default read limit
	// kill the connection on a large snapshot row.
	c.SetReadLimit(1 << 20)
	return &wsConn{conn: c}, nil
}

type wsConn struct {
	conn *websocket.Conn
}

func (c *wsConn) ReadEvent(ctx context.Context) (types.ChangeEvent, error) {
	var ev types.ChangeEvent
	if err := wsjson.Read(ctx, c.conn, &ev); err != nil {
		return types.ChangeEvent{}, err
	}
	return ev, nil
}

func (c *wsConn) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "teardown")
}
