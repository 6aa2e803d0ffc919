package realtime

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

// ErrForbidden is returned by an Authorizer that refuses a filter.
var ErrForbidden = errors.New("subscription not allowed")

// Authorizer decides whether the request may open filter. A non-nil visible
// func is applied to every change before it is written; changes it rejects
// are dropped.
type Authorizer func(r *http.Request, filter Filter) (visible func(Change) bool, err error)

// Bridge streams a filtered feed to websocket clients. The filter comes from
// the query string: ?table=peeps&event=INSERT&filter=to_user_id=eq.<id>.
type Bridge struct {
	feed      Feed
	authorize Authorizer
	logger    *slog.Logger
	upgrader  websocket.Upgrader
}

// NewBridge serves feed over websockets. A nil authorize allows every filter.
func NewBridge(feed Feed, authorize Authorizer, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		feed:      feed,
		authorize: authorize,
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (b *Bridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, err := ParseFilter(q.Get("table"), q.Get("event"), q.Get("filter"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var visible func(Change) bool
	if b.authorize != nil {
		visible, err = b.authorize(r, filter)
		switch {
		case errors.Is(err, ErrForbidden):
			b.logger.Warn("realtime subscription refused", "filter", filter.String())
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		case err != nil:
			b.logger.Error("realtime authorization failed", "filter", filter.String(), "error", err)
			http.Error(w, "authorization failed", http.StatusInternalServerError)
			return
		}
	}

	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		b.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sub, err := b.feed.Subscribe(ctx, filter)
	if err != nil {
		b.logger.Error("realtime subscribe failed", "filter", filter.String(), "error", err)
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "subscribe failed"),
			time.Now().Add(writeWait))
		return
	}
	defer sub.Close()

	b.logger.Debug("realtime client joined", "filter", filter.String())
	go b.readPump(conn, cancel)
	b.writePump(ctx, conn, sub, visible)
}

// readPump discards client frames and notices when the peer goes away.
func (b *Bridge) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				b.logger.Warn("realtime client read failed", "error", err)
			}
			return
		}
	}
}

func (b *Bridge) writePump(ctx context.Context, conn *websocket.Conn, sub *Subscription, visible func(Change) bool) {
	changes := make(chan Change)
	go func() {
		defer close(changes)
		for c := range sub.All() {
			if visible != nil && !visible(c) {
				continue
			}
			select {
			case changes <- c:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		case c, ok := <-changes:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(c); err != nil {
				if !errors.Is(err, websocket.ErrCloseSent) {
					b.logger.Debug("realtime client write failed", "error", err)
				}
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
