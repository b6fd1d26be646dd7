package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/recruitportal/internal/services"
)

// FeedSubscriber opens a subscription on the notification channel.
type FeedSubscriber interface {
	Subscribe(ctx context.Context) *redis.PubSub
}

type NotificationHandler struct {
	svc      services.NotificationService
	feed     FeedSubscriber
	log      *logrus.Logger
	upgrader websocket.Upgrader
}

func NewNotificationHandler(svc services.NotificationService, feed FeedSubscriber, allowedOrigin string, log *logrus.Logger) *NotificationHandler {
	return &NotificationHandler{
		svc:  svc,
		feed: feed,
		log:  log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowedOrigin == "" || origin == "" || origin == allowedOrigin
			},
		},
	}
}

func (h *NotificationHandler) List(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	out, err := h.svc.Feed(c.Request.Context(), p, queryInt(c, "limit", 10))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	n, err := h.svc.MarkAllRead(c.Request.Context(), p)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}

type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) writeText(b []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.c.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.c.WriteMessage(websocket.TextMessage, b)
}

func (w *wsConn) ping() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.c.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
}

// Stream pushes the current bell state and then every new notification.
func (h *NotificationHandler) Stream(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	snapshot, err := h.svc.Feed(c.Request.Context(), p, 10)
	if err != nil {
		writeError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrade already wrote the response
		return
	}
	defer conn.Close()

	wc := &wsConn{c: conn}
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	pubsub := h.feed.Subscribe(ctx)
	defer pubsub.Close()

	first, _ := json.Marshal(gin.H{"type": "snapshot", "feed": snapshot})
	if err := wc.writeText(first); err != nil {
		return
	}

	// reader: only keeps the read deadline fresh and notices close frames
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		conn.SetPongHandler(func(string) error {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	msgs := pubsub.Channel()
	ping := time.NewTicker(30 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-readDone:
			return
		case <-ctx.Done():
			return
		case <-ping.C:
			if err := wc.ping(); err != nil {
				return
			}
		case m, ok := <-msgs:
			if !ok {
				return
			}
			if err := wc.writeText([]byte(m.Payload)); err != nil {
				if h.log != nil {
					h.log.WithError(err).WithField("user_id", p.UserID).Debug("notification stream closed")
				}
				return
			}
		}
	}
}
