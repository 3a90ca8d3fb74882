package alerts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/tokenscout/internal/contracts"
	"github.com/wonny/tokenscout/internal/metrics"
	"github.com/wonny/tokenscout/pkg/config"
	"github.com/wonny/tokenscout/pkg/logger"
)

const (
	// Reconnect settings
	defaultReconnectDelay = 5 * time.Second
	maxReconnectDelay     = 5 * time.Minute

	// Ping/Pong settings
	pingInterval = 30 * time.Second
	pongWait     = 60 * time.Second
	writeWait    = 10 * time.Second
)

// ErrBridgeUnavailable is returned once the reconnect budget is spent
var ErrBridgeUnavailable = errors.New("alert bridge unavailable")

// Handler receives every valid token alert, in arrival order
type Handler func(ctx context.Context, alert *contracts.AlertPayload)

// envelope is enough of a bridge message to route it
type envelope struct {
	Type string `json:"type"`
}

// Listener consumes the scanner's websocket alert bridge
// ⭐ SSOT: 스캐너 브리지 연결은 이 리스너에서만
type Listener struct {
	url            string
	reconnectDelay time.Duration
	maxReconnects  int // 0 = retry forever

	handler Handler
	dialer  *websocket.Dialer
	metrics *metrics.Metrics
	logger  *logger.Logger
}

// NewListener creates a listener for the configured bridge
func NewListener(cfg config.AlertBridgeConfig, handler Handler, m *metrics.Metrics, log *logger.Logger) *Listener {
	delay := cfg.ReconnectDelay
	if delay <= 0 {
		delay = defaultReconnectDelay
	}
	return &Listener{
		url:            cfg.URL,
		reconnectDelay: delay,
		maxReconnects:  cfg.MaxReconnects,
		handler:        handler,
		dialer:         websocket.DefaultDialer,
		metrics:        m,
		logger:         log.WithComponent("alert_bridge"),
	}
}

// Run connects and dispatches alerts until ctx is done or the bridge
// stays unreachable for more than maxReconnects consecutive attempts.
// A connection that delivered at least one message resets the budget.
func (l *Listener) Run(ctx context.Context) error {
	l.logger.WithField("url", l.url).Info("Starting alert bridge listener")

	attempts := 0
	delay := l.reconnectDelay
	for {
		received, err := l.session(ctx)
		if ctx.Err() != nil {
			l.logger.Info("Alert bridge listener stopped")
			return ctx.Err()
		}

		if received > 0 {
			attempts = 0
			delay = l.reconnectDelay
		}
		attempts++
		if l.maxReconnects > 0 && attempts > l.maxReconnects {
			return fmt.Errorf("%w after %d reconnects: %v", ErrBridgeUnavailable, l.maxReconnects, err)
		}

		l.logger.WithError(err).WithFields(map[string]interface{}{
			"attempt": attempts,
			"delay":   delay.String(),
		}).Warn("Alert bridge disconnected, reconnecting")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		// Exponential backoff
		delay *= 2
		if delay > maxReconnectDelay {
			delay = maxReconnectDelay
		}
	}
}

// session runs one connection to completion and reports how many
// messages it delivered
func (l *Listener) session(ctx context.Context) (int, error) {
	conn, _, err := l.dialer.DialContext(ctx, l.url, nil)
	if err != nil {
		return 0, fmt.Errorf("dial failed: %w", err)
	}
	defer conn.Close()

	l.metrics.SetBridgeConnected(true)
	defer l.metrics.SetBridgeConnected(false)
	l.logger.Info("Connected to alert bridge")

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go l.pingLoop(conn, done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	received := 0
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return received, fmt.Errorf("read failed: %w", err)
		}
		received++
		conn.SetReadDeadline(time.Now().Add(pongWait))

		if err := l.handleMessage(ctx, conn, message); err != nil {
			l.logger.WithError(err).Warn("Failed to handle bridge message")
		}
	}
}

// handleMessage routes one bridge message
func (l *Listener) handleMessage(ctx context.Context, conn *websocket.Conn, message []byte) error {
	var env envelope
	if err := json.Unmarshal(message, &env); err != nil {
		return fmt.Errorf("unmarshal message: %w", err)
	}

	switch env.Type {
	case "ping":
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(envelope{Type: "pong"})

	case "pong":
		return nil

	case contracts.AlertTypeToken:
		alert, err := contracts.ParseAlert(message)
		if err != nil {
			l.metrics.ObserveAlert("invalid")
			return fmt.Errorf("invalid alert: %w", err)
		}

		l.logger.WithFields(map[string]interface{}{
			"address": alert.Token.Address,
			"chain":   alert.Token.Chain,
			"chat":    alert.Token.ChatName,
		}).Debug("Alert received")

		l.handler(ctx, alert)
		return nil

	default:
		l.logger.WithField("type", env.Type).Debug("Ignoring bridge message")
		return nil
	}
}

// pingLoop sends periodic control pings to keep the connection alive
func (l *Listener) pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeWait)); err != nil {
				l.logger.WithError(err).Debug("Failed to send ping")
			}
		}
	}
}
