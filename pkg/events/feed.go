package events

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// FeedConfig controls WebSocket read behavior.
type FeedConfig struct {
	// ReadTimeout is the per-message read deadline.
	ReadTimeout time.Duration

	// MaxMessageSize limits a single incoming message, in bytes.
	MaxMessageSize int64
}

// DefaultFeedConfig returns the production defaults.
func DefaultFeedConfig() FeedConfig {
	return FeedConfig{
		ReadTimeout:    60 * time.Second,
		MaxMessageSize: 64 * 1024,
	}
}

// Feed reads JSON-encoded events from a WebSocket connection and emits
// them on a Bus. One message is one Event object.
type Feed struct {
	conn   *websocket.Conn
	bus    *Bus
	config FeedConfig
	logger *slog.Logger

	done      chan struct{}
	closeOnce sync.Once
}

// NewFeed wraps an established connection. A nil logger falls back to
// slog.Default().
func NewFeed(conn *websocket.Conn, bus *Bus, config FeedConfig, logger *slog.Logger) *Feed {
	if logger == nil {
		logger = slog.Default()
	}

	conn.SetReadLimit(config.MaxMessageSize)

	return &Feed{
		conn:   conn,
		bus:    bus,
		config: config,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Run continuously reads messages from the connection, decodes them, and
// emits them on the bus. It blocks until the connection is closed or a
// read error occurs, then closes the feed.
//
// Malformed messages are logged and skipped; the loop keeps reading.
func (f *Feed) Run() {
	defer f.Close()

	for {
		f.conn.SetReadDeadline(time.Now().Add(f.config.ReadTimeout))

		_, msg, err := f.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				f.logger.Error("read error", "error", err)
			}
			return
		}

		var e Event
		if err := json.Unmarshal(msg, &e); err != nil {
			f.logger.Error("event decode error", "error", err)
			continue
		}
		e.Time = time.Now()

		f.bus.Emit(e)
	}
}

// Close shuts the feed down and closes the underlying connection.
// Safe to call multiple times and concurrently with Run.
func (f *Feed) Close() {
	f.closeOnce.Do(func() {
		close(f.done)
		f.conn.Close()
	})
}

// Done is closed when the feed has shut down.
func (f *Feed) Done() <-chan struct{} {
	return f.done
}
