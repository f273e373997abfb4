package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"lumaevents/internal/domain"
)

// listenerPingInterval is how often an idle listener connection is checked.
const listenerPingInterval = 90 * time.Second

// ChangeListener turns Postgres NOTIFY payloads on a channel into domain
// changes. Table triggers publish {"table", "op", "row"} JSON documents.
type ChangeListener struct {
	dsn          string
	channel      string
	minReconnect time.Duration
	maxReconnect time.Duration
	logger       *slog.Logger
}

func NewChangeListener(dsn, channel string, minReconnect, maxReconnect time.Duration, logger *slog.Logger) *ChangeListener {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChangeListener{
		dsn:          dsn,
		channel:      channel,
		minReconnect: minReconnect,
		maxReconnect: maxReconnect,
		logger:       logger,
	}
}

var _ domain.ChangeSource = (*ChangeListener)(nil)

// Listen blocks until ctx is done, publishing every change received. After
// the connection is re-established a Resync change is published, since
// notifications sent while disconnected are lost.
func (l *ChangeListener) Listen(ctx context.Context, publish func(domain.Change)) error {
	listener := pq.NewListener(l.dsn, l.minReconnect, l.maxReconnect, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventConnected:
			l.logger.Info("change listener connected", "channel", l.channel)
		case pq.ListenerEventDisconnected:
			l.logger.Warn("change listener disconnected", "channel", l.channel, "error", err)
		case pq.ListenerEventReconnected:
			l.logger.Info("change listener reconnected", "channel", l.channel)
		case pq.ListenerEventConnectionAttemptFailed:
			l.logger.Warn("change listener connection attempt failed", "channel", l.channel, "error", err)
		}
	})
	defer listener.Close()

	if err := listener.Listen(l.channel); err != nil {
		return fmt.Errorf("%w: listen %s: %w", domain.ErrStoreUnavailable, l.channel, err)
	}
	return l.consume(ctx, listener.Notify, listener.Ping, publish)
}

func (l *ChangeListener) consume(ctx context.Context, notify <-chan *pq.Notification, ping func() error, publish func(domain.Change)) error {
	ticker := time.NewTicker(listenerPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case n, ok := <-notify:
			if !ok {
				return nil
			}
			if n == nil {
				publish(domain.Resync())
				continue
			}
			change, err := ParseChange(n.Extra)
			if err != nil {
				l.logger.Warn("dropping malformed change notification", "channel", n.Channel, "error", err)
				continue
			}
			publish(change)
		case <-ticker.C:
			if err := ping(); err != nil {
				l.logger.Warn("change listener ping failed", "channel", l.channel, "error", err)
			}
		}
	}
}

// ParseChange decodes a notification payload.
func ParseChange(payload string) (domain.Change, error) {
	var c domain.Change
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return domain.Change{}, fmt.Errorf("decode change: %w", err)
	}
	if c.Table == "" {
		return domain.Change{}, fmt.Errorf("decode change: missing table")
	}
	switch c.Op {
	case domain.OpInsert, domain.OpUpdate, domain.OpDelete:
	default:
		return domain.Change{}, fmt.Errorf("decode change: unknown op %q", c.Op)
	}
	if c.Row == nil {
		c.Row = map[string]string{}
	}
	return c, nil
}
