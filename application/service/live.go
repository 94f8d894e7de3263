package service

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/helixml/vodcast/domain/live"
)

// Live proxies broadcast status and chat to the upstream server.
type Live struct {
	upstream live.Upstream
	hlsURL   string
	group    singleflight.Group
	logger   *slog.Logger
}

// NewLive creates a new Live service. hlsURL is the playlist advertised by
// Info.
func NewLive(upstream live.Upstream, hlsURL string, logger *slog.Logger) *Live {
	if logger == nil {
		logger = slog.Default()
	}
	return &Live{
		upstream: upstream,
		hlsURL:   hlsURL,
		logger:   logger,
	}
}

// Status returns the upstream broadcast status. Concurrent callers share a
// single upstream request, which is bounded by the upstream client's timeout
// rather than by any one caller's context.
func (l *Live) Status(ctx context.Context) (live.Status, error) {
	v, err, shared := l.group.Do("status", func() (any, error) {
		return l.upstream.Status(context.WithoutCancel(ctx))
	})
	if err != nil {
		return live.Status{}, fmt.Errorf("fetch live status: %w", err)
	}
	if shared {
		l.logger.DebugContext(ctx, "live status request coalesced")
	}
	return v.(live.Status), nil
}

// Info returns the playlist URL and whether the broadcast is online. An
// unreachable upstream is reported as offline.
func (l *Live) Info(ctx context.Context) live.Info {
	status, err := l.Status(ctx)
	if err != nil {
		l.logger.WarnContext(ctx, "live status unavailable", slog.Any("error", err))
		return live.NewInfo(l.hlsURL, false)
	}
	return live.NewInfo(l.hlsURL, status.Online())
}

// Chat relays a message to the broadcast chat and reports whether the
// upstream accepted it. Missing fields return an error wrapping ErrValidation.
func (l *Live) Chat(ctx context.Context, message, displayName string) (bool, error) {
	msg, err := live.NewChatMessage(message, displayName)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	sent, err := l.upstream.SendChat(ctx, msg)
	if err != nil {
		return false, fmt.Errorf("send chat: %w", err)
	}
	l.logger.InfoContext(ctx, "chat message relayed",
		slog.String("display_name", msg.DisplayName()),
		slog.Bool("sent", sent),
	)
	return sent, nil
}

// HLSURL returns the advertised playlist URL.
func (l *Live) HLSURL() string { return l.hlsURL }
