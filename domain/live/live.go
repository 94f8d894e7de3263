// Package live models the state of the live broadcast relayed from Owncast.
package live

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrInvalidChat indicates a chat message without a body or display name.
var ErrInvalidChat = errors.New("message and displayName are required")

// Status is a snapshot of the broadcast as reported upstream.
type Status struct {
	online          bool
	viewerCount     int
	lastConnectTime *time.Time
}

// NewStatus creates a Status. lastConnectTime may be nil when the stream has
// never connected.
func NewStatus(online bool, viewerCount int, lastConnectTime *time.Time) Status {
	if lastConnectTime != nil {
		t := *lastConnectTime
		lastConnectTime = &t
	}
	return Status{
		online:          online,
		viewerCount:     viewerCount,
		lastConnectTime: lastConnectTime,
	}
}

// Online reports whether a broadcaster is connected.
func (s Status) Online() bool { return s.online }

// ViewerCount returns the current number of viewers.
func (s Status) ViewerCount() int { return s.viewerCount }

// LastConnectTime returns when the broadcaster last connected, if ever.
func (s Status) LastConnectTime() (time.Time, bool) {
	if s.lastConnectTime == nil {
		return time.Time{}, false
	}
	return *s.lastConnectTime, true
}

// Info describes where the live playlist can be fetched.
type Info struct {
	hlsURL string
	isLive bool
}

// NewInfo creates an Info.
func NewInfo(hlsURL string, isLive bool) Info {
	return Info{hlsURL: hlsURL, isLive: isLive}
}

// HLSURL returns the playlist URL.
func (i Info) HLSURL() string { return i.hlsURL }

// IsLive reports whether the broadcast is currently online.
func (i Info) IsLive() bool { return i.isLive }

// ChatMessage is a message relayed to the broadcast chat.
type ChatMessage struct {
	body        string
	displayName string
}

// NewChatMessage validates and creates a ChatMessage.
func NewChatMessage(body, displayName string) (ChatMessage, error) {
	if strings.TrimSpace(body) == "" || strings.TrimSpace(displayName) == "" {
		return ChatMessage{}, ErrInvalidChat
	}
	return ChatMessage{body: body, displayName: displayName}, nil
}

// Body returns the message text.
func (m ChatMessage) Body() string { return m.body }

// DisplayName returns the sender name shown in chat.
func (m ChatMessage) DisplayName() string { return m.displayName }

// Upstream is the broadcast server the live endpoints proxy to.
type Upstream interface {
	Status(ctx context.Context) (Status, error)
	SendChat(ctx context.Context, msg ChatMessage) (bool, error)
}
