package dto

import "time"

// LiveInfoResponse advertises the broadcast playlist.
type LiveInfoResponse struct {
	HLSURL string `json:"hlsUrl"`
	IsLive bool   `json:"isLive"`
}

// LiveStatusResponse relays the upstream broadcast status.
// LastConnected is null when the upstream has never seen a broadcaster.
type LiveStatusResponse struct {
	IsLive        bool       `json:"isLive"`
	Viewers       int        `json:"viewers"`
	LastConnected *time.Time `json:"lastConnected"`
}

// ChatRequest is the body of POST /live/chat.
type ChatRequest struct {
	Message     string `json:"message"`
	DisplayName string `json:"displayName"`
}

// ChatResponse reports whether the upstream accepted the message.
type ChatResponse struct {
	Success bool `json:"success"`
	Sent    bool `json:"sent"`
}
