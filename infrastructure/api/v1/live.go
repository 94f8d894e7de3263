package v1

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/helixml/vodcast"
	"github.com/helixml/vodcast/application/service"
	"github.com/helixml/vodcast/infrastructure/api/middleware"
	"github.com/helixml/vodcast/infrastructure/api/v1/dto"
)

// Messages written by the live router.
const (
	MessageStatusFailed = "Failed to fetch live status from Owncast"
	MessageChatFailed   = "Failed to send message to stream chat."
	MessageChatInvalid  = "Message and displayName are required"
)

const maxChatRequestLength = 64 * 1024

// LiveRouter handles the live broadcast proxy endpoints.
type LiveRouter struct {
	client *vodcast.Client
	logger *slog.Logger
}

// NewLiveRouter creates a new LiveRouter.
func NewLiveRouter(client *vodcast.Client) *LiveRouter {
	return &LiveRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for live endpoints.
func (r *LiveRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/info", r.Info)
	router.Get("/status", r.Status)
	router.Post("/chat", r.Chat)

	return router
}

// Info handles GET /api/v1/live/info.
//
//	@Summary		Live playlist
//	@Description	Playlist URL of the broadcast and whether it is online
//	@Tags			live
//	@Produce		json
//	@Success		200	{object}	dto.LiveInfoResponse
//	@Router			/live/info [get]
func (r *LiveRouter) Info(w http.ResponseWriter, req *http.Request) {
	info := r.client.Live.Info(req.Context())

	middleware.WriteJSON(w, http.StatusOK, dto.LiveInfoResponse{
		HLSURL: info.HLSURL(),
		IsLive: info.IsLive(),
	})
}

// Status handles GET /api/v1/live/status.
//
//	@Summary		Live status
//	@Description	Broadcast status relayed from Owncast
//	@Tags			live
//	@Produce		json
//	@Success		200	{object}	dto.LiveStatusResponse
//	@Failure		500	{object}	middleware.ErrorResponse
//	@Router			/live/status [get]
func (r *LiveRouter) Status(w http.ResponseWriter, req *http.Request) {
	status, err := r.client.Live.Status(req.Context())
	if err != nil {
		middleware.WriteError(w, req, middleware.NewAPIError(http.StatusInternalServerError, MessageStatusFailed, err), r.logger)
		return
	}

	response := dto.LiveStatusResponse{
		IsLive:  status.Online(),
		Viewers: status.ViewerCount(),
	}
	if t, ok := status.LastConnectTime(); ok {
		response.LastConnected = &t
	}

	middleware.WriteJSON(w, http.StatusOK, response)
}

// Chat handles POST /api/v1/live/chat.
//
//	@Summary		Send chat message
//	@Description	Relay a message to the broadcast chat
//	@Tags			live
//	@Accept			json
//	@Produce		json
//	@Param			body	body		dto.ChatRequest	true	"Chat message"
//	@Success		200		{object}	dto.ChatResponse
//	@Failure		400		{object}	middleware.ErrorResponse
//	@Failure		401		{object}	middleware.ErrorResponse
//	@Failure		500		{object}	middleware.ErrorResponse
//	@Security		APIKeyAuth
//	@Router			/live/chat [post]
func (r *LiveRouter) Chat(w http.ResponseWriter, req *http.Request) {
	var body dto.ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxChatRequestLength)).Decode(&body); err != nil {
		middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, MessageChatInvalid, err), r.logger)
		return
	}

	sent, err := r.client.Live.Chat(req.Context(), body.Message, body.DisplayName)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, MessageChatInvalid, err), r.logger)
			return
		}
		middleware.WriteError(w, req, middleware.NewAPIError(http.StatusInternalServerError, MessageChatFailed, err), r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.ChatResponse{Success: true, Sent: sent})
}
