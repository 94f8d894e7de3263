package v1

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/helixml/vodcast"
	"github.com/helixml/vodcast/domain/byterange"
	"github.com/helixml/vodcast/domain/video"
	"github.com/helixml/vodcast/infrastructure/api/middleware"
	"github.com/helixml/vodcast/infrastructure/api/v1/dto"
	"github.com/helixml/vodcast/infrastructure/streaming"
)

// Messages written by the VODs router.
const (
	MessageListFailed   = "Failed to retrieve video list."
	MessageFileNotFound = "File not found"
)

// VodsRouter handles the video library endpoints.
type VodsRouter struct {
	client *vodcast.Client
	logger *slog.Logger
}

// NewVodsRouter creates a new VodsRouter.
func NewVodsRouter(client *vodcast.Client) *VodsRouter {
	return &VodsRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for the library listing.
func (r *VodsRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", r.List)

	return router
}

// StreamRoutes returns the chi router for video streams. It must not be
// wrapped in a request timeout.
func (r *VodsRouter) StreamRoutes() chi.Router {
	router := chi.NewRouter()

	router.Get("/{name}", r.Stream)
	router.Head("/{name}", r.Stream)

	return router
}

// List handles GET /api/v1/vods.
//
//	@Summary		List videos
//	@Description	List the videos in the library, sorted by name
//	@Tags			vods
//	@Produce		json
//	@Success		200	{array}		dto.VODResponse
//	@Failure		500	{object}	middleware.ErrorResponse
//	@Router			/vods [get]
func (r *VodsRouter) List(w http.ResponseWriter, req *http.Request) {
	videos, err := r.client.Videos.List(req.Context())
	if err != nil {
		middleware.WriteError(w, req, middleware.NewAPIError(http.StatusInternalServerError, MessageListFailed, err), r.logger)
		return
	}

	response := make([]dto.VODResponse, 0, len(videos))
	for _, v := range videos {
		response = append(response, dto.VODResponse{
			ID:    v.Name(),
			Title: v.Title(),
			URL:   r.client.Videos.StreamURL(v.Name()),
		})
	}

	middleware.WriteJSON(w, http.StatusOK, response)
}

// Stream handles GET and HEAD /api/v1/vods/stream/{name}.
//
//	@Summary		Stream video
//	@Description	Stream a video, honoring a single byte range
//	@Tags			vods
//	@Produce		video/mp4
//	@Param			name	path		string	true	"Video file name"
//	@Param			Range	header		string	false	"Byte range, e.g. bytes=0-1023"
//	@Success		200		{file}		binary
//	@Success		206		{file}		binary
//	@Failure		404		{string}	string
//	@Failure		416		{string}	string
//	@Failure		500		{string}	string
//	@Router			/vods/stream/{name} [get]
func (r *VodsRouter) Stream(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	name, ok := pathParam(req, "name")
	if !ok {
		http.Error(w, MessageFileNotFound, http.StatusNotFound)
		return
	}

	stream, err := r.client.Videos.Stream(ctx, name)
	if err != nil {
		if errors.Is(err, video.ErrNotFound) {
			http.Error(w, MessageFileNotFound, http.StatusNotFound)
			return
		}
		r.logger.ErrorContext(ctx, "failed to stat video", slog.String("name", name), slog.Any("error", err))
		http.Error(w, streaming.MessageStreamFailed, http.StatusInternalServerError)
		return
	}

	header := req.Header.Get("Range")
	outcome := byterange.Resolve(stream.Size(), header)

	written, err := r.client.Streams.Respond(w, req, outcome, stream)
	switch {
	case err == nil:
	case errors.Is(err, byterange.ErrRange):
		r.logger.DebugContext(ctx, "range rejected",
			slog.String("name", name),
			slog.String("range", header),
			slog.String("outcome", outcome.Kind().String()),
		)
	case errors.Is(err, streaming.ErrClientGone):
		r.logger.DebugContext(ctx, "client left mid-stream",
			slog.String("name", name),
			slog.Int64("written", written),
		)
	default:
		r.logger.ErrorContext(ctx, "stream failed",
			slog.String("name", name),
			slog.Int64("written", written),
			slog.Any("error", err),
		)
	}
}

// pathParam returns the decoded URL parameter. chi matches against the raw
// path when the request carries escapes such as %2F, so those values are
// decoded here.
func pathParam(req *http.Request, key string) (string, bool) {
	value := chi.URLParam(req, key)
	if req.URL.RawPath == "" {
		return value, value != ""
	}
	decoded, err := url.PathUnescape(value)
	if err != nil {
		return "", false
	}
	return decoded, decoded != ""
}
