// Package streaming writes video bytes to HTTP clients with range support.
package streaming

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/helixml/vodcast/domain/byterange"
	"golang.org/x/time/rate"
)

// Defaults for Responder construction.
const (
	DefaultBufferSize  = 32 * 1024
	DefaultContentType = "video/mp4"
)

// Response messages for failures written by the Responder.
const (
	MessageRangeNotSatisfiable = "Requested Range Not Satisfiable"
	MessageStreamFailed        = "Error streaming video"
)

// Errors returned by Respond.
var (
	// ErrStreamIO indicates the byte source failed while opening or reading.
	ErrStreamIO = errors.New("stream i/o failure")

	// ErrClientGone indicates the client went away before the body was complete.
	ErrClientGone = errors.New("client disconnected")
)

// Source is a readable resource of known length.
type Source interface {
	// Size returns the resource length observed before streaming.
	Size() int64

	// ContentType returns the Content-Type to advertise.
	ContentType() string

	// Open acquires a read handle positioned at the start of the resource.
	Open(ctx context.Context) (io.ReadSeekCloser, error)
}

// Responder frames range outcomes as HTTP responses and copies the selected
// bytes from a Source using a bounded buffer. It holds no per-request state
// and is safe for concurrent use.
type Responder struct {
	bufferSize  int
	bytesPerSec int64
	logger      *slog.Logger
}

// Option configures a Responder.
type Option func(*Responder)

// WithBufferSize sets the copy buffer size in bytes.
func WithBufferSize(n int) Option {
	return func(r *Responder) {
		if n > 0 {
			r.bufferSize = n
		}
	}
}

// WithRateLimit caps each stream at the given bytes per second. Zero disables
// the cap.
func WithRateLimit(bytesPerSec int64) Option {
	return func(r *Responder) {
		if bytesPerSec >= 0 {
			r.bytesPerSec = bytesPerSec
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Responder) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewResponder creates a Responder.
func NewResponder(opts ...Option) *Responder {
	r := &Responder{
		bufferSize: DefaultBufferSize,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// BufferSize returns the copy buffer size.
func (r *Responder) BufferSize() int { return r.bufferSize }

// RateLimit returns the per-stream cap in bytes per second (0 = unlimited).
func (r *Responder) RateLimit() int64 { return r.bytesPerSec }

// Respond writes the response for outcome and returns the number of body
// bytes written.
//
// Range errors produce 416. A failure to open, seek or read the first chunk
// of src produces 500. Once the status line is written, later failures end
// the response early and are only reported through the returned error; the
// server then drops the connection because Content-Length was not met.
func (r *Responder) Respond(w http.ResponseWriter, req *http.Request, outcome byterange.Outcome, src Source) (int64, error) {
	if err := outcome.Err(); err != nil {
		writeText(w, http.StatusRequestedRangeNotSatisfiable, MessageRangeNotSatisfiable)
		return 0, err
	}

	size := src.Size()
	status := http.StatusOK
	start, length := int64(0), size
	span, partial := outcome.Span()
	if partial {
		status = http.StatusPartialContent
		start, length = span.Start(), span.Length()
	}

	commit := func() {
		h := w.Header()
		h.Set("Accept-Ranges", byterange.Unit)
		h.Set("Content-Type", src.ContentType())
		h.Set("Content-Length", strconv.FormatInt(length, 10))
		if partial {
			h.Set("Content-Range", span.ContentRange(size))
		}
		w.WriteHeader(status)
	}

	if req.Method == http.MethodHead || length == 0 {
		commit()
		return 0, nil
	}

	ctx := req.Context()
	rc, err := src.Open(ctx)
	if err != nil {
		writeText(w, http.StatusInternalServerError, MessageStreamFailed)
		return 0, fmt.Errorf("%w: open: %w", ErrStreamIO, err)
	}
	defer func() {
		if err := rc.Close(); err != nil {
			r.logger.Warn("failed to close stream source", slog.Any("error", err))
		}
	}()

	if start > 0 {
		if _, err := rc.Seek(start, io.SeekStart); err != nil {
			writeText(w, http.StatusInternalServerError, MessageStreamFailed)
			return 0, fmt.Errorf("%w: seek to %d: %w", ErrStreamIO, start, err)
		}
	}

	body := io.LimitReader(rc, length)
	buf := make([]byte, min(int64(r.bufferSize), length))

	// Read ahead before committing headers so an unreadable source can still
	// be reported with a status code.
	n, err := io.ReadFull(body, buf)
	if err != nil {
		writeText(w, http.StatusInternalServerError, MessageStreamFailed)
		return 0, fmt.Errorf("%w: read: %w", ErrStreamIO, err)
	}
	commit()

	limiter := r.limiter()
	var written int64
	for {
		if err := wait(ctx, limiter, n); err != nil {
			return written, fmt.Errorf("%w: %w", ErrClientGone, err)
		}
		wn, err := w.Write(buf[:n])
		written += int64(wn)
		if err != nil {
			return written, fmt.Errorf("%w: write: %w", ErrClientGone, err)
		}
		if written >= length {
			return written, nil
		}
		if err := ctx.Err(); err != nil {
			return written, fmt.Errorf("%w: %w", ErrClientGone, err)
		}

		n, err = io.ReadFull(body, buf[:min(int64(len(buf)), length-written)])
		if err != nil {
			return written, fmt.Errorf("%w: read after %d bytes: %w", ErrStreamIO, written, err)
		}
	}
}

func (r *Responder) limiter() *rate.Limiter {
	if r.bytesPerSec <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(r.bytesPerSec), r.bufferSize)
}

func wait(ctx context.Context, limiter *rate.Limiter, n int) error {
	if limiter == nil {
		return nil
	}
	return limiter.WaitN(ctx, n)
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, msg)
}
