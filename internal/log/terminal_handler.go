package log

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	ansiReset  = "\033[0m"
	ansiDim    = "\033[2m"
	ansiBold   = "\033[1m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiBlue   = "\033[34m"
	ansiCyan   = "\033[36m"
)

// byteKeys are attribute keys rendered as human-readable sizes.
var byteKeys = map[string]bool{
	"bytes":       true,
	"size":        true,
	"buffer_size": true,
	"rate_limit":  true,
}

// TerminalHandler writes one coloured line per record for interactive use.
// A "component" attribute attached with WithAttrs becomes a bracketed prefix.
// Byte counts print in binary units and HTTP statuses take their class colour.
//
//	15:04:05.000 INF [streaming] stream completed video=clip.mp4 bytes=1.5MiB status=206
type TerminalHandler struct {
	out       io.Writer
	level     slog.Leveler
	component string
	prefix    string
	attrs     []byte
	mu        *sync.Mutex
}

func newTerminalHandler(w io.Writer, opts *slog.HandlerOptions) *TerminalHandler {
	h := &TerminalHandler{out: w, level: slog.LevelInfo, mu: &sync.Mutex{}}
	if opts != nil && opts.Level != nil {
		h.level = opts.Level
	}
	return h
}

// Enabled reports whether the handler handles records at the given level.
func (h *TerminalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle writes the record as a single line.
func (h *TerminalHandler) Handle(_ context.Context, r slog.Record) error {
	buf := make([]byte, 0, 256)

	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	buf = append(buf, ansiDim...)
	buf = ts.AppendFormat(buf, "15:04:05.000")
	buf = append(buf, ansiReset...)

	color, label := levelStyle(r.Level)
	buf = append(buf, ' ')
	buf = append(buf, color...)
	buf = append(buf, label...)
	buf = append(buf, ansiReset...)

	if h.component != "" {
		buf = append(buf, ' ', '[')
		buf = append(buf, ansiBlue...)
		buf = append(buf, h.component...)
		buf = append(buf, ansiReset...)
		buf = append(buf, ']')
	}

	buf = append(buf, ' ')
	buf = append(buf, ansiBold...)
	buf = append(buf, r.Message...)
	buf = append(buf, ansiReset...)

	buf = append(buf, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		buf = appendAttr(buf, h.prefix, a)
		return true
	})
	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(buf)
	return err
}

// WithAttrs returns a handler that writes attrs on every record. A top-level
// "component" attribute replaces the line prefix instead.
func (h *TerminalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append([]byte(nil), h.attrs...)
	for _, a := range attrs {
		if h.prefix == "" && a.Key == "component" {
			clone.component = a.Value.Resolve().String()
			continue
		}
		clone.attrs = appendAttr(clone.attrs, h.prefix, a)
	}
	return &clone
}

// WithGroup returns a handler that qualifies later attribute keys with name.
func (h *TerminalHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

func levelStyle(level slog.Level) (string, string) {
	switch {
	case level < slog.LevelInfo:
		return ansiCyan, "DBG"
	case level < slog.LevelWarn:
		return ansiGreen, "INF"
	case level < slog.LevelError:
		return ansiYellow, "WRN"
	default:
		return ansiRed, "ERR"
	}
}

func appendAttr(buf []byte, prefix string, a slog.Attr) []byte {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return buf
	}

	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			buf = appendAttr(buf, prefix, ga)
		}
		return buf
	}

	buf = append(buf, ' ')
	buf = append(buf, ansiDim...)
	buf = append(buf, prefix...)
	buf = append(buf, a.Key...)
	buf = append(buf, '=')
	buf = append(buf, ansiReset...)
	return appendValue(buf, a.Key, a.Value)
}

func appendValue(buf []byte, key string, v slog.Value) []byte {
	switch v.Kind() {
	case slog.KindInt64:
		n := v.Int64()
		if byteKeys[key] {
			return append(buf, humanBytes(n)...)
		}
		if key == "status" {
			if color := statusColor(n); color != "" {
				buf = append(buf, color...)
				buf = strconv.AppendInt(buf, n, 10)
				return append(buf, ansiReset...)
			}
		}
		return strconv.AppendInt(buf, n, 10)
	case slog.KindUint64:
		if byteKeys[key] && v.Uint64() <= 1<<62 {
			return append(buf, humanBytes(int64(v.Uint64()))...)
		}
		return strconv.AppendUint(buf, v.Uint64(), 10)
	case slog.KindDuration:
		return append(buf, v.Duration().Round(time.Millisecond).String()...)
	case slog.KindTime:
		return v.Time().AppendFormat(buf, time.RFC3339)
	case slog.KindString:
		s := v.String()
		if s == "" || strings.ContainsAny(s, " \t\r\n\"\\=") {
			return strconv.AppendQuote(buf, s)
		}
		return append(buf, s...)
	default:
		return append(buf, v.String()...)
	}
}

// humanBytes renders n in binary units, e.g. 512B, 32KiB, 1.5MiB.
func humanBytes(n int64) string {
	if n < 1024 && n > -1024 {
		return strconv.FormatInt(n, 10) + "B"
	}
	f := float64(n)
	unit := 0
	units := []string{"KiB", "MiB", "GiB", "TiB"}
	for f /= 1024; (f >= 1024 || f <= -1024) && unit < len(units)-1; f /= 1024 {
		unit++
	}
	s := strconv.FormatFloat(f, 'f', 1, 64)
	return strings.TrimSuffix(s, ".0") + units[unit]
}

func statusColor(status int64) string {
	switch {
	case status < 200 || status >= 600:
		return ""
	case status >= 500:
		return ansiRed
	case status >= 400:
		return ansiYellow
	case status >= 300:
		return ansiCyan
	default:
		return ansiGreen
	}
}
