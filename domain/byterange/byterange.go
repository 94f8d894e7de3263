// Package byterange resolves HTTP Range headers against a resource length.
//
// Resolution is a pure function of the resource length and the raw header
// value. The result is an Outcome describing whether the full resource should
// be served, a single span, or why the request cannot be satisfied.
package byterange

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Unit is the only range unit this package understands.
const Unit = "bytes"

// Errors reported for outcomes that cannot be served.
var (
	// ErrRange is the base error for all range resolution failures.
	ErrRange = errors.New("range not satisfiable")

	// ErrMalformed indicates the header is not a valid byte-range expression.
	ErrMalformed = fmt.Errorf("malformed range: %w", ErrRange)

	// ErrUnsatisfiable indicates no requested range overlaps the resource.
	ErrUnsatisfiable = fmt.Errorf("unsatisfiable range: %w", ErrRange)

	// ErrMultipleRanges indicates disjoint ranges that cannot be combined.
	ErrMultipleRanges = fmt.Errorf("multiple ranges unsupported: %w", ErrRange)
)

// Kind classifies an Outcome.
type Kind int

// Kind values.
const (
	KindNone Kind = iota
	KindSingle
	KindMalformed
	KindUnsatisfiable
	KindMultiple
)

// String returns a short label for logging.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindSingle:
		return "single"
	case KindMalformed:
		return "malformed"
	case KindUnsatisfiable:
		return "unsatisfiable"
	case KindMultiple:
		return "multiple"
	default:
		return "unknown"
	}
}

// Span is an inclusive byte interval within a resource.
type Span struct {
	start int64
	end   int64
}

// NewSpan creates a Span covering start through end inclusive.
func NewSpan(start, end int64) Span {
	return Span{start: start, end: end}
}

// Start returns the first byte offset.
func (s Span) Start() int64 { return s.start }

// End returns the last byte offset (inclusive).
func (s Span) End() int64 { return s.end }

// Length returns the number of bytes covered by the span.
func (s Span) Length() int64 { return s.end - s.start + 1 }

// ContentRange renders the Content-Range header value for a resource of the
// given total length.
func (s Span) ContentRange(total int64) string {
	return fmt.Sprintf("%s %d-%d/%d", Unit, s.start, s.end, total)
}

// Outcome is the result of resolving a Range header.
type Outcome struct {
	kind Kind
	span Span
}

// Kind returns the outcome classification.
func (o Outcome) Kind() Kind { return o.kind }

// Span returns the resolved span. It is only meaningful for KindSingle.
func (o Outcome) Span() (Span, bool) {
	return o.span, o.kind == KindSingle
}

// Partial reports whether the outcome selects a single span.
func (o Outcome) Partial() bool { return o.kind == KindSingle }

// Err returns the error matching a failed outcome, or nil when the outcome
// can be served.
func (o Outcome) Err() error {
	switch o.kind {
	case KindMalformed:
		return ErrMalformed
	case KindUnsatisfiable:
		return ErrUnsatisfiable
	case KindMultiple:
		return ErrMultipleRanges
	default:
		return nil
	}
}

// None returns the outcome for a request without a Range header.
func None() Outcome { return Outcome{kind: KindNone} }

// Single returns the outcome for one satisfiable span.
func Single(span Span) Outcome { return Outcome{kind: KindSingle, span: span} }

// Malformed returns the outcome for an unparseable header.
func Malformed() Outcome { return Outcome{kind: KindMalformed} }

// Unsatisfiable returns the outcome for ranges outside the resource.
func Unsatisfiable() Outcome { return Outcome{kind: KindUnsatisfiable} }

// Multiple returns the outcome for disjoint ranges.
func Multiple() Outcome { return Outcome{kind: KindMultiple} }

// Resolve evaluates header against a resource of the given length.
//
// Overlapping and adjacent ranges are merged into one span. Ranges that start
// past the end of the resource are dropped. If more than one disjoint span
// remains after merging the outcome is KindMultiple.
func Resolve(length int64, header string) Outcome {
	header = strings.TrimSpace(header)
	if header == "" {
		return None()
	}

	elems, ok := parse(header)
	if !ok {
		return Malformed()
	}
	if length <= 0 {
		return Unsatisfiable()
	}

	spans := make([]Span, 0, len(elems))
	for _, sp := range elems {
		if s, ok := sp.bind(length); ok {
			spans = append(spans, s)
		}
	}
	if len(spans) == 0 {
		return Unsatisfiable()
	}

	merged := combine(spans)
	if len(merged) > 1 {
		return Multiple()
	}
	return Single(merged[0])
}

// rangeElem is one parsed element of a Range header before it is bound to a
// resource length. For suffix ranges end holds the suffix length.
type rangeElem struct {
	start  int64
	end    int64
	hasEnd bool
	suffix bool
}

func parse(header string) ([]rangeElem, bool) {
	unit, set, found := strings.Cut(header, "=")
	if !found || !strings.EqualFold(strings.TrimSpace(unit), Unit) {
		return nil, false
	}

	var elems []rangeElem
	for _, elem := range strings.Split(set, ",") {
		elem = strings.TrimSpace(elem)
		if elem == "" {
			continue
		}
		sp, ok := parseElem(elem)
		if !ok {
			return nil, false
		}
		elems = append(elems, sp)
	}
	if len(elems) == 0 {
		return nil, false
	}
	return elems, true
}

func parseElem(elem string) (rangeElem, bool) {
	first, last, found := strings.Cut(elem, "-")
	if !found {
		return rangeElem{}, false
	}
	first = strings.TrimSpace(first)
	last = strings.TrimSpace(last)

	if first == "" {
		n, ok := parseOffset(last)
		if !ok {
			return rangeElem{}, false
		}
		return rangeElem{end: n, suffix: true}, true
	}

	start, ok := parseOffset(first)
	if !ok {
		return rangeElem{}, false
	}
	if last == "" {
		return rangeElem{start: start}, true
	}
	end, ok := parseOffset(last)
	if !ok || end < start {
		return rangeElem{}, false
	}
	return rangeElem{start: start, end: end, hasEnd: true}, true
}

func parseOffset(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// bind maps the element onto a resource of the given length. It reports false
// when the element does not overlap the resource.
func (sp rangeElem) bind(length int64) (Span, bool) {
	last := length - 1

	if sp.suffix {
		if sp.end == 0 {
			return Span{}, false
		}
		start := length - sp.end
		if start < 0 {
			start = 0
		}
		return Span{start: start, end: last}, true
	}

	if sp.start >= length {
		return Span{}, false
	}
	end := last
	if sp.hasEnd && sp.end < last {
		end = sp.end
	}
	return Span{start: sp.start, end: end}, true
}

// combine merges overlapping or adjacent spans. The input is not modified.
func combine(spans []Span) []Span {
	sorted := make([]Span, len(spans))
	copy(sorted, spans)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].start < sorted[j].start
	})

	merged := []Span{sorted[0]}
	for _, s := range sorted[1:] {
		cur := &merged[len(merged)-1]
		if s.start <= cur.end+1 {
			if s.end > cur.end {
				cur.end = s.end
			}
			continue
		}
		merged = append(merged, s)
	}
	return merged
}
