package vodcast

import (
	"github.com/helixml/vodcast/application/service"
	"github.com/helixml/vodcast/domain/byterange"
	"github.com/helixml/vodcast/domain/video"
	"github.com/helixml/vodcast/infrastructure/owncast"
	"github.com/helixml/vodcast/infrastructure/streaming"
)

// Exported errors for library consumers. Each aliases the sentinel of the
// package that produces it so errors.Is works across layers.
var (
	// ErrNotFound indicates a requested video does not exist.
	ErrNotFound = video.ErrNotFound

	// ErrValidation indicates caller input was rejected.
	ErrValidation = service.ErrValidation

	// ErrRange indicates a Range header that cannot be served.
	ErrRange = byterange.ErrRange

	// ErrStreamIO indicates the video could not be read while streaming.
	ErrStreamIO = streaming.ErrStreamIO

	// ErrUpstream indicates the Owncast server could not be reached or
	// rejected a call.
	ErrUpstream = owncast.ErrUpstream

	// ErrClientClosed indicates the client has been closed.
	ErrClientClosed = service.ErrClientClosed
)
