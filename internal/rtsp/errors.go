package rtsp

import "errors"

// Sentinel errors a caller may want to compare against. Everything else
// propagates as a wrapped error.
var (
	// ErrUnsupportedScheme is a Configuration error: the URL scheme was
	// not "rtsp".
	ErrUnsupportedScheme = errors.New("rtsp: unsupported URL scheme")

	// ErrNoCandidateURL is a Configuration error: the session was given
	// no parsable URL to connect to.
	ErrNoCandidateURL = errors.New("rtsp: no candidate URL")

	// ErrConnectTimeout is a Transport error: TCP connect failed or
	// exceeded connect_timeout_ms.
	ErrConnectTimeout = errors.New("rtsp: connect timeout")

	// ErrResponseTimeout is a Transport error: no response arrived within
	// request_timeout_ms.
	ErrResponseTimeout = errors.New("rtsp: response timeout")

	// ErrNonOKStatus is a Protocol error: a request received a non-200
	// status.
	ErrNonOKStatus = errors.New("rtsp: non-200 response")

	// ErrMissingSessionHeader is a Protocol error: DESCRIBE's response
	// had no Session header.
	ErrMissingSessionHeader = errors.New("rtsp: missing Session header")

	// ErrMissingSDPBody is a Protocol error: DESCRIBE's response had no
	// body.
	ErrMissingSDPBody = errors.New("rtsp: missing SDP body")

	// ErrMalformedSDP is a Protocol error: the SDP body failed to parse.
	ErrMalformedSDP = errors.New("rtsp: malformed SDP")

	// ErrMissingControlAttribute is a Protocol error: a media description
	// had no a=control attribute.
	ErrMissingControlAttribute = errors.New("rtsp: missing control attribute")

	// ErrUnsupportedCodec is a Media error: a video or audio media
	// description in the SDP named a codec this client cannot depacketize,
	// or the SDP held no usable video or audio media description at all.
	ErrUnsupportedCodec = errors.New("rtsp: unsupported codec")

	// ErrDuplicatePayloadType is a Protocol error: two tracks in the SDP
	// share an RTP payload-type, which would break payload-type-keyed
	// demultiplexing.
	ErrDuplicatePayloadType = errors.New("rtsp: duplicate RTP payload type across tracks")

	// ErrInvalidStateTransition means the caller invoked an operation the
	// state machine does not allow from the current state.
	ErrInvalidStateTransition = errors.New("rtsp: invalid state transition")

	// ErrSessionClosed is a Transport error: the socket has already been
	// torn down.
	ErrSessionClosed = errors.New("rtsp: session closed")
)
