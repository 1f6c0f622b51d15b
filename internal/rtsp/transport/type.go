package transport

import "errors"

// Protocol is the RTP delivery transport negotiated in a Transport
// header. This client only ever asks for TCP and only accepts a TCP
// reply; UDP is parsed so an unsupported server reply is a clear error
// instead of a parse failure.
type Protocol string

const (
	ProtocolUDP Protocol = "UDP"
	ProtocolTCP Protocol = "TCP"
)

var ErrUnsupportedTransport = errors.New("unsupported transport")

// Option is one negotiated transport option from a SETUP response's
// Transport header. Only what a unicast-interleaved-TCP client needs to
// validate and record is kept: the delivery protocol, the unicast flag,
// and the negotiated interleaved channel pair.
type Option struct {
	Protocol    Protocol
	Unicast     bool
	Interleaved [2]int
}

// Header is a parsed Transport header: the server may offer more than
// one comma-separated option, though this client only ever negotiates
// one.
type Header struct {
	Options []Option
}
