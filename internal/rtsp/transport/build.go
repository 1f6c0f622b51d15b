package transport

import "fmt"

// BuildInterleavedHeader formats the Transport header value SETUP
// carries for interleaved TCP transport:
// "RTP/AVP/TCP;unicast;interleaved=N-(N+1)".
func BuildInterleavedHeader(channel int) string {
	return fmt.Sprintf("RTP/AVP/TCP;unicast;interleaved=%d-%d", channel, channel+1)
}
