package rtsp

import "github.com/pion/rtp"

// opusDepacketizer reassembles RFC 7587 RTP/Opus payloads into a raw
// Opus frame. Opus carries exactly one encoded frame per RTP packet, so
// a packet group is just concatenated verbatim (typically a group of
// one).
type opusDepacketizer struct{}

func (d *opusDepacketizer) Depacketize(packets []*rtp.Packet) ([]byte, error) {
	var out []byte
	for _, pkt := range packets {
		out = append(out, pkt.Payload...)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}
