package rtsp

import "github.com/pion/rtp"

// Depacketizer reassembles RTP payload fragments for one coded frame
// back into a single elementary-stream bitstream buffer. These are
// minimal, RFC-faithful implementations of H.264, VP8 and Opus
// depacketization.
//
// A nil, nil return means the depacketizer has partial state and is
// awaiting the next packet group; the caller must not emit a media
// packet for that group.
type Depacketizer interface {
	Depacketize(packets []*rtp.Packet) ([]byte, error)
}

// NewDepacketizer returns the depacketizer for codec, or nil if codec is
// unsupported.
func NewDepacketizer(codec Codec) Depacketizer {
	switch codec {
	case CodecH264:
		return &h264Depacketizer{}
	case CodecVP8:
		return &vp8Depacketizer{}
	case CodecOpus:
		return &opusDepacketizer{}
	default:
		return nil
	}
}
