package rtsp

import (
	"fmt"

	"github.com/pion/rtp"
)

// vp8Depacketizer reassembles RFC 7741 RTP/VP8 payloads into a raw VP8
// frame: the per-packet payload descriptor is stripped before
// concatenation.
type vp8Depacketizer struct{}

func (d *vp8Depacketizer) Depacketize(packets []*rtp.Packet) ([]byte, error) {
	var out []byte

	for _, pkt := range packets {
		descLen, err := vp8DescriptorLength(pkt.Payload)
		if err != nil {
			return nil, fmt.Errorf("vp8: %w", err)
		}
		out = append(out, pkt.Payload[descLen:]...)
	}

	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// vp8DescriptorLength returns the length in bytes of the VP8 payload
// descriptor at the start of buf (RFC 7741 §4.2).
func vp8DescriptorLength(buf []byte) (int, error) {
	if len(buf) < 1 {
		return 0, fmt.Errorf("empty payload")
	}
	length := 1
	extended := buf[0]&0x80 != 0

	if extended {
		if len(buf) < 2 {
			return 0, fmt.Errorf("truncated extended descriptor")
		}
		length++
		x := buf[1]
		if x&0x80 != 0 { // I: PictureID present
			length++
			if len(buf) > length-1 && buf[length-1]&0x80 != 0 {
				length++ // 16-bit PictureID
			}
		}
		if x&0x40 != 0 { // L: TL0PICIDX present
			length++
		}
		if x&0x20 != 0 || x&0x10 != 0 { // T or K present
			length++
		}
	}

	if len(buf) < length {
		return 0, fmt.Errorf("descriptor length %d exceeds payload %d", length, len(buf))
	}
	return length, nil
}
