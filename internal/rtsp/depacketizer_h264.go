package rtsp

import (
	"fmt"

	"github.com/pion/rtp"
)

// h264Depacketizer reassembles RFC 6184 RTP/H.264 payloads into Annex-B
// (start-code delimited NAL units). It handles the three payload
// structures a packet group can legally contain: a single NAL unit per
// packet, STAP-A aggregation, and FU-A fragmentation.
type h264Depacketizer struct {
	fu []byte // in-progress FU-A reassembly buffer
}

var annexBStartCode = []byte{0x00, 0x00, 0x00, 0x01}

const (
	h264NALTypeSTAPA = 24
	h264NALTypeFUA   = 28
)

func (d *h264Depacketizer) Depacketize(packets []*rtp.Packet) ([]byte, error) {
	var out []byte

	for _, pkt := range packets {
		payload := pkt.Payload
		if len(payload) == 0 {
			continue
		}

		nalType := payload[0] & 0x1F

		switch nalType {
		case h264NALTypeSTAPA:
			nalus, err := splitSTAPA(payload[1:])
			if err != nil {
				return nil, fmt.Errorf("h264: %w", err)
			}
			for _, nalu := range nalus {
				out = append(out, annexBStartCode...)
				out = append(out, nalu...)
			}

		case h264NALTypeFUA:
			if len(payload) < 2 {
				return nil, fmt.Errorf("h264: FU-A payload too short")
			}
			fuHeader := payload[1]
			start := fuHeader&0x80 != 0
			end := fuHeader&0x40 != 0
			fuType := fuHeader & 0x1F

			if start {
				reconstructed := (payload[0] & 0xE0) | fuType
				d.fu = append([]byte{reconstructed}, payload[2:]...)
			} else {
				d.fu = append(d.fu, payload[2:]...)
			}

			if end {
				out = append(out, annexBStartCode...)
				out = append(out, d.fu...)
				d.fu = nil
			}

		default:
			out = append(out, annexBStartCode...)
			out = append(out, payload...)
		}
	}

	if len(out) == 0 {
		return nil, nil // partial state awaiting further packets
	}
	return out, nil
}

func splitSTAPA(buf []byte) ([][]byte, error) {
	var nalus [][]byte
	for len(buf) > 2 {
		size := int(buf[0])<<8 | int(buf[1])
		buf = buf[2:]
		if size > len(buf) {
			return nil, fmt.Errorf("STAP-A declared size %d exceeds remaining %d bytes", size, len(buf))
		}
		nalus = append(nalus, buf[:size])
		buf = buf[size:]
	}
	return nalus, nil
}
