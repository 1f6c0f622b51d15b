package rtsp

import (
	"fmt"

	"github.com/pion/rtcp"
	"github.com/pion/rtp"
)

// RTPRTCPLayer receives raw interleaved channel payloads, parses them,
// and groups RTP packets into "packet groups" — the set of packets
// making up one coded frame — by marker-bit boundary. Even-numbered
// channels carry RTP, odd-numbered channels carry RTCP, matching the
// `interleaved=N-(N+1)` contract negotiated at SETUP.
//
// A group closes when a packet with the marker bit set arrives; that
// packet is included in the closed group.
type RTPRTCPLayer struct {
	pending map[uint8][]*rtp.Packet // per payload-type, packets of the in-progress group

	OnPacketGroup func(packets []*rtp.Packet)
	OnRTCP        func(packets []rtcp.Packet)
}

func NewRTPRTCPLayer() *RTPRTCPLayer {
	return &RTPRTCPLayer{pending: make(map[uint8][]*rtp.Packet)}
}

// OnDataReceived handles one interleaved payload for channel. Even
// channels are RTP, odd channels are RTCP.
func (l *RTPRTCPLayer) OnDataReceived(channel uint8, payload []byte) error {
	if channel%2 == 1 {
		packets, err := rtcp.Unmarshal(payload)
		if err != nil {
			// Malformed RTCP is recoverable: no protocol action taken.
			return fmt.Errorf("rtcp: failed to unmarshal: %w", err)
		}
		if l.OnRTCP != nil {
			l.OnRTCP(packets)
		}
		return nil
	}

	pkt := &rtp.Packet{}
	if err := pkt.Unmarshal(payload); err != nil {
		return fmt.Errorf("rtp: failed to unmarshal packet: %w", err)
	}

	pt := pkt.PayloadType
	l.pending[pt] = append(l.pending[pt], pkt)

	if pkt.Marker {
		group := l.pending[pt]
		delete(l.pending, pt)
		if l.OnPacketGroup != nil {
			l.OnPacketGroup(group)
		}
	}

	return nil
}
