package rtsp

// Normaliser accumulates monotonic output timestamps per RTP
// payload-type from raw, wrapping 32-bit RTP timestamps. The first
// packet of a payload-type outputs 0; every subsequent packet adds the
// unsigned-wrapped delta from the previous raw timestamp. Using uint32
// subtraction for the delta makes wraparound (0xFFFFFFFF -> 0x00000050)
// produce a small positive delta instead of a huge one.
type Normaliser struct {
	lastRaw     map[uint8]uint32
	accumulated map[uint8]uint64
}

func NewNormaliser() *Normaliser {
	return &Normaliser{
		lastRaw:     make(map[uint8]uint32),
		accumulated: make(map[uint8]uint64),
	}
}

// Normalise returns the accumulated output timestamp for payloadType
// given the next raw RTP timestamp.
func (n *Normaliser) Normalise(payloadType uint8, raw uint32) uint64 {
	last, seen := n.lastRaw[payloadType]
	if !seen {
		n.lastRaw[payloadType] = raw
		n.accumulated[payloadType] = 0
		return 0
	}

	delta := uint64(raw - last) // uint32 wraparound subtraction, widened
	n.lastRaw[payloadType] = raw
	n.accumulated[payloadType] += delta
	return n.accumulated[payloadType]
}
