package rtsp

// MediaPacket is the unit handed to the downstream media sink: a track
// id, the assembled bitstream, presentation/decode timestamps (always
// equal here, since both derive from the same normalised value), the
// bitstream format, and the packet type.
type MediaPacket struct {
	TrackID         uint8
	Bitstream       []byte
	PTS             uint64
	DTS             uint64
	BitstreamFormat BitstreamFormat
	PacketType      PacketType
}

// Sink is the downstream media-packet collaborator: out of scope for
// this module beyond the single method it must expose.
type Sink interface {
	SendFrame(packet *MediaPacket)
}

// CountingSink is a minimal concrete Sink so the pull client is provable
// end-to-end without a real downstream consumer wired in. It counts
// frames per track, which is enough to assert liveness in tests and in
// the reference command.
type CountingSink struct {
	Frames map[uint8]int
}

func NewCountingSink() *CountingSink {
	return &CountingSink{Frames: make(map[uint8]int)}
}

func (s *CountingSink) SendFrame(packet *MediaPacket) {
	s.Frames[packet.TrackID]++
}
