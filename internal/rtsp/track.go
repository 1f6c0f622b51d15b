package rtsp

// MediaKind distinguishes video and audio tracks.
type MediaKind int

const (
	MediaVideo MediaKind = iota
	MediaAudio
)

func (k MediaKind) String() string {
	if k == MediaAudio {
		return "audio"
	}
	return "video"
}

// Codec identifies a supported elementary-stream codec.
type Codec int

const (
	CodecH264 Codec = iota
	CodecVP8
	CodecOpus
)

func (c Codec) String() string {
	switch c {
	case CodecH264:
		return "H264"
	case CodecVP8:
		return "VP8"
	case CodecOpus:
		return "Opus"
	default:
		return "unknown"
	}
}

// BitstreamFormat is the output bitstream format a depacketizer
// produces.
type BitstreamFormat int

const (
	BitstreamH264AnnexB BitstreamFormat = iota
	BitstreamVP8
	BitstreamOpus
)

// PacketType is the output packet type a depacketizer produces.
type PacketType int

const (
	PacketNALU PacketType = iota
	PacketRaw
)

// Timebase is the RTP clock rate expressed as a rational number,
// num=1, den=clock-rate.
type Timebase struct {
	Num uint32
	Den uint32
}

// Track is a track descriptor: identifier equal to the RTP
// payload-type, media kind, codec, RTP timebase, and a resolved control
// URL.
type Track struct {
	PayloadType uint8
	Kind        MediaKind
	Codec       Codec
	Timebase    Timebase
	ControlURL  string
}

func (t *Track) BitstreamFormat() BitstreamFormat {
	switch t.Codec {
	case CodecH264:
		return BitstreamH264AnnexB
	case CodecVP8:
		return BitstreamVP8
	case CodecOpus:
		return BitstreamOpus
	default:
		return BitstreamH264AnnexB
	}
}

func (t *Track) PacketType() PacketType {
	if t.Codec == CodecH264 {
		return PacketNALU
	}
	return PacketRaw
}
