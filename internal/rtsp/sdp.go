package rtsp

import (
	"fmt"
	"strconv"
	"strings"

	psdp "github.com/pion/sdp/v3"
)

// buildTracks parses an SDP body (from a DESCRIBE response) into Track
// descriptors. Each media description with a supported codec yields a
// track; video and audio are treated identically.
func buildTracks(sdpBody []byte, contentBase, requestURL string) ([]*Track, error) {
	var desc psdp.SessionDescription
	if err := desc.Unmarshal(sdpBody); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSDP, err)
	}

	var tracks []*Track
	seenPayloadTypes := make(map[uint8]bool)

	for _, media := range desc.MediaDescriptions {
		kind, ok := mediaKind(media.MediaName.Media)
		if !ok {
			continue // neither video nor audio: not part of this subset
		}

		if len(media.MediaName.Formats) == 0 {
			continue
		}
		payloadType, err := strconv.ParseUint(media.MediaName.Formats[0], 10, 8)
		if err != nil {
			return nil, fmt.Errorf("%w: non-numeric payload type %q", ErrMalformedSDP, media.MediaName.Formats[0])
		}
		pt := uint8(payloadType)

		codec, clockRate, ok := rtpmapFor(media, media.MediaName.Formats[0])
		if !ok {
			return nil, fmt.Errorf("%w: no rtpmap for payload type %d", ErrMalformedSDP, pt)
		}

		codecID, supported := supportedCodec(codec)
		if !supported {
			return nil, fmt.Errorf("%w: unsupported %s codec %q", ErrUnsupportedCodec, kind, codec)
		}

		control, ok := media.Attribute("control")
		if !ok || control == "" {
			return nil, ErrMissingControlAttribute
		}

		controlURL, err := ResolveControlURL(control, contentBase, requestURL)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve control URL: %w", err)
		}

		if seenPayloadTypes[pt] {
			return nil, ErrDuplicatePayloadType
		}
		seenPayloadTypes[pt] = true

		tracks = append(tracks, &Track{
			PayloadType: pt,
			Kind:        kind,
			Codec:       codecID,
			Timebase:    Timebase{Num: 1, Den: clockRate},
			ControlURL:  controlURL,
		})
	}

	return tracks, nil
}

func mediaKind(media string) (MediaKind, bool) {
	switch media {
	case "video":
		return MediaVideo, true
	case "audio":
		return MediaAudio, true
	default:
		return 0, false
	}
}

// rtpmapFor finds the `a=rtpmap:<payloadType> <codec>/<clockRate>`
// attribute for payloadType within media.
func rtpmapFor(media *psdp.MediaDescription, payloadType string) (codec string, clockRate uint32, ok bool) {
	prefix := payloadType + " "
	for _, attr := range media.Attributes {
		if attr.Key != "rtpmap" {
			continue
		}
		if !strings.HasPrefix(attr.Value, prefix) {
			continue
		}
		encoding := strings.TrimPrefix(attr.Value, prefix)
		// "<name>/<clock-rate>" for video, "<name>/<clock-rate>/<channels>"
		// for audio; the channel count is not needed here.
		parts := strings.Split(encoding, "/")
		if len(parts) < 2 {
			return "", 0, false
		}
		rate, err := strconv.ParseUint(parts[1], 10, 32)
		if err != nil {
			return "", 0, false
		}
		return strings.ToUpper(parts[0]), uint32(rate), true
	}
	return "", 0, false
}

func supportedCodec(name string) (Codec, bool) {
	switch name {
	case "H264":
		return CodecH264, true
	case "VP8":
		return CodecVP8, true
	case "OPUS":
		return CodecOpus, true
	default:
		return 0, false
	}
}
