package rtsp

import "testing"

const requestURL = "rtsp://camera.example.com/live"

func TestBuildTracksH264Video(t *testing.T) {
	sdp := "v=0\r\n" +
		"o=- 0 0 IN IP4 127.0.0.1\r\n" +
		"s=stream\r\n" +
		"c=IN IP4 127.0.0.1\r\n" +
		"t=0 0\r\n" +
		"m=video 0 RTP/AVP 96\r\n" +
		"a=rtpmap:96 H264/90000\r\n" +
		"a=control:trackID=0\r\n"

	tracks, err := buildTracks([]byte(sdp), "rtsp://camera.example.com/live/", requestURL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tracks) != 1 {
		t.Fatalf("expected 1 track, got %d", len(tracks))
	}

	track := tracks[0]
	if track.PayloadType != 96 {
		t.Errorf("expected payload type 96, got %d", track.PayloadType)
	}
	if track.Kind != MediaVideo {
		t.Errorf("expected video kind")
	}
	if track.Codec != CodecH264 {
		t.Errorf("expected H264 codec")
	}
	if track.Timebase.Den != 90000 {
		t.Errorf("expected clock rate 90000, got %d", track.Timebase.Den)
	}
	if track.ControlURL != "rtsp://camera.example.com/live/trackID=0" {
		t.Errorf("unexpected control URL: %s", track.ControlURL)
	}
}

func TestBuildTracksVideoAndAudio(t *testing.T) {
	sdp := "v=0\r\n" +
		"o=- 0 0 IN IP4 127.0.0.1\r\n" +
		"s=stream\r\n" +
		"t=0 0\r\n" +
		"m=video 0 RTP/AVP 96\r\n" +
		"a=rtpmap:96 H264/90000\r\n" +
		"a=control:trackID=0\r\n" +
		"m=audio 0 RTP/AVP 97\r\n" +
		"a=rtpmap:97 OPUS/48000/2\r\n" +
		"a=control:trackID=1\r\n"

	tracks, err := buildTracks([]byte(sdp), "rtsp://camera.example.com/live/", requestURL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("expected 2 tracks, got %d", len(tracks))
	}
	if tracks[1].Kind != MediaAudio || tracks[1].Codec != CodecOpus {
		t.Errorf("expected second track to be Opus audio, got %+v", tracks[1])
	}
}

func TestBuildTracksAbsoluteControlURL(t *testing.T) {
	sdp := "v=0\r\n" +
		"o=- 0 0 IN IP4 127.0.0.1\r\n" +
		"s=stream\r\n" +
		"t=0 0\r\n" +
		"m=video 0 RTP/AVP 96\r\n" +
		"a=rtpmap:96 H264/90000\r\n" +
		"a=control:rtsp://camera.example.com/live/trackID=0\r\n"

	tracks, err := buildTracks([]byte(sdp), "", requestURL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tracks[0].ControlURL != "rtsp://camera.example.com/live/trackID=0" {
		t.Errorf("expected the absolute control URL verbatim, got %s", tracks[0].ControlURL)
	}
}

func TestBuildTracksUnsupportedCodec(t *testing.T) {
	sdp := "v=0\r\n" +
		"o=- 0 0 IN IP4 127.0.0.1\r\n" +
		"s=stream\r\n" +
		"t=0 0\r\n" +
		"m=video 0 RTP/AVP 98\r\n" +
		"a=rtpmap:98 MPEG4-GENERIC/90000\r\n" +
		"a=control:trackID=0\r\n"

	_, err := buildTracks([]byte(sdp), "rtsp://camera.example.com/live/", requestURL)
	if err == nil {
		t.Fatalf("expected an unsupported codec error")
	}
}

func TestBuildTracksMissingControlAttribute(t *testing.T) {
	sdp := "v=0\r\n" +
		"o=- 0 0 IN IP4 127.0.0.1\r\n" +
		"s=stream\r\n" +
		"t=0 0\r\n" +
		"m=video 0 RTP/AVP 96\r\n" +
		"a=rtpmap:96 H264/90000\r\n"

	_, err := buildTracks([]byte(sdp), "rtsp://camera.example.com/live/", requestURL)
	if err == nil {
		t.Fatalf("expected an error for a missing control attribute")
	}
}

func TestBuildTracksDuplicatePayloadTypeRejected(t *testing.T) {
	sdp := "v=0\r\n" +
		"o=- 0 0 IN IP4 127.0.0.1\r\n" +
		"s=stream\r\n" +
		"t=0 0\r\n" +
		"m=video 0 RTP/AVP 96\r\n" +
		"a=rtpmap:96 H264/90000\r\n" +
		"a=control:trackID=0\r\n" +
		"m=video 0 RTP/AVP 96\r\n" +
		"a=rtpmap:96 H264/90000\r\n" +
		"a=control:trackID=1\r\n"

	_, err := buildTracks([]byte(sdp), "rtsp://camera.example.com/live/", requestURL)
	if err == nil {
		t.Fatalf("expected duplicate payload type to be rejected")
	}
}
