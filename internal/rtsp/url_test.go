package rtsp

import "testing"

func TestResolveControlURLAbsolute(t *testing.T) {
	got, err := ResolveControlURL("rtsp://camera.example.com/live/track1", "", "rtsp://camera.example.com/live")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "rtsp://camera.example.com/live/track1"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestResolveControlURLContentBasePrefixed(t *testing.T) {
	got, err := ResolveControlURL("trackID=0", "rtsp://camera.example.com/live/", "rtsp://camera.example.com/live?token=abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "rtsp://camera.example.com/live/trackID=0"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestResolveControlURLFallsBackToRequestURLWithQueryReappended(t *testing.T) {
	got, err := ResolveControlURL("trackID=1", "", "rtsp://camera.example.com/live?token=abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "rtsp://camera.example.com/live/trackID=1?token=abc"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestResolveControlURLIdempotentOnAbsoluteURLs(t *testing.T) {
	first, err := ResolveControlURL("rtsp://camera.example.com/live/track1", "rtsp://camera.example.com/live/", "rtsp://camera.example.com/live")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := ResolveControlURL(first, "rtsp://camera.example.com/live/", "rtsp://camera.example.com/live")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatalf("expected idempotence, got %q then %q", first, second)
	}
}
