package rtsp

import "testing"

func TestNormaliserFirstPacketIsZero(t *testing.T) {
	n := NewNormaliser()
	if got := n.Normalise(96, 0x1000); got != 0 {
		t.Fatalf("expected first packet to normalise to 0, got %d", got)
	}
}

func TestNormaliserAccumulatesDeltas(t *testing.T) {
	n := NewNormaliser()
	n.Normalise(96, 1000)
	if got := n.Normalise(96, 1090); got != 90 {
		t.Fatalf("expected accumulated 90, got %d", got)
	}
	if got := n.Normalise(96, 1200); got != 200 {
		t.Fatalf("expected accumulated 200, got %d", got)
	}
}

// TestNormaliserWraparound covers the boundary scenario where the raw
// 32-bit RTP timestamp wraps from near 0xFFFFFFFF back around to a small
// value, and the unsigned-wrapped subtraction must produce a small
// positive delta rather than a huge one.
func TestNormaliserWraparound(t *testing.T) {
	n := NewNormaliser()
	n.Normalise(97, 0xFFFFFF00)
	got := n.Normalise(97, 0x00000050)
	want := uint64(0x150)
	if got != want {
		t.Fatalf("expected wraparound delta 0x%x, got 0x%x", want, got)
	}
}

func TestNormaliserTracksPayloadTypesIndependently(t *testing.T) {
	n := NewNormaliser()
	n.Normalise(96, 1000)
	n.Normalise(97, 5000)

	if got := n.Normalise(96, 1050); got != 50 {
		t.Fatalf("payload type 96: expected 50, got %d", got)
	}
	if got := n.Normalise(97, 5200); got != 200 {
		t.Fatalf("payload type 97: expected 200, got %d", got)
	}
}
