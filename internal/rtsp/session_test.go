package rtsp

import (
	"context"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"
)

// pipeSocket adapts a net.Conn (one end of a net.Pipe) to the Socket
// interface without dialing, so Session can be driven end-to-end against
// an in-process fake server.
type pipeSocket struct {
	conn net.Conn
}

func (p *pipeSocket) Connect(ctx context.Context, addr string, timeout time.Duration) error {
	return nil
}

func (p *pipeSocket) Send(b []byte) error {
	_, err := p.conn.Write(b)
	return err
}

func (p *pipeSocket) Recv(buf []byte, nonBlocking bool, timeout time.Duration) (int, error) {
	if nonBlocking {
		_ = p.conn.SetReadDeadline(time.Now().Add(10 * time.Millisecond))
	} else if timeout > 0 {
		_ = p.conn.SetReadDeadline(time.Now().Add(timeout))
	} else {
		_ = p.conn.SetReadDeadline(time.Time{})
	}
	n, err := p.conn.Read(buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return n, nil
		}
		return n, err
	}
	return n, nil
}

func (p *pipeSocket) NativeHandle() (uintptr, error) { return 0, nil }

func (p *pipeSocket) Close() error { return p.conn.Close() }

type pipeSocketPool struct {
	socket Socket
}

func (p *pipeSocketPool) AllocateSocket() Socket { return p.socket }

func buildRTPPacket(payloadType uint8, marker bool, seq uint16, timestamp uint32, payload []byte) []byte {
	header := make([]byte, 12)
	header[0] = 0x80
	header[1] = payloadType
	if marker {
		header[1] |= 0x80
	}
	header[2] = byte(seq >> 8)
	header[3] = byte(seq)
	header[4] = byte(timestamp >> 24)
	header[5] = byte(timestamp >> 16)
	header[6] = byte(timestamp >> 8)
	header[7] = byte(timestamp)
	header[8], header[9], header[10], header[11] = 0, 0, 0, 1
	return append(header, payload...)
}

const fakeSDPBody = "v=0\r\n" +
	"o=- 0 0 IN IP4 127.0.0.1\r\n" +
	"s=s\r\n" +
	"t=0 0\r\n" +
	"m=video 0 RTP/AVP 96\r\n" +
	"a=rtpmap:96 H264/90000\r\n" +
	"a=control:trackID=0\r\n"

// runFakeCameraServer drives the server side of the DESCRIBE/SETUP/PLAY/
// TEARDOWN dialogue over conn: it replies to each request in turn, and
// immediately follows the PLAY response with one interleaved RTP frame
// fused into the same logical exchange, covering the scenario where a
// response and the start of media arrive together.
func runFakeCameraServer(conn net.Conn) {
	demux := NewDemuxer()
	buf := make([]byte, 4096)

	for {
		n, err := conn.Read(buf)
		if err != nil {
			return
		}
		if err := demux.Append(buf[:n]); err != nil {
			return
		}

		for {
			msg, ok := demux.PopMessage()
			if !ok {
				break
			}
			line := msg.Reason
			cseq := msg.CSeq

			switch {
			case strings.HasPrefix(line, "DESCRIBE"):
				resp := fmt.Sprintf(
					"RTSP/1.0 200 OK\r\nCSeq: %d\r\nSession: SESSIONID123\r\nContent-Base: rtsp://camera.example.com/live/\r\nContent-Length: %d\r\n\r\n%s",
					cseq, len(fakeSDPBody), fakeSDPBody)
				_, _ = conn.Write([]byte(resp))

			case strings.HasPrefix(line, "SETUP"):
				resp := fmt.Sprintf(
					"RTSP/1.0 200 OK\r\nCSeq: %d\r\nSession: SESSIONID123\r\nTransport: RTP/AVP/TCP;unicast;interleaved=0-1\r\n\r\n",
					cseq)
				_, _ = conn.Write([]byte(resp))

			case strings.HasPrefix(line, "PLAY"):
				resp := fmt.Sprintf("RTSP/1.0 200 OK\r\nCSeq: %d\r\nSession: SESSIONID123\r\n\r\n", cseq)
				pkt := buildRTPPacket(96, true, 1, 1000, []byte{0x65, 0xAA, 0xBB})
				frame := interleavedFrame(0, pkt)
				_, _ = conn.Write(append([]byte(resp), frame...))

			case strings.HasPrefix(line, "TEARDOWN"):
				resp := fmt.Sprintf("RTSP/1.0 200 OK\r\nCSeq: %d\r\nSession: SESSIONID123\r\n\r\n", cseq)
				_, _ = conn.Write([]byte(resp))
				return
			}
		}
	}
}

func TestSessionFullLifecycle(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer serverConn.Close()

	go runFakeCameraServer(serverConn)

	pool := &pipeSocketPool{socket: &pipeSocket{conn: clientConn}}
	sink := NewCountingSink()
	cfg := Config{
		URLList:        []string{"rtsp://camera.example.com/live"},
		ConnectTimeout: time.Second,
		RequestTimeout: time.Second,
		RecvBufferSize: 4096,
	}
	session := NewSession(cfg, pool, sink)

	ctx := context.Background()

	if err := session.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if session.State() != StateDescribed {
		t.Fatalf("expected DESCRIBED, got %v", session.State())
	}
	if len(session.Tracks()) != 1 {
		t.Fatalf("expected 1 track, got %d", len(session.Tracks()))
	}

	if err := session.Play(ctx); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if session.State() != StatePlaying {
		t.Fatalf("expected PLAYING, got %v", session.State())
	}

	stopPump := make(chan struct{})
	pumpDone := make(chan struct{})
	go func() {
		defer close(pumpDone)
		for {
			select {
			case <-stopPump:
				return
			default:
			}
			session.ProcessMediaPacket()
			time.Sleep(time.Millisecond)
		}
	}()

	deadline := time.Now().Add(time.Second)
	for sink.Frames[96] == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if sink.Frames[96] == 0 {
		t.Fatalf("expected at least one frame delivered to the sink")
	}

	// Hand the socket back before Stop: post-PLAY there is only ever one
	// owner driving ProcessMediaPacket, and Stop reclaims that duty for
	// itself to drain the TEARDOWN response, the same way a real event
	// loop would stop polling once it starts tearing down.
	close(stopPump)
	<-pumpDone

	if err := session.Stop(context.Background()); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if session.State() != StateStopped {
		t.Fatalf("expected STOPPED, got %v", session.State())
	}
}

func TestSessionRejectsOperationsOutOfOrder(t *testing.T) {
	session := NewSession(Config{URLList: []string{"rtsp://camera.example.com/live"}}, nil, nil)

	if err := session.Play(context.Background()); err != ErrInvalidStateTransition {
		t.Fatalf("expected ErrInvalidStateTransition from IDLE, got %v", err)
	}
	if err := session.Stop(context.Background()); err != ErrInvalidStateTransition {
		t.Fatalf("expected ErrInvalidStateTransition from IDLE, got %v", err)
	}
}

func TestSessionStartRejectsNonRTSPScheme(t *testing.T) {
	session := NewSession(Config{URLList: []string{"http://camera.example.com/live"}}, nil, nil)
	err := session.Start(context.Background())
	if err != ErrUnsupportedScheme {
		t.Fatalf("expected ErrUnsupportedScheme, got %v", err)
	}
	if session.State() != StateError {
		t.Fatalf("expected ERROR state, got %v", session.State())
	}
}

func TestSessionStartRejectsEmptyURLList(t *testing.T) {
	session := NewSession(Config{}, nil, nil)
	err := session.Start(context.Background())
	if err != ErrNoCandidateURL {
		t.Fatalf("expected ErrNoCandidateURL, got %v", err)
	}
}
