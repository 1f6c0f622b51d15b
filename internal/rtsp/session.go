package rtsp

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pion/rtcp"
	"github.com/sirupsen/logrus"

	"github.com/bilbercode/rtsp-pull-client/internal/rtsp/transport"
)

const userAgent = "rtsp-pull-client/1.0"

// ProcessResult is the return value of ProcessMediaPacket.
type ProcessResult int

const (
	ProcessSuccess ProcessResult = iota
	ProcessTryAgain
	ProcessFailure
)

func (r ProcessResult) String() string {
	switch r {
	case ProcessSuccess:
		return "SUCCESS"
	case ProcessTryAgain:
		return "TRY_AGAIN"
	default:
		return "FAILURE"
	}
}

// Config recognises the session's tunable options.
type Config struct {
	URLList        []string
	ConnectTimeout time.Duration
	RequestTimeout time.Duration
	RecvBufferSize int
}

// DefaultConfig fills in the documented defaults around the supplied URL
// candidates.
func DefaultConfig(urlList []string) Config {
	return Config{
		URLList:        urlList,
		ConnectTimeout: 3000 * time.Millisecond,
		RequestTimeout: 3000 * time.Millisecond,
		RecvBufferSize: 65535,
	}
}

// Session is the top-level entity: the RTSP pull client state machine,
// control dialogue, demuxer, correlator and RTP dispatch tied together.
type Session struct {
	id string

	urlList    []string
	currentURL string

	socketPool SocketPool
	socket     Socket

	cseq        uint32
	sessionID   string
	contentBase string

	state State

	demuxer    *Demuxer
	correlator *Correlator
	rtpLayer   *RTPRTCPLayer
	dispatcher *dispatcher

	tracks []*Track

	metrics Metrics

	connectTimeout time.Duration
	requestTimeout time.Duration
	recvBufferSize int

	log *logrus.Entry
}

// NewSession constructs an IDLE session. pool and sink may be nil to use
// the defaults (a net.Dialer-backed SocketPool and a CountingSink).
func NewSession(cfg Config, pool SocketPool, sink Sink) *Session {
	if pool == nil {
		pool = NewTCPSocketPool()
	}
	if sink == nil {
		sink = NewCountingSink()
	}

	connectTimeout := cfg.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 3000 * time.Millisecond
	}
	requestTimeout := cfg.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 3000 * time.Millisecond
	}
	recvBufferSize := cfg.RecvBufferSize
	if recvBufferSize <= 0 {
		recvBufferSize = 65535
	}

	id := uuid.NewString()
	log := logrus.WithField("session", id)

	disp := newDispatcher(log, sink)
	rtpLayer := NewRTPRTCPLayer()
	rtpLayer.OnPacketGroup = disp.handlePacketGroup
	rtpLayer.OnRTCP = func(packets []rtcp.Packet) {
		log.WithField("count", len(packets)).Debug("rtcp packets received, no action taken")
	}

	return &Session{
		id:             id,
		urlList:        cfg.URLList,
		socketPool:     pool,
		connectTimeout: connectTimeout,
		requestTimeout: requestTimeout,
		recvBufferSize: recvBufferSize,
		demuxer:        NewDemuxer(),
		correlator:     NewCorrelator(),
		rtpLayer:       rtpLayer,
		dispatcher:     disp,
		state:          StateIdle,
		log:            log,
	}
}

func (s *Session) ID() string         { return s.id }
func (s *Session) State() State       { return s.state }
func (s *Session) SessionID() string  { return s.sessionID }
func (s *Session) Metrics() Metrics   { return s.metrics }
func (s *Session) Tracks() []*Track   { return s.tracks }
func (s *Session) CurrentURL() string { return s.currentURL }

// NativeHandle exposes the signalling socket's file descriptor for
// external poll-group registration.
func (s *Session) NativeHandle() (uintptr, error) {
	if s.socket == nil {
		return 0, ErrSessionClosed
	}
	return s.socket.NativeHandle()
}

func (s *Session) nextCSeq() uint32 {
	s.cseq++
	return s.cseq
}

func (s *Session) fail(err error) error {
	s.state = StateError
	s.log.WithError(err).WithField("url", s.currentURL).Error("session failed")
	if s.socket != nil {
		_ = s.socket.Close()
	}
	s.correlator.FailAll()
	return err
}

// Start drives IDLE -> CONNECTED -> DESCRIBED synchronously: TCP
// connect, DESCRIBE, then SETUP for every track. It runs entirely on the
// calling goroutine.
func (s *Session) Start(ctx context.Context) error {
	if s.state != StateIdle {
		return ErrInvalidStateTransition
	}
	if len(s.urlList) == 0 {
		s.state = StateError
		return ErrNoCandidateURL
	}

	s.currentURL = s.urlList[0]
	s.log = s.log.WithField("url", s.currentURL)

	u, err := url.Parse(s.currentURL)
	if err != nil || !strings.EqualFold(u.Scheme, "rtsp") {
		s.state = StateError
		return ErrUnsupportedScheme
	}

	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "554"
	}
	addr := net.JoinHostPort(host, port)

	sw := newStopwatch()
	s.socket = s.socketPool.AllocateSocket()
	if err := s.socket.Connect(ctx, addr, s.connectTimeout); err != nil {
		s.state = StateError
		s.log.WithError(err).Error("connect failed")
		return err
	}
	s.metrics.OriginRequestTimeMs = sw.elapsedMs()
	s.state = StateConnected
	s.log.Info("connected")

	sw.reset()

	if err := s.requestDescribe(ctx, u); err != nil {
		return s.fail(err)
	}

	if err := s.requestSetupAll(ctx); err != nil {
		return s.fail(err)
	}

	s.metrics.OriginResponseTimeMs = sw.elapsedMs()
	s.log.WithField("tracks", len(s.tracks)).Info("described and set up")

	return nil
}

func (s *Session) requestDescribe(ctx context.Context, requestURL *url.URL) error {
	if s.state != StateConnected {
		return ErrInvalidStateTransition
	}

	req := s.newRequest(MethodDescribe, requestURL.String())
	req.Header.Set("Accept", "application/sdp")

	resp, err := s.doSetupPhaseRequest(ctx, req)
	if err != nil {
		return fmt.Errorf("DESCRIBE failed: %w", err)
	}
	if !resp.IsOK() {
		return fmt.Errorf("DESCRIBE rejected: %w (%d %s)", ErrNonOKStatus, resp.StatusCode, resp.Reason)
	}

	sessionHeader := resp.Header.Get("Session")
	if sessionHeader == "" {
		return ErrMissingSessionHeader
	}
	s.sessionID = strings.SplitN(sessionHeader, ";", 2)[0]

	s.contentBase = resp.Header.Get("Content-Base")

	if len(resp.Body) == 0 {
		return ErrMissingSDPBody
	}

	tracks, err := buildTracks(resp.Body, s.contentBase, requestURL.String())
	if err != nil {
		return err
	}
	if len(tracks) == 0 {
		return fmt.Errorf("%w: no supported media tracks in SDP", ErrUnsupportedCodec)
	}

	for _, track := range tracks {
		s.dispatcher.registerTrack(track)
	}
	s.tracks = tracks

	s.state = StateDescribed
	s.log.WithField("cseq", req.CSeq).Info("DESCRIBE complete")
	return nil
}

func (s *Session) requestSetupAll(ctx context.Context) error {
	if s.state != StateDescribed {
		return ErrInvalidStateTransition
	}

	channel := 0
	for _, track := range s.tracks {
		req := s.newRequest(MethodSetup, track.ControlURL)
		req.Header.Set("Transport", transport.BuildInterleavedHeader(channel))
		req.Header.Set("Session", s.sessionID)
		channel += 2

		resp, err := s.doSetupPhaseRequest(ctx, req)
		if err != nil {
			return fmt.Errorf("SETUP failed for track %d: %w", track.PayloadType, err)
		}
		if !resp.IsOK() {
			return fmt.Errorf("SETUP rejected for track %d: %w (%d %s)", track.PayloadType, ErrNonOKStatus, resp.StatusCode, resp.Reason)
		}

		negotiated, err := transport.Parse(resp.Header.Get("Transport"))
		if err != nil {
			return fmt.Errorf("SETUP returned unparseable Transport header for track %d: %w", track.PayloadType, err)
		}
		opt, err := requireInterleavedTCP(negotiated)
		if err != nil {
			return fmt.Errorf("SETUP negotiated an unusable transport for track %d: %w", track.PayloadType, err)
		}

		s.log.WithField("cseq", req.CSeq).
			WithField("track", track.PayloadType).
			WithField("interleaved", fmt.Sprintf("%d-%d", opt.Interleaved[0], opt.Interleaved[1])).
			Info("SETUP complete")
	}

	return nil
}

// Play drives DESCRIBED -> PLAYING. After this call the caller is
// expected to stop driving the session directly and instead drive it via
// ProcessMediaPacket.
func (s *Session) Play(ctx context.Context) error {
	if s.state != StateDescribed {
		return ErrInvalidStateTransition
	}

	req := s.newRequest(MethodPlay, s.currentURL)
	req.Header.Set("Session", s.sessionID)

	resp, err := s.doSetupPhaseRequest(ctx, req)
	if err != nil {
		return s.fail(fmt.Errorf("PLAY failed: %w", err))
	}
	if !resp.IsOK() {
		return s.fail(fmt.Errorf("PLAY rejected: %w (%d %s)", ErrNonOKStatus, resp.StatusCode, resp.Reason))
	}

	s.state = StatePlaying
	s.log.Info("playing")
	return nil
}

// Stop drives PLAYING -> STOPPING -> STOPPED. It sends TEARDOWN and then
// pumps ProcessMediaPacket itself until the response arrives or the
// deadline passes. Once PLAYING, the caller has handed socket ownership
// to whatever is driving the event loop; by the time anything calls
// Stop, that event loop has stopped calling ProcessMediaPacket (the
// handoff is reclaimed here), so nothing else is left to drain the
// TEARDOWN response off the wire. Stop reclaims that single-owner duty
// for its own short-lived wait rather than blocking on the correlator
// with nobody feeding it.
func (s *Session) Stop(ctx context.Context) error {
	if s.state != StatePlaying {
		return ErrInvalidStateTransition
	}
	s.state = StateStopping

	req := s.newRequest(MethodTeardown, s.currentURL)
	req.Header.Set("Session", s.sessionID)

	if err := s.correlator.Register(req); err != nil {
		return s.fail(err)
	}
	done, _ := s.correlator.ChannelFor(req.CSeq)

	if err := s.writeRequest(req); err != nil {
		s.correlator.TakeForDirectReceive(req.CSeq)
		return s.fail(fmt.Errorf("TEARDOWN send failed: %w", err))
	}

	deadline := time.Now().Add(s.requestTimeout)
	for {
		select {
		case resp := <-done:
			if !resp.IsOK() {
				return s.fail(fmt.Errorf("TEARDOWN rejected: %w (%d %s)", ErrNonOKStatus, resp.StatusCode, resp.Reason))
			}
			s.state = StateStopped
			s.log.Info("stopped")
			if s.socket != nil {
				_ = s.socket.Close()
			}
			return nil
		case <-ctx.Done():
			s.correlator.TakeForDirectReceive(req.CSeq)
			return s.fail(fmt.Errorf("TEARDOWN: %w", ctx.Err()))
		default:
		}

		if !time.Now().Before(deadline) {
			s.correlator.TakeForDirectReceive(req.CSeq)
			return s.fail(fmt.Errorf("TEARDOWN: %w", ErrResponseTimeout))
		}

		if s.ProcessMediaPacket() == ProcessFailure {
			s.correlator.TakeForDirectReceive(req.CSeq)
			return fmt.Errorf("TEARDOWN: %w", ErrSessionClosed)
		}
	}
}

// ProcessMediaPacket is the single non-blocking step driven by an
// external event loop once the socket is readable. It performs one
// non-blocking receive, then drains the demuxer: completed responses go
// to the correlator, interleaved frames go to the RTP/RTCP collaborator,
// and unrecognised inbound requests are logged and discarded.
func (s *Session) ProcessMediaPacket() ProcessResult {
	if s.state == StateError || s.state == StateStopped {
		return ProcessFailure
	}

	buf := make([]byte, s.recvBufferSize)
	n, err := s.socket.Recv(buf, true, 0)
	if err != nil {
		s.log.WithError(err).Error("recv failed")
		s.state = StateError
		return ProcessFailure
	}

	if n > 0 {
		if err := s.demuxer.Append(buf[:n]); err != nil {
			s.log.WithError(err).Error("framing error")
			s.state = StateError
			return ProcessFailure
		}
	}

	drained := false
	for {
		if msg, ok := s.demuxer.PopMessage(); ok {
			drained = true
			if msg.StatusCode == 0 {
				s.log.WithField("line", msg.Reason).Debug("discarding unknown inbound RTSP request")
				continue
			}
			s.correlator.Complete(msg)
			continue
		}
		if frame, ok := s.demuxer.PopData(); ok {
			drained = true
			if err := s.rtpLayer.OnDataReceived(frame.Channel, frame.Payload); err != nil {
				s.log.WithError(err).Warn("failed to process interleaved frame")
			}
			continue
		}
		break
	}

	if !drained {
		return ProcessTryAgain
	}
	return ProcessSuccess
}

func (s *Session) newRequest(method Method, rawURL string) *Request {
	req := newRequest(method, rawURL, s.nextCSeq())
	req.Header.Set("User-Agent", userAgent)
	return req
}

func (s *Session) writeRequest(req *Request) error {
	var buf bytes.Buffer
	if err := req.Write(&buf); err != nil {
		return err
	}
	return s.socket.Send(buf.Bytes())
}

// doSetupPhaseRequest sends req and drains the socket directly for its
// response; used before PLAY, when no other goroutine is reading the
// socket.
func (s *Session) doSetupPhaseRequest(ctx context.Context, req *Request) (*Response, error) {
	if err := s.correlator.Register(req); err != nil {
		return nil, err
	}
	if err := s.writeRequest(req); err != nil {
		s.correlator.TakeForDirectReceive(req.CSeq)
		return nil, fmt.Errorf("failed to send %s: %w", req.Method, err)
	}
	return s.receiveDirect(ctx, req.CSeq, s.requestTimeout)
}

func (s *Session) receiveDirect(ctx context.Context, cseq uint32, timeout time.Duration) (*Response, error) {
	deadlineCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	buf := make([]byte, s.recvBufferSize)

	for {
		if msg, ok := s.demuxer.PopMessage(); ok {
			if msg.StatusCode == 0 {
				s.log.WithField("line", msg.Reason).Debug("discarding unknown inbound RTSP request")
				continue
			}
			if msg.CSeq != cseq {
				s.log.WithField("cseq", msg.CSeq).WithField("expected", cseq).Debug("dropping response for unexpected cseq")
				continue
			}
			s.correlator.TakeForDirectReceive(cseq)
			return msg, nil
		}

		select {
		case <-deadlineCtx.Done():
			s.correlator.TakeForDirectReceive(cseq)
			return nil, ErrResponseTimeout
		default:
		}

		remaining := time.Until(timeFromDeadline(deadlineCtx))
		if remaining <= 0 {
			s.correlator.TakeForDirectReceive(cseq)
			return nil, ErrResponseTimeout
		}

		n, err := s.socket.Recv(buf, false, remaining)
		if err != nil {
			s.correlator.TakeForDirectReceive(cseq)
			return nil, fmt.Errorf("recv failed: %w", err)
		}
		if n == 0 {
			continue // timed out this round; loop re-checks the deadline
		}
		if err := s.demuxer.Append(buf[:n]); err != nil {
			s.correlator.TakeForDirectReceive(cseq)
			return nil, err
		}
	}
}

func timeFromDeadline(ctx context.Context) time.Time {
	if d, ok := ctx.Deadline(); ok {
		return d
	}
	return time.Now()
}

// requireInterleavedTCP checks that a SETUP response's negotiated
// Transport header is unicast interleaved TCP: framing only makes sense
// over one TCP connection. Anything else — UDP, multicast — is a
// transport this client cannot demultiplex. Returns the matching option
// so the caller can record the negotiated channel pair.
func requireInterleavedTCP(header transport.Header) (transport.Option, error) {
	for _, opt := range header.Options {
		if opt.Protocol == transport.ProtocolTCP && opt.Unicast {
			return opt, nil
		}
	}
	return transport.Option{}, fmt.Errorf("%w: no unicast TCP option found", transport.ErrUnsupportedTransport)
}
