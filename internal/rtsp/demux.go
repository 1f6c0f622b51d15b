package rtsp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

const interleavedMagic = 0x24 // '$'

// InterleavedFrame is a completed `$<channel><length>` frame.
type InterleavedFrame struct {
	Channel uint8
	Payload []byte
}

// Demuxer splits a mixed inbound byte stream into complete RTSP messages
// and interleaved binary frames. It is a pure function of its input
// buffer: Append consumes as much of buf as it can and returns; it never
// blocks, never reads from a socket itself, and keeps all partial-parse
// state in the struct. That makes it safe to drive one byte at a time or
// with a whole buffer at once and get identical results either way.
type Demuxer struct {
	buf []byte

	messages []*Response
	data     []*InterleavedFrame
}

func NewDemuxer() *Demuxer {
	return &Demuxer{}
}

// Append adds newly-received bytes and parses as much as possible,
// enqueueing any completed messages/frames. It returns an error on a
// malformed prefix — neither `$` nor a valid RTSP start line; the caller
// is responsible for transitioning the owning session to ERROR.
func (d *Demuxer) Append(chunk []byte) error {
	d.buf = append(d.buf, chunk...)

	for {
		if len(d.buf) == 0 {
			return nil
		}

		if d.buf[0] == interleavedMagic {
			frame, rest, ok, err := parseInterleavedFrame(d.buf)
			if err != nil {
				return err
			}
			if !ok {
				return nil // insufficient bytes, wait for more
			}
			d.data = append(d.data, frame)
			d.buf = rest
			continue
		}

		msg, rest, ok, err := parseMessage(d.buf)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		d.messages = append(d.messages, msg)
		d.buf = rest
	}
}

// PopMessage removes and returns the oldest completed RTSP message, or
// (nil, false) if none is available.
func (d *Demuxer) PopMessage() (*Response, bool) {
	if len(d.messages) == 0 {
		return nil, false
	}
	m := d.messages[0]
	d.messages = d.messages[1:]
	return m, true
}

// PopData removes and returns the oldest completed interleaved frame, or
// (nil, false) if none is available.
func (d *Demuxer) PopData() (*InterleavedFrame, bool) {
	if len(d.data) == 0 {
		return nil, false
	}
	f := d.data[0]
	d.data = d.data[1:]
	return f, true
}

// HasMessage reports whether a completed RTSP message is queued.
func (d *Demuxer) HasMessage() bool {
	return len(d.messages) > 0
}

// HasData reports whether a completed interleaved frame is queued.
func (d *Demuxer) HasData() bool {
	return len(d.data) > 0
}

func parseInterleavedFrame(buf []byte) (frame *InterleavedFrame, rest []byte, ok bool, err error) {
	const headerLen = 4
	if len(buf) < headerLen {
		return nil, buf, false, nil
	}
	channel := buf[1]
	length := binary.BigEndian.Uint16(buf[2:4])
	total := headerLen + int(length)
	if len(buf) < total {
		return nil, buf, false, nil
	}
	payload := make([]byte, length)
	copy(payload, buf[headerLen:total])
	return &InterleavedFrame{Channel: channel, Payload: payload}, buf[total:], true, nil
}

const crlfcrlf = "\r\n\r\n"

func parseMessage(buf []byte) (resp *Response, rest []byte, ok bool, err error) {
	idx := bytes.Index(buf, []byte(crlfcrlf))
	if idx == -1 {
		// No complete header block yet. If we already have a full line
		// and it's not a plausible RTSP status/request line, this is a
		// framing error rather than a short read.
		if lineEnd := bytes.Index(buf, []byte("\r\n")); lineEnd != -1 {
			line := string(buf[:lineEnd])
			if !looksLikeStartLine(line) {
				return nil, buf, false, fmt.Errorf("framing error: malformed start line %q", line)
			}
		}
		return nil, buf, false, nil
	}

	headerBlock := string(buf[:idx])
	lines := strings.Split(headerBlock, "\r\n")
	startLine := lines[0]
	if !looksLikeStartLine(startLine) {
		return nil, buf, false, fmt.Errorf("framing error: malformed start line %q", startLine)
	}

	header := NewHeader()
	for _, line := range lines[1:] {
		if line == "" {
			continue
		}
		sep := strings.Index(line, ":")
		if sep == -1 {
			return nil, buf, false, fmt.Errorf("framing error: malformed header line %q", line)
		}
		name := strings.TrimSpace(line[:sep])
		value := strings.TrimSpace(line[sep+1:])
		header.Set(name, value)
	}

	bodyStart := idx + len(crlfcrlf)
	contentLength := 0
	if cl := header.Get("Content-Length"); cl != "" {
		n, cerr := strconv.Atoi(cl)
		if cerr != nil {
			return nil, buf, false, fmt.Errorf("framing error: malformed Content-Length %q", cl)
		}
		contentLength = n
	}

	if len(buf) < bodyStart+contentLength {
		return nil, buf, false, nil // body not fully arrived yet
	}

	var body []byte
	if contentLength > 0 {
		body = make([]byte, contentLength)
		copy(body, buf[bodyStart:bodyStart+contentLength])
	}

	resp, perr := parseStartLineAndBuild(startLine, header, body)
	if perr != nil {
		return nil, buf, false, perr
	}

	return resp, buf[bodyStart+contentLength:], true, nil
}

func looksLikeStartLine(line string) bool {
	return strings.HasPrefix(line, "RTSP/") || isRequestStartLine(line)
}

func isRequestStartLine(line string) bool {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) != 3 {
		return false
	}
	return strings.HasPrefix(parts[2], "RTSP/")
}

// parseStartLineAndBuild builds a Response for both actual responses and
// unrecognised inbound requests. The session layer tells them apart by
// status code: an inbound request carries status 0 and is logged and
// discarded; a response whose CSeq matches no pending request is dropped.
func parseStartLineAndBuild(startLine string, header *Header, body []byte) (*Response, error) {
	cseq := uint32(0)
	if v := header.Get("CSeq"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("framing error: malformed CSeq %q", v)
		}
		cseq = uint32(n)
	}

	if strings.HasPrefix(startLine, "RTSP/") {
		parts := strings.SplitN(startLine, " ", 3)
		if len(parts) < 2 {
			return nil, fmt.Errorf("framing error: malformed status line %q", startLine)
		}
		code, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("framing error: malformed status code %q", parts[1])
		}
		reason := ""
		if len(parts) == 3 {
			reason = parts[2]
		}
		return &Response{StatusCode: code, Reason: reason, CSeq: cseq, Header: header, Body: body}, nil
	}

	// Unrecognised inbound request: represented with status 0 so callers
	// can distinguish it from a real response.
	return &Response{StatusCode: 0, Reason: startLine, CSeq: cseq, Header: header, Body: body}, nil
}
