package rtsp

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

const rtspVersion = "1.0"

// Request is an outgoing RTSP request. The body is a plain []byte — the
// demuxer hands back exactly that many Content-Length bytes, so there is
// no reason to carry an io.ReadWriter through the send path — and the
// header is the ordered, case-insensitive Header type rather than
// http.Header.
type Request struct {
	Method Method
	URL    string
	CSeq   uint32
	Header *Header
	Body   []byte
}

func newRequest(method Method, url string, cseq uint32) *Request {
	return &Request{
		Method: method,
		URL:    url,
		CSeq:   cseq,
		Header: NewHeader(),
	}
}

// Write serialises the request onto w in wire format: start line, header
// fields, blank line, optional body.
func (r *Request) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)

	if _, err := fmt.Fprintf(bw, "%s %s RTSP/%s\r\n", r.Method, r.URL, rtspVersion); err != nil {
		return fmt.Errorf("failed to write request line: %w", err)
	}

	r.Header.Set("CSeq", strconv.FormatUint(uint64(r.CSeq), 10))
	if len(r.Body) > 0 {
		r.Header.Set("Content-Length", strconv.Itoa(len(r.Body)))
	}

	for _, name := range r.Header.Names() {
		if _, err := fmt.Fprintf(bw, "%s: %s\r\n", name, r.Header.Get(name)); err != nil {
			return fmt.Errorf("failed to write request header %s: %w", name, err)
		}
	}

	if _, err := bw.WriteString("\r\n"); err != nil {
		return fmt.Errorf("failed to write header terminator: %w", err)
	}

	if len(r.Body) > 0 {
		if _, err := bw.Write(r.Body); err != nil {
			return fmt.Errorf("failed to write request body: %w", err)
		}
	}

	return bw.Flush()
}

// Response is an inbound RTSP response.
type Response struct {
	StatusCode int
	Reason     string
	CSeq       uint32
	Header     *Header
	Body       []byte
}

func (r *Response) IsOK() bool {
	return r.StatusCode == 200
}
