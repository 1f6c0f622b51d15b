package rtsp

import (
	"context"
	"fmt"
	"sync"
)

// pendingResponse is a pending-response slot: created on send, removed by
// either a matching response or a caller-side timeout.
type pendingResponse struct {
	request *Request
	done    chan *Response // closed-over, one-shot: send once, then close
}

// Correlator pairs outgoing requests (by CSeq) with inbound responses. It
// is shared between the setup-phase caller goroutine and the event-loop
// goroutine that takes over once playing, so the pending map is guarded
// by a single mutex. It distinguishes "take for direct receive" (setup
// phase, caller drains the socket itself) from "wait" (once playing,
// asynchronous notification).
type Correlator struct {
	mu      sync.Mutex
	pending map[uint32]*pendingResponse
}

func NewCorrelator() *Correlator {
	return &Correlator{pending: make(map[uint32]*pendingResponse)}
}

// Register inserts a pending slot keyed by the request's CSeq. It fails
// if that CSeq is already registered.
func (c *Correlator) Register(req *Request) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.pending[req.CSeq]; exists {
		return fmt.Errorf("cseq %d already registered", req.CSeq)
	}
	c.pending[req.CSeq] = &pendingResponse{request: req, done: make(chan *Response, 1)}
	return nil
}

// ChannelFor returns the completion channel for an already-registered
// cseq without removing the slot. It exists for a caller that registered
// the request itself and wants to poll for completion between its own
// non-blocking work (e.g. driving ProcessMediaPacket), rather than
// blocking in Wait — whose timeout path removes the slot and would
// silently drop a response that arrives on a later poll.
func (c *Correlator) ChannelFor(cseq uint32) (<-chan *Response, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	slot, ok := c.pending[cseq]
	if !ok {
		return nil, false
	}
	return slot.done, true
}

// Complete looks up the pending slot by the response's CSeq and, if
// found, removes it and signals the waiter. An unmatched response is
// silently dropped — it is a stale/late reply after timeout.
func (c *Correlator) Complete(resp *Response) {
	c.mu.Lock()
	slot, ok := c.pending[resp.CSeq]
	if ok {
		delete(c.pending, resp.CSeq)
	}
	c.mu.Unlock()

	if !ok {
		return
	}
	slot.done <- resp
	close(slot.done)
}

// Wait blocks until the slot for cseq is completed or ctx is done. On
// timeout it removes the slot and returns (nil, false); the caller's
// context should already carry the per-request deadline (request_timeout_ms).
func (c *Correlator) Wait(ctx context.Context, cseq uint32) (*Response, bool) {
	c.mu.Lock()
	slot, ok := c.pending[cseq]
	c.mu.Unlock()
	if !ok {
		return nil, false
	}

	select {
	case resp, ok := <-slot.done:
		if !ok {
			return nil, false
		}
		return resp, true
	case <-ctx.Done():
		c.mu.Lock()
		delete(c.pending, cseq)
		c.mu.Unlock()
		return nil, false
	}
}

// TakeForDirectReceive removes the slot and returns the original request
// without waiting — used during setup, where the caller drains the
// socket directly instead of relying on asynchronous notification.
func (c *Correlator) TakeForDirectReceive(cseq uint32) (*Request, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	slot, ok := c.pending[cseq]
	if !ok {
		return nil, false
	}
	delete(c.pending, cseq)
	return slot.request, true
}

// FailAll completes every pending slot with no response, used when the
// socket closes.
func (c *Correlator) FailAll() {
	c.mu.Lock()
	slots := c.pending
	c.pending = make(map[uint32]*pendingResponse)
	c.mu.Unlock()

	for _, slot := range slots {
		close(slot.done)
	}
}

// Pending reports the number of in-flight CSeqs: exactly one slot
// exists per in-flight CSeq, zero after response or timeout.
func (c *Correlator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
