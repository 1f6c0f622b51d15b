package transport

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse parses a SETUP response's Transport header value into its
// comma-separated options. Only the fields this client actually acts on
// are extracted: the delivery protocol, the unicast flag, and the
// interleaved channel pair. Every other Transport parameter (ttl,
// destination, client_port, ssrc, mode, ...) is recognised and skipped
// rather than rejected, since a server is free to echo parameters this
// client never asked for and has no use for.
func Parse(raw string) (Header, error) {
	var opts []Option
	for _, part := range strings.Split(raw, ",") {
		opt, err := parseOption(strings.TrimSpace(part))
		if err != nil {
			return Header{}, err
		}
		opts = append(opts, opt)
	}
	return Header{Options: opts}, nil
}

func parseOption(in string) (Option, error) {
	fields := strings.Split(in, ";")
	if len(fields) == 0 || fields[0] == "" {
		return Option{}, fmt.Errorf("malformed transport header %q", in)
	}

	var opt Option
	switch fields[0] {
	case "RTP/AVP", "RTP/AVP/UDP":
		opt.Protocol = ProtocolUDP
	case "RTP/AVP/TCP":
		opt.Protocol = ProtocolTCP
	default:
		return Option{}, fmt.Errorf("%w: %q", ErrUnsupportedTransport, fields[0])
	}

	for _, field := range fields[1:] {
		switch {
		case field == "unicast":
			opt.Unicast = true
		case strings.HasPrefix(field, "interleaved="):
			lo, hi, err := parseChannelPair(strings.TrimPrefix(field, "interleaved="))
			if err != nil {
				return Option{}, fmt.Errorf("malformed interleaved parameter %q: %w", field, err)
			}
			opt.Interleaved = [2]int{lo, hi}
		default:
			// destination, client_port, server_port, ttl, layers, ssrc,
			// mode, append, multicast, ... — nothing this client reads.
		}
	}

	return opt, nil
}

// parseChannelPair parses "N" or "N-M" into a (lo, hi) pair, mirroring
// the N-(N+1) shape this client always requests at SETUP.
func parseChannelPair(raw string) (lo, hi int, err error) {
	channels := strings.SplitN(raw, "-", 2)
	lo, err = strconv.Atoi(channels[0])
	if err != nil {
		return 0, 0, fmt.Errorf("channel %q: %w", channels[0], err)
	}
	hi = lo
	if len(channels) == 2 {
		hi, err = strconv.Atoi(channels[1])
		if err != nil {
			return 0, 0, fmt.Errorf("channel %q: %w", channels[1], err)
		}
	}
	return lo, hi, nil
}
