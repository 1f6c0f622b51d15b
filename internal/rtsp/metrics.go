package rtsp

import "time"

// Metrics holds the two latency observations captured once per session:
// origin request time (connect duration) and origin response time (time
// from end of connect to completion of all SETUPs), both in
// milliseconds.
type Metrics struct {
	OriginRequestTimeMs  int64
	OriginResponseTimeMs int64
}

type stopwatch struct {
	start time.Time
}

func newStopwatch() *stopwatch {
	return &stopwatch{start: time.Now()}
}

func (s *stopwatch) elapsedMs() int64 {
	return time.Since(s.start).Milliseconds()
}

func (s *stopwatch) reset() {
	s.start = time.Now()
}
