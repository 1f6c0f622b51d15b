package rtsp

import "strings"

// Header is an ordered RTSP header field list with case-insensitive
// lookup. net/http's http.Header is a canonicalized map and would lose
// insertion order, so this keeps an ordered slice alongside an index for
// O(1) lookup.
type Header struct {
	fields []headerField
	index  map[string]int
}

type headerField struct {
	name  string
	value string
}

func NewHeader() *Header {
	return &Header{index: make(map[string]int)}
}

func foldKey(name string) string {
	return strings.ToLower(name)
}

// Set inserts or overwrites a header field, preserving the position of
// the first insertion.
func (h *Header) Set(name, value string) {
	if h.index == nil {
		h.index = make(map[string]int)
	}
	key := foldKey(name)
	if i, ok := h.index[key]; ok {
		h.fields[i].value = value
		return
	}
	h.index[key] = len(h.fields)
	h.fields = append(h.fields, headerField{name: name, value: value})
}

// Get returns the value for name, case-insensitively, or "" if absent.
func (h *Header) Get(name string) string {
	if h == nil || h.index == nil {
		return ""
	}
	if i, ok := h.index[foldKey(name)]; ok {
		return h.fields[i].value
	}
	return ""
}

// Has reports whether name is present, case-insensitively.
func (h *Header) Has(name string) bool {
	if h == nil || h.index == nil {
		return false
	}
	_, ok := h.index[foldKey(name)]
	return ok
}

// Names returns header names in insertion order.
func (h *Header) Names() []string {
	names := make([]string, len(h.fields))
	for i, f := range h.fields {
		names[i] = f.name
	}
	return names
}
