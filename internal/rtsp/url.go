package rtsp

import (
	"fmt"
	"net/url"
	"strings"
)

// ResolveControlURL produces an absolute per-track control URL from an
// SDP `a=control` attribute, the Content-Base header (if any), and the
// original request URL. An absolute control attribute wins outright;
// otherwise Content-Base is preferred over the request URL, whose query
// string is carried over to the resolved URL if present.
func ResolveControlURL(control, contentBase, requestURL string) (string, error) {
	if strings.HasPrefix(strings.ToLower(control), "rtsp://") {
		return control, nil
	}

	if contentBase != "" {
		return strings.TrimSuffix(contentBase, "/") + "/" + control, nil
	}

	u, err := url.Parse(requestURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse request URL %q: %w", requestURL, err)
	}
	query := u.RawQuery
	u.RawQuery = ""

	base := strings.TrimSuffix(u.String(), "/")
	resolved := base + "/" + control
	if query != "" {
		resolved += "?" + query
	}
	return resolved, nil
}
