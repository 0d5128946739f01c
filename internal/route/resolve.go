package route

import (
	"fmt"
	"net/url"
	"strings"
)

// NavigationHint is the reserved path prefix forcing a full navigation
// regardless of same-page detection.
const NavigationHint = "__navigate:"

// Resolve turns a possibly relative path into an absolute URL.
// Priority order: a fully-qualified URL (explicit scheme) is used
// verbatim; a root-relative path is resolved against the current origin;
// anything else is resolved against the directory of the current page's
// path.
func Resolve(path string, current *url.URL) (*url.URL, error) {
	if path == "" {
		return nil, fmt.Errorf("route: empty path")
	}

	u, err := url.Parse(path)
	if err == nil && u.Scheme != "" {
		return u, nil
	}

	if current == nil {
		return nil, fmt.Errorf("route: no current location for relative path %q", path)
	}

	resolved := &url.URL{Scheme: current.Scheme, Host: current.Host}

	if strings.HasPrefix(path, "/") {
		resolved.Path = path
		return resolved, nil
	}

	// Relative to the directory of the current page: the current path
	// with its final segment removed.
	dir := current.Path
	if i := strings.LastIndexByte(dir, '/'); i >= 0 {
		dir = dir[:i+1]
	} else {
		dir = "/"
	}
	resolved.Path = dir + path
	return resolved, nil
}

// SamePage reports whether two URLs name the same page: equal origin
// (scheme, host, port) and equal path. Query and fragment are ignored.
func SamePage(a, b *url.URL) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Scheme == b.Scheme && a.Host == b.Host && a.Path == b.Path
}
