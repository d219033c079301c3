package gcsfs

import (
	"fmt"
	"net/url"
	"strings"
)

// scheme is the only URI scheme this package recognizes, case-insensitively
// on input.
const scheme = "gs"

// ToURI renders p in its URI form. Absolute paths produce
// "gs://bucket/key", with a trailing "/" reinstated whenever the directory
// hint is set on a path that has key segments (the bucket itself never
// needs one — "gs://bucket" already denotes a bucket root). Relative paths
// produce "gs:key" the same way. Parsing is the exact inverse: for any
// absolute Path and any non-empty relative Path p, ParseURI(p.ToURI())
// produces a Path equal to p once both are bound to the same Filesystem.
// The empty relative path renders as "gs:", which parses as the global root.
func (p Path) ToURI() string {
	if !p.absolute {
		s := strings.Join(p.segments, "/")
		if p.dirHint && len(p.segments) > 0 {
			s += "/"
		}
		return scheme + ":" + s
	}

	var bucket, key string
	switch {
	case len(p.segments) == 0:
		key = "/"
	case len(p.segments) == 1:
		bucket = p.segments[0]
	default:
		bucket = p.segments[0]
		key = "/" + strings.Join(p.segments[1:], "/")
		if p.dirHint {
			key += "/"
		}
	}
	u := url.URL{Scheme: scheme, Host: bucket, Path: key}
	return u.String()
}

// ParseURI parses a gs:// URI into an unbound absolute Path (its
// Filesystem field is left nil), or the relative form "gs:key" into a
// relative Path. Binding to a live Filesystem instance is the Provider's
// job (component E); ParseURI itself performs no I/O.
//
// The scheme must be "gs" (case-insensitive). The authority, if present, is
// lowercased and becomes the bucket. An empty authority is only valid with
// path "" or "/", denoting the global root.
func ParseURI(raw string) (Path, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Path{}, newPathError("parse", raw, fmt.Errorf("%w: %v", ErrIllegalArgument, err))
	}
	if !strings.EqualFold(u.Scheme, scheme) {
		return Path{}, newPathError("parse", raw, fmt.Errorf("%w: scheme must be %q, got %q", ErrIllegalArgument, scheme, u.Scheme))
	}

	if u.Opaque != "" {
		return parseRelative(u.Opaque), nil
	}

	bucket := strings.ToLower(u.Host)
	if bucket == "" {
		if u.Path != "" && u.Path != "/" {
			return Path{}, newPathError("parse", raw, fmt.Errorf("%w: missing bucket for non-root path %q", ErrIllegalArgument, u.Path))
		}
		return RootPath(nil), nil
	}

	trimmed := strings.TrimPrefix(u.Path, "/")
	dirHint := trimmed == "" || strings.HasSuffix(trimmed, "/")
	trimmed = strings.TrimSuffix(trimmed, "/")

	segs := []string{bucket}
	if trimmed != "" {
		segs = append(segs, strings.Split(trimmed, "/")...)
	}
	if len(segs) == 1 {
		dirHint = true // a bucket is always a directory
	}
	return newAbsolutePath(nil, dirHint, segs...), nil
}
