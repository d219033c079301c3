package gcsfs

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Path is an immutable value representing a location inside the gcsfs
// namespace. It is purely syntactic: no method on Path performs I/O.
//
// Two textual forms exist:
//
//   - absolute: leading "/", first segment is the bucket, the remaining
//     segments form the object key.
//   - relative: no leading "/"; only useful as an operand to Resolve
//     against an absolute base.
//
// The zero value is the relative empty path ("").
type Path struct {
	fs       *Filesystem // owning filesystem; nil for relative paths, or for
	                      // an absolute path not yet bound to one
	absolute bool
	segments []string // for absolute paths, segments[0] is the bucket
	dirHint  bool     // true iff the original text ended in "/", or this is a bucket/global root

	// cached is populated when a directory listing already fetched this
	// path's metadata (component F); readAttributes consumes it once. It
	// is not part of Path identity and is ignored by Equal.
	cached *attrCache
}

// RootPath returns the global root path (gs:///). fs is the special "/"
// filesystem instance, or nil if the caller does not need one bound yet.
func RootPath(fs *Filesystem) Path {
	return Path{fs: fs, absolute: true, segments: nil, dirHint: true}
}

// NewRelativePath builds a relative path from already-split segments. An
// empty segment list is the empty relative path.
func NewRelativePath(dirHint bool, segments ...string) Path {
	cp := append([]string(nil), segments...)
	return Path{absolute: false, segments: cp, dirHint: dirHint}
}

// newAbsolutePath is the internal constructor used by the URI parser and by
// Filesystem when it needs to hand back one of its own paths.
func newAbsolutePath(fs *Filesystem, dirHint bool, segments ...string) Path {
	cp := append([]string(nil), segments...)
	return Path{fs: fs, absolute: true, segments: cp, dirHint: dirHint}
}

// withCachedAttributes returns a copy of p carrying a single-use attribute
// cache, as produced by a directory listing (component F).
func (p Path) withCachedAttributes(a *Attributes) Path {
	p.cached = newAttrCache(a)
	return p
}

// Filesystem returns the owning Filesystem, or nil if this path is relative
// or not yet bound.
func (p Path) Filesystem() *Filesystem { return p.fs }

// IsAbsolute reports whether the path carries a bucket (the first segment).
func (p Path) IsAbsolute() bool { return p.absolute }

// IsDirectory reports the path's directory hint: whether the original text
// ended in "/", or the path denotes a bucket or the global root.
func (p Path) IsDirectory() bool { return p.dirHint }

// NameCount returns the number of segments. For an absolute path this
// includes the bucket segment.
func (p Path) NameCount() int { return len(p.segments) }

// Bucket returns the first segment of an absolute path, or "" for the
// global root or a relative path.
func (p Path) Bucket() string {
	if p.absolute && len(p.segments) > 0 {
		return p.segments[0]
	}
	return ""
}

// ObjectKey returns the blob key: the segments after the bucket, joined by
// "/". For a relative path, all segments form the key. Returns "" for a
// bucket root or the global root.
func (p Path) ObjectKey() string {
	if p.absolute {
		if len(p.segments) <= 1 {
			return ""
		}
		return strings.Join(p.segments[1:], "/")
	}
	return strings.Join(p.segments, "/")
}

// IsGlobalRoot reports whether this is the "/" filesystem root (gs:///).
func (p Path) IsGlobalRoot() bool {
	return p.absolute && len(p.segments) == 0
}

// IsBucketRoot reports whether this path names exactly a bucket (gs://bucket/).
func (p Path) IsBucketRoot() bool {
	return p.absolute && len(p.segments) == 1
}

// GetRoot returns the bucket-root path for an absolute path, or the zero
// Path and false for a relative path.
func (p Path) GetRoot() (Path, bool) {
	if !p.absolute {
		return Path{}, false
	}
	if len(p.segments) == 0 {
		return p, true // the global root is its own root
	}
	return newAbsolutePath(p.fs, true, p.segments[0]), true
}

// GetFileName returns the last segment as a relative path, or the zero
// Path and false if there are no segments.
func (p Path) GetFileName() (Path, bool) {
	if len(p.segments) == 0 {
		return Path{}, false
	}
	return NewRelativePath(p.dirHint, p.segments[len(p.segments)-1]), true
}

// GetParent returns the path one level up. For an absolute path this
// requires at least two segments (bucket + at least one key segment); the
// bucket root and the global root have no parent. A relative path never has
// a parent.
func (p Path) GetParent() (Path, bool) {
	if !p.absolute || len(p.segments) < 2 {
		return Path{}, false
	}
	return newAbsolutePath(p.fs, true, p.segments[:len(p.segments)-1]...), true
}

// GetName returns the i-th segment as a single-element relative path.
func (p Path) GetName(i int) Path {
	return NewRelativePath(i < len(p.segments)-1, p.segments[i])
}

// Subpath returns the segment range [begin, end) as a relative path. The
// directory hint is true iff end is before the last segment index.
func (p Path) Subpath(begin, end int) Path {
	dirHint := end < len(p.segments)-1
	return NewRelativePath(dirHint, p.segments[begin:end]...)
}

// StartsWith reports whether the segment sequence of other is a prefix of
// the segment sequence of p. This is segment-wise, not a textual prefix
// test: "/bucket/some-data".StartsWith("/bucket/some") is false even though
// the strings share a textual prefix.
func (p Path) StartsWith(other Path) bool {
	if p.absolute != other.absolute {
		return false
	}
	if len(other.segments) > len(p.segments) {
		return false
	}
	for i, s := range other.segments {
		if p.segments[i] != s {
			return false
		}
	}
	return true
}

// EndsWith reports whether the segment sequence of other is a suffix of the
// segment sequence of p. An absolute other can never be a suffix of p
// unless it equals p exactly, because an absolute path carries a bucket
// segment that can only appear at index 0.
func (p Path) EndsWith(other Path) bool {
	if other.absolute {
		return p.absolute && p.Equal(other)
	}
	if len(other.segments) > len(p.segments) {
		return false
	}
	offset := len(p.segments) - len(other.segments)
	for i, s := range other.segments {
		if p.segments[offset+i] != s {
			return false
		}
	}
	return true
}

// Normalize resolves "." and ".." segments. It never escapes the bucket:
// a ".." at the root of the key space is dropped rather than propagated,
// clamping at the bucket boundary.
func (p Path) Normalize() Path {
	floor := 0
	if p.absolute && len(p.segments) > 0 {
		floor = 1 // never pop the bucket segment
	}
	out := make([]string, 0, len(p.segments))
	if floor == 1 {
		out = append(out, p.segments[0])
	}
	for _, s := range p.segments[floor:] {
		switch s {
		case ".":
			continue
		case "..":
			if len(out) > floor {
				out = out[:len(out)-1]
			}
			// else: clamped at the bucket/relative root, drop silently
		default:
			out = append(out, s)
		}
	}
	return Path{fs: p.fs, absolute: p.absolute, segments: out, dirHint: p.dirHint}
}

// Resolve combines p with other. If other is absolute it is returned as-is
// (it may be bound to a different Filesystem than p — switching
// filesystems on an absolute operand is the caller's, or ResolveString's,
// responsibility, never this method's). Otherwise the segments of other are
// appended to p's, and the result's directory hint is other's.
func (p Path) Resolve(other Path) Path {
	if other.absolute {
		return other
	}
	if len(other.segments) == 0 {
		return p
	}
	segs := make([]string, 0, len(p.segments)+len(other.segments))
	segs = append(segs, p.segments...)
	segs = append(segs, other.segments...)
	return Path{fs: p.fs, absolute: p.absolute, segments: segs, dirHint: other.dirHint}
}

// ResolveString parses s as either a relative key (joined onto p) or, if s
// begins with "/", an absolute path reparsed through the owning
// Filesystem's Provider — which may switch the result onto a different
// Filesystem instance than p's, exactly as resolving an absolute operand
// against any base does.
func (p Path) ResolveString(s string) (Path, error) {
	if strings.HasPrefix(s, "/") {
		prov, err := p.requireProvider("resolve")
		if err != nil {
			return Path{}, err
		}
		return prov.parseAbsoluteKey(s)
	}
	return p.Resolve(parseRelative(s)), nil
}

// ResolveSibling is equivalent to p.GetParent().Resolve(other), with the
// same absolute-switch rule as Resolve.
func (p Path) ResolveSibling(other Path) Path {
	parent, ok := p.GetParent()
	if !ok {
		if p.absolute {
			parent, _ = p.GetRoot()
		} else {
			parent = Path{}
		}
	}
	return parent.Resolve(other)
}

// ResolveSiblingString is the string-accepting counterpart of ResolveSibling.
func (p Path) ResolveSiblingString(s string) (Path, error) {
	parent, ok := p.GetParent()
	if !ok {
		if p.absolute {
			parent, _ = p.GetRoot()
		} else {
			parent = Path{}
		}
	}
	return parent.ResolveString(s)
}

// Relativize computes the shortest relative path r such that
// p.Resolve(r).Normalize() == other.Normalize(), when both p and other are
// absolute and share the same bucket (root).
func (p Path) Relativize(other Path) (Path, bool) {
	if !p.absolute || !other.absolute {
		return Path{}, false
	}
	if p.Bucket() != other.Bucket() {
		return Path{}, false
	}
	a, b := p.segments, other.segments
	i := 0
	for i < len(a) && i < len(b) && a[i] == b[i] {
		i++
	}
	segs := make([]string, 0, (len(a)-i)+(len(b)-i))
	for range a[i:] {
		segs = append(segs, "..")
	}
	segs = append(segs, b[i:]...)
	return NewRelativePath(other.dirHint, segs...), true
}

// Iterator yields each segment of p as a single-segment relative path.
// Intermediate segments (every element but the last) carry directory=true.
func (p Path) Iterator() []Path {
	out := make([]Path, len(p.segments))
	for i := range p.segments {
		out[i] = p.GetName(i)
	}
	return out
}

// Equal reports whether p and other denote the same path: same owning
// Filesystem identity, same segment sequence, same directory hint.
func (p Path) Equal(other Path) bool {
	if p.fs != other.fs || p.absolute != other.absolute || p.dirHint != other.dirHint {
		return false
	}
	// cheap rejection before the segment-by-segment compare, the same
	// fast-path/slow-path split the teacher's cache keying uses elsewhere.
	if p.hashKey() != other.hashKey() {
		return false
	}
	if len(p.segments) != len(other.segments) {
		return false
	}
	for i := range p.segments {
		if p.segments[i] != other.segments[i] {
			return false
		}
	}
	return true
}

// hashKey returns an xxhash of p's textual form, used as a fast pre-check
// by Equal and by Provider.IsSameFile before falling back to the full
// segment-wise comparison.
func (p Path) hashKey() uint64 {
	return xxhash.Sum64String(p.String())
}

// String returns the printable textual form: absolute paths render as
// "/bucket/key" with any trailing "/" removed; relative paths render as the
// key as given. The directory hint is not reflected here — see ToURI, which
// is lossless.
func (p Path) String() string {
	if !p.absolute {
		return strings.Join(p.segments, "/")
	}
	if len(p.segments) == 0 {
		return "/"
	}
	return "/" + strings.Join(p.segments, "/")
}

// CompareTo orders paths lexicographically on their textual form, matching
// the ordering a sorted directory listing would expect.
func (p Path) CompareTo(other Path) int {
	return strings.Compare(p.String(), other.String())
}

// requireProvider fetches the Provider bound to p's Filesystem, failing
// with IllegalArgument if p is not bound to one.
func (p Path) requireProvider(op string) (*Provider, error) {
	if p.fs == nil || p.fs.provider == nil {
		return nil, newPathError(op, p.String(), ErrIllegalArgument)
	}
	return p.fs.provider, nil
}

// parseRelative splits a relative key string into segments, recording a
// directory hint from any trailing "/".
func parseRelative(s string) Path {
	dirHint := s == "" || strings.HasSuffix(s, "/")
	trimmed := strings.Trim(s, "/")
	var segs []string
	if trimmed != "" {
		segs = strings.Split(trimmed, "/")
	}
	return Path{absolute: false, segments: segs, dirHint: dirHint}
}
