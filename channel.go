package gcsfs

import (
	"context"
	"io"
)

// ReadableByteChannel is a seekable read-only stream opened against one
// blob. It is not safe for concurrent use by multiple goroutines — each
// channel is owned by one caller at a time, exactly like an *os.File handle
// (§5 of the spec).
type ReadableByteChannel struct {
	path   Path
	reader SeekableReader
	size   int64 // known from the blob's metadata at open time
	pos    int64
	closed bool
}

// newReadableByteChannel opens path for reading. The blob must already
// exist; a missing blob surfaces as ErrNoSuchFile.
func newReadableByteChannel(ctx context.Context, fs *Filesystem, p Path) (*ReadableByteChannel, error) {
	blob, ok, err := fs.client.GetBlob(ctx, p.Bucket(), p.ObjectKey())
	if err != nil {
		return nil, newPathError("open", p.String(), err)
	}
	if !ok {
		return nil, newPathError("open", p.String(), ErrNoSuchFile)
	}
	r, err := fs.client.OpenRangeReader(ctx, p.Bucket(), p.ObjectKey())
	if err != nil {
		return nil, newPathError("open", p.String(), err)
	}
	return &ReadableByteChannel{path: p, reader: r, size: blob.Size}, nil
}

// Read implements io.Reader.
func (c *ReadableByteChannel) Read(buf []byte) (int, error) {
	if c.closed {
		return 0, newPathError("read", c.path.String(), io.ErrClosedPipe)
	}
	n, err := c.reader.Read(buf)
	c.pos += int64(n)
	return n, err
}

// Position returns the current read offset.
func (c *ReadableByteChannel) Position() int64 { return c.pos }

// SetPosition seeks forward or backward to an absolute offset.
func (c *ReadableByteChannel) SetPosition(n int64) error {
	if c.closed {
		return newPathError("seek", c.path.String(), io.ErrClosedPipe)
	}
	if n < 0 {
		return newPathError("seek", c.path.String(), ErrIllegalArgument)
	}
	pos, err := c.reader.Seek(n, io.SeekStart)
	if err != nil {
		return newPathError("seek", c.path.String(), err)
	}
	c.pos = pos
	return nil
}

// Size returns the blob's byte length, as known at open time.
func (c *ReadableByteChannel) Size() int64 { return c.size }

// Write always fails: a readable channel is not writable.
func (c *ReadableByteChannel) Write([]byte) (int, error) {
	return 0, newPathError("write", c.path.String(), ErrUnsupported)
}

// Truncate always fails: random-access writes are out of scope (spec §1
// Non-goals).
func (c *ReadableByteChannel) Truncate(int64) error {
	return newPathError("truncate", c.path.String(), ErrUnsupported)
}

// Close releases the underlying reader. It is safe to call Close without
// having fully drained Read, and safe to call more than once.
func (c *ReadableByteChannel) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.reader.Close()
}

// WritableByteChannel is a sequential, append-only write stream. Creation
// is atomic on Close: the object is not visible to readers until Close
// completes successfully (§4.D).
type WritableByteChannel struct {
	path    Path
	writer  SequentialWriter
	written int64
	closed  bool
}

func newWritableByteChannel(ctx context.Context, fs *Filesystem, p Path) (*WritableByteChannel, error) {
	w, err := fs.client.OpenResumableWriter(ctx, p.Bucket(), p.ObjectKey())
	if err != nil {
		return nil, newPathError("open", p.String(), err)
	}
	return &WritableByteChannel{path: p, writer: w}, nil
}

// Write implements io.Writer.
func (c *WritableByteChannel) Write(buf []byte) (int, error) {
	if c.closed {
		return 0, newPathError("write", c.path.String(), io.ErrClosedPipe)
	}
	n, err := c.writer.Write(buf)
	c.written += int64(n)
	return n, err
}

// Size returns the number of bytes written so far.
func (c *WritableByteChannel) Size() int64 { return c.written }

// Position returns the number of bytes written so far, satisfying
// ByteChannel alongside Size.
func (c *WritableByteChannel) Position() int64 { return c.written }

// Read always fails: a writable channel is not readable.
func (c *WritableByteChannel) Read([]byte) (int, error) {
	return 0, newPathError("read", c.path.String(), ErrUnsupported)
}

// SetPosition always fails: only sequential writes are supported.
func (c *WritableByteChannel) SetPosition(int64) error {
	return newPathError("seek", c.path.String(), ErrUnsupported)
}

// Truncate always fails: random-access writes are out of scope.
func (c *WritableByteChannel) Truncate(int64) error {
	return newPathError("truncate", c.path.String(), ErrUnsupported)
}

// Close completes the upload, making the object visible atomically.
func (c *WritableByteChannel) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if err := c.writer.Close(); err != nil {
		return newPathError("close", c.path.String(), err)
	}
	return nil
}
