package gcsfs

import (
	"context"
	"io"
	"time"
)

// Blob is the logical record the backend stores: (bucket, name) plus size
// and timestamps. A blob whose name ends in "/" is a directory marker.
type Blob struct {
	Bucket     string
	Name       string // the key; may contain "/" without the store interpreting it
	Size       int64
	CreateTime time.Time
	UpdateTime time.Time
}

// IsDirectoryMarker reports whether this blob's name denotes a directory.
func (b Blob) IsDirectoryMarker() bool {
	return len(b.Name) > 0 && b.Name[len(b.Name)-1] == '/'
}

// BucketInfo is the logical record for a bucket.
type BucketInfo struct {
	Name       string
	Location   string
	StorageClass string
	CreateTime time.Time
}

// SeekableReader is a forward- and backward-seekable byte stream opened
// against a single blob. Implementations wrap a ranged read.
type SeekableReader interface {
	io.Reader
	io.Seeker
	io.Closer
}

// SequentialWriter is an append-only byte sink; the write is not visible to
// readers until Close completes (resumable-upload semantics).
type SequentialWriter interface {
	io.Writer
	io.Closer
}

// ListOption configures a prefix listing.
type ListOption struct {
	// Delimiter, when set to "/", requests "current directory" mode: the
	// iterator yields objects directly under Prefix plus synthesized
	// directory markers for immediate sub-prefixes, instead of every
	// object under Prefix recursively.
	Delimiter string
}

// BlobIterator is a single-pass, lazily-paged cursor over a listing. Next
// returns (Blob, true, nil) for each entry, and (_, false, nil) once
// exhausted. A non-nil error ends iteration.
//
// Listings are eventually consistent: a write immediately followed by a
// list may not observe the new object (§5 of the spec). Callers that need
// read-your-writes should use GetBlob, which is always consistent for an
// exact key.
type BlobIterator interface {
	Next(ctx context.Context) (Blob, bool, error)
}

// BucketIterator is the bucket-listing counterpart of BlobIterator.
type BucketIterator interface {
	Next(ctx context.Context) (BucketInfo, bool, error)
}

// StorageClient is the narrow interface the core issues every backend call
// through. Concrete implementations (gcsfs/driver/gcs for the real backend,
// gcsfs/driver/memory for tests) translate their own failure modes into the
// sentinel errors in errors.go.
type StorageClient interface {
	// GetBlob returns the blob's metadata, or (Blob{}, false, nil) if it
	// does not exist. This call is read-your-writes consistent.
	GetBlob(ctx context.Context, bucket, key string) (Blob, bool, error)

	// OpenRangeReader opens a seekable reader over the blob. The blob must
	// already exist; implementations should return ErrNoSuchFile otherwise.
	OpenRangeReader(ctx context.Context, bucket, key string) (SeekableReader, error)

	// OpenResumableWriter opens a sequential writer to (bucket, key). The
	// object is not visible to readers until the writer is closed.
	OpenResumableWriter(ctx context.Context, bucket, key string) (SequentialWriter, error)

	// ListByPrefix returns a lazy iterator over blobs under prefix.
	ListByPrefix(ctx context.Context, bucket, prefix string, opts ListOption) (BlobIterator, error)

	// CopyBlob performs a server-side copy, iterating internally until
	// done if the backend chunks large copies.
	CopyBlob(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error

	// DeleteBlob removes one blob. Returns (false, nil) if it did not exist.
	DeleteBlob(ctx context.Context, bucket, key string) (bool, error)

	// CreateBucket creates a bucket with an optional location and storage
	// class (either may be "" to accept backend defaults).
	CreateBucket(ctx context.Context, name, location, storageClass string) error

	// DeleteBucket removes an empty bucket. Implementations should surface
	// a non-empty bucket as ErrDirectoryNotEmpty and a missing one as
	// ErrNoSuchFile.
	DeleteBucket(ctx context.Context, name string) error

	// GetBucket returns bucket metadata, or (BucketInfo{}, false, nil) if
	// it does not exist.
	GetBucket(ctx context.Context, name string) (BucketInfo, bool, error)

	// ListBuckets returns a lazy iterator over every bucket visible to the
	// configured credentials.
	ListBuckets(ctx context.Context) (BucketIterator, error)
}
