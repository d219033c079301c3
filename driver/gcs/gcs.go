// Package gcs adapts cloud.google.com/go/storage to gcsfs.StorageClient.
// It is grounded on the teacher's own GCS adapter: the same client,
// NewReader/NewWriter and iterator.Done handling, narrowed from the
// teacher's full filekit.FileSystem surface to the ten-method
// StorageClient interface the core issues calls through.
package gcs

import (
	"context"
	"errors"
	"io"

	"cloud.google.com/go/storage"
	"github.com/gobeaver/gcsfs"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
)

// Adapter is a gcsfs.StorageClient backed by a real *storage.Client.
type Adapter struct {
	client         *storage.Client
	boundProjectID string
}

// New wraps an already-constructed *storage.Client, scoped to projectID
// for bucket creation and enumeration.
func New(client *storage.Client, projectID string) *Adapter {
	return &Adapter{client: client, boundProjectID: projectID}
}

var _ gcsfs.StorageClient = (*Adapter)(nil)

func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrObjectNotExist):
		return gcsfs.ErrNoSuchFile
	case errors.Is(err, storage.ErrBucketNotExist):
		return gcsfs.ErrNoSuchFile
	default:
		return err
	}
}

func (a *Adapter) GetBlob(ctx context.Context, bucket, key string) (gcsfs.Blob, bool, error) {
	attrs, err := a.client.Bucket(bucket).Object(key).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return gcsfs.Blob{}, false, nil
	}
	if err != nil {
		return gcsfs.Blob{}, false, mapError(err)
	}
	return gcsfs.Blob{
		Bucket:     bucket,
		Name:       key,
		Size:       attrs.Size,
		CreateTime: attrs.Created,
		UpdateTime: attrs.Updated,
	}, true, nil
}

func (a *Adapter) OpenRangeReader(ctx context.Context, bucket, key string) (gcsfs.SeekableReader, error) {
	obj := a.client.Bucket(bucket).Object(key)
	attrs, err := obj.Attrs(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return &rangeReader{ctx: ctx, obj: obj, size: attrs.Size}, nil
}

// rangeReader implements gcsfs.SeekableReader by dropping the open
// storage.Reader when a Seek changes the position and opening a new ranged
// reader on the next Read, since the GCS client has no native seek.
type rangeReader struct {
	ctx    context.Context
	obj    *storage.ObjectHandle
	reader *storage.Reader
	pos    int64
	size   int64
}

func (r *rangeReader) ensureOpen() error {
	if r.reader != nil {
		return nil
	}
	rc, err := r.obj.NewRangeReader(r.ctx, r.pos, -1)
	if err != nil {
		return mapError(err)
	}
	r.reader = rc
	return nil
}

func (r *rangeReader) Read(p []byte) (int, error) {
	if err := r.ensureOpen(); err != nil {
		return 0, err
	}
	n, err := r.reader.Read(p)
	r.pos += int64(n)
	return n, err
}

func (r *rangeReader) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = r.pos + offset
	case io.SeekEnd:
		target = r.size + offset
	default:
		return 0, gcsfs.ErrIllegalArgument
	}
	if target < 0 {
		return 0, gcsfs.ErrIllegalArgument
	}
	if target != r.pos && r.reader != nil {
		r.reader.Close()
		r.reader = nil
	}
	r.pos = target
	return r.pos, nil
}

func (r *rangeReader) Close() error {
	if r.reader == nil {
		return nil
	}
	return r.reader.Close()
}

func (a *Adapter) OpenResumableWriter(ctx context.Context, bucket, key string) (gcsfs.SequentialWriter, error) {
	w := a.client.Bucket(bucket).Object(key).NewWriter(ctx)
	return w, nil
}

func (a *Adapter) ListByPrefix(ctx context.Context, bucket, prefix string, opts gcsfs.ListOption) (gcsfs.BlobIterator, error) {
	it := a.client.Bucket(bucket).Objects(ctx, &storage.Query{
		Prefix:    prefix,
		Delimiter: opts.Delimiter,
	})
	return &objectIterator{it: it}, nil
}

type objectIterator struct {
	it *storage.ObjectIterator
}

func (o *objectIterator) Next(context.Context) (gcsfs.Blob, bool, error) {
	attrs, err := o.it.Next()
	if errors.Is(err, iterator.Done) {
		return gcsfs.Blob{}, false, nil
	}
	if err != nil {
		return gcsfs.Blob{}, false, mapError(err)
	}
	if attrs.Prefix != "" {
		// a synthesized "subdirectory" entry under Delimiter mode
		return gcsfs.Blob{Bucket: attrs.Bucket, Name: attrs.Prefix}, true, nil
	}
	return gcsfs.Blob{
		Bucket:     attrs.Bucket,
		Name:       attrs.Name,
		Size:       attrs.Size,
		CreateTime: attrs.Created,
		UpdateTime: attrs.Updated,
	}, true, nil
}

func (a *Adapter) CopyBlob(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error {
	src := a.client.Bucket(srcBucket).Object(srcKey)
	dst := a.client.Bucket(dstBucket).Object(dstKey)
	_, err := dst.CopierFrom(src).Run(ctx)
	return mapError(err)
}

func (a *Adapter) DeleteBlob(ctx context.Context, bucket, key string) (bool, error) {
	err := a.client.Bucket(bucket).Object(key).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, mapError(err)
	}
	return true, nil
}

func (a *Adapter) CreateBucket(ctx context.Context, name, location, storageClass string) error {
	return a.client.Bucket(name).Create(ctx, a.boundProjectID, &storage.BucketAttrs{
		Location:     location,
		StorageClass: storageClass,
	})
}

func (a *Adapter) DeleteBucket(ctx context.Context, name string) error {
	err := a.client.Bucket(name).Delete(ctx)
	if err == nil {
		return nil
	}
	if errors.Is(err, storage.ErrBucketNotExist) {
		return gcsfs.ErrNoSuchFile
	}
	// A conflict (409) is GCS's "bucket not empty" / "reaping objects"
	// response; surface it as retriable so Filesystem.retryDeleteBucket
	// can back off and try again (spec §7).
	if isConflict(err) {
		return newTransientOrNotEmpty(ctx, a, name, err)
	}
	return err
}

func isConflict(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == 409
	}
	return false
}

// newTransientOrNotEmpty distinguishes "bucket genuinely has objects left"
// (permanent, surfaces as ErrDirectoryNotEmpty) from "backend still
// reaping the last deleted object" (transient, worth retrying) by
// listing the bucket once more.
func newTransientOrNotEmpty(ctx context.Context, a *Adapter, name string, cause error) error {
	it := a.client.Bucket(name).Objects(ctx, &storage.Query{})
	if _, err := it.Next(); err == nil {
		return gcsfs.ErrDirectoryNotEmpty
	}
	return gcsfs.NewTransientError(cause)
}

func (a *Adapter) GetBucket(ctx context.Context, name string) (gcsfs.BucketInfo, bool, error) {
	attrs, err := a.client.Bucket(name).Attrs(ctx)
	if errors.Is(err, storage.ErrBucketNotExist) {
		return gcsfs.BucketInfo{}, false, nil
	}
	if err != nil {
		return gcsfs.BucketInfo{}, false, mapError(err)
	}
	return gcsfs.BucketInfo{
		Name:         attrs.Name,
		Location:     attrs.Location,
		StorageClass: attrs.StorageClass,
		CreateTime:   attrs.Created,
	}, true, nil
}

func (a *Adapter) ListBuckets(ctx context.Context) (gcsfs.BucketIterator, error) {
	it := a.client.Buckets(ctx, a.boundProjectID)
	return &bucketIterator{it: it}, nil
}

type bucketIterator struct {
	it *storage.BucketIterator
}

func (b *bucketIterator) Next(context.Context) (gcsfs.BucketInfo, bool, error) {
	attrs, err := b.it.Next()
	if errors.Is(err, iterator.Done) {
		return gcsfs.BucketInfo{}, false, nil
	}
	if err != nil {
		return gcsfs.BucketInfo{}, false, mapError(err)
	}
	return gcsfs.BucketInfo{
		Name:         attrs.Name,
		Location:     attrs.Location,
		StorageClass: attrs.StorageClass,
		CreateTime:   attrs.Created,
	}, true, nil
}
