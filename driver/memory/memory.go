// Package memory provides an in-memory gcsfs.StorageClient, useful for
// tests and local development without real credentials. It is adapted from
// the teacher's own in-memory filesystem adapter, trimmed from a full
// filekit.FileSystem down to the ten-method StorageClient surface and
// reshaped around (bucket, key) records instead of flat paths.
package memory

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gobeaver/gcsfs"
)

type object struct {
	content    []byte
	createTime time.Time
	updateTime time.Time
}

type bucket struct {
	location     string
	storageClass string
	createTime   time.Time
	objects      map[string]*object
}

// Adapter is an in-memory gcsfs.StorageClient. The zero value is not
// usable; construct with New.
type Adapter struct {
	mu      sync.RWMutex
	buckets map[string]*bucket
	now     func() time.Time
}

// New creates an empty in-memory adapter.
func New() *Adapter {
	return &Adapter{
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

var _ gcsfs.StorageClient = (*Adapter)(nil)

func (a *Adapter) GetBlob(_ context.Context, bkt, key string) (gcsfs.Blob, bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	b, ok := a.buckets[bkt]
	if !ok {
		return gcsfs.Blob{}, false, nil
	}
	obj, ok := b.objects[key]
	if !ok {
		return gcsfs.Blob{}, false, nil
	}
	return gcsfs.Blob{
		Bucket:     bkt,
		Name:       key,
		Size:       int64(len(obj.content)),
		CreateTime: obj.createTime,
		UpdateTime: obj.updateTime,
	}, true, nil
}

func (a *Adapter) OpenRangeReader(_ context.Context, bkt, key string) (gcsfs.SeekableReader, error) {
	a.mu.RLock()
	b, ok := a.buckets[bkt]
	if !ok {
		a.mu.RUnlock()
		return nil, gcsfs.ErrNoSuchFile
	}
	obj, ok := b.objects[key]
	a.mu.RUnlock()
	if !ok {
		return nil, gcsfs.ErrNoSuchFile
	}

	content := make([]byte, len(obj.content))
	copy(content, obj.content)
	return &rangeReader{r: bytes.NewReader(content)}, nil
}

// rangeReader adapts a *bytes.Reader (Read+Seek) with a Close, satisfying
// gcsfs.SeekableReader.
type rangeReader struct {
	r *bytes.Reader
}

func (r *rangeReader) Read(p []byte) (int, error)                { return r.r.Read(p) }
func (r *rangeReader) Seek(off int64, whence int) (int64, error) { return r.r.Seek(off, whence) }
func (r *rangeReader) Close() error                              { return nil }

var _ io.ReadSeekCloser = (*rangeReader)(nil)

func (a *Adapter) OpenResumableWriter(_ context.Context, bkt, key string) (gcsfs.SequentialWriter, error) {
	a.mu.Lock()
	b, ok := a.buckets[bkt]
	a.mu.Unlock()
	if !ok {
		return nil, gcsfs.ErrNoSuchFile
	}
	return &resumableWriter{adapter: a, bucketObj: b, key: key, created: a.now()}, nil
}

// resumableWriter buffers the write and commits it atomically on Close,
// matching every real backend's "not visible until Close" guarantee.
type resumableWriter struct {
	adapter   *Adapter
	bucketObj *bucket
	key       string
	created   time.Time
	buf       bytes.Buffer
}

func (w *resumableWriter) Write(p []byte) (int, error) { return w.buf.Write(p) }

func (w *resumableWriter) Close() error {
	w.adapter.mu.Lock()
	defer w.adapter.mu.Unlock()
	w.bucketObj.objects[w.key] = &object{
		content:    append([]byte(nil), w.buf.Bytes()...),
		createTime: w.created,
		updateTime: w.adapter.now(),
	}
	return nil
}

func (a *Adapter) ListByPrefix(_ context.Context, bkt, prefix string, opts gcsfs.ListOption) (gcsfs.BlobIterator, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	b, ok := a.buckets[bkt]
	if !ok {
		return &sliceBlobIterator{}, nil
	}

	var names []string
	for name := range b.objects {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	if opts.Delimiter == "" {
		blobs := make([]gcsfs.Blob, 0, len(names))
		for _, name := range names {
			obj := b.objects[name]
			blobs = append(blobs, gcsfs.Blob{Bucket: bkt, Name: name, Size: int64(len(obj.content)), CreateTime: obj.createTime, UpdateTime: obj.updateTime})
		}
		return &sliceBlobIterator{blobs: blobs}, nil
	}

	// delimiter mode: collapse anything past the next "/" after prefix into
	// a single synthesized directory-marker entry, deduplicated.
	seenDirs := make(map[string]bool)
	var blobs []gcsfs.Blob
	for _, name := range names {
		rest := strings.TrimPrefix(name, prefix)
		if idx := strings.Index(rest, opts.Delimiter); idx >= 0 {
			dirKey := prefix + rest[:idx+1]
			if dirKey == name {
				obj := b.objects[name]
				blobs = append(blobs, gcsfs.Blob{Bucket: bkt, Name: name, Size: int64(len(obj.content)), CreateTime: obj.createTime, UpdateTime: obj.updateTime})
				continue
			}
			if !seenDirs[dirKey] {
				seenDirs[dirKey] = true
				blobs = append(blobs, gcsfs.Blob{Bucket: bkt, Name: dirKey})
			}
			continue
		}
		obj := b.objects[name]
		blobs = append(blobs, gcsfs.Blob{Bucket: bkt, Name: name, Size: int64(len(obj.content)), CreateTime: obj.createTime, UpdateTime: obj.updateTime})
	}
	sort.Slice(blobs, func(i, j int) bool { return blobs[i].Name < blobs[j].Name })
	return &sliceBlobIterator{blobs: blobs}, nil
}

type sliceBlobIterator struct {
	blobs []gcsfs.Blob
	pos   int
}

func (it *sliceBlobIterator) Next(context.Context) (gcsfs.Blob, bool, error) {
	if it.pos >= len(it.blobs) {
		return gcsfs.Blob{}, false, nil
	}
	b := it.blobs[it.pos]
	it.pos++
	return b, true, nil
}

func (a *Adapter) CopyBlob(_ context.Context, srcBucket, srcKey, dstBucket, dstKey string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	sb, ok := a.buckets[srcBucket]
	if !ok {
		return gcsfs.ErrNoSuchFile
	}
	src, ok := sb.objects[srcKey]
	if !ok {
		return gcsfs.ErrNoSuchFile
	}
	db, ok := a.buckets[dstBucket]
	if !ok {
		return gcsfs.ErrNoSuchFile
	}
	db.objects[dstKey] = &object{
		content:    append([]byte(nil), src.content...),
		createTime: a.now(),
		updateTime: a.now(),
	}
	return nil
}

func (a *Adapter) DeleteBlob(_ context.Context, bkt, key string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	b, ok := a.buckets[bkt]
	if !ok {
		return false, nil
	}
	if _, ok := b.objects[key]; !ok {
		return false, nil
	}
	delete(b.objects, key)
	return true, nil
}

func (a *Adapter) CreateBucket(_ context.Context, name, location, storageClass string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.buckets[name]; exists {
		return gcsfs.ErrFileExists
	}
	a.buckets[name] = &bucket{
		location:     location,
		storageClass: storageClass,
		createTime:   a.now(),
		objects:      make(map[string]*object),
	}
	return nil
}

func (a *Adapter) DeleteBucket(_ context.Context, name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	b, ok := a.buckets[name]
	if !ok {
		return gcsfs.ErrNoSuchFile
	}
	if len(b.objects) > 0 {
		return gcsfs.ErrDirectoryNotEmpty
	}
	delete(a.buckets, name)
	return nil
}

func (a *Adapter) GetBucket(_ context.Context, name string) (gcsfs.BucketInfo, bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	b, ok := a.buckets[name]
	if !ok {
		return gcsfs.BucketInfo{}, false, nil
	}
	return gcsfs.BucketInfo{Name: name, Location: b.location, StorageClass: b.storageClass, CreateTime: b.createTime}, true, nil
}

func (a *Adapter) ListBuckets(context.Context) (gcsfs.BucketIterator, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	names := make([]string, 0, len(a.buckets))
	for name := range a.buckets {
		names = append(names, name)
	}
	sort.Strings(names)

	infos := make([]gcsfs.BucketInfo, 0, len(names))
	for _, name := range names {
		b := a.buckets[name]
		infos = append(infos, gcsfs.BucketInfo{Name: name, Location: b.location, StorageClass: b.storageClass, CreateTime: b.createTime})
	}
	return &sliceBucketIterator{infos: infos}, nil
}

type sliceBucketIterator struct {
	infos []gcsfs.BucketInfo
	pos   int
}

func (it *sliceBucketIterator) Next(context.Context) (gcsfs.BucketInfo, bool, error) {
	if it.pos >= len(it.infos) {
		return gcsfs.BucketInfo{}, false, nil
	}
	b := it.infos[it.pos]
	it.pos++
	return b, true, nil
}
