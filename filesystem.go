package gcsfs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// rootBucketName is the bucket name of the special, read-only filesystem
// instance used only to enumerate buckets (component D).
const rootBucketName = "/"

// Filesystem is one (bucket, StorageClient) binding. It produces Paths,
// byte channels, and directory streams, and implements readAttributes,
// createDirectory, delete and copy. Instances are created on first demand
// for a bucket and cached by the Provider until process exit or an
// explicit Close; aside from the open flag, a Filesystem is immutable
// after construction, and its StorageClient must itself be safe for
// concurrent use (§5).
type Filesystem struct {
	bucket       string
	client       StorageClient
	location     string
	storageClass string
	provider     *Provider

	open bool
}

func newFilesystem(provider *Provider, bucket string, client StorageClient, location, storageClass string) *Filesystem {
	return &Filesystem{
		bucket:       bucket,
		client:       client,
		location:     location,
		storageClass: storageClass,
		provider:     provider,
		open:         true,
	}
}

// Bucket returns the bucket this instance is bound to, or "/" for the
// global-root filesystem.
func (fs *Filesystem) Bucket() string { return fs.bucket }

// IsOpen reports whether this instance has not yet been closed.
func (fs *Filesystem) IsOpen() bool { return fs.open }

// Close marks the instance closed. It does not remove it from the
// Provider's registry — that is Provider.closeFileSystem's job, mirroring
// the Provider's exclusive ownership of Filesystem lifetime (§3 Ownership).
func (fs *Filesystem) Close() error {
	fs.open = false
	return nil
}

// Root returns the bucket-root path for this filesystem.
func (fs *Filesystem) Root() Path {
	return newAbsolutePath(fs, true, fs.bucket)
}

// Path builds an absolute Path bound to fs from the key's segments; the
// bucket segment is prepended.
func (fs *Filesystem) Path(dirHint bool, segments ...string) Path {
	all := append([]string{fs.bucket}, segments...)
	return newAbsolutePath(fs, dirHint, all...)
}

// ReadAttributes implements the resolution order from spec §4.D:
//  1. a cached attribute populated by a prior listing;
//  2. the global root;
//  3. a bucket root;
//  4. if the directory hint is set, a prefix listing for the marker;
//  5. otherwise a direct blob fetch, falling back to the directory probe.
func (fs *Filesystem) ReadAttributes(ctx context.Context, p Path) (*Attributes, error) {
	if a, ok := p.cached.take(); ok {
		return a, nil
	}
	if p.IsGlobalRoot() {
		return rootAttributes(), nil
	}
	if p.IsBucketRoot() {
		info, ok, err := fs.client.GetBucket(ctx, p.Bucket())
		if err != nil {
			return nil, newPathError("stat", p.String(), err)
		}
		if !ok {
			return nil, newPathError("stat", p.String(), ErrNoSuchFile)
		}
		return bucketAttributes(info.Name, info.CreateTime), nil
	}

	key := p.ObjectKey()
	if p.IsDirectory() {
		return fs.statDirectory(ctx, p, key)
	}

	blob, ok, err := fs.client.GetBlob(ctx, p.Bucket(), key)
	if err != nil {
		return nil, newPathError("stat", p.String(), err)
	}
	if ok {
		return fileAttributes(p.Bucket(), key, blob.Size, blob.UpdateTime, blob.CreateTime), nil
	}
	// fall back to the directory probe: the bare name may exist only as a
	// directory prefix (§4.D, the file-vs-directory disambiguation rule).
	return fs.statDirectory(ctx, p, key)
}

// statDirectory looks for the directory marker blob key+"/" via a
// delimited prefix listing, exactly as step 4 of ReadAttributes specifies.
func (fs *Filesystem) statDirectory(ctx context.Context, p Path, key string) (*Attributes, error) {
	markerKey := key + "/"
	it, err := fs.client.ListByPrefix(ctx, p.Bucket(), markerKey, ListOption{Delimiter: "/"})
	if err != nil {
		return nil, newPathError("stat", p.String(), err)
	}
	for {
		blob, ok, err := it.Next(ctx)
		if err != nil {
			return nil, newPathError("stat", p.String(), err)
		}
		if !ok {
			break
		}
		if blob.Name == markerKey {
			return directoryAttributes(p.Bucket(), markerKey), nil
		}
	}
	return nil, newPathError("stat", p.String(), ErrNoSuchFile)
}

// CreateDirectory creates the bucket (if p is a bucket root) or a zero-byte
// directory-marker blob at key+"/". Recursive creation of intermediate
// directories is the caller's responsibility (§4.D).
func (fs *Filesystem) CreateDirectory(ctx context.Context, p Path) error {
	if p.IsGlobalRoot() {
		return newPathError("mkdir", p.String(), ErrUnsupported)
	}
	if p.IsBucketRoot() {
		if err := fs.client.CreateBucket(ctx, p.Bucket(), fs.location, fs.storageClass); err != nil {
			return newPathError("mkdir", p.String(), err)
		}
		return nil
	}

	key := p.ObjectKey() + "/"
	w, err := fs.client.OpenResumableWriter(ctx, p.Bucket(), key)
	if err != nil {
		return newPathError("mkdir", p.String(), err)
	}
	if err := w.Close(); err != nil {
		return newPathError("mkdir", p.String(), err)
	}
	return nil
}

// Delete removes a bucket, file, or directory, per spec §4.D:
//   - bucket root: delete the bucket; DirectoryNotEmpty if non-empty,
//     NoSuchFile if missing;
//   - otherwise: checkExistOrEmpty first, then delete the one blob.
func (fs *Filesystem) Delete(ctx context.Context, p Path) error {
	if p.IsGlobalRoot() {
		return newPathError("delete", p.String(), ErrUnsupported)
	}
	if p.IsBucketRoot() {
		return fs.retryDeleteBucket(ctx, p)
	}

	key := p.ObjectKey()
	if err := fs.checkExistOrEmpty(ctx, p, key); err != nil {
		return err
	}
	deleteKey := key
	if p.IsDirectory() {
		deleteKey = key + "/"
	}
	ok, err := fs.client.DeleteBlob(ctx, p.Bucket(), deleteKey)
	if err != nil {
		return newPathError("delete", p.String(), err)
	}
	if !ok {
		return newPathError("delete", p.String(), ErrNoSuchFile)
	}
	return nil
}

// checkExistOrEmpty lists by prefix = objectName and classifies the
// result: an entry whose key equals the target proves it exists; an entry
// whose key starts with target+"/" proves a directory has children.
func (fs *Filesystem) checkExistOrEmpty(ctx context.Context, p Path, key string) error {
	it, err := fs.client.ListByPrefix(ctx, p.Bucket(), key, ListOption{})
	if err != nil {
		return newPathError("delete", p.String(), err)
	}
	childPrefix := key + "/"
	found := false
	for {
		blob, ok, err := it.Next(ctx)
		if err != nil {
			return newPathError("delete", p.String(), err)
		}
		if !ok {
			break
		}
		if blob.Name == key || blob.Name == childPrefix {
			found = true
		}
		// A child must lie strictly under the prefix; the directory's own
		// marker blob (key+"/") must not count as its own child.
		if blob.Name != childPrefix && strings.HasPrefix(blob.Name, childPrefix) {
			return newPathError("delete", p.String(), ErrDirectoryNotEmpty)
		}
	}
	if !found {
		return newPathError("delete", p.String(), ErrNoSuchFile)
	}
	return nil
}

// retryDeleteBucket deletes a bucket, retrying a transient "conflict"
// response (the backend reaping the bucket's last object asynchronously)
// with bounded attempts and short backoff, per spec §7.
func (fs *Filesystem) retryDeleteBucket(ctx context.Context, p Path) error {
	const maxAttempts = 5
	backoff := 100 * time.Millisecond

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err := fs.client.DeleteBucket(ctx, p.Bucket())
		switch {
		case err == nil:
			return nil
		case errors.Is(err, ErrDirectoryNotEmpty):
			return newPathError("delete", p.String(), err)
		case errors.Is(err, ErrNoSuchFile):
			return newPathError("delete", p.String(), err)
		case isTransientConflict(err):
			lastErr = err
			select {
			case <-ctx.Done():
				return newPathError("delete", p.String(), ctx.Err())
			case <-time.After(backoff):
			}
			backoff *= 2
			continue
		default:
			return newPathError("delete", p.String(), err)
		}
	}
	return newPathError("delete", p.String(), fmt.Errorf("gave up after %d attempts: %w", maxAttempts, lastErr))
}

// transientConflict marks a backend error as retriable by retryDeleteBucket.
type transientConflict struct{ err error }

func (t *transientConflict) Error() string { return t.err.Error() }
func (t *transientConflict) Unwrap() error { return t.err }

// newTransientConflict wraps a backend error to mark it retriable.
func newTransientConflict(err error) error { return &transientConflict{err: err} }

func isTransientConflict(err error) bool {
	var t *transientConflict
	return errors.As(err, &t)
}

// Copy performs a server-side copy from src to dst, looping internally
// until the backend's chunked copy completes. REPLACE_EXISTING is honored
// by the caller (Provider.Copy deletes the target first); this method
// itself does not check for an existing target.
func (fs *Filesystem) Copy(ctx context.Context, src, dst Path) error {
	if err := fs.client.CopyBlob(ctx, src.Bucket(), src.ObjectKey(), dst.Bucket(), dst.ObjectKey()); err != nil {
		return newPathError("copy", src.String(), err)
	}
	return nil
}

// NewReadableByteChannel opens p for reading.
func (fs *Filesystem) NewReadableByteChannel(ctx context.Context, p Path) (*ReadableByteChannel, error) {
	return newReadableByteChannel(ctx, fs, p)
}

// NewWritableByteChannel opens p for sequential writing.
func (fs *Filesystem) NewWritableByteChannel(ctx context.Context, p Path) (*WritableByteChannel, error) {
	return newWritableByteChannel(ctx, fs, p)
}
