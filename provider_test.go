package gcsfs_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/gobeaver/gcsfs"
	"github.com/gobeaver/gcsfs/driver/memory"
)

func newTestProvider(t *testing.T) *gcsfs.Provider {
	t.Helper()
	gcsfs.RegisterStorageClientFactory("test-memory", func(context.Context, gcsfs.Credentials) (gcsfs.StorageClient, error) {
		return memory.New(), nil
	})
	return gcsfs.NewProvider("test-memory")
}

// newBucket registers bucket as a Filesystem and creates the backing bucket
// in the adapter, since NewFileSystem only binds the name — it does not
// call CreateBucket itself, mirroring java.nio.file's distinction between
// obtaining a FileSystem handle and actually provisioning storage.
func newBucket(t *testing.T, ctx context.Context, provider *gcsfs.Provider, name string) {
	t.Helper()
	fs, err := provider.NewFileSystem(ctx, name, nil)
	if err != nil {
		t.Fatalf("NewFileSystem(%q): %v", name, err)
	}
	if err := provider.CreateDirectory(ctx, fs.Root()); err != nil {
		t.Fatalf("CreateDirectory(root of %q): %v", name, err)
	}
}

func writeString(t *testing.T, ctx context.Context, provider *gcsfs.Provider, p gcsfs.Path, content string) {
	t.Helper()
	w, err := provider.NewByteChannel(ctx, p, gcsfs.OptWrite, gcsfs.OptCreate)
	if err != nil {
		t.Fatalf("open for write: %v", err)
	}
	if _, err := io.Copy(w, strings.NewReader(content)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
}

func readString(t *testing.T, ctx context.Context, provider *gcsfs.Provider, p gcsfs.Path) string {
	t.Helper()
	r, err := provider.NewByteChannel(ctx, p, gcsfs.OptRead)
	if err != nil {
		t.Fatalf("open for read: %v", err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return string(data)
}

func TestProviderWriteReadRoundTrip(t *testing.T) {
	ctx := context.Background()
	provider := newTestProvider(t)

	newBucket(t, ctx, provider, "test-bucket")
	p, err := provider.GetPath(ctx, "gs://test-bucket/reports/q1.csv")
	if err != nil {
		t.Fatalf("GetPath: %v", err)
	}

	writeString(t, ctx, provider, p, "a,b,c\n1,2,3\n")
	if got := readString(t, ctx, provider, p); got != "a,b,c\n1,2,3\n" {
		t.Errorf("round trip content = %q", got)
	}
}

func TestProviderReadAttributesNoSuchFile(t *testing.T) {
	ctx := context.Background()
	provider := newTestProvider(t)
	newBucket(t, ctx, provider, "test-bucket-2")

	p, err := provider.GetPath(ctx, "gs://test-bucket-2/missing.txt")
	if err != nil {
		t.Fatalf("GetPath: %v", err)
	}
	if _, err := provider.ReadAttributes(ctx, p); !gcsfs.IsNoSuchFile(err) {
		t.Errorf("ReadAttributes on missing file: err = %v, want IsNoSuchFile", err)
	}
}

func TestProviderCreateDirectoryAndListing(t *testing.T) {
	ctx := context.Background()
	provider := newTestProvider(t)
	newBucket(t, ctx, provider, "test-bucket-3")

	dir, err := provider.GetPath(ctx, "gs://test-bucket-3/images/")
	if err != nil {
		t.Fatalf("GetPath: %v", err)
	}
	if err := provider.CreateDirectory(ctx, dir); err != nil {
		t.Fatalf("CreateDirectory: %v", err)
	}

	file, err := provider.GetPath(ctx, "gs://test-bucket-3/images/photo.jpg")
	if err != nil {
		t.Fatalf("GetPath: %v", err)
	}
	writeString(t, ctx, provider, file, "binarydata")

	stream, err := provider.NewDirectoryStream(ctx, dir, gcsfs.AcceptAll)
	if err != nil {
		t.Fatalf("NewDirectoryStream: %v", err)
	}
	defer stream.Close()

	var names []string
	for {
		entry, ok, err := stream.Next(ctx)
		if err != nil {
			t.Fatalf("stream.Next: %v", err)
		}
		if !ok {
			break
		}
		name, _ := entry.GetFileName()
		names = append(names, name.String())
	}
	if len(names) != 1 || names[0] != "photo.jpg" {
		t.Errorf("directory listing = %v, want [photo.jpg]", names)
	}
}

func TestProviderDeleteNonEmptyDirectoryFails(t *testing.T) {
	ctx := context.Background()
	provider := newTestProvider(t)
	newBucket(t, ctx, provider, "test-bucket-4")

	dir, _ := provider.GetPath(ctx, "gs://test-bucket-4/data/")
	if err := provider.CreateDirectory(ctx, dir); err != nil {
		t.Fatalf("CreateDirectory: %v", err)
	}
	file, _ := provider.GetPath(ctx, "gs://test-bucket-4/data/x.txt")
	writeString(t, ctx, provider, file, "x")

	if err := provider.Delete(ctx, dir); !gcsfs.IsDirectoryNotEmpty(err) {
		t.Errorf("Delete non-empty dir: err = %v, want IsDirectoryNotEmpty", err)
	}

	if err := provider.Delete(ctx, file); err != nil {
		t.Fatalf("Delete file: %v", err)
	}
	if err := provider.Delete(ctx, dir); err != nil {
		t.Errorf("Delete empty dir: %v", err)
	}
}

func TestProviderCopySameBucket(t *testing.T) {
	ctx := context.Background()
	provider := newTestProvider(t)
	newBucket(t, ctx, provider, "test-bucket-5")

	src, _ := provider.GetPath(ctx, "gs://test-bucket-5/a.txt")
	dst, _ := provider.GetPath(ctx, "gs://test-bucket-5/b.txt")
	writeString(t, ctx, provider, src, "hello")

	if err := provider.Copy(ctx, src, dst, false); err != nil {
		t.Fatalf("Copy: %v", err)
	}
	if got := readString(t, ctx, provider, dst); got != "hello" {
		t.Errorf("copied content = %q, want hello", got)
	}
}

func TestProviderCopyRefusesExistingTargetWithoutReplace(t *testing.T) {
	ctx := context.Background()
	provider := newTestProvider(t)
	newBucket(t, ctx, provider, "test-bucket-6")

	src, _ := provider.GetPath(ctx, "gs://test-bucket-6/a.txt")
	dst, _ := provider.GetPath(ctx, "gs://test-bucket-6/b.txt")
	writeString(t, ctx, provider, src, "hello")
	writeString(t, ctx, provider, dst, "already here")

	if err := provider.Copy(ctx, src, dst, false); !gcsfs.IsFileExists(err) {
		t.Errorf("Copy without replaceExisting: err = %v, want IsFileExists", err)
	}
	if err := provider.Copy(ctx, src, dst, true); err != nil {
		t.Errorf("Copy with replaceExisting: %v", err)
	}
}

func TestProviderMoveDeletesSource(t *testing.T) {
	ctx := context.Background()
	provider := newTestProvider(t)
	newBucket(t, ctx, provider, "test-bucket-7")

	src, _ := provider.GetPath(ctx, "gs://test-bucket-7/a.txt")
	dst, _ := provider.GetPath(ctx, "gs://test-bucket-7/b.txt")
	writeString(t, ctx, provider, src, "hello")

	if err := provider.Move(ctx, src, dst, false); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if _, err := provider.ReadAttributes(ctx, src); !gcsfs.IsNoSuchFile(err) {
		t.Errorf("source after move: err = %v, want IsNoSuchFile", err)
	}
	if got := readString(t, ctx, provider, dst); got != "hello" {
		t.Errorf("moved content = %q, want hello", got)
	}
}

func TestProviderNewFileSystemAlreadyExists(t *testing.T) {
	ctx := context.Background()
	provider := newTestProvider(t)
	newBucket(t, ctx, provider, "test-bucket-8")
	if _, err := provider.NewFileSystem(ctx, "test-bucket-8", nil); err == nil {
		t.Error("expected ErrFileSystemAlreadyExists on re-registration")
	}
}

func TestProviderOpenRejectsReadWriteCombination(t *testing.T) {
	ctx := context.Background()
	provider := newTestProvider(t)
	newBucket(t, ctx, provider, "test-bucket-9")
	p, _ := provider.GetPath(ctx, "gs://test-bucket-9/a.txt")

	if _, err := provider.NewByteChannel(ctx, p, gcsfs.OptRead, gcsfs.OptWrite); !gcsfs.IsUnsupported(err) {
		t.Errorf("READ+WRITE: err = %v, want IsUnsupported", err)
	}
	if _, err := provider.NewByteChannel(ctx, p, gcsfs.OptAppend); !gcsfs.IsUnsupported(err) {
		t.Errorf("APPEND: err = %v, want IsUnsupported", err)
	}
}

func TestProviderListBucketsFromGlobalRoot(t *testing.T) {
	ctx := context.Background()
	provider := newTestProvider(t)
	newBucket(t, ctx, provider, "alpha")
	newBucket(t, ctx, provider, "beta")

	root, err := provider.GetPath(ctx, "gs:///")
	if err != nil {
		t.Fatalf("GetPath(root): %v", err)
	}
	stream, err := provider.NewDirectoryStream(ctx, root, gcsfs.AcceptAll)
	if err != nil {
		t.Fatalf("NewDirectoryStream(root): %v", err)
	}
	defer stream.Close()

	var names []string
	for {
		entry, ok, err := stream.Next(ctx)
		if err != nil {
			t.Fatalf("stream.Next: %v", err)
		}
		if !ok {
			break
		}
		names = append(names, entry.Bucket())
	}
	if len(names) != 2 || names[0] != "alpha" || names[1] != "beta" {
		t.Errorf("bucket listing = %v, want [alpha beta]", names)
	}
}

func TestIsHiddenAndIsSameFile(t *testing.T) {
	ctx := context.Background()
	provider := newTestProvider(t)
	newBucket(t, ctx, provider, "test-bucket-10")

	hidden, _ := provider.GetPath(ctx, "gs://test-bucket-10/.secret")
	if !provider.IsHidden(hidden) {
		t.Error("expected .secret to be hidden")
	}

	a, _ := provider.GetPath(ctx, "gs://test-bucket-10/a.txt")
	b, _ := provider.GetPath(ctx, "gs://test-bucket-10/a.txt")
	if !provider.IsSameFile(a, b) {
		t.Error("expected two Paths parsed from the same URI to be the same file")
	}
}
