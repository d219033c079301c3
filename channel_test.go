package gcsfs_test

import (
	"context"
	"io"
	"testing"

	"github.com/gobeaver/gcsfs"
)

func TestReadableByteChannelSeekAndPosition(t *testing.T) {
	ctx := context.Background()
	provider := newTestProvider(t)
	newBucket(t, ctx, provider, "ch-bucket")
	p, _ := provider.GetPath(ctx, "gs://ch-bucket/data.bin")
	writeString(t, ctx, provider, p, "0123456789")

	fs, err := provider.GetFileSystem("ch-bucket")
	if err != nil {
		t.Fatalf("GetFileSystem: %v", err)
	}
	r, err := fs.NewReadableByteChannel(ctx, p)
	if err != nil {
		t.Fatalf("NewReadableByteChannel: %v", err)
	}
	defer r.Close()

	if r.Size() != 10 {
		t.Errorf("Size() = %d, want 10", r.Size())
	}

	buf := make([]byte, 3)
	n, err := r.Read(buf)
	if err != nil || n != 3 {
		t.Fatalf("Read: n=%d err=%v", n, err)
	}
	if r.Position() != 3 {
		t.Errorf("Position() = %d, want 3", r.Position())
	}

	if err := r.SetPosition(7); err != nil {
		t.Fatalf("SetPosition: %v", err)
	}
	rest, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll after seek: %v", err)
	}
	if string(rest) != "789" {
		t.Errorf("content after seek to 7 = %q, want 789", string(rest))
	}

	if err := r.SetPosition(-1); err == nil {
		t.Error("expected SetPosition(-1) to fail")
	}
}

func TestReadableByteChannelWriteAndTruncateUnsupported(t *testing.T) {
	ctx := context.Background()
	provider := newTestProvider(t)
	newBucket(t, ctx, provider, "ch-bucket-2")
	p, _ := provider.GetPath(ctx, "gs://ch-bucket-2/data.bin")
	writeString(t, ctx, provider, p, "x")

	fs, err := provider.GetFileSystem("ch-bucket-2")
	if err != nil {
		t.Fatalf("GetFileSystem: %v", err)
	}
	r, err := fs.NewReadableByteChannel(ctx, p)
	if err != nil {
		t.Fatalf("NewReadableByteChannel: %v", err)
	}
	defer r.Close()

	if _, err := r.Write([]byte("y")); !gcsfs.IsUnsupported(err) {
		t.Errorf("Write on a read channel: err = %v, want IsUnsupported", err)
	}
	if err := r.Truncate(0); !gcsfs.IsUnsupported(err) {
		t.Errorf("Truncate on a read channel: err = %v, want IsUnsupported", err)
	}
}

func TestReadableByteChannelClosedUseFails(t *testing.T) {
	ctx := context.Background()
	provider := newTestProvider(t)
	newBucket(t, ctx, provider, "ch-bucket-3")
	p, _ := provider.GetPath(ctx, "gs://ch-bucket-3/data.bin")
	writeString(t, ctx, provider, p, "x")

	fs, err := provider.GetFileSystem("ch-bucket-3")
	if err != nil {
		t.Fatalf("GetFileSystem: %v", err)
	}
	r, err := fs.NewReadableByteChannel(ctx, p)
	if err != nil {
		t.Fatalf("NewReadableByteChannel: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
	if _, err := r.Read(make([]byte, 1)); err == nil {
		t.Error("expected Read after Close to fail")
	}
}

func TestWritableByteChannelNotVisibleUntilClose(t *testing.T) {
	ctx := context.Background()
	provider := newTestProvider(t)
	newBucket(t, ctx, provider, "ch-bucket-4")
	p, _ := provider.GetPath(ctx, "gs://ch-bucket-4/staged.txt")

	fs, err := provider.GetFileSystem("ch-bucket-4")
	if err != nil {
		t.Fatalf("GetFileSystem: %v", err)
	}
	w, err := fs.NewWritableByteChannel(ctx, p)
	if err != nil {
		t.Fatalf("NewWritableByteChannel: %v", err)
	}
	if _, err := w.Write([]byte("partial")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if w.Size() != 7 {
		t.Errorf("Size() = %d, want 7", w.Size())
	}

	if _, err := provider.ReadAttributes(ctx, p); !gcsfs.IsNoSuchFile(err) {
		t.Errorf("ReadAttributes before Close: err = %v, want IsNoSuchFile", err)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := provider.ReadAttributes(ctx, p); err != nil {
		t.Errorf("ReadAttributes after Close: %v", err)
	}

	if _, err := w.Read(make([]byte, 1)); !gcsfs.IsUnsupported(err) {
		t.Errorf("Read on a write channel: err = %v, want IsUnsupported", err)
	}
	if err := w.SetPosition(0); !gcsfs.IsUnsupported(err) {
		t.Errorf("SetPosition on a write channel: err = %v, want IsUnsupported", err)
	}
}
