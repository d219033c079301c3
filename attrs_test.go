package gcsfs

import (
	"testing"
	"time"
)

func TestFileAttributesKindAndFileKey(t *testing.T) {
	now := time.Now()
	a := fileAttributes("bucket", "a/b.txt", 42, now, now)
	if !a.IsRegularFile() {
		t.Error("expected IsRegularFile")
	}
	if a.Size != 42 {
		t.Errorf("Size = %d, want 42", a.Size)
	}
	if a.FileKey != "/bucket/a/b.txt" {
		t.Errorf("FileKey = %q, want /bucket/a/b.txt", a.FileKey)
	}
}

func TestDirectoryAttributesStripsTrailingSlash(t *testing.T) {
	a := directoryAttributes("bucket", "a/b/")
	if !a.IsDirectory() {
		t.Error("expected IsDirectory")
	}
	if a.FileKey != "/bucket/a/b" {
		t.Errorf("FileKey = %q, want /bucket/a/b", a.FileKey)
	}
	if a.Size != 0 {
		t.Errorf("Size = %d, want 0 for a directory", a.Size)
	}
}

func TestBucketAttributes(t *testing.T) {
	now := time.Now()
	a := bucketAttributes("bucket", now)
	if !a.IsBucket() {
		t.Error("expected IsBucket")
	}
	if a.FileKey != "/bucket" {
		t.Errorf("FileKey = %q, want /bucket", a.FileKey)
	}
	if a.CreationTime == nil || !a.CreationTime.Equal(now) {
		t.Error("expected CreationTime to be set")
	}
}

func TestRootAttributes(t *testing.T) {
	a := rootAttributes()
	if !a.IsDirectory() {
		t.Error("expected the global root to be a directory")
	}
	if a.FileKey != "/" {
		t.Errorf("FileKey = %q, want /", a.FileKey)
	}
}

func TestAttrCacheConsumeOnce(t *testing.T) {
	c := newAttrCache(&Attributes{Kind: KindFile})
	if _, ok := c.take(); !ok {
		t.Fatal("expected first take() to succeed")
	}
	if _, ok := c.take(); ok {
		t.Error("expected second take() to fail: cache should be consumed")
	}
}

func TestAttrCacheNilSafe(t *testing.T) {
	var c *attrCache
	if _, ok := c.take(); ok {
		t.Error("nil cache should never report a hit")
	}
	if newAttrCache(nil) != nil {
		t.Error("newAttrCache(nil) should return nil")
	}
}
