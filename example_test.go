package gcsfs_test

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/gobeaver/gcsfs"
	"github.com/gobeaver/gcsfs/driver/memory"
)

func ExampleProvider() {
	ctx := context.Background()

	gcsfs.RegisterStorageClientFactory("example-memory", func(context.Context, gcsfs.Credentials) (gcsfs.StorageClient, error) {
		return memory.New(), nil
	})
	provider := gcsfs.NewProvider("example-memory")

	fs, _ := provider.NewFileSystem(ctx, "my-bucket", nil)
	_ = provider.CreateDirectory(ctx, fs.Root())

	p, _ := provider.GetPath(ctx, "gs://my-bucket/reports/q1.csv")
	w, _ := provider.NewByteChannel(ctx, p, gcsfs.OptWrite, gcsfs.OptCreate)
	_, _ = io.Copy(w, strings.NewReader("a,b,c\n1,2,3\n"))
	_ = w.Close()

	r, _ := provider.NewByteChannel(ctx, p, gcsfs.OptRead)
	defer r.Close()
	data, _ := io.ReadAll(r)
	fmt.Print(string(data))
	// Output:
	// a,b,c
	// 1,2,3
}

func ExampleProvider_copy() {
	ctx := context.Background()

	gcsfs.RegisterStorageClientFactory("example-memory-copy", func(context.Context, gcsfs.Credentials) (gcsfs.StorageClient, error) {
		return memory.New(), nil
	})
	provider := gcsfs.NewProvider("example-memory-copy")

	fs, _ := provider.NewFileSystem(ctx, "bucket", nil)
	_ = provider.CreateDirectory(ctx, fs.Root())

	src, _ := provider.GetPath(ctx, "gs://bucket/source.txt")
	w, _ := provider.NewByteChannel(ctx, src, gcsfs.OptWrite, gcsfs.OptCreate)
	_, _ = io.Copy(w, strings.NewReader("important data"))
	_ = w.Close()

	dst, _ := provider.GetPath(ctx, "gs://bucket/copy.txt")
	_ = provider.Copy(ctx, src, dst, false)

	r, _ := provider.NewByteChannel(ctx, dst, gcsfs.OptRead)
	defer r.Close()
	data, _ := io.ReadAll(r)
	fmt.Println(string(data))
	// Output:
	// important data
}
