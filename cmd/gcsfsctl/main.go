// Command gcsfsctl is a thin inspection tool over a gcsfs.Provider: list,
// stat and cat, the same shape as the teacher's examples/local/main.go
// walkthrough but as a real CLI instead of a fixed demo script.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gobeaver/gcsfs"
	_ "github.com/gobeaver/gcsfs/driver/gcs"
	_ "github.com/gobeaver/gcsfs/driver/memory"
)

func main() {
	backend := flag.String("backend", "gcs", `storage backend: "gcs" or "memory"`)
	flag.Parse()

	args := flag.Args()
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: gcsfsctl [-backend gcs|memory] <ls|stat|cat> <gs://bucket/key>")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	provider := gcsfs.NewProvider(*backend)
	cmd, uri := args[0], args[1]

	p, err := provider.GetPath(ctx, uri)
	if err != nil {
		fatal(err)
	}

	switch cmd {
	case "ls":
		runLS(ctx, provider, p)
	case "stat":
		runStat(ctx, provider, p)
	case "cat":
		runCat(ctx, p)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		os.Exit(2)
	}
}

func runLS(ctx context.Context, provider *gcsfs.Provider, dir gcsfs.Path) {
	stream, err := provider.NewDirectoryStream(ctx, dir, gcsfs.AcceptAll)
	if err != nil {
		fatal(err)
	}
	defer stream.Close()

	for {
		entry, ok, err := stream.Next(ctx)
		if err != nil {
			fatal(err)
		}
		if !ok {
			return
		}
		marker := ""
		if entry.IsDirectory() {
			marker = "/"
		}
		fmt.Printf("%s%s\n", entry.String(), marker)
	}
}

func runStat(ctx context.Context, provider *gcsfs.Provider, p gcsfs.Path) {
	attrs, err := provider.ReadAttributes(ctx, p)
	if err != nil {
		fatal(err)
	}
	fmt.Printf("kind: %s\n", attrs.Kind)
	fmt.Printf("size: %d\n", attrs.Size)
	if attrs.LastModifiedTime != nil {
		fmt.Printf("modified: %s\n", attrs.LastModifiedTime.Format(time.RFC3339))
	}
	fmt.Printf("fileKey: %s\n", attrs.FileKey)
}

func runCat(ctx context.Context, p gcsfs.Path) {
	fs := p.Filesystem()
	if fs == nil {
		fatal(gcsfs.ErrIllegalArgument)
	}
	r, err := fs.NewReadableByteChannel(ctx, p)
	if err != nil {
		fatal(err)
	}
	defer r.Close()

	if _, err := io.Copy(os.Stdout, r); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "gcsfsctl:", err)
	os.Exit(1)
}
