// Package gcsfs provides a java.nio.file-style path and filesystem
// abstraction over a flat, GCS-shaped object store: buckets are roots,
// object keys are hierarchical paths, and "directories" are zero-byte
// marker blobs whose key ends in "/". Nothing in Path performs I/O — all
// I/O goes through a Filesystem, which is bound to one bucket and one
// StorageClient.
//
// # Backends
//
// The real backend lives in its own module so callers only pull the
// dependencies they need:
//
//   - Google Cloud Storage (github.com/gobeaver/gcsfs/driver/gcs)
//   - In-memory, for tests (github.com/gobeaver/gcsfs/driver/memory)
//
// A backend registers itself from an init() func with
// RegisterStorageClientFactory; importing the driver package for its
// side effect is enough to make NewProvider("gcs") resolve.
//
// # Basic usage
//
//	import (
//	    "github.com/gobeaver/gcsfs"
//	    _ "github.com/gobeaver/gcsfs/driver/gcs"
//	)
//
//	ctx := context.Background()
//	provider := gcsfs.NewProvider("gcs")
//
//	p, err := provider.GetPath(ctx, "gs://my-bucket/reports/2026/q1.csv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	r, err := provider.NewByteChannel(ctx, p, gcsfs.OptRead)
//	// ...
//	defer r.Close()
//
// # Path algebra
//
// Path supports the same operand algebra as java.nio.file.Path: Resolve,
// Relativize, Normalize, StartsWith/EndsWith, an Iterator over segments,
// and a lossless URI form via ToURI/ParseURI.
//
// # Directory listings
//
// NewDirectoryStream yields only the immediate children of a directory
// (or, for the global root gs:///, the visible buckets), filtered by an
// optional [Filter] — GlobFilter builds one from a shell-style pattern.
//
// # Error handling
//
// Every operation returns a *PathError wrapping one of the sentinel
// errors in errors.go. Use the Is* helpers (IsNoSuchFile, IsFileExists,
// IsDirectoryNotEmpty, IsAccessDenied, IsUnsupported) rather than
// comparing errors directly.
//
// # Configuration
//
// Config can be built by hand or loaded from GCSFS_* environment
// variables with GetConfig. Credentials resolve in order: explicit
// Config fields, then GOOGLE_APPLICATION_CREDENTIALS/GOOGLE_PROJECT_ID,
// then implicit/default credentials.
package gcsfs
