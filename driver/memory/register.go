package memory

import (
	"context"

	"github.com/gobeaver/gcsfs"
)

func init() {
	gcsfs.RegisterStorageClientFactory("memory", func(context.Context, gcsfs.Credentials) (gcsfs.StorageClient, error) {
		return New(), nil
	})
}
