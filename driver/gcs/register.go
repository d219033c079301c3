package gcs

import (
	"context"

	"cloud.google.com/go/storage"
	"github.com/gobeaver/gcsfs"
	"google.golang.org/api/option"
)

func init() {
	gcsfs.RegisterStorageClientFactory("gcs", func(ctx context.Context, creds gcsfs.Credentials) (gcsfs.StorageClient, error) {
		var opts []option.ClientOption
		if creds.Path() != "" {
			opts = append(opts, option.WithCredentialsFile(creds.Path()))
		}
		client, err := storage.NewClient(ctx, opts...)
		if err != nil {
			return nil, err
		}
		return New(client, creds.ProjectID()), nil
	})
}
