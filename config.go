package gcsfs

import (
	"os"

	"github.com/gobeaver/beaver-kit/config"
)

// Config holds the options recognized by NewFileSystem (spec §6). It can be
// built by hand or loaded from the environment with GetConfig, the same
// env-tag mechanism the teacher's own Config uses.
type Config struct {
	// Credentials is a path to a service-account key, or any equivalent
	// byte source the credential resolver understands.
	Credentials string `env:"GCSFS_CREDENTIALS"`

	// ProjectID is the backing project identifier.
	ProjectID string `env:"GCSFS_PROJECT_ID"`

	// Location is the bucket location used by a subsequent CreateDirectory
	// of a bucket root (e.g. "eu", "us").
	Location string `env:"GCSFS_LOCATION"`

	// StorageClass is the storage class used by the same
	// (e.g. "nearline", "coldline").
	StorageClass string `env:"GCSFS_STORAGE_CLASS"`
}

// GetConfig loads a Config from the GCSFS_* environment variables.
func GetConfig() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg, config.LoadOptions{Prefix: ""}); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Credentials is the outcome of credential resolution (§4.E): explicit
// config, then GOOGLE_APPLICATION_CREDENTIALS/GOOGLE_PROJECT_ID, then
// implicit/default environment credentials. It is exported so that
// driver packages (gcsfs/driver/gcs and friends) can accept it in the
// StorageClientFactory they register.
type Credentials struct {
	path      string // "" means "use implicit/default credentials"
	projectID string
}

// Path returns the credentials file path, or "" for implicit/default
// credentials.
func (c Credentials) Path() string { return c.path }

// ProjectID returns the backing project identifier.
func (c Credentials) ProjectID() string { return c.projectID }

// cacheKey identifies the memoized StorageClient for a given credential
// pair, so that two buckets configured with the same credentials share one
// underlying client the way the spec requires ("memoized per
// (credentials, projectId) pair").
func (c Credentials) cacheKey() string {
	return c.path + "\x00" + c.projectID
}

// resolveCredentials implements the precedence order from spec §4.E:
//  1. explicit credentials + projectId in cfg
//  2. GOOGLE_APPLICATION_CREDENTIALS + GOOGLE_PROJECT_ID environment
//  3. default/implicit credentials (both fields empty)
func resolveCredentials(cfg *Config) Credentials {
	if cfg != nil && cfg.Credentials != "" && cfg.ProjectID != "" {
		return Credentials{path: cfg.Credentials, projectID: cfg.ProjectID}
	}
	if creds, project := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"), os.Getenv("GOOGLE_PROJECT_ID"); creds != "" && project != "" {
		return Credentials{path: creds, projectID: project}
	}
	return Credentials{}
}
