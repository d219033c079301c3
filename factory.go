package gcsfs

import (
	"context"
	"fmt"
	"sync"
)

// StorageClientFactory builds a StorageClient from resolved credentials.
// The real backend (gcsfs/driver/gcs) registers itself under the name
// "gcs" from an init() func, the same way the teacher's driver packages
// call RegisterDriver; the in-memory test backend (gcsfs/driver/memory)
// registers under "memory".
type StorageClientFactory func(ctx context.Context, creds Credentials) (StorageClient, error)

var (
	clientFactories = make(map[string]StorageClientFactory)
	factoryMutex     sync.RWMutex
)

// RegisterStorageClientFactory registers a backend under name. Re-registering
// the same name overwrites the previous factory, which is convenient for
// tests that swap in a fake.
func RegisterStorageClientFactory(name string, factory StorageClientFactory) {
	factoryMutex.Lock()
	defer factoryMutex.Unlock()
	clientFactories[name] = factory
}

// createStorageClient looks up the named backend and invokes its factory.
func createStorageClient(ctx context.Context, name string, creds Credentials) (StorageClient, error) {
	factoryMutex.RLock()
	factory, ok := clientFactories[name]
	factoryMutex.RUnlock()

	if !ok {
		return nil, fmt.Errorf("gcsfs: backend %q not registered (forgot a blank import of its driver package?)", name)
	}
	return factory(ctx, creds)
}
