// Package blob re-exports the core asset blob abstractions and provides the
// environment-driven driver factory.
package blob

import (
	"context"
	"fmt"
	"os"

	"mapcore/internal/blob/core"
	blobfs "mapcore/internal/infra/blob/fs"
	blobmem "mapcore/internal/infra/blob/memory"
	blobs3 "mapcore/internal/infra/blob/s3"
)

type (
	// Driver identifies a blob backend driver.
	Driver = core.Driver
	// PutOptions configures a blob write.
	PutOptions = core.PutOptions
	// SignedURLOptions configures URL pre-signing.
	SignedURLOptions = core.SignedURLOptions
	// Info describes stored blob metadata.
	Info = core.Info
	// Store is the interface for blob storage backends.
	Store = core.Store
)

const (
	// DriverFilesystem is the local filesystem driver.
	DriverFilesystem = core.DriverFilesystem
	// DriverS3 is the S3-compatible driver.
	DriverS3 = core.DriverS3
	// DriverMemory is the in-memory test driver.
	DriverMemory = core.DriverMemory
)

// ErrUnsupported indicates an operation isn't supported by a driver.
var ErrUnsupported = core.ErrUnsupported

// AssetKey maps an asset id to its canonical blob key.
func AssetKey(assetID string) string { return "assets/" + assetID }

// Open selects a blob.Store implementation using environment variables.
//
//	MAPCORE_BLOB_DRIVER: fs|s3|memory (default fs)
//	MAPCORE_BLOB_FS_ROOT: directory root when driver=fs (default ./assetdata)
//	(S3 specific variables documented in the s3 driver package)
func Open(ctx context.Context) (Store, error) {
	driver := os.Getenv("MAPCORE_BLOB_DRIVER")
	if driver == "" {
		driver = string(DriverFilesystem)
	}
	switch Driver(driver) {
	case DriverFilesystem:
		return blobfs.New(os.Getenv("MAPCORE_BLOB_FS_ROOT"))
	case DriverS3:
		return blobs3.OpenFromEnv(ctx)
	case DriverMemory:
		return blobmem.New(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}
