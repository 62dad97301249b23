package blob

import (
	"context"
	"fmt"
)

// Options selects and configures a blob driver.
type Options struct {
	Driver    Driver
	Root      string // fs: base directory
	Bucket    string // s3
	Region    string // s3
	Endpoint  string // s3: custom endpoint (MinIO)
	PathStyle bool   // s3
}

// Open constructs a blob Store from Options. An empty driver defaults to fs.
func Open(ctx context.Context, opts Options) (Store, error) {
	driver := opts.Driver
	if driver == "" {
		driver = DriverFilesystem
	}
	switch driver {
	case DriverFilesystem:
		root := opts.Root
		if root == "" {
			root = "blobs"
		}
		return NewFilesystem(root)
	case DriverMemory:
		return NewMemory(), nil
	case DriverS3:
		return NewS3(ctx, S3Config{
			Region:    opts.Region,
			Bucket:    opts.Bucket,
			Endpoint:  opts.Endpoint,
			PathStyle: opts.PathStyle,
		})
	default:
		return nil, fmt.Errorf("unknown blob driver %q", driver)
	}
}
