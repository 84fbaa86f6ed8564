package storage

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/filevault/internal/server/config"
	"github.com/mitchellh/mapstructure"
)

// New builds the blob store named by kind ("filesystem" or "s3") from its
// raw option map.
func New(ctx context.Context, kind string, options map[string]any) (Store, error) {
	switch kind {
	case "filesystem":
		return newFSFromOptions(options)
	case "s3":
		return newS3FromOptions(ctx, options)
	default:
		return nil, fmt.Errorf("unknown blob store type: %q", kind)
	}
}

func newFSFromOptions(options map[string]any) (Store, error) {
	var fsCfg struct {
		Path string `mapstructure:"path"`
	}
	if err := mapstructure.Decode(options, &fsCfg); err != nil {
		return nil, fmt.Errorf("invalid filesystem config: %w", err)
	}
	return NewFSStore(fsCfg.Path)
}

func newS3FromOptions(ctx context.Context, options map[string]any) (Store, error) {
	var o S3Options
	if err := mapstructure.Decode(options, &o); err != nil {
		return nil, fmt.Errorf("invalid S3 config: %w", err)
	}
	if o.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket is required")
	}
	if o.Region == "" {
		return nil, fmt.Errorf("S3 region is required")
	}

	client, err := NewS3Client(ctx, o)
	if err != nil {
		return nil, err
	}
	return NewS3Store(client, o.Bucket, o.KeyPrefix), nil
}

// NewFromConfig builds the blob store selected by cfg.
func NewFromConfig(ctx context.Context, cfg config.BlobConfig) (Store, error) {
	return New(ctx, cfg.Type, cfg.Options())
}
