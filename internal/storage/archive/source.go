// internal/storage/archive/source.go
package archive

import (
	"context"
	"fmt"
	"strings"
)

// Source is a read-only view over archived price files
type Source interface {
	// Read returns the object stored at path
	Read(ctx context.Context, path string) ([]byte, error)

	// List returns all paths under prefix, relative to the source root
	List(ctx context.Context, prefix string) ([]string, error)

	// Exists reports whether path is present
	Exists(ctx context.Context, path string) (bool, error)

	// Location describes the source for log output
	Location() string
}

// Backend kinds accepted by Open
const (
	KindLocalFS = "localfs"
	KindS3      = "s3"
)

// Config selects and configures a Source backend
type Config struct {
	Kind string
	Path string // localfs root
	S3   S3Config
}

// Open builds the Source named by cfg.Kind
func Open(cfg Config) (Source, error) {
	switch strings.ToLower(cfg.Kind) {
	case KindLocalFS, "local", "":
		return NewLocalFS(cfg.Path)
	case KindS3:
		return NewS3(cfg.S3)
	default:
		return nil, fmt.Errorf("unknown archive backend %q", cfg.Kind)
	}
}
