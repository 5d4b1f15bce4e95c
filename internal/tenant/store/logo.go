package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"vowline/pkg/domain"
)

// DiskLogoStore writes uploaded logos to a local directory served under
// /static/logos. Object storage can replace this behind the same interface.
type DiskLogoStore struct {
	dir string
}

func NewDiskLogoStore(dir string) (*DiskLogoStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create logo dir: %w", err)
	}
	return &DiskLogoStore{dir: dir}, nil
}

func (s *DiskLogoStore) Save(ctx context.Context, tenantID domain.TenantID, contentType string, data []byte) (string, error) {
	name := tenantID.String() + extension(contentType)
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write logo: %w", err)
	}
	return "/static/logos/" + name, nil
}

func extension(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/svg+xml":
		return ".svg"
	}
	return ""
}
