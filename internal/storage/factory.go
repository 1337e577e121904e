package storage

import (
	"strings"
)

// NewStorage builds the ObjectStorage selected by cfg.Type. An empty type is
// inferred from the endpoint host.
func NewStorage(cfg *S3Config) (ObjectStorage, error) {
	if cfg.Type == "" {
		cfg.Type = detectStorageType(cfg.Endpoint)
	}
	if cfg.Type == StorageTypeMemory {
		return NewMemoryStorage(cfg.PublicURL), nil
	}
	return NewS3Storage(cfg)
}

func detectStorageType(endpoint string) StorageType {
	endpoint = strings.ToLower(endpoint)
	switch {
	case endpoint == "":
		return StorageTypeMemory
	case strings.Contains(endpoint, "r2.cloudflarestorage.com"):
		return StorageTypeR2
	case strings.Contains(endpoint, "amazonaws.com"):
		return StorageTypeS3
	default:
		return StorageTypeS3Compatible
	}
}
