package repository

import "os"

// FileOption applies a configuration option to the FileStore.
type FileOption func(*FileStore)

// WithFileMode sets the permission bits of the written document.
func WithFileMode(mode os.FileMode) FileOption {
	return func(s *FileStore) {
		if mode != 0 {
			s.mode = mode
		}
	}
}

// SQLiteOption applies a configuration option to the SQLiteStore.
type SQLiteOption func(*SQLiteStore)

// WithDocumentName selects the row holding the document, so several boards
// can share one database.
func WithDocumentName(name string) SQLiteOption {
	return func(s *SQLiteStore) {
		if name != "" {
			s.name = name
		}
	}
}

// RedisOption applies a configuration option to the RedisStore.
type RedisOption func(*RedisStore)

// WithRedisKey sets the key holding the document.
func WithRedisKey(key string) RedisOption {
	return func(s *RedisStore) {
		if key != "" {
			s.key = key
		}
	}
}
