// Package secrets cung cấp interface key -> secret cho Platform Registry.
// Registry chỉ lưu key trỏ vào store, không bao giờ lưu secret thô inline.
package secrets

import (
	"context"
	"os"
	"strings"
	"sync"

	"audience_hub/internal/common"
)

// Store là interface set/get cho secrets
type Store interface {
	Set(ctx context.Context, key string, value string) error
	Get(ctx context.Context, key string) (string, error)
}

// EnvStore đọc secret từ environment variables với prefix cố định.
// Key được chuẩn hóa: "fb/token" -> SECRET_FB_TOKEN.
type EnvStore struct {
	Prefix string
}

// NewEnvStore tạo EnvStore với prefix mặc định SECRET_
func NewEnvStore() *EnvStore {
	return &EnvStore{Prefix: "SECRET_"}
}

func (s *EnvStore) envName(key string) string {
	name := strings.ToUpper(key)
	name = strings.NewReplacer("/", "_", "-", "_", ".", "_").Replace(name)
	return s.Prefix + name
}

// Set không được hỗ trợ trên EnvStore (secrets do môi trường deploy quản lý)
func (s *EnvStore) Set(ctx context.Context, key string, value string) error {
	return common.ErrInvalidOperation
}

// Get đọc secret từ environment variable tương ứng
func (s *EnvStore) Get(ctx context.Context, key string) (string, error) {
	value := os.Getenv(s.envName(key))
	if value == "" {
		return "", common.ErrNotFound
	}
	return value, nil
}

// MemoryStore là store in-memory thread-safe, dùng cho test và development
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore tạo MemoryStore rỗng
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Set(ctx context.Context, key string, value string) error {
	if key == "" {
		return common.ErrRequiredField
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	if !ok {
		return "", common.ErrNotFound
	}
	return value, nil
}
