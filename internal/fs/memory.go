package fs

import (
	"sort"
	"strings"
	"sync"
	"time"
)

type memEntry struct {
	data       []byte
	createTime time.Time
	updateTime time.Time
}

// Memory is a fully in-memory FileSystem, used for tests and for embedding
// the engine without a real disk (e.g. a WASM or in-browser client, per the
// original crate's mock file_system). Safe for concurrent use.
type Memory struct {
	mu    sync.RWMutex
	files map[string]*memEntry
}

// NewMemory returns an empty in-memory FileSystem.
func NewMemory() *Memory {
	return &Memory{files: make(map[string]*memEntry)}
}

func (m *Memory) Write(path string, data []byte) error {
	path = NormalizePath(path)
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	cp := append([]byte(nil), data...)
	if existing, ok := m.files[path]; ok {
		existing.data = cp
		existing.updateTime = now
		return nil
	}
	m.files[path] = &memEntry{data: cp, createTime: now, updateTime: now}
	return nil
}

func (m *Memory) Read(path string) ([]byte, error) {
	path = NormalizePath(path)
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.files[path]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), entry.data...), nil
}

func (m *Memory) TryRead(path string) ([]byte, error) {
	return TryRead(m, path)
}

func (m *Memory) Delete(path string) error {
	path = NormalizePath(path)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, path)
	return nil
}

func (m *Memory) AllFiles(prefix string) ([]string, error) {
	prefix = NormalizePath(prefix)
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []string
	for path := range m.files {
		if prefix == "" || path == prefix || strings.HasPrefix(path, prefix+"/") {
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *Memory) Stat(path string) (Info, error) {
	path = NormalizePath(path)
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.files[path]
	if !ok {
		return Info{}, ErrNotFound
	}
	return Info{
		CreateTime: entry.createTime,
		UpdateTime: entry.updateTime,
		Size:       int64(len(entry.data)),
		Kind:       KindFile,
	}, nil
}
