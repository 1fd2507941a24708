// Package datastore is a JSON-file backed key-value store. Values live in
// memory as encoded JSON and are flushed to disk periodically and on Close.
package datastore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	ErrClosed      = errors.New("datastore is closed")
	ErrMemoryLimit = errors.New("datastore memory limit exceeded")
)

type Config struct {
	FilePath         string
	AutoSaveInterval time.Duration
	// MaxMemorySize bounds the encoded size of all values in bytes. 0 means unlimited.
	MaxMemorySize int64
	// BackupCount is how many timestamped copies of the previous file to keep.
	BackupCount int
	Logger      zerolog.Logger
}

func DefaultConfig(filePath string) *Config {
	return &Config{
		FilePath:         filePath,
		AutoSaveInterval: 10 * time.Second,
		MaxMemorySize:    100 * 1024 * 1024,
		BackupCount:      3,
		Logger:           log.With().Str("component", "datastore").Logger(),
	}
}

type DataStore struct {
	mu           sync.RWMutex
	data         map[string]json.RawMessage
	size         int64
	lastChecksum [sha256.Size]byte
	closed       bool

	cfg    *Config
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(filePath string) (*DataStore, error) {
	return NewWithConfig(DefaultConfig(filePath))
}

// NewWithConfig opens or creates the store file and starts autosaving.
func NewWithConfig(cfg *Config) (*DataStore, error) {
	if cfg == nil || cfg.FilePath == "" {
		return nil, fmt.Errorf("datastore: file path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
		return nil, fmt.Errorf("datastore: create directory: %w", err)
	}

	ds := &DataStore{data: make(map[string]json.RawMessage), cfg: cfg}
	if err := ds.load(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	ds.cancel = cancel
	if cfg.AutoSaveInterval > 0 {
		ds.wg.Add(1)
		go ds.autoSave(ctx)
	}
	return ds, nil
}

func (ds *DataStore) load() error {
	raw, err := os.ReadFile(ds.cfg.FilePath)
	if errors.Is(err, os.ErrNotExist) {
		return writeFileAtomic(ds.cfg.FilePath, []byte("{}"))
	}
	if err != nil {
		return fmt.Errorf("datastore: read %s: %w", ds.cfg.FilePath, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, &ds.data); err != nil {
		return fmt.Errorf("datastore: invalid JSON in %s: %w", ds.cfg.FilePath, err)
	}
	for _, v := range ds.data {
		ds.size += int64(len(v))
	}
	ds.lastChecksum = sha256.Sum256(raw)
	return nil
}

// Put stores v under key as JSON.
func (ds *DataStore) Put(key string, v any) error {
	encoded, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("datastore: encode %q: %w", key, err)
	}

	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.closed {
		return ErrClosed
	}
	size := ds.size - int64(len(ds.data[key])) + int64(len(encoded))
	if ds.cfg.MaxMemorySize > 0 && size > ds.cfg.MaxMemorySize {
		return ErrMemoryLimit
	}
	ds.data[key] = encoded
	ds.size = size
	return nil
}

// Get decodes the value under key into dst and reports whether it existed.
func (ds *DataStore) Get(key string, dst any) (bool, error) {
	ds.mu.RLock()
	raw, ok := ds.data[key]
	closed := ds.closed
	ds.mu.RUnlock()

	if closed {
		return false, ErrClosed
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return true, fmt.Errorf("datastore: decode %q: %w", key, err)
	}
	return true, nil
}

func (ds *DataStore) Delete(key string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if v, ok := ds.data[key]; ok {
		ds.size -= int64(len(v))
		delete(ds.data, key)
	}
}

// Keys returns all keys in sorted order.
func (ds *DataStore) Keys() []string {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	keys := make([]string, 0, len(ds.data))
	for k := range ds.data {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Save flushes the store to disk if it changed since the last save.
func (ds *DataStore) Save() error {
	ds.mu.RLock()
	closed := ds.closed
	ds.mu.RUnlock()
	if closed {
		return ErrClosed
	}
	return ds.save()
}

func (ds *DataStore) save() error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	encoded, err := json.MarshalIndent(ds.data, "", "  ")
	if err != nil {
		return fmt.Errorf("datastore: encode: %w", err)
	}
	sum := sha256.Sum256(encoded)
	if sum == ds.lastChecksum {
		return nil
	}

	if ds.cfg.BackupCount > 0 {
		if err := ds.backup(); err != nil {
			ds.cfg.Logger.Warn().Err(err).Msg("Failed to create backup")
		}
	}
	if err := writeFileAtomic(ds.cfg.FilePath, encoded); err != nil {
		return err
	}
	ds.lastChecksum = sum
	return nil
}

// Close stops autosaving and writes a final snapshot.
func (ds *DataStore) Close() error {
	ds.mu.Lock()
	if ds.closed {
		ds.mu.Unlock()
		return nil
	}
	ds.mu.Unlock()

	ds.cancel()
	ds.wg.Wait()
	err := ds.save()

	ds.mu.Lock()
	ds.closed = true
	ds.mu.Unlock()
	return err
}

func (ds *DataStore) autoSave(ctx context.Context) {
	defer ds.wg.Done()
	ticker := time.NewTicker(ds.cfg.AutoSaveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := ds.save(); err != nil {
				ds.cfg.Logger.Error().Err(err).Msg("Auto-save failed")
			}
		}
	}
}

func (ds *DataStore) backup() error {
	current, err := os.ReadFile(ds.cfg.FilePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	name := fmt.Sprintf("%s.backup.%s", ds.cfg.FilePath, time.Now().Format("20060102_150405.000"))
	if err := os.WriteFile(name, current, 0o644); err != nil {
		return err
	}

	// Timestamped names sort chronologically.
	backups, err := filepath.Glob(ds.cfg.FilePath + ".backup.*")
	if err != nil || len(backups) <= ds.cfg.BackupCount {
		return err
	}
	slices.Sort(backups)
	for _, old := range backups[:len(backups)-ds.cfg.BackupCount] {
		if err := os.Remove(old); err != nil {
			ds.cfg.Logger.Warn().Err(err).Str("file", old).Msg("Failed to remove old backup")
		}
	}
	return nil
}

// writeFileAtomic writes through a synced temp file and a rename.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("datastore: open temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("datastore: write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("datastore: sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("datastore: close temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("datastore: rename temp file: %w", err)
	}
	return nil
}

// Stats reports the key count and approximate encoded size.
func (ds *DataStore) Stats() (keys int, size int64) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return len(ds.data), ds.size
}
