package repo_ingester

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/zeebo/xxh3"
)

// CacheEntry is one cached item with the source-file metadata used for
// invalidation.
type CacheEntry struct {
	Data      interface{}
	Timestamp time.Time
	FileSize  int64
	ModTime   time.Time
}

// CacheStats tracks hit/miss counters for the run.
type CacheStats struct {
	TotalRequests int64
	CacheHits     int64
	CacheMisses   int64
	LastResetTime time.Time
	mutex         sync.RWMutex
}

// CacheManager caches ingested file contents and structure outlines on disk
// so repeated conversions of the same repository skip re-reading and
// re-parsing unchanged files.
type CacheManager struct {
	cacheDir string
	mutex    sync.RWMutex
	stats    *CacheStats
}

const (
	cacheMaxAge   = 7 * 24 * time.Hour
	cacheMaxFiles = 1000
)

// NewCacheManager creates a cache manager rooted at cacheDir, defaulting to
// .cache under the current working directory.
func NewCacheManager(cacheDir string) (*CacheManager, error) {
	gob.Register([]byte{})
	gob.Register([]string{})

	if cacheDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current working directory: %w", err)
		}
		cacheDir = filepath.Join(cwd, ".cache")
	}

	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	cacheManager := &CacheManager{
		cacheDir: cacheDir,
		stats: &CacheStats{
			LastResetTime: time.Now(),
		},
	}

	go cacheManager.cleanupExpired()

	return cacheManager, nil
}

func (cm *CacheManager) generateCacheKey(key string) string {
	return fmt.Sprintf("%016x.cache", xxh3.HashString(key))
}

func (cm *CacheManager) cachePath(cacheKey string) string {
	return filepath.Join(cm.cacheDir, cacheKey)
}

// isFileChanged reports whether the source file was modified since caching.
func isFileChanged(filePath string, entry *CacheEntry) bool {
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return true
	}
	return !fileInfo.ModTime().Equal(entry.ModTime) || fileInfo.Size() != entry.FileSize
}

func (cm *CacheManager) get(key string, sourcePath string) (interface{}, bool) {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	cachePath := cm.cachePath(cm.generateCacheKey(key))

	data, err := os.ReadFile(cachePath)
	if err != nil {
		return nil, false
	}

	var entry CacheEntry
	decoder := gob.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&entry); err != nil {
		return nil, false
	}

	if sourcePath != "" && isFileChanged(sourcePath, &entry) {
		os.Remove(cachePath)
		return nil, false
	}

	return entry.Data, true
}

func (cm *CacheManager) set(key string, sourcePath string, data interface{}) error {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	entry := CacheEntry{
		Data:      data,
		Timestamp: time.Now(),
	}

	if sourcePath != "" {
		fileInfo, err := os.Stat(sourcePath)
		if err != nil {
			return fmt.Errorf("failed to get file info: %w", err)
		}
		entry.FileSize = fileInfo.Size()
		entry.ModTime = fileInfo.ModTime()
	}

	var buffer bytes.Buffer
	encoder := gob.NewEncoder(&buffer)
	if err := encoder.Encode(entry); err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	cachePath := cm.cachePath(cm.generateCacheKey(key))
	if err := os.WriteFile(cachePath, buffer.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	return nil
}

// GetFileContentCache retrieves cached file content.
func (cm *CacheManager) GetFileContentCache(filePath string) ([]byte, bool) {
	data, found := cm.get(filePath, filePath)
	if !found {
		cm.recordCacheMiss()
		return nil, false
	}

	if content, ok := data.([]byte); ok {
		cm.recordCacheHit()
		return content, true
	}

	cm.recordCacheMiss()
	return nil, false
}

// SetFileContentCache stores file content in the cache.
func (cm *CacheManager) SetFileContentCache(filePath string, content []byte) error {
	return cm.set(filePath, filePath, content)
}

// GetOutlineCache retrieves cached structure outline elements for a file.
func (cm *CacheManager) GetOutlineCache(filePath string) ([]string, bool) {
	data, found := cm.get(filePath+".outline", filePath)
	if !found {
		cm.recordCacheMiss()
		return nil, false
	}

	if elements, ok := data.([]string); ok {
		cm.recordCacheHit()
		return elements, true
	}

	cm.recordCacheMiss()
	return nil, false
}

// SetOutlineCache stores structure outline elements for a file.
func (cm *CacheManager) SetOutlineCache(filePath string, elements []string) error {
	return cm.set(filePath+".outline", filePath, elements)
}

// ClearCache removes every cache entry.
func (cm *CacheManager) ClearCache() error {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	entries, err := os.ReadDir(cm.cacheDir)
	if err != nil {
		return fmt.Errorf("failed to read cache directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		os.Remove(filepath.Join(cm.cacheDir, entry.Name()))
	}

	return nil
}

// GetCacheStats returns storage statistics for the cache directory.
func (cm *CacheManager) GetCacheStats() (map[string]interface{}, error) {
	entries, err := os.ReadDir(cm.cacheDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	var totalSize int64
	var count int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if info, err := entry.Info(); err == nil {
			totalSize += info.Size()
			count++
		}
	}

	stats := make(map[string]interface{})
	stats["cache_files"] = count
	stats["total_size"] = totalSize
	stats["cache_dir"] = cm.cacheDir

	return stats, nil
}

// GetPerformanceStats returns hit/miss counters for the run.
func (cm *CacheManager) GetPerformanceStats() map[string]interface{} {
	cm.stats.mutex.RLock()
	defer cm.stats.mutex.RUnlock()

	hitRate := 0.0
	if cm.stats.TotalRequests > 0 {
		hitRate = float64(cm.stats.CacheHits) / float64(cm.stats.TotalRequests) * 100
	}

	return map[string]interface{}{
		"total_requests": cm.stats.TotalRequests,
		"cache_hits":     cm.stats.CacheHits,
		"cache_misses":   cm.stats.CacheMisses,
		"hit_rate":       hitRate,
		"last_reset":     cm.stats.LastResetTime.Format(time.RFC3339),
	}
}

func (cm *CacheManager) recordCacheHit() {
	cm.stats.mutex.Lock()
	defer cm.stats.mutex.Unlock()
	cm.stats.TotalRequests++
	cm.stats.CacheHits++
}

func (cm *CacheManager) recordCacheMiss() {
	cm.stats.mutex.Lock()
	defer cm.stats.mutex.Unlock()
	cm.stats.TotalRequests++
	cm.stats.CacheMisses++
}

// cleanupExpired drops stale entries and caps the entry count.
func (cm *CacheManager) cleanupExpired() {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	entries, err := os.ReadDir(cm.cacheDir)
	if err != nil {
		return
	}

	cutoff := time.Now().Add(-cacheMaxAge)
	removed := 0

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		cachePath := filepath.Join(cm.cacheDir, entry.Name())

		data, err := os.ReadFile(cachePath)
		if err != nil {
			continue
		}

		var cached CacheEntry
		decoder := gob.NewDecoder(bytes.NewReader(data))
		if err := decoder.Decode(&cached); err != nil {
			os.Remove(cachePath)
			removed++
			continue
		}

		if cached.Timestamp.Before(cutoff) {
			os.Remove(cachePath)
			removed++
		}
	}

	// Cap the total entry count, dropping oldest-named first is good
	// enough for a bounded scratch cache.
	if remaining := len(entries) - removed; remaining > cacheMaxFiles {
		excess := remaining - cacheMaxFiles
		for _, entry := range entries {
			if excess == 0 {
				break
			}
			if entry.IsDir() {
				continue
			}
			if os.Remove(filepath.Join(cm.cacheDir, entry.Name())) == nil {
				excess--
			}
		}
	}
}
