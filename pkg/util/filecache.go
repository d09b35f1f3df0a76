// FileCache gives the content scanner read access to template and script
// files through read-only memory maps.
//
// Content globs routinely match thousands of templates of which only a few
// change between scans. Mapping the files lets the OS page in only what the
// class extractor touches, and keeping the mappings between scans avoids
// reopening unchanged files. When mmap fails the cache falls back to
// os.ReadFile.
//
// Limits:
//   - MaxFiles caps open mappings (file descriptors)
//   - MaxMemoryMB caps mapped address space
//
// Entries are dropped by Invalidate (the scanner calls it when a file's
// size or mtime changed) and by Close. Both wait for WithData readers, so a
// mapping is never unmapped while it is being read.
package util

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/edsrzf/mmap-go"
)

// FileCache provides memory-mapped file access.
//
// Thread-safe: reads of cached entries share a read lock, loads and
// invalidation take the write lock.
type FileCache interface {
	// Get returns the mapped file, loading it on first access. Data is only
	// valid until Invalidate or Close; concurrent users should prefer
	// WithData.
	Get(filePath string) (*MappedFile, error)

	// WithData calls fn with the full contents of filePath, loading it on
	// first access. The mapping stays valid until fn returns; fn must not
	// retain the slice or call back into the cache.
	WithData(filePath string, fn func(data []byte)) error

	// Invalidate unmaps filePath so the next Get reloads it. It waits for
	// WithData callbacks in flight.
	Invalidate(filePath string)

	// Size returns number of currently cached files.
	Size() int

	// Stats returns current cache metrics.
	Stats() FileCacheStats

	// Close unmaps all files and releases resources.
	Close() error
}

// FileCacheConfig controls FileCache behavior.
type FileCacheConfig struct {
	// MaxFiles is the maximum number of cached files. Zero is unlimited.
	MaxFiles int

	// MaxMemoryMB is the maximum mapped address space in MB. Zero is
	// unlimited. This bounds virtual memory, not resident pages.
	MaxMemoryMB int

	// EnableMetrics turns on hit/miss accounting.
	EnableMetrics bool

	// Logger for warnings. If nil, uses slog.Default().
	Logger *slog.Logger
}

// DefaultFileCacheConfig returns limits comfortable for front-end projects
// with a few thousand templates.
func DefaultFileCacheConfig() *FileCacheConfig {
	return &FileCacheConfig{
		MaxFiles:      10000,
		MaxMemoryMB:   2048,
		EnableMetrics: true,
	}
}

// UnboundedFileCacheConfig returns config with no limits. Intended for tests.
func UnboundedFileCacheConfig() *FileCacheConfig {
	return &FileCacheConfig{
		EnableMetrics: true,
	}
}

// MappedFile represents a memory-mapped file.
type MappedFile struct {
	Path string

	// Data is the mapped region, nil for empty files.
	Data mmap.MMap

	// File is kept open for the lifetime of the mapping. Nil for fallback
	// entries.
	File *os.File

	Size     int64
	MappedAt time.Time

	fallback bool
}

// FileCacheStats tracks cache performance metrics.
type FileCacheStats struct {
	FilesLoaded   int64
	FilesCached   int
	CacheHits     int64
	CacheMisses   int64
	Invalidations int64
	MmapFailures  int64
	TotalMappedMB float64
}

// NewFileCache creates a new FileCache. A nil config uses
// DefaultFileCacheConfig.
func NewFileCache(config *FileCacheConfig) FileCache {
	if config == nil {
		config = DefaultFileCacheConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &fileCacheImpl{
		config: config,
		cache:  make(map[string]*MappedFile),
		logger: logger,
	}
}

type fileCacheImpl struct {
	config *FileCacheConfig
	logger *slog.Logger

	cache map[string]*MappedFile
	mu    sync.RWMutex

	stats   FileCacheStats
	statsMu sync.Mutex
}

func (fc *fileCacheImpl) Get(filePath string) (*MappedFile, error) {
	fc.mu.RLock()
	if mf, ok := fc.cache[filePath]; ok {
		fc.mu.RUnlock()
		fc.record(func(s *FileCacheStats) { s.CacheHits++ })
		return mf, nil
	}
	fc.mu.RUnlock()

	fc.mu.Lock()
	defer fc.mu.Unlock()

	// Another goroutine may have loaded it while we waited for the lock.
	if mf, ok := fc.cache[filePath]; ok {
		fc.record(func(s *FileCacheStats) { s.CacheHits++ })
		return mf, nil
	}

	fc.record(func(s *FileCacheStats) { s.CacheMisses++ })

	var fileSize int64
	if fc.config.MaxMemoryMB > 0 {
		stat, err := os.Stat(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to stat file %q: %w", filePath, err)
		}
		fileSize = stat.Size()
	}

	if err := fc.checkLimitsLocked(fileSize); err != nil {
		return nil, err
	}

	mf, err := fc.loadFile(filePath)
	if err != nil {
		return nil, err
	}

	fc.cache[filePath] = mf
	fc.record(func(s *FileCacheStats) { s.FilesLoaded++ })

	return mf, nil
}

// checkLimitsLocked must be called while holding mu.Lock.
func (fc *fileCacheImpl) checkLimitsLocked(newFileSize int64) error {
	if fc.config.MaxFiles > 0 && len(fc.cache) >= fc.config.MaxFiles {
		return fmt.Errorf("FileCache limit reached: %d files (limit: %d files)",
			len(fc.cache), fc.config.MaxFiles)
	}

	if fc.config.MaxMemoryMB > 0 && newFileSize > 0 {
		currentMB := fc.totalMappedMBLocked()
		newFileMB := float64(newFileSize) / (1024 * 1024)
		if currentMB+newFileMB >= float64(fc.config.MaxMemoryMB) {
			return fmt.Errorf("FileCache memory limit reached: %.2f MB + %.2f MB (limit: %d MB)",
				currentMB, newFileMB, fc.config.MaxMemoryMB)
		}
	}

	return nil
}

// loadFile must be called while holding mu.Lock.
func (fc *fileCacheImpl) loadFile(filePath string) (*MappedFile, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %q: %w", filePath, err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat file %q: %w", filePath, err)
	}

	// Zero-length files cannot be mapped.
	if stat.Size() == 0 {
		return &MappedFile{Path: filePath, File: file, MappedAt: time.Now()}, nil
	}

	data, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		fc.logger.Warn("mmap failed, using fallback",
			"file", filePath,
			"size", stat.Size(),
			"error", err)
		file.Close()

		raw, readErr := os.ReadFile(filePath)
		if readErr != nil {
			return nil, fmt.Errorf("mmap failed and fallback failed for %q: mmap error: %v, read error: %w",
				filePath, err, readErr)
		}
		fc.record(func(s *FileCacheStats) { s.MmapFailures++ })

		return &MappedFile{
			Path:     filePath,
			Data:     mmap.MMap(raw),
			Size:     int64(len(raw)),
			MappedAt: time.Now(),
			fallback: true,
		}, nil
	}

	return &MappedFile{
		Path:     filePath,
		Data:     data,
		File:     file,
		Size:     stat.Size(),
		MappedAt: time.Now(),
	}, nil
}

func (fc *fileCacheImpl) WithData(filePath string, fn func(data []byte)) error {
	loaded := false
	for {
		// Holding the read lock across fn pins the mapping: Invalidate and
		// Close need the write lock to unmap.
		fc.mu.RLock()
		if mf, ok := fc.cache[filePath]; ok {
			if !loaded {
				fc.record(func(s *FileCacheStats) { s.CacheHits++ })
			}
			fn(mf.Data)
			fc.mu.RUnlock()
			return nil
		}
		fc.mu.RUnlock()

		// Load under the write lock, then retry: the entry may be
		// invalidated again before the read lock is reacquired.
		if _, err := fc.Get(filePath); err != nil {
			return err
		}
		loaded = true
	}
}

func (fc *fileCacheImpl) Invalidate(filePath string) {
	fc.mu.Lock()
	mf, ok := fc.cache[filePath]
	if ok {
		delete(fc.cache, filePath)
	}
	fc.mu.Unlock()

	if !ok {
		return
	}
	if err := fc.release(mf); err != nil {
		fc.logger.Warn("failed to release file", "path", filePath, "error", err)
	}
	fc.record(func(s *FileCacheStats) { s.Invalidations++ })
}

func (fc *fileCacheImpl) release(mf *MappedFile) error {
	var errs []error
	if mf.Data != nil && !mf.fallback {
		if err := mf.Data.Unmap(); err != nil {
			errs = append(errs, fmt.Errorf("unmap %q: %w", mf.Path, err))
		}
	}
	if mf.File != nil {
		if err := mf.File.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %q: %w", mf.Path, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%v", errs)
	}
	return nil
}

func (fc *fileCacheImpl) Size() int {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	return len(fc.cache)
}

func (fc *fileCacheImpl) Stats() FileCacheStats {
	fc.mu.RLock()
	cached := len(fc.cache)
	mappedMB := fc.totalMappedMBLocked()
	fc.mu.RUnlock()

	fc.statsMu.Lock()
	defer fc.statsMu.Unlock()

	stats := fc.stats
	stats.FilesCached = cached
	stats.TotalMappedMB = mappedMB
	return stats
}

// totalMappedMBLocked must be called while holding mu.
func (fc *fileCacheImpl) totalMappedMBLocked() float64 {
	var total int64
	for _, mf := range fc.cache {
		total += mf.Size
	}
	return float64(total) / (1024 * 1024)
}

func (fc *fileCacheImpl) Close() error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	var errs []error
	for path, mf := range fc.cache {
		if err := fc.release(mf); err != nil {
			fc.logger.Warn("failed to release file", "path", path, "error", err)
			errs = append(errs, err)
		}
	}
	fc.cache = make(map[string]*MappedFile)

	fc.logger.Debug("FileCache closed",
		"files_loaded", fc.stats.FilesLoaded,
		"cache_hits", fc.stats.CacheHits,
		"cache_misses", fc.stats.CacheMisses,
		"mmap_failures", fc.stats.MmapFailures)

	if len(errs) > 0 {
		return fmt.Errorf("errors during close: %v", errs)
	}
	return nil
}

func (fc *fileCacheImpl) record(update func(*FileCacheStats)) {
	if !fc.config.EnableMetrics {
		return
	}
	fc.statsMu.Lock()
	update(&fc.stats)
	fc.statsMu.Unlock()
}
