package content

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gnana997/uitheme/pkg/theme"
	"github.com/gnana997/uitheme/pkg/util"
)

// ScannerConfig configures a Scanner.
type ScannerConfig struct {
	// Workers is the number of scan goroutines. Zero selects
	// util.GetOptimalPoolSize.
	Workers int

	// CacheSize is the number of files whose extracted candidates are kept
	// between scans.
	CacheSize int

	// FileCache supplies file contents. When nil the scanner creates and
	// owns an mmap cache.
	FileCache util.FileCache

	Logger *slog.Logger
}

// DefaultScannerConfig returns the default configuration.
func DefaultScannerConfig() ScannerConfig {
	return ScannerConfig{CacheSize: 4096}
}

// fileEntry is the cached scan of one file, valid while size and mtime are
// unchanged.
type fileEntry struct {
	size    int64
	modTime time.Time
	counts  map[string]int
}

// Scanner reports token usage across a project's content files. Scans may
// run concurrently; per-file results are cached between scans.
type Scanner struct {
	workers   int
	files     util.FileCache
	ownsFiles bool
	entries   *lru.Cache[string, *fileEntry]
	logger    *slog.Logger

	cacheHits atomic.Int64
}

// NewScanner creates a Scanner.
func NewScanner(config ScannerConfig) (*Scanner, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if config.CacheSize <= 0 {
		config.CacheSize = DefaultScannerConfig().CacheSize
	}

	s := &Scanner{
		workers: util.GetOptimalPoolSizeWithOverride(config.Workers),
		files:   config.FileCache,
		logger:  logger,
	}
	if s.files == nil {
		fcConfig := util.DefaultFileCacheConfig()
		fcConfig.Logger = logger
		s.files = util.NewFileCache(fcConfig)
		s.ownsFiles = true
	}

	entries, err := lru.NewWithEvict(config.CacheSize, func(path string, _ *fileEntry) {
		// The candidates are all we keep; release the mapping with them.
		s.files.Invalidate(path)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create scan cache: %w", err)
	}
	s.entries = entries

	return s, nil
}

// Close releases the file cache if the scanner created it.
func (s *Scanner) Close() error {
	s.logger.Debug("scanner closed", "cache_hits", s.CacheHits())
	s.entries.Purge()
	if s.ownsFiles {
		return s.files.Close()
	}
	return nil
}

// Scan expands cfg's content globs under root and counts token usage.
func (s *Scanner) Scan(ctx context.Context, root string, cfg *theme.ThemeConfig) (*Report, error) {
	start := time.Now()

	files, err := Expand(root, cfg.ContentGlobs())
	if err != nil {
		return nil, err
	}

	s.logger.Debug("content files discovered", "root", root, "files", len(files))

	collected := make(map[string]map[string]int, len(files))
	var fileErrors []FileError
	cached := 0

	if len(files) > 0 {
		pool := newWorkerPool(ctx, s.workers, s.scanFile, s.logger)
		pool.Start()
		defer pool.Stop()

		// Start collecting before submitting so a full results channel
		// cannot block submission.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for remaining := len(files); remaining > 0; remaining-- {
				select {
				case <-ctx.Done():
					return
				case r := <-pool.Results():
					collected[r.path] = r.counts
					if r.cached {
						cached++
					}
				case fe := <-pool.Errors():
					s.logger.Warn("content file scan failed", "file", fe.Path, "error", fe.Message)
					fileErrors = append(fileErrors, fe)
				}
			}
		}()

		for i, f := range files {
			if err := pool.Submit(fileJob{path: f, jobID: i}); err != nil {
				break
			}
		}
		pool.FinishSubmitting()
		<-done
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("content scan cancelled: %w", err)
	}

	report := buildReport(cfg, root, files, collected)
	report.FilesFailed = len(fileErrors)
	report.Errors = fileErrors
	report.CacheHits = cached
	report.Duration = time.Since(start)

	s.logger.Info("content scan complete",
		"files", report.FilesScanned,
		"failed", report.FilesFailed,
		"cache_hits", cached,
		"colors_used", len(report.Colors),
		"colors_unused", len(report.UnusedColors),
		"duration_ms", report.Duration.Milliseconds())

	return report, nil
}

func (s *Scanner) scanFile(path string) (fileResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return fileResult{}, fmt.Errorf("failed to stat file: %w", err)
	}

	if e, ok := s.entries.Get(path); ok {
		if e.size == info.Size() && e.modTime.Equal(info.ModTime()) {
			s.cacheHits.Add(1)
			return fileResult{path: path, counts: e.counts, cached: true}, nil
		}
		// Stale mapping: the file changed on disk.
		s.files.Invalidate(path)
	}

	counts := make(map[string]int)
	if err := s.files.WithData(path, func(data []byte) {
		extractCandidates(data, counts)
	}); err != nil {
		return fileResult{}, err
	}

	// Added after WithData returns: an eviction invalidates the mapping and
	// must not wait on this goroutine's own read lock.
	s.entries.Add(path, &fileEntry{size: info.Size(), modTime: info.ModTime(), counts: counts})
	return fileResult{path: path, counts: counts}, nil
}

// CacheHits returns how many file scans were served from the cache since
// the scanner was created.
func (s *Scanner) CacheHits() int64 {
	return s.cacheHits.Load()
}

func buildReport(cfg *theme.ThemeConfig, root string, files []string, collected map[string]map[string]int) *Report {
	m := newMatcher(cfg)

	colors := make(map[string]*TokenUsage)
	fonts := make(map[string]*TokenUsage)
	unknown := make(map[string]*TokenUsage)

	record := func(set map[string]*TokenUsage, key, file string, n int) {
		u, ok := set[key]
		if !ok {
			u = &TokenUsage{Token: key}
			set[key] = u
		}
		u.Count += n
		if len(u.Files) == 0 || u.Files[len(u.Files)-1] != file {
			u.Files = append(u.Files, file)
		}
	}

	// files is sorted; iterating it keeps every Files list sorted.
	for _, file := range files {
		counts, ok := collected[file]
		if !ok {
			continue
		}
		for cand, n := range counts {
			switch kind, key := m.match(cand); kind {
			case matchColor:
				record(colors, key, file, n)
			case matchFont:
				record(fonts, key, file, n)
			case matchUnknown:
				record(unknown, key, file, n)
			}
		}
	}

	report := &Report{Root: root, FilesScanned: len(collected)}

	for _, tok := range cfg.Colors() {
		if u, ok := colors[tok.Path]; ok {
			u.ClassName = tok.ClassName
			report.Colors = append(report.Colors, *u)
		} else {
			report.UnusedColors = append(report.UnusedColors, tok.Path)
		}
	}
	for _, role := range cfg.FontRoles() {
		if u, ok := fonts[role]; ok {
			u.ClassName = "font-" + role
			report.Fonts = append(report.Fonts, *u)
		} else {
			report.UnusedFonts = append(report.UnusedFonts, role)
		}
	}

	keys := make([]string, 0, len(unknown))
	for k := range unknown {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		u := unknown[k]
		u.ClassName = k
		report.Unknown = append(report.Unknown, *u)
	}

	return report
}
