package config

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"
)

// DefaultWatchInterval is how often a [Watcher] polls its files.
const DefaultWatchInterval = 5 * time.Second

// Watcher reloads the config file while a debate runs and reports what the
// reload means for it. Besides the config file it watches the three prompt
// files the config names, so an edited prompt shows up as a restart-required
// change even though the config file itself is untouched.
//
// onChange only sees effective changes: a rewritten file that diffs equal to
// the previous config (comments, reordering, a value pinned by an override)
// is accepted silently.
type Watcher struct {
	path      string
	interval  time.Duration
	overrides func(*Config)
	onChange  func(ConfigDiff)

	mu    sync.Mutex
	cfg   *Config
	files snapshot

	done     chan struct{}
	stopOnce sync.Once
}

// snapshot fingerprints the watched files at one point in time.
type snapshot struct {
	// mtimes holds the modification time per watched path. Missing prompt
	// files are recorded with the zero time.
	mtimes map[string]time.Time

	config  [sha256.Size]byte
	prompts [sha256.Size]byte
}

// WatcherOption configures a [Watcher].
type WatcherOption func(*Watcher)

// WithInterval sets the polling interval. Default: [DefaultWatchInterval].
func WithInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithOverrides registers fn to patch every loaded config before it is
// validated and diffed. The CLI uses it to keep explicit flags winning over
// the file across reloads.
func WithOverrides(fn func(*Config)) WatcherOption {
	return func(w *Watcher) { w.overrides = fn }
}

// NewWatcher loads the config at path and starts polling it and its prompt
// files. onChange runs on the polling goroutine for every effective change.
func NewWatcher(path string, onChange func(ConfigDiff), opts ...WatcherOption) (*Watcher, error) {
	w := &Watcher{
		path:     path,
		interval: DefaultWatchInterval,
		onChange: onChange,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	cfg, snap, err := w.load()
	if err != nil {
		return nil, fmt.Errorf("config: watcher initial load: %w", err)
	}
	w.cfg, w.files = cfg, snap

	go w.poll()
	return w, nil
}

// Stop ends polling. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.done) })
}

func (w *Watcher) poll() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			w.check()
		}
	}
}

// check reloads the files when any of them was touched and reports the
// resulting diff.
func (w *Watcher) check() {
	w.mu.Lock()
	prev, last := w.cfg, w.files
	w.mu.Unlock()

	if !last.touched() {
		return
	}

	cfg, snap, err := w.load()
	if err != nil {
		slog.Warn("config reload rejected, keeping previous config", "path", w.path, "err", err)
		return
	}

	w.mu.Lock()
	w.cfg, w.files = cfg, snap
	w.mu.Unlock()

	if snap.config == last.config && snap.prompts == last.prompts {
		return
	}

	d := Diff(prev, cfg)
	if snap.prompts != last.prompts && samePromptFiles(prev.Debate, cfg.Debate) {
		d.requireRestart(restartPromptFiles)
	}
	if !d.Changed() {
		slog.Debug("config file rewritten without effective changes", "path", w.path)
		return
	}

	slog.Info("config reloaded", "path", w.path, "restart_required", d.RestartRequired)
	if w.onChange != nil {
		w.onChange(d)
	}
}

// load reads, patches and validates the config file and fingerprints it
// together with the prompt files it names.
func (w *Watcher) load() (*Config, snapshot, error) {
	info, err := os.Stat(w.path)
	if err != nil {
		return nil, snapshot{}, err
	}
	data, err := os.ReadFile(w.path)
	if err != nil {
		return nil, snapshot{}, err
	}

	cfg, err := LoadFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, snapshot{}, err
	}
	if w.overrides != nil {
		w.overrides(cfg)
		if err := Validate(cfg); err != nil {
			return nil, snapshot{}, err
		}
	}

	snap := snapshot{
		mtimes: map[string]time.Time{w.path: info.ModTime()},
		config: sha256.Sum256(data),
	}
	h := sha256.New()
	for _, p := range promptPaths(cfg.Debate) {
		snap.mtimes[p] = modTime(p)
		// A missing prompt reads as empty, matching ReadPromptFile.
		content, _ := os.ReadFile(p)
		fmt.Fprintf(h, "%d:", len(content))
		h.Write(content)
	}
	h.Sum(snap.prompts[:0])

	return cfg, snap, nil
}

// touched reports whether any watched file changed its modification time,
// appeared or disappeared since s was taken.
func (s snapshot) touched() bool {
	for p, mt := range s.mtimes {
		if !modTime(p).Equal(mt) {
			return true
		}
	}
	return false
}

func promptPaths(d DebateConfig) []string {
	return []string{d.MetaPromptFile, d.PerspectiveAFile, d.PerspectiveBFile}
}

// modTime returns the modification time of path, or the zero time when it
// cannot be stat'ed.
func modTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Debug("config watcher: cannot stat file", "path", path, "err", err)
		}
		return time.Time{}
	}
	return info.ModTime()
}
