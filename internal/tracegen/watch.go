package tracegen

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/tools/go/packages"
)

// Result is the outcome of one watch-triggered generation run.
type Result struct {
	Code string
	Err  error
}

// Watcher re-runs generation whenever a Go file in one of the watched
// directories changes.
type Watcher struct {
	w         *fsnotify.Watcher
	opts      GenOptions
	dest      string
	resC      chan Result
	done      chan struct{}
	closeOnce sync.Once
}

// NewWatcher starts watching dirs and regenerating with opts. Events for
// the generated file itself are ignored, so writing the output does not
// retrigger the watcher.
func NewWatcher(opts GenOptions, dirs []string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	for _, d := range dirs {
		if err := w.Add(d); err != nil {
			w.Close()
			return nil, fmt.Errorf("watch %s: %w", d, err)
		}
	}
	dest, err := filepath.Abs(opts.Destination)
	if err != nil {
		dest = opts.Destination
	}
	wa := &Watcher{
		w:    w,
		opts: opts,
		dest: dest,
		resC: make(chan Result, 16),
		done: make(chan struct{}),
	}
	go wa.loop()
	return wa, nil
}

func (wa *Watcher) loop() {
	defer close(wa.resC)
	for {
		select {
		case ev, ok := <-wa.w.Events:
			if !ok {
				return
			}
			if !wa.relevant(ev) {
				continue
			}
			code, err := Generate(wa.opts)
			if !wa.deliver(Result{Code: code, Err: err}) {
				return
			}
		case err, ok := <-wa.w.Errors:
			if !ok {
				return
			}
			if !wa.deliver(Result{Err: fmt.Errorf("watch: %w", err)}) {
				return
			}
		case <-wa.done:
			return
		}
	}
}

// deliver sends res unless the watcher is closed, so a consumer that stops
// draining Results never strands the loop on a full channel.
func (wa *Watcher) deliver(res Result) bool {
	select {
	case wa.resC <- res:
		return true
	case <-wa.done:
		return false
	}
}

// relevant filters for Go source changes that are not the generated file.
func (wa *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if !strings.HasSuffix(ev.Name, ".go") {
		return false
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		abs = ev.Name
	}
	return abs != wa.dest
}

// Results delivers one Result per triggered regeneration. The channel is
// closed when the watcher is.
func (wa *Watcher) Results() <-chan Result { return wa.resC }

// Close stops watching and unblocks the regeneration loop even when
// Results is no longer being drained.
func (wa *Watcher) Close() error {
	wa.closeOnce.Do(func() { close(wa.done) })
	return wa.w.Close()
}

// SourceDirs resolves source patterns to the directories holding their Go
// files, for use as watch roots.
func SourceDirs(opts GenOptions) ([]string, error) {
	patterns := opts.SourcePatterns
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles,
		Dir:  opts.Dir,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("resolve source dirs: %w", err)
	}
	seen := map[string]bool{}
	var dirs []string
	for _, p := range pkgs {
		for _, f := range p.GoFiles {
			d := filepath.Dir(f)
			if !seen[d] {
				seen[d] = true
				dirs = append(dirs, d)
			}
		}
	}
	return dirs, nil
}
