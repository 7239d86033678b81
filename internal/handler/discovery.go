package handler

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
)

// Options configure handler discovery.
type Options struct {
	// Dir holds general handlers.
	Dir string
	// NamedSubdir is the directory inside Dir holding named handlers.
	NamedSubdir string
	// IgnorePrefix excludes files whose name starts with it.
	IgnorePrefix string
	// Formats compile internal handlers. Without formats no internal handler loads.
	Formats *FormatRegistry
	// EventTypes are the known event-type names general handlers bind to.
	EventTypes []string
	Logger     *slog.Logger
}

const (
	DefaultNamedSubdir  = "NamedHandlers"
	DefaultIgnorePrefix = "Ignore-"
)

func (o Options) withDefaults() Options {
	if o.NamedSubdir == "" {
		o.NamedSubdir = DefaultNamedSubdir
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	o.Logger = o.Logger.With("component", "handlers")
	return o
}

// NamedDir returns the path of the named handler directory.
func (o Options) NamedDir() string {
	sub := o.NamedSubdir
	if sub == "" {
		sub = DefaultNamedSubdir
	}
	return filepath.Join(o.Dir, sub)
}

// Load runs discovery over the general and named handler directories and
// returns a new snapshot with generation zero. Files that cannot be loaded
// are logged, recorded in Problems and skipped; Load only fails when ctx is
// cancelled.
func Load(ctx context.Context, opts Options) (*Snapshot, error) {
	opts = opts.withDefaults()
	l := &loader{opts: opts, log: opts.Logger}

	snap := emptySnapshot()
	snap.id = newSnapshotID()
	snap.dir = opts.Dir
	snap.namedDir = opts.NamedDir()

	err := l.scan(ctx, opts.Dir, General, func(d Descriptor) {
		snap.general[d.EventType] = append(snap.general[d.EventType], d)
	})
	if err != nil {
		return nil, err
	}
	err = l.scan(ctx, snap.namedDir, Named, func(d Descriptor) {
		snap.named[d.NamedID] = d
	})
	if err != nil {
		return nil, err
	}

	snap.loadedAt = time.Now()
	snap.problems = l.problems.ErrorOrNil()

	if snap.Len() == 0 {
		l.log.Info("No handlers loaded", "dir", opts.Dir, "snapshot", snap.id, "formats", opts.Formats.Names())
	} else {
		l.log.Info("Handlers loaded",
			"snapshot", snap.id,
			"general", snap.Len()-len(snap.named),
			"named", len(snap.named),
			"skipped", len(snap.ProblemMessages()),
			"formats", opts.Formats.Names(),
		)
	}
	return snap, nil
}

type loader struct {
	opts     Options
	log      *slog.Logger
	problems *multierror.Error
}

func (l *loader) skip(path string, err error) {
	l.log.Warn("Skipping handler", "path", path, "error", err)
	l.problems = multierror.Append(l.problems, &LoadError{Path: path, Err: err})
}

// scan loads the regular files directly inside dir, in name order.
func (l *loader) scan(ctx context.Context, dir string, binding Binding, add func(Descriptor)) error {
	if dir == "" {
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if binding == General {
				l.skip(dir, fmt.Errorf("handler directory does not exist"))
			} else {
				l.log.Debug("No named handler directory", "dir", dir)
			}
			return nil
		}
		l.skip(dir, err)
		return nil
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		name := entry.Name()
		path := filepath.Join(dir, name)

		if l.opts.IgnorePrefix != "" && strings.HasPrefix(name, l.opts.IgnorePrefix) {
			l.log.Debug("Ignoring handler file", "path", path)
			continue
		}
		if entry.IsDir() {
			continue
		}

		d := Descriptor{Identity: path, Name: name, Binding: binding}
		if binding == General {
			eventType, ok := InferEventType(name, l.opts.EventTypes)
			if !ok {
				l.log.Debug("No event type matches handler file name", "path", path)
				continue
			}
			d.EventType = eventType
		} else {
			d.NamedID = name
		}

		if err := l.classify(ctx, path, &d); err != nil {
			l.skip(path, err)
			continue
		}

		l.log.Info("Loaded handler",
			"path", path,
			"binding", d.Binding,
			"key", d.Key(),
			"origin", d.Origin,
			"format", d.Format,
		)
		add(d)
	}
	return nil
}

// classify sets the origin of d. Executables are external and never read;
// other files are compiled by the format whose marker they carry.
func (l *loader) classify(ctx context.Context, path string, d *Descriptor) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("not a regular file")
	}

	if info.Mode().Perm()&0o111 != 0 {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		f.Close()
		d.Origin = External
		return nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	format, ok := l.opts.Formats.Match(content)
	if !ok {
		return fmt.Errorf("not executable and no handler format recognizes its content")
	}

	call, err := compile(ctx, format, path, content)
	if err != nil {
		return fmt.Errorf("%s format: %w", format.Name(), err)
	}
	d.Origin = Internal
	d.Format = format.Name()
	d.Call = call
	return nil
}

// compile runs one Format.Compile with a register callback scoped to the
// call. A panic inside the format is converted into an error.
func compile(ctx context.Context, format Format, path string, content []byte) (call Callable, err error) {
	var (
		mu    sync.Mutex
		done  bool
		calls []Callable
	)
	register := func(c Callable) {
		mu.Lock()
		defer mu.Unlock()
		if !done {
			calls = append(calls, c)
		}
	}
	defer func() {
		mu.Lock()
		done = true
		mu.Unlock()
		if r := recover(); r != nil {
			call, err = nil, fmt.Errorf("panic while loading: %v", r)
		}
	}()

	if err := format.Compile(ctx, path, content, register); err != nil {
		return nil, err
	}

	mu.Lock()
	defer mu.Unlock()
	switch {
	case len(calls) == 0:
		return nil, fmt.Errorf("file did not register a handler")
	case len(calls) > 1:
		return nil, fmt.Errorf("file registered %d handlers, expected one", len(calls))
	case calls[0] == nil:
		return nil, fmt.Errorf("file registered a nil handler")
	}
	return calls[0], nil
}

func newSnapshotID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
