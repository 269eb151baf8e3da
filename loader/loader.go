package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"

	fw "github.com/collmot/flockwave-spec"
	"github.com/collmot/flockwave-spec/cache"
	"github.com/collmot/flockwave-spec/pkg/logger"
	"github.com/collmot/flockwave-spec/specs"
)

// Loader reads JSON documents from a file system, parsing each resource at
// most once.
type Loader struct {
	fsys    fs.FS
	metrics *fw.Metrics

	docs  *cache.Func1[string, any]
	paths *cache.Func0[[]string]
}

// New creates a Loader over the schema bundle selected by opts: the file
// system given with fw.WithFS, or the embedded bundle of the configured
// protocol version.
func New(opts ...fw.Option) (*Loader, error) {
	o := fw.Apply(opts...)

	fsys := o.FS
	if fsys == nil {
		var err error
		if fsys, err = specs.FS(o.Version); err != nil {
			return nil, err
		}
	}
	return newLoader(fsys, o), nil
}

// NewFromFS creates a Loader reading resources from fsys.
func NewFromFS(fsys fs.FS, opts ...fw.Option) *Loader {
	return newLoader(fsys, fw.Apply(opts...))
}

func newLoader(fsys fs.FS, o *fw.Options) *Loader {
	l := &Loader{fsys: fsys, metrics: o.Metrics}

	var observe func(bool)
	if o.Metrics != nil {
		observe = o.Metrics.RecordCache
	}
	l.docs = cache.Memoize1(l.read, cache.WithObserver[string, any](observe))
	l.paths = cache.Memoize0(l.list)
	return l
}

// Load returns the parsed document stored at path.
//
// It fails with fw.ErrResourceNotFound if there is no such resource and
// with fw.ErrMalformedDocument if the resource is not a single JSON value.
func (l *Loader) Load(path string) (any, error) {
	return l.docs.Call(path)
}

// Paths returns the sorted paths of every JSON resource in the bundle.
func (l *Loader) Paths() ([]string, error) {
	return l.paths.Call()
}

// Has returns true if path names a resource of the bundle.
func (l *Loader) Has(path string) bool {
	if !fs.ValidPath(path) {
		return false
	}
	info, err := fs.Stat(l.fsys, path)
	return err == nil && !info.IsDir()
}

// Cached returns the number of parsed documents held by the loader.
func (l *Loader) Cached() int {
	return l.docs.Len()
}

// Reset discards every cached document.
func (l *Loader) Reset() {
	l.docs.Reset()
	l.paths.Reset()
}

func (l *Loader) read(path string) (any, error) {
	start := time.Now()
	doc, err := l.readDocument(path)
	if l.metrics != nil {
		l.metrics.RecordStage(fw.StageLoad, time.Since(start), err != nil)
	}
	if err != nil {
		logger.Debug("Could not load resource %s: %v", path, err)
		return nil, err
	}
	logger.Debug("Loaded resource %s in %v", path, time.Since(start))
	return doc, nil
}

func (l *Loader) readDocument(path string) (any, error) {
	if !fs.ValidPath(path) || path == "." {
		return nil, fw.NewResolutionError(fw.KindResourceNotFound, path, errors.New("invalid resource path"))
	}

	f, err := l.fsys.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fw.NewResolutionError(fw.KindResourceNotFound, path, nil)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fw.NewResolutionError(fw.KindResourceNotFound, path, errors.New("is a directory"))
	}

	doc, err := jsonschema.UnmarshalJSON(f)
	if err != nil {
		return nil, fw.NewResolutionError(fw.KindMalformedDocument, path, err)
	}
	return doc, nil
}

func (l *Loader) list() ([]string, error) {
	var paths []string
	err := fs.WalkDir(l.fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".json") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}
