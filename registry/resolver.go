// Package registry maps the private URI namespace of the Flockwave schemas
// onto resources of the bundle.
package registry

import (
	"strings"

	fw "github.com/collmot/flockwave-spec"
	"github.com/collmot/flockwave-spec/pkg/logger"
)

// DocumentLoader loads parsed documents by resource path.
type DocumentLoader interface {
	Load(path string) (any, error)
}

// Resolver turns absolute URIs under the schema prefix into documents of
// the bundle. It never performs network I/O: URIs outside the prefix fail
// with fw.ErrUnresolvableReference.
type Resolver struct {
	prefix string
	loader DocumentLoader
}

// NewResolver creates a Resolver for the protocol version selected by
// opts, loading documents through l.
func NewResolver(l DocumentLoader, opts ...fw.Option) *Resolver {
	o := fw.Apply(opts...)
	return &Resolver{
		prefix: o.Version.Prefix(),
		loader: l,
	}
}

// Prefix returns the URI prefix handled by the resolver.
func (r *Resolver) Prefix() string {
	return r.prefix
}

// Resolve returns the document identified by uri. Fragments are ignored;
// selecting a sub-schema is the caller's job.
func (r *Resolver) Resolve(uri string) (any, error) {
	path, ok := r.PathFor(uri)
	if !ok {
		logger.Debug("Refusing to resolve %s", uri)
		return nil, fw.NewResolutionError(fw.KindUnresolvableReference, uri, nil)
	}
	return r.loader.Load(path)
}

// Load implements the URL loader interface of the schema compiler, so
// that the compiler can only ever reach bundled documents.
func (r *Resolver) Load(url string) (any, error) {
	return r.Resolve(url)
}

// Handles returns true if uri lies under the prefix of the resolver.
func (r *Resolver) Handles(uri string) bool {
	return r.prefix != "" && strings.HasPrefix(uri, r.prefix)
}

// PathFor converts a URI under the prefix into a resource path by
// stripping the prefix, one leading slash and any fragment.
func (r *Resolver) PathFor(uri string) (string, bool) {
	if !r.Handles(uri) {
		return "", false
	}
	rest := uri[len(r.prefix):]
	if i := strings.IndexByte(rest, '#'); i >= 0 {
		rest = rest[:i]
	}
	return strings.TrimPrefix(rest, "/"), true
}

// URIFor returns the URI under which the resource at path is known.
func (r *Resolver) URIFor(path string) string {
	return r.prefix + "/" + path
}
