package walker

import (
	"fmt"
	"net/url"

	fw "github.com/collmot/flockwave-spec"
)

// Fetcher returns the document identified by an absolute URI without
// fragment.
type Fetcher interface {
	Resolve(uri string) (any, error)
}

// Inliner expands "$ref" nodes into copies of their targets.
type Inliner struct {
	fetch Fetcher
}

// NewInliner creates an Inliner that fetches referenced documents from f.
func NewInliner(f Fetcher) *Inliner {
	return &Inliner{fetch: f}
}

// literalKeywords hold data rather than subschemas.
var literalKeywords = map[string]bool{
	"enum":     true,
	"const":    true,
	"default":  true,
	"examples": true,
}

// nameMapKeywords map arbitrary names to subschemas.
var nameMapKeywords = map[string]bool{
	"properties":        true,
	"patternProperties": true,
	"definitions":       true,
	"dependencies":      true,
}

// Inline returns a copy of the schema selected by pointer in doc, with
// every reference expanded. uri is the location of doc; it is used as the
// base URI unless the document declares its own "$id".
func (in *Inliner) Inline(uri string, doc any, pointer string) (any, error) {
	base, err := baseURI(uri, doc)
	if err != nil {
		return nil, fw.NewResolutionError(fw.KindUnresolvableReference, uri, err)
	}

	root, err := Lookup(doc, pointer)
	if err != nil {
		return nil, fw.NewResolutionError(fw.KindSchemaNotFound, uri+LocalRef(pointer), err)
	}

	w := &walk{
		fetch:  in.fetch,
		docs:   map[string]document{uri: {doc, base}, base: {doc, base}},
		active: map[string]string{targetKey(base, pointer): ""},
	}
	return w.copy(root, base, "", false)
}

// document is a fetched document together with its base URI.
type document struct {
	value any
	base  string
}

// walk holds the state of a single Inline call.
type walk struct {
	fetch Fetcher
	docs  map[string]document

	// active maps the targets currently being expanded to the location of
	// their copy in the output.
	active map[string]string
}

// copy copies node, found in the document with the given base URI, to the
// output location out. names is true if the keys of node are names rather
// than keywords.
func (w *walk) copy(node any, base, out string, names bool) (any, error) {
	switch v := node.(type) {
	case map[string]any:
		if ref, ok := v["$ref"].(string); ok && !names {
			return w.expand(ref, base, out)
		}
		m := make(map[string]any, len(v))
		for k, child := range v {
			var (
				c   any
				err error
			)
			switch {
			case names:
				c, err = w.copy(child, base, Append(out, k), false)
			case literalKeywords[k]:
				c = deepCopy(child)
			default:
				c, err = w.copy(child, base, Append(out, k), nameMapKeywords[k])
			}
			if err != nil {
				return nil, err
			}
			m[k] = c
		}
		return m, nil

	case []any:
		s := make([]any, len(v))
		for i, child := range v {
			c, err := w.copy(child, base, AppendIndex(out, i), false)
			if err != nil {
				return nil, err
			}
			s[i] = c
		}
		return s, nil

	default:
		return v, nil
	}
}

// expand returns the copy of the target of ref, which appears at out.
func (w *walk) expand(ref, base, out string) (any, error) {
	docURI, fragment, err := resolve(base, ref)
	if err != nil {
		return nil, fw.NewResolutionError(fw.KindUnresolvableReference, ref, err)
	}

	key := targetKey(docURI, fragment)
	if at, ok := w.active[key]; ok {
		return map[string]any{"$ref": LocalRef(at)}, nil
	}

	doc, err := w.document(docURI)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve $ref %q: %w", ref, err)
	}

	target, err := Lookup(doc.value, fragment)
	if err != nil {
		return nil, fw.NewResolutionError(fw.KindSchemaNotFound, docURI+LocalRef(fragment), err)
	}

	w.active[key] = out
	defer delete(w.active, key)

	c, err := w.copy(target, doc.base, out, false)
	if err != nil {
		return nil, err
	}
	if m, ok := c.(map[string]any); ok {
		delete(m, "$id")
		delete(m, "$schema")
	}
	return c, nil
}

// document returns the document at uri, fetching it on first use.
func (w *walk) document(uri string) (document, error) {
	if d, ok := w.docs[uri]; ok {
		return d, nil
	}

	value, err := w.fetch.Resolve(uri)
	if err != nil {
		return document{}, err
	}
	base, err := baseURI(uri, value)
	if err != nil {
		return document{}, fw.NewResolutionError(fw.KindUnresolvableReference, uri, err)
	}

	d := document{value, base}
	w.docs[uri] = d
	w.docs[base] = d
	return d, nil
}

// baseURI returns the base URI of doc, found at uri.
func baseURI(uri string, doc any) (string, error) {
	m, ok := doc.(map[string]any)
	if !ok {
		return uri, nil
	}
	id, ok := m["$id"].(string)
	if !ok || id == "" {
		return uri, nil
	}
	resolved, fragment, err := resolve(uri, id)
	if err != nil {
		return "", err
	}
	if fragment != "" {
		return uri, nil
	}
	return resolved, nil
}

// resolve resolves ref against base and splits the result into the
// document URI and the fragment.
func resolve(base, ref string) (string, string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", "", err
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", "", err
	}

	target := b.ResolveReference(r)
	fragment := target.Fragment
	target.Fragment = ""
	target.RawFragment = ""
	return target.String(), fragment, nil
}

func targetKey(docURI, fragment string) string {
	return docURI + "#" + fragment
}

// deepCopy copies a JSON value without interpreting it.
func deepCopy(node any) any {
	switch v := node.(type) {
	case map[string]any:
		m := make(map[string]any, len(v))
		for k, child := range v {
			m[k] = deepCopy(child)
		}
		return m
	case []any:
		s := make([]any, len(v))
		for i, child := range v {
			s[i] = deepCopy(child)
		}
		return s
	default:
		return v
	}
}

// Refs returns every "$ref" value left in a schema, in no particular
// order.
func Refs(node any) []string {
	var refs []string
	var visit func(any)
	visit = func(n any) {
		switch v := n.(type) {
		case map[string]any:
			if ref, ok := v["$ref"].(string); ok {
				refs = append(refs, ref)
			}
			for _, child := range v {
				visit(child)
			}
		case []any:
			for _, child := range v {
				visit(child)
			}
		}
	}
	visit(node)
	return refs
}
