// Package loader reads and parses the JSON documents of a schema bundle.
//
// Every resource is read at most once per Loader. The parsed document is
// cached and the same value is returned to every later caller, so callers
// must treat it as read-only.
//
// Example usage:
//
//	l, err := loader.New()
//	if err != nil {
//	    return err
//	}
//
//	doc, err := l.Load("definitions.json")
//	if errors.Is(err, fw.ErrResourceNotFound) {
//	    // no such resource in the bundle
//	}
package loader
