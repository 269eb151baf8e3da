package walker

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonpointer"
)

// Lookup returns the value selected by the JSON Pointer ptr in doc.
// The empty pointer selects the whole document.
func Lookup(doc any, ptr string) (any, error) {
	p, err := gojsonpointer.NewJsonPointer(ptr)
	if err != nil {
		return nil, err
	}
	v, _, err := p.Get(doc)
	if err != nil {
		return nil, err
	}
	return v, nil
}

var tokenEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// Append adds a reference token to a JSON Pointer.
func Append(ptr, token string) string {
	return ptr + "/" + tokenEscaper.Replace(token)
}

// AppendIndex adds an array index to a JSON Pointer.
func AppendIndex(ptr string, i int) string {
	return ptr + "/" + strconv.Itoa(i)
}

// LocalRef returns the "$ref" value that points at ptr within the same
// document.
func LocalRef(ptr string) string {
	return "#" + (&url.URL{Fragment: ptr}).EscapedFragment()
}
