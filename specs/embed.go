// Package specs provides the embedded Flockwave schema bundle.
//
// Each protocol version has its own directory of JSON Schema documents
// (draft-07). Documents refer to each other with URIs under the private
// prefix of the version, e.g.
// http://collmot.com/schemas/flockwave/1.0/definitions.json.
//
// Usage:
//
//	fsys, err := specs.FS(fw.V1)
//	if err != nil {
//	    return err
//	}
//	data, err := fs.ReadFile(fsys, specs.Files.Message)
package specs

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"

	fw "github.com/collmot/flockwave-spec"
)

// V1Specs holds the schema documents of protocol version 1.0.
//
//go:embed v1/*.json
var V1Specs embed.FS

// Files contains the names of the documents in each version directory.
var Files = struct {
	Message          string
	MessageBody      string
	NotificationBody string
	RequestBody      string
	ResponseBody     string
	Definitions      string
}{
	Message:          "message.json",
	MessageBody:      "message_body.json",
	NotificationBody: "notification_body.json",
	RequestBody:      "request_body.json",
	ResponseBody:     "response_body.json",
	Definitions:      "definitions.json",
}

// FS returns the schema documents of a protocol version, rooted at the
// version directory so that resource paths can be used as-is.
func FS(version fw.ProtocolVersion) (fs.FS, error) {
	if !version.IsValid() {
		return nil, fmt.Errorf("unsupported protocol version: %s", version)
	}
	sub, err := fs.Sub(V1Specs, version.SpecsDir())
	if err != nil {
		return nil, fmt.Errorf("failed to open schemas of version %s: %w", version, err)
	}
	return sub, nil
}

// ListFiles returns the sorted names of the documents of a protocol version.
func ListFiles(version fw.ProtocolVersion) ([]string, error) {
	fsys, err := FS(version)
	if err != nil {
		return nil, err
	}

	names, err := fs.Glob(fsys, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list schemas of version %s: %w", version, err)
	}
	sort.Strings(names)
	return names, nil
}

// ReadFile reads a document of a protocol version.
func ReadFile(version fw.ProtocolVersion, name string) ([]byte, error) {
	fsys, err := FS(version)
	if err != nil {
		return nil, err
	}

	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

// HasFile checks if a document exists for a protocol version.
func HasFile(version fw.ProtocolVersion, name string) bool {
	fsys, err := FS(version)
	if err != nil {
		return false
	}
	_, err = fs.Stat(fsys, name)
	return err == nil
}
