package flockwave

// ProtocolVersion represents a version of the Flockwave protocol.
type ProtocolVersion string

// Supported protocol versions.
const (
	// V1 is version 1.0 of the Flockwave protocol.
	V1 ProtocolVersion = "1.0"
)

// SchemaPrefix is the URI prefix under which the Flockwave 1.0 schemas
// refer to each other.
const SchemaPrefix = "http://collmot.com/schemas/flockwave/1.0"

// Draft7 is the meta-schema URI declared by every bundled schema document.
const Draft7 = "http://json-schema.org/draft-07/schema#"

// String returns the version string.
func (v ProtocolVersion) String() string {
	return string(v)
}

// IsValid returns true if this is a supported protocol version.
func (v ProtocolVersion) IsValid() bool {
	_, ok := versionConfigs[v]
	return ok
}

// Prefix returns the schema URI prefix of the version, or an empty string
// if the version is not supported.
func (v ProtocolVersion) Prefix() string {
	return versionConfigs[v].SchemaPrefix
}

// SpecsDir returns the directory of the embedded bundle that holds the
// schema documents of the version.
func (v ProtocolVersion) SpecsDir() string {
	return versionConfigs[v].SpecsDir
}

// versionConfig holds version-specific configuration.
type versionConfig struct {
	// SchemaPrefix is the private URI namespace of the schema documents
	SchemaPrefix string

	// SpecsDir is the directory of the embedded bundle
	SpecsDir string
}

var versionConfigs = map[ProtocolVersion]versionConfig{
	V1: {
		SchemaPrefix: SchemaPrefix,
		SpecsDir:     "v1",
	},
}
