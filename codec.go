package laguz

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue/cuecontext"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Codec defines the deserialization contract for feed payloads.
// Implement this interface to use alternative formats.
type Codec interface {
	// Unmarshal deserializes bytes into a value.
	Unmarshal(data []byte, v any) error

	// ContentType returns the MIME type for observability and debugging.
	ContentType() string
}

// JSONCodec implements Codec using encoding/json.
type JSONCodec struct{}

// Unmarshal deserializes JSON bytes into v.
func (JSONCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// ContentType returns the JSON MIME type.
func (JSONCodec) ContentType() string {
	return "application/json"
}

// YAMLCodec implements Codec using gopkg.in/yaml.v3.
type YAMLCodec struct{}

// Unmarshal deserializes YAML bytes into v.
func (YAMLCodec) Unmarshal(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}

// ContentType returns the YAML MIME type.
func (YAMLCodec) ContentType() string {
	return "application/x-yaml"
}

// TOMLCodec implements Codec using github.com/pelletier/go-toml/v2.
type TOMLCodec struct{}

// Unmarshal deserializes TOML bytes into v.
func (TOMLCodec) Unmarshal(data []byte, v any) error {
	return toml.Unmarshal(data, v)
}

// ContentType returns the TOML MIME type.
func (TOMLCodec) ContentType() string {
	return "application/toml"
}

// CUECodec implements Codec by compiling CUE source and decoding the
// resulting concrete value.
type CUECodec struct{}

// Unmarshal compiles data as CUE and decodes it into v.
func (CUECodec) Unmarshal(data []byte, v any) error {
	value := cuecontext.New().CompileBytes(data)
	if err := value.Err(); err != nil {
		return err
	}
	return value.Decode(v)
}

// ContentType returns the CUE MIME type.
func (CUECodec) ContentType() string {
	return "application/cue"
}

// Ensure the codecs implement Codec.
var (
	_ Codec = JSONCodec{}
	_ Codec = YAMLCodec{}
	_ Codec = TOMLCodec{}
	_ Codec = CUECodec{}
)

// CodecFor returns the codec matching a format name or file extension:
// json, yaml/yml, toml or cue. Unknown formats fall back to JSON.
func CodecFor(format string) Codec {
	format = strings.ToLower(format)
	if ext := filepath.Ext(format); ext != "" {
		format = ext[1:]
	}
	switch format {
	case "yaml", "yml":
		return YAMLCodec{}
	case "toml":
		return TOMLCodec{}
	case "cue":
		return CUECodec{}
	default:
		return JSONCodec{}
	}
}
