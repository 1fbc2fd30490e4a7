package filament

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Codec encodes signal values for persistence. Persisted signals marshal
// through their codec on every accepted write and unmarshal once at
// construction.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	ContentType() string
}

// JSONCodec encodes values as JSON. It is the default codec.
type JSONCodec struct{}

func (JSONCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (JSONCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (JSONCodec) ContentType() string                { return "application/json" }

// YAMLCodec encodes values as YAML.
type YAMLCodec struct{}

func (YAMLCodec) Marshal(v any) ([]byte, error)      { return yaml.Marshal(v) }
func (YAMLCodec) Unmarshal(data []byte, v any) error { return yaml.Unmarshal(data, v) }
func (YAMLCodec) ContentType() string                { return "application/yaml" }

var (
	_ Codec = JSONCodec{}
	_ Codec = YAMLCodec{}
)
