package client

import (
	"encoding/json"

	gojson "github.com/goccy/go-json"
)

// Codec serializes request and response payloads. Implementations are a
// pure performance substitution: for any value, every Codec must produce
// semantically identical JSON.
type Codec interface {
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// ReferenceCodec is the always-available encoding/json implementation.
type ReferenceCodec struct{}

func (ReferenceCodec) Name() string { return "encoding/json" }
func (ReferenceCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }
func (ReferenceCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// FastCodec serializes with goccy/go-json. Output matches ReferenceCodec
// byte for byte on the payload shapes this client sends.
type FastCodec struct{}

func (FastCodec) Name() string { return "goccy/go-json" }
func (FastCodec) Marshal(v any) ([]byte, error) { return gojson.Marshal(v) }
func (FastCodec) Unmarshal(data []byte, v any) error { return gojson.Unmarshal(data, v) }
