// Package json is the JSON codec used for envelopes and request bodies.
// It runs on sonic where sonic has a JIT (amd64/arm64) and on encoding/json
// everywhere else. Both paths use encoding/json compatible settings so the
// bytes written to clients do not depend on the build architecture.
package json

import (
	stdjson "encoding/json"
	"io"
	"runtime"

	"github.com/bytedance/sonic"
)

// Decoder decodes a stream of JSON values.
type Decoder interface {
	Decode(v any) error
	UseNumber()
}

type codec struct {
	marshal    func(v any) ([]byte, error)
	unmarshal  func(data []byte, v any) error
	valid      func(data []byte) bool
	newDecoder func(r io.Reader) Decoder
}

var (
	active     codec
	usingSonic bool
)

func init() {
	if runtime.GOARCH == "amd64" || runtime.GOARCH == "arm64" {
		api := sonic.ConfigStd
		active = codec{
			marshal:    api.Marshal,
			unmarshal:  api.Unmarshal,
			valid:      api.Valid,
			newDecoder: func(r io.Reader) Decoder { return api.NewDecoder(r) },
		}
		usingSonic = true
		return
	}
	active = codec{
		marshal:    stdjson.Marshal,
		unmarshal:  stdjson.Unmarshal,
		valid:      stdjson.Valid,
		newDecoder: func(r io.Reader) Decoder { return stdjson.NewDecoder(r) },
	}
}

// Marshal encodes v.
func Marshal(v any) ([]byte, error) {
	return active.marshal(v)
}

// Unmarshal decodes data into v.
func Unmarshal(data []byte, v any) error {
	return active.unmarshal(data, v)
}

// Valid reports whether data is a single well-formed JSON value.
func Valid(data []byte) bool {
	return active.valid(data)
}

// NewDecoder returns a streaming decoder reading from r.
func NewDecoder(r io.Reader) Decoder {
	return active.newDecoder(r)
}

// IsUsingSonic reports whether the sonic implementation is active.
func IsUsingSonic() bool {
	return usingSonic
}
