package fixtures

import (
	"fmt"
	"os"
	"unicode/utf8"
)

// Payload is the content of a stdin or expected-output file. Text payloads
// must be valid UTF-8 so mismatches can be rendered as diffs; binary payloads
// are compared byte for byte.
type Payload struct {
	Data   []byte `json:"data,omitempty"`
	Binary bool   `json:"binary,omitempty"`
}

func TextPayload(s string) *Payload {
	return &Payload{Data: []byte(s)}
}

// ReadPayload loads a sibling payload file in the mode selected by the
// fixture's binary flag.
func ReadPayload(path string, binary bool) (*Payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read payload %s: %w", path, err)
	}
	if !binary && !utf8.Valid(data) {
		return nil, fmt.Errorf("payload %s is not valid utf-8, set binary = true to compare raw bytes", path)
	}
	return &Payload{Data: data, Binary: binary}, nil
}

func (p *Payload) String() string {
	if p == nil {
		return ""
	}
	return string(p.Data)
}
