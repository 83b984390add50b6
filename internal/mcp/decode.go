// ABOUTME: Strict JSON decoding for tool arguments
// ABOUTME: Unknown fields are rejected so typos surface instead of defaulting
package mcp

import (
	"bytes"
	"encoding/json"
)

func strictUnmarshal(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
