// Package jsonx is the single JSON codec for the node. Store payloads,
// coded errors and RPC bodies all marshal through the same jsoniter
// configuration, so a stored record round-trips byte-for-byte with what the
// wire layer would produce.
package jsonx

import (
	jsoniter "github.com/json-iterator/go"
)

// codec is stdlib-compatible; challenge records encode big.Int amounts as
// JSON numbers and both halves must agree on that.
var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// Marshal encodes v through the shared codec.
func Marshal(v interface{}) ([]byte, error) {
	return codec.Marshal(v)
}

// Unmarshal decodes data into v through the shared codec.
func Unmarshal(data []byte, v interface{}) error {
	return codec.Unmarshal(data, v)
}
