// ABOUTME: Order-preserving encoding for (namespace, element, property) keys
// ABOUTME: Prefix scans over partial tuples enumerate elements by type

package graph

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Key spaces
const (
	PREFIX_ELEMENT   = uint32(1000) // (namespace, id) -> type
	PREFIX_PROPERTY  = uint32(2000) // (namespace, id, property) -> value
	PREFIX_TYPE      = uint32(3000) // (namespace, type, id) -> nothing
	PREFIX_NAMESPACE = uint32(4000) // (namespace) -> nothing
)

// EncodeKey encodes a prefix followed by null-terminated, escaped strings.
// Byte-wise ordering of the result matches tuple ordering of the parts.
func EncodeKey(prefix uint32, parts ...string) []byte {
	out := make([]byte, 4, 64)
	binary.BigEndian.PutUint32(out, prefix)
	for _, p := range parts {
		out = append(out, escapeString([]byte(p))...)
		out = append(out, 0)
	}
	return out
}

// DecodeKey splits an encoded key back into its prefix and parts.
func DecodeKey(key []byte) (uint32, []string, error) {
	if len(key) < 4 {
		return 0, nil, fmt.Errorf("graph: key too short")
	}
	prefix := binary.BigEndian.Uint32(key[:4])
	var parts []string
	rest := key[4:]
	for len(rest) > 0 {
		end := -1
		for i := 0; i < len(rest); i++ {
			if rest[i] == 0xFE && i+1 < len(rest) {
				i++
				continue
			}
			if rest[i] == 0 {
				end = i
				break
			}
		}
		if end < 0 {
			return 0, nil, fmt.Errorf("graph: unterminated key part")
		}
		parts = append(parts, string(unescapeString(rest[:end])))
		rest = rest[end+1:]
	}
	return prefix, parts, nil
}

// escapeString escapes null bytes and 0xFE so parts stay null-terminated
func escapeString(s []byte) []byte {
	if bytes.IndexByte(s, 0) < 0 && bytes.IndexByte(s, 0xFE) < 0 {
		return s
	}
	out := make([]byte, 0, len(s)+4)
	for _, b := range s {
		if b == 0 || b == 0xFE {
			out = append(out, 0xFE, b)
		} else {
			out = append(out, b)
		}
	}
	return out
}

// unescapeString reverses escapeString
func unescapeString(s []byte) []byte {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == 0xFE && i+1 < len(s) {
			i++
		}
		out = append(out, s[i])
	}
	return out
}
