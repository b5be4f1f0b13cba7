// internal/domain/models/blob.go
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Blob is a JSON document persisted as opaque text. Callers convert to and
// from typed views with EncodeBlob and Decode; the store never looks inside.
type Blob string

// EncodeBlob serializes v into a Blob. A nil value yields an empty Blob.
func EncodeBlob(v any) (Blob, error) {
	if v == nil {
		return "", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode blob: %w", err)
	}
	return Blob(b), nil
}

// IsEmpty reports whether the blob holds no document.
func (b Blob) IsEmpty() bool {
	s := bytes.TrimSpace([]byte(b))
	return len(s) == 0 || string(s) == "null"
}

// Decode unmarshals the blob into v. An empty blob leaves v untouched.
func (b Blob) Decode(v any) error {
	if b.IsEmpty() {
		return nil
	}
	if err := json.Unmarshal([]byte(b), v); err != nil {
		return fmt.Errorf("decode blob: %w", err)
	}
	return nil
}

// MarshalJSON emits the stored document inline rather than as a quoted string.
func (b Blob) MarshalJSON() ([]byte, error) {
	if b.IsEmpty() {
		return []byte("null"), nil
	}
	if !json.Valid([]byte(b)) {
		return json.Marshal(string(b))
	}
	return []byte(b), nil
}

// UnmarshalJSON keeps the raw document so it round-trips unchanged.
func (b *Blob) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		*b = ""
		return nil
	}
	*b = Blob(append([]byte(nil), data...))
	return nil
}
