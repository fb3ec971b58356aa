package comps

import (
	"fmt"

	"github.com/sandertv/gophertunnel/minecraft/nbt"
)

// Document is an NBT compound: the structured form a container and each of
// its components are persisted in. Values follow gophertunnel's nbt mapping
// (uint8, int16, int32, int64, float32, float64, string, []any,
// map[string]any and the array types).
type Document map[string]any

// Has returns true if the document has a field named key.
func (d Document) Has(key string) bool {
	_, ok := d[key]
	return ok
}

// Int32 returns the field as an int32, accepting any nbt integer tag.
func (d Document) Int32(key string) (int32, bool) {
	switch v := d[key].(type) {
	case int32:
		return v, true
	case int16:
		return int32(v), true
	case uint8:
		return int32(v), true
	case int64:
		return int32(v), true
	}
	return 0, false
}

// Int64 returns the field as an int64, accepting any nbt integer tag.
func (d Document) Int64(key string) (int64, bool) {
	if v, ok := d[key].(int64); ok {
		return v, true
	}
	v, ok := d.Int32(key)
	return int64(v), ok
}

// Byte returns the field as a byte.
func (d Document) Byte(key string) (uint8, bool) {
	v, ok := d[key].(uint8)
	return v, ok
}

// Float64 returns the field as a float64, accepting float and double tags.
func (d Document) Float64(key string) (float64, bool) {
	switch v := d[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	}
	return 0, false
}

// String returns the field as a string.
func (d Document) String(key string) (string, bool) {
	v, ok := d[key].(string)
	return v, ok
}

// Compound returns the field as a nested document.
func (d Document) Compound(key string) (Document, bool) {
	switch v := d[key].(type) {
	case Document:
		return v, true
	case map[string]any:
		return Document(v), true
	}
	return nil, false
}

// Clone returns a deep copy of the document. Nested compounds, lists and
// arrays are copied; scalar values are immutable and shared.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	return Document(cloneCompound(d))
}

func cloneCompound(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch v := v.(type) {
	case Document:
		return Document(cloneCompound(v))
	case map[string]any:
		return cloneCompound(v)
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = cloneValue(e)
		}
		return out
	case []byte:
		return append([]byte(nil), v...)
	case []int32:
		return append([]int32(nil), v...)
	case []int64:
		return append([]int64(nil), v...)
	case []map[string]any:
		out := make([]map[string]any, len(v))
		for i, e := range v {
			out[i] = cloneCompound(e)
		}
		return out
	}
	return v
}

// plain converts nested Documents to map[string]any so the nbt encoder sees
// a uniform tree.
func (d Document) plain() map[string]any {
	out := make(map[string]any, len(d))
	for k, v := range d {
		out[k] = plainValue(v)
	}
	return out
}

func plainValue(v any) any {
	switch v := v.(type) {
	case Document:
		return v.plain()
	case map[string]any:
		return Document(v).plain()
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = plainValue(e)
		}
		return out
	}
	return v
}

// EncodeDocument encodes the document as an NBT compound using enc.
func EncodeDocument(doc Document, enc nbt.Encoding) ([]byte, error) {
	data, err := nbt.MarshalEncoding(doc.plain(), enc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

// DecodeDocument decodes an NBT compound encoded with enc.
func DecodeDocument(data []byte, enc nbt.Encoding) (Document, error) {
	var m map[string]any
	if err := nbt.UnmarshalEncoding(data, &m, enc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return Document(m), nil
}
