package trace

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical serializes a frame to canonical JSON: object keys
// sorted, strings NFC normalized, no HTML escaping, no floats. Two
// identical frames always produce identical bytes, which the golden
// files and the store's payload column depend on.
func MarshalCanonical(f *Frame) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	writeKey(&buf, "index")
	fmt.Fprintf(&buf, "%d", f.Index)
	buf.WriteByte(',')
	writeKey(&buf, "lower")
	fmt.Fprintf(&buf, "%d", f.Lower)
	buf.WriteByte(',')
	writeKey(&buf, "state")
	if err := writeString(&buf, f.State); err != nil {
		return nil, err
	}
	if len(f.Streams) > 0 {
		buf.WriteByte(',')
		writeKey(&buf, "streams")
		if err := writeStreams(&buf, f.Streams); err != nil {
			return nil, err
		}
	}
	buf.WriteByte(',')
	writeKey(&buf, "upper")
	fmt.Fprintf(&buf, "%d", f.Upper)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalRunCanonical serializes a whole run's frames as a canonical
// JSON array.
func MarshalRunCanonical(frames []Frame) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i := range frames {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := MarshalCanonical(&frames[i])
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func writeStreams(buf *bytes.Buffer, streams map[string][]Emission) error {
	keys := make([]string, 0, len(streams))
	for k := range streams {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeString(buf, k); err != nil {
			return err
		}
		buf.WriteByte(':')
		buf.WriteByte('[')
		for j, e := range streams[k] {
			if j > 0 {
				buf.WriteByte(',')
			}
			buf.WriteByte('{')
			writeKey(buf, "payload")
			if err := writeString(buf, e.Payload); err != nil {
				return err
			}
			buf.WriteByte(',')
			writeKey(buf, "stamp")
			fmt.Fprintf(buf, "%d", e.Stamp)
			buf.WriteByte('}')
		}
		buf.WriteByte(']')
	}
	buf.WriteByte('}')
	return nil
}

func writeKey(buf *bytes.Buffer, k string) {
	buf.WriteByte('"')
	buf.WriteString(k)
	buf.WriteByte('"')
	buf.WriteByte(':')
}

// writeString emits a JSON string with NFC normalization and HTML
// escaping disabled.
func writeString(buf *bytes.Buffer, s string) error {
	normalized := norm.NFC.String(s)
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return err
	}
	b := tmp.Bytes()
	if n := len(b); n > 0 && b[n-1] == '\n' {
		b = b[:n-1]
	}
	buf.Write(b)
	return nil
}
