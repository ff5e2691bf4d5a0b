package vita

import "strings"

// DiscoveryAttr is one key=value token from a discovery beacon's textual
// payload. Kept as an ordered slice (not a map) so encode/decode round
// trips preserve token order.
type DiscoveryAttr struct {
	Key   string
	Value string
}

// DecodeDiscoveryPayload tokenizes a class-0xFFFF discovery packet's
// payload: UTF-8 ASCII, space-separated key=value pairs, padded with
// trailing spaces to a 32-bit boundary (spec §4.1 "Discovery payload").
func DecodeDiscoveryPayload(payload []byte) []DiscoveryAttr {
	text := strings.TrimRight(string(payload), " \x00")
	if text == "" {
		return nil
	}
	fields := strings.Fields(text)
	attrs := make([]DiscoveryAttr, 0, len(fields))
	for _, f := range fields {
		k, v, ok := strings.Cut(f, "=")
		if !ok {
			attrs = append(attrs, DiscoveryAttr{Key: f})
			continue
		}
		attrs = append(attrs, DiscoveryAttr{Key: k, Value: v})
	}
	return attrs
}

// EncodeDiscoveryPayload is the inverse of DecodeDiscoveryPayload, padding
// with ASCII spaces to the next 32-bit boundary.
func EncodeDiscoveryPayload(attrs []DiscoveryAttr) []byte {
	parts := make([]string, len(attrs))
	for i, a := range attrs {
		if a.Value == "" {
			parts[i] = a.Key
			continue
		}
		parts[i] = a.Key + "=" + a.Value
	}
	text := strings.Join(parts, " ")
	out := []byte(text)
	for len(out)%4 != 0 {
		out = append(out, ' ')
	}
	return out
}
