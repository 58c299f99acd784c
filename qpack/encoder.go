package qpack

// Encode emits a QPACK header block for fields, using only the static
// table (no dynamic table, no Huffman — see package doc). Per header it
// prefers, in order: an exact (name,value) match, then a name-only match,
// then a literal name and value.
func Encode(fields []HeaderField) []byte {
	var buf []byte
	for _, f := range fields {
		buf = encodeField(buf, f)
	}
	return buf
}

func encodeField(buf []byte, f HeaderField) []byte {
	if i, ok := findExact(f.Name, f.Value); ok {
		// Indexed field: 1xxxxxxx, 7-bit prefix index into the static table.
		return appendPrefixInt(buf, 0x80, 7, i)
	}
	if i, ok := findName(f.Name); ok {
		// Literal with name reference: 01TNxxxx, T=1, N=0, 4-bit prefix index.
		buf = appendPrefixInt(buf, 0x40|0x10, 4, i)
		return appendPrefixString(buf, f.Value)
	}
	// Literal with literal name: 001xxxxx pattern byte (N=0, H=0), then
	// standalone prefixed strings for name and value.
	buf = append(buf, 0x20)
	buf = appendPrefixString(buf, f.Name)
	return appendPrefixString(buf, f.Value)
}
