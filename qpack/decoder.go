package qpack

// Decode parses buf as a complete QPACK header block and returns the
// decoded (name, value) pairs in wire order. It is a pure function: buf
// must hold exactly one complete header block (the caller recovers frame
// boundaries — see the h3 package's BytesAccumulator).
func Decode(buf []byte) ([]HeaderField, error) {
	var fields []HeaderField
	off := 0
	for off < len(buf) {
		f, n, err := decodeField(buf, off)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
		off += n
	}
	return fields, nil
}

func decodeField(buf []byte, off int) (HeaderField, int, error) {
	b := buf[off]
	switch {
	case b&0x80 != 0:
		// Indexed field: 1xxxxxxx, 7-bit prefix index.
		i, n, err := readPrefixInt(buf, off, 7)
		if err != nil {
			return HeaderField{}, 0, err
		}
		e, err := entryAt(i)
		if err != nil {
			return HeaderField{}, 0, err
		}
		return e, n, nil

	case b&0x40 != 0:
		// Literal with indexed name: 01TNxxxx, 4-bit prefix name index,
		// followed by a literal value string.
		i, n, err := readPrefixInt(buf, off, 4)
		if err != nil {
			return HeaderField{}, 0, err
		}
		e, err := entryAt(i)
		if err != nil {
			return HeaderField{}, 0, err
		}
		value, vn, err := readPrefixString(buf, off+n)
		if err != nil {
			return HeaderField{}, 0, err
		}
		return HeaderField{Name: e.Name, Value: value}, n + vn, nil

	case b&0x20 != 0:
		// Literal with literal name: single pattern byte, then two
		// standalone prefixed strings.
		name, nn, err := readPrefixString(buf, off+1)
		if err != nil {
			return HeaderField{}, 0, err
		}
		value, vn, err := readPrefixString(buf, off+1+nn)
		if err != nil {
			return HeaderField{}, 0, err
		}
		return HeaderField{Name: name, Value: value}, 1 + nn + vn, nil

	default:
		return HeaderField{}, 0, ErrUnknownPattern
	}
}
