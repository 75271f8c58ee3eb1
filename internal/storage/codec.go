// internal/storage/codec.go
package storage

import (
	"encoding/binary"
	"strings"
)

// SerializeRow packs a row into its fixed-width on-disk representation:
// Integer -> 4 bytes little-endian, Boolean -> 1 byte, Text(n) -> n bytes of
// UTF-8 with zero padding.
func SerializeRow(row Row, schema Schema) []byte {
	buf := make([]byte, schema.RowSize())
	offset := 0
	for i, col := range schema.Columns {
		field := row[i]
		switch col.Type.Kind {
		case KindInteger:
			binary.LittleEndian.PutUint32(buf[offset:offset+4], uint32(field.Int))
		case KindBoolean:
			if field.Bool {
				buf[offset] = 1
			}
		case KindText:
			b := []byte(field.Str)
			n := copy(buf[offset:offset+col.Type.MaxLen], b)
			_ = n // remaining bytes are already zero from make()
		}
		offset += col.Type.Size()
	}
	return buf
}

// DeserializeRow unpacks a fixed-width row buffer back into typed fields.
// Text columns are truncated at the first zero byte and decoded lossily
// as UTF-8 (invalid sequences become the Unicode replacement character).
func DeserializeRow(buf []byte, schema Schema) Row {
	row := make(Row, len(schema.Columns))
	offset := 0
	for i, col := range schema.Columns {
		size := col.Type.Size()
		chunk := buf[offset : offset+size]
		switch col.Type.Kind {
		case KindInteger:
			row[i] = IntegerField(int32(binary.LittleEndian.Uint32(chunk)))
		case KindBoolean:
			row[i] = BooleanField(chunk[0] != 0)
		case KindText:
			end := 0
			for end < len(chunk) && chunk[end] != 0 {
				end++
			}
			row[i] = TextField(strings.ToValidUTF8(string(chunk[:end]), "�"))
		}
		offset += size
	}
	return row
}
