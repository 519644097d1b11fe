package store

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

const recordFormatVersionCurrent = 1

// Encode writes the binary form: a version byte followed by username, email, hash,
// salt and engine, each prefixed with a big-endian uint16 length.
func Encode(r Record) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(recordFormatVersionCurrent)

	for _, f := range r.fields() {
		if len(f.value) > MaxFieldLength {
			return nil, fmt.Errorf("%w: %s too long", ErrMalformed, f.name)
		}
		if err := binary.Write(&buf, binary.BigEndian, uint16(len(f.value))); err != nil {
			return nil, err
		}
		buf.WriteString(f.value)
	}

	return buf.Bytes(), nil
}

// Decode parses the output of Encode.
func Decode(data []byte) (Record, error) {
	rd := bytes.NewReader(data)

	version, err := rd.ReadByte()
	if err != nil {
		return Record{}, fmt.Errorf("%w: empty payload", ErrMalformed)
	}
	if version != recordFormatVersionCurrent {
		return Record{}, fmt.Errorf("%w: unsupported version %d", ErrMalformed, version)
	}

	var values [5]string
	for i := range values {
		var n uint16
		if err := binary.Read(rd, binary.BigEndian, &n); err != nil {
			return Record{}, fmt.Errorf("%w: truncated length", ErrMalformed)
		}
		raw := make([]byte, n)
		if _, err := io.ReadFull(rd, raw); err != nil {
			return Record{}, fmt.Errorf("%w: truncated field", ErrMalformed)
		}
		values[i] = string(raw)
	}
	if rd.Len() != 0 {
		return Record{}, fmt.Errorf("%w: trailing bytes", ErrMalformed)
	}

	return Record{
		Username: values[0],
		Email:    values[1],
		Hash:     values[2],
		Salt:     values[3],
		Engine:   values[4],
	}, nil
}
