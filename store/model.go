package store

import (
	"bytes"
	"fmt"
	"math"
	"strings"
)

// MaxFieldLength bounds every field, in bytes, in both the text and binary forms.
const MaxFieldLength = math.MaxUint16

const (
	fieldUsername = "username"
	fieldEmail    = "email"
	fieldHash     = "password_hash"
	fieldSalt     = "salt"
	fieldEngine   = "encryption_engine"
)

// Record is the persisted form of a credential record.
type Record struct {
	Username string
	Email    string
	Hash     string
	Salt     string
	Engine   string
}

// MarshalText renders the record as a text block, one "field: value" line per field.
func (r Record) MarshalText() ([]byte, error) {
	if r.Username == "" {
		return nil, fmt.Errorf("%w: empty username", ErrMalformed)
	}

	var buf bytes.Buffer
	for _, f := range r.fields() {
		if len(f.value) > MaxFieldLength {
			return nil, fmt.Errorf("%w: %s too long", ErrMalformed, f.name)
		}
		if strings.ContainsAny(f.value, "\r\n") {
			return nil, fmt.Errorf("%w: %s contains a line break", ErrMalformed, f.name)
		}
		buf.WriteString(f.name)
		buf.WriteString(": ")
		buf.WriteString(f.value)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// UnmarshalText parses a single text block produced by MarshalText.
func (r *Record) UnmarshalText(text []byte) error {
	var out Record
	seen := make(map[string]bool, 5)

	for _, raw := range bytes.Split(text, []byte("\n")) {
		line := strings.TrimSuffix(string(raw), "\r")
		if line == "" {
			continue
		}

		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return fmt.Errorf("%w: line %q has no field name", ErrMalformed, line)
		}
		value = strings.TrimPrefix(value, " ")
		if len(value) > MaxFieldLength {
			return fmt.Errorf("%w: field %s too long", ErrMalformed, name)
		}
		if strings.ContainsRune(value, '\r') {
			return fmt.Errorf("%w: field %s contains a carriage return", ErrMalformed, name)
		}
		if seen[name] {
			return fmt.Errorf("%w: duplicate field %s", ErrMalformed, name)
		}
		seen[name] = true

		switch name {
		case fieldUsername:
			out.Username = value
		case fieldEmail:
			out.Email = value
		case fieldHash:
			out.Hash = value
		case fieldSalt:
			out.Salt = value
		case fieldEngine:
			out.Engine = value
		default:
			return fmt.Errorf("%w: unknown field %s", ErrMalformed, name)
		}
	}
	if out.Username == "" {
		return fmt.Errorf("%w: missing username", ErrMalformed)
	}

	*r = out
	return nil
}

// String returns the text block, or a placeholder when the record cannot be rendered.
func (r Record) String() string {
	text, err := r.MarshalText()
	if err != nil {
		return "<invalid credential record>"
	}
	return string(text)
}

type field struct {
	name  string
	value string
}

func (r Record) fields() [5]field {
	return [5]field{
		{fieldUsername, r.Username},
		{fieldEmail, r.Email},
		{fieldHash, r.Hash},
		{fieldSalt, r.Salt},
		{fieldEngine, r.Engine},
	}
}

// MarshalBlocks renders records as text blocks separated by a blank line.
func MarshalBlocks(records []Record) ([]byte, error) {
	var buf bytes.Buffer
	for i, rec := range records {
		text, err := rec.MarshalText()
		if err != nil {
			return nil, err
		}
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.Write(text)
	}
	return buf.Bytes(), nil
}

// UnmarshalBlocks parses the output of MarshalBlocks.
func UnmarshalBlocks(data []byte) ([]Record, error) {
	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))

	var records []Record
	for _, block := range bytes.Split(data, []byte("\n\n")) {
		if len(bytes.TrimSpace(block)) == 0 {
			continue
		}
		var rec Record
		if err := rec.UnmarshalText(block); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}
