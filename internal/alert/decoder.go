package alert

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// DefaultEncoding is used when no encoding label is configured.
const DefaultEncoding = "utf-8"

// Decoder turns raw alert bytes into text.
// UTF-8 is validated strictly; other encodings are mapped through their WHATWG decoder.
type Decoder struct {
	name   string
	enc    encoding.Encoding
	strict bool
}

// NewDecoder resolves an encoding label such as "utf-8", "latin1" or "windows-1252".
func NewDecoder(label string) (*Decoder, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		label = DefaultEncoding
	}

	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", label, err)
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		name = strings.ToLower(label)
	}

	return &Decoder{
		name:   name,
		enc:    enc,
		strict: name == "utf-8",
	}, nil
}

// Name returns the canonical encoding name.
func (d *Decoder) Name() string {
	return d.name
}

// Decode converts raw into a string. An empty payload yields an empty string.
func (d *Decoder) Decode(raw []byte) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}

	if d.strict {
		if _, _, err := transform.Bytes(encoding.UTF8Validator, raw); err != nil {
			return "", &DecodeError{Encoding: d.name, Size: len(raw), Offset: invalidUTF8Offset(raw), Err: err}
		}
		return string(raw), nil
	}

	out, err := d.enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", &DecodeError{Encoding: d.name, Size: len(raw), Offset: -1, Err: err}
	}
	return string(out), nil
}

func invalidUTF8Offset(raw []byte) int {
	for i := 0; i < len(raw); {
		r, size := utf8.DecodeRune(raw[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return -1
}
