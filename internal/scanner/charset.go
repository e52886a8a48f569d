package scanner

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// decoder turns raw file bytes into text in the configured charset.
type decoder struct {
	name string
	enc  encoding.Encoding
}

func newDecoder(charset string) (*decoder, error) {
	charset = strings.TrimSpace(charset)
	if charset == "" {
		charset = "utf-8"
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("charset %q: %w", charset, err)
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		name = charset
	}
	return &decoder{name: name, enc: enc}, nil
}

// decode returns data as UTF-8 text. Invalid sequences become U+FFFD.
func (d *decoder) decode(data []byte) (string, error) {
	out, _, err := transform.Bytes(d.enc.NewDecoder(), data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Decode converts data from charset to UTF-8 text.
func Decode(charset string, data []byte) (string, error) {
	d, err := newDecoder(charset)
	if err != nil {
		return "", err
	}
	return d.decode(data)
}
