package fetch

import (
	"bytes"
	"fmt"
	"mime"
	"strings"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeBody converts raw to UTF-8 and returns it with the canonical name
// of the charset used.
//
// The charset is taken from override, then from the Content-Type charset
// parameter. HTML without either is sniffed from BOM and <meta> tags;
// everything else defaults to UTF-8.
func decodeBody(raw []byte, contentType, override string) (string, string, error) {
	name := override
	if name == "" {
		name = charsetParam(contentType)
	}

	var (
		enc encoding.Encoding
		err error
	)
	switch {
	case name != "":
		enc, err = htmlindex.Get(name)
		if err != nil {
			return "", "", fmt.Errorf("%w: %q", ErrUnsupportedCharset, name)
		}
	case isHTML(contentType):
		enc, _, _ = charset.DetermineEncoding(raw, contentType)
	default:
		enc = unicode.UTF8
	}

	canonical, err := htmlindex.Name(enc)
	if err != nil {
		canonical = "unknown"
	}

	if enc == unicode.UTF8 || canonical == "utf-8" {
		return string(bytes.TrimPrefix(raw, utf8BOM)), "utf-8", nil
	}

	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", "", fmt.Errorf("failed to decode %s body: %w", canonical, err)
	}
	return string(bytes.TrimPrefix(decoded, utf8BOM)), canonical, nil
}

// charsetParam returns the charset parameter of a Content-Type header.
func charsetParam(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(params["charset"])
}

func isHTML(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "text/html" || mt == "application/xhtml+xml"
}
