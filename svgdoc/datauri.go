package svgdoc

import (
	"errors"
	"net/url"
	"strings"
)

// URIPrefix starts every document data URI.
const URIPrefix = "data:image/svg+xml;charset=utf8,"

// ErrNotSVGURI is returned when a URI is not an svg data URI.
var ErrNotSVGURI = errors.New("not an svg data uri")

// URI serializes d into a percent-encoded data URI.
func (d *Document) URI() (string, error) {
	data, err := d.Marshal()
	if err != nil {
		return "", err
	}
	return URIPrefix + url.PathEscape(string(data)), nil
}

// ParseURI decodes a data URI produced by Document.URI.
func ParseURI(uri string) (*Document, error) {
	payload, ok := strings.CutPrefix(uri, URIPrefix)
	if !ok {
		return nil, ErrNotSVGURI
	}
	raw, err := url.PathUnescape(payload)
	if err != nil {
		return nil, err
	}
	return Parse([]byte(raw))
}
