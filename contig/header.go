package contig

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/hts/sam"
)

// Header record types used by this package.
const (
	typeSQ = "SQ"
	typePG = "PG"
	typeCO = "CO"

	// nameTag is the @SQ tag that holds the contig name.
	nameTag = "SN"
)

// TagPair is one TAG:VALUE field of a header line.
type TagPair struct {
	Name  string
	Value string
}

// HeaderEntry is one line of a SAM header, e.g. "@SQ\tSN:chr1\tLN:248956422".
// Type is the two-letter record type without the '@'. For @CO lines, Tags is
// empty and the free text is stored in Comment.
type HeaderEntry struct {
	Type    string
	Tags    []TagPair
	Comment string
}

// Tag returns the value of the first tag with the given name.
func (e HeaderEntry) Tag(name string) (string, bool) {
	for _, t := range e.Tags {
		if t.Name == name {
			return t.Value, true
		}
	}
	return "", false
}

// withTag returns a copy of e in which the value of tag "name" is replaced
// with "value". The tag order is unchanged. e itself is not modified.
func (e HeaderEntry) withTag(name, value string) HeaderEntry {
	c := HeaderEntry{Type: e.Type, Comment: e.Comment, Tags: make([]TagPair, len(e.Tags))}
	copy(c.Tags, e.Tags)
	for i := range c.Tags {
		if c.Tags[i].Name == name {
			c.Tags[i].Value = value
		}
	}
	return c
}

// String returns the entry formatted as a SAM header line, without the
// trailing newline.
func (e HeaderEntry) String() string {
	var buf strings.Builder
	buf.WriteByte('@')
	buf.WriteString(e.Type)
	if e.Type == typeCO {
		buf.WriteByte('\t')
		buf.WriteString(e.Comment)
		return buf.String()
	}
	for _, t := range e.Tags {
		buf.WriteByte('\t')
		buf.WriteString(t.Name)
		buf.WriteByte(':')
		buf.WriteString(t.Value)
	}
	return buf.String()
}

// ParseHeaderText splits SAM header text into entries, in order.
func ParseHeaderText(text []byte) ([]HeaderEntry, error) {
	var entries []HeaderEntry
	for i, line := range bytes.Split(text, []byte{'\n'}) {
		line = bytes.TrimSuffix(line, []byte{'\r'})
		if len(line) == 0 {
			continue
		}
		e, err := parseHeaderLine(string(line))
		if err != nil {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("header line %d", i+1), err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func parseHeaderLine(line string) (HeaderEntry, error) {
	if len(line) < 3 || line[0] != '@' {
		return HeaderEntry{}, fmt.Errorf("malformed header line %q", line)
	}
	e := HeaderEntry{Type: line[1:3]}
	if e.Type == typeCO {
		if len(line) > 4 {
			e.Comment = line[4:]
		}
		return e, nil
	}
	fields := strings.Split(line, "\t")
	if len(fields[0]) != 3 {
		return HeaderEntry{}, fmt.Errorf("malformed record type in %q", line)
	}
	for _, f := range fields[1:] {
		if len(f) < 3 || f[2] != ':' {
			return HeaderEntry{}, fmt.Errorf("malformed tag %q in %q", f, line)
		}
		e.Tags = append(e.Tags, TagPair{Name: f[:2], Value: f[3:]})
	}
	return e, nil
}

// FormatHeaderText is the inverse of ParseHeaderText.
func FormatHeaderText(entries []HeaderEntry) []byte {
	var buf bytes.Buffer
	for _, e := range entries {
		buf.WriteString(e.String())
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// HeaderEntries returns the lines of h as entries. @SQ entries appear in
// reference-index order.
func HeaderEntries(h *sam.Header) ([]HeaderEntry, error) {
	text, err := h.MarshalText()
	if err != nil {
		return nil, err
	}
	return ParseHeaderText(text)
}

// NewSAMHeader builds a sam.Header from entries. Reference indices of the
// result follow the order of the @SQ entries, so two @SQ entries with the same
// name are an error.
func NewSAMHeader(entries []HeaderEntry) (*sam.Header, error) {
	seen := map[string]bool{}
	for _, e := range entries {
		if e.Type != typeSQ {
			continue
		}
		name, _ := e.Tag(nameTag)
		if seen[name] {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("build header: duplicate contig name %q", name))
		}
		seen[name] = true
	}
	h, err := sam.NewHeader(FormatHeaderText(entries), nil)
	if err != nil {
		return nil, errors.E(errors.Invalid, "build header", err)
	}
	return h, nil
}
