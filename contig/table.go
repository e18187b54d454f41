package contig

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
)

// Table maps original contig names to their new names. A name that is absent
// from the table has no translation. Table is immutable once built, so it is
// safe for concurrent readers.
type Table struct {
	names map[string]string
}

// NewTable creates a Table from the given old->new mapping. The map is copied.
func NewTable(names map[string]string) *Table {
	t := &Table{names: make(map[string]string, len(names))}
	for from, to := range names {
		t.names[from] = to
	}
	return t
}

// Lookup returns the translation of the given contig name.
func (t *Table) Lookup(name string) (string, bool) {
	to, ok := t.names[name]
	return to, ok
}

// Len returns the number of translated names.
func (t *Table) Len() int { return len(t.names) }

// Names returns the original names in the table, sorted.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.names))
	for name := range t.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// tableRow is one line of a translation file.
type tableRow struct {
	From string
	To   string
}

// ReadTable parses a translation table: a headerless, tab-separated stream
// with exactly two columns per row, the original name followed by the new
// name. Lines starting with '#' are ignored. When a name appears more than
// once, the last row wins. Any row with a different number of columns is an
// errors.Invalid error.
func ReadTable(r io.Reader) (*Table, error) {
	reader := tsv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = 2
	names := map[string]string{}
	for row := 1; ; row++ {
		var line tableRow
		if err := reader.Read(&line); err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.E(errors.Invalid, fmt.Sprintf("translation table: row %d", row), err)
		}
		if prev, ok := names[line.From]; ok && prev != line.To {
			log.Debug.Printf("translation table: %s remapped from %s to %s", line.From, prev, line.To)
		}
		names[line.From] = line.To
	}
	return &Table{names: names}, nil
}

// LoadTable reads a translation table from the given path. The path may be
// any pathname understood by grailbio/base/file.
func LoadTable(ctx context.Context, path string) (t *Table, err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.E(err, "open translation table", path)
	}
	defer func() {
		if e := in.Close(ctx); e != nil && err == nil {
			err = e
		}
	}()
	if t, err = ReadTable(in.Reader(ctx)); err != nil {
		return nil, errors.E(err, path)
	}
	log.Debug.Printf("%s: loaded %d contig translations", path, t.Len())
	return t, nil
}
