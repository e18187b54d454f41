package contig_test

import (
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/SteampunkIslande/umisamedit/contig"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func TestReadTable(t *testing.T) {
	table, err := contig.ReadTable(strings.NewReader("# comment\nchr1\t1\nchr2\t2\nchrM\tMT\nchr2\tII\n"))
	assert.NoError(t, err)
	expect.EQ(t, table.Len(), 3)
	expect.EQ(t, table.Names(), []string{"chr1", "chr2", "chrM"})
	for _, test := range []struct {
		name, want string
		ok         bool
	}{
		{"chr1", "1", true},
		{"chr2", "II", true}, // the last row wins
		{"chrM", "MT", true},
		{"chr3", "", false},
	} {
		got, ok := table.Lookup(test.name)
		expect.EQ(t, got, test.want)
		expect.EQ(t, ok, test.ok)
	}

	table, err = contig.ReadTable(strings.NewReader(""))
	assert.NoError(t, err)
	expect.EQ(t, table.Len(), 0)
}

func TestReadTableMalformed(t *testing.T) {
	for _, data := range []string{
		"chr1\n",
		"chr1\t1\t2\n",
		"chr1\t1\nchr2\n",
		"chr1\t1\nchr2\t2\textra\n",
	} {
		_, err := contig.ReadTable(strings.NewReader(data))
		expect.True(t, errors.Is(errors.Invalid, err), "data %q: %v", data, err)
	}
}

func TestLoadTable(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := vcontext.Background()

	path := filepath.Join(tempDir, "table.tsv")
	assert.NoError(t, ioutil.WriteFile(path, []byte("chr1\t1\nchr3\t3\n"), 0600))
	table, err := contig.LoadTable(ctx, path)
	assert.NoError(t, err)
	expect.EQ(t, table.Names(), []string{"chr1", "chr3"})

	_, err = contig.LoadTable(ctx, filepath.Join(tempDir, "nonexistent.tsv"))
	expect.NotNil(t, err)

	bad := filepath.Join(tempDir, "bad.tsv")
	assert.NoError(t, ioutil.WriteFile(bad, []byte("chr1\t1\t1\n"), 0600))
	_, err = contig.LoadTable(ctx, bad)
	expect.NotNil(t, err)
	expect.True(t, strings.Contains(err.Error(), "bad.tsv"), "err: %v", err)
}
