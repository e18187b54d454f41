package rename

import (
	"context"

	"github.com/SteampunkIslande/umisamedit/contig"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
)

// TotalRow is the contig column of the last row of a stats file.
const TotalRow = "*total*"

// StatsRow is one row of a stats file.
type StatsRow struct {
	Contig  string `tsv:"contig"`
	Dropped int64  `tsv:"dropped"`
}

func logSummary(s contig.DropSummary) {
	log.Printf("dropped %d records with no translated reference or mate reference", s.Total)
	for _, name := range s.Names() {
		log.Printf("  %s: %d", name, s.ByContig[name])
	}
}

// writeStats writes s as a TSV file with a header row, one row per original
// contig in name order, and a TotalRow.
func writeStats(ctx context.Context, path string, s contig.DropSummary) (err error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return errors.E(err, "create stats", path)
	}
	defer func() {
		if e := out.Close(ctx); e != nil && err == nil {
			err = errors.E(e, "close stats", path)
		}
	}()
	w := tsv.NewRowWriter(out.Writer(ctx))
	for _, name := range s.Names() {
		if err := w.Write(&StatsRow{Contig: name, Dropped: s.ByContig[name]}); err != nil {
			return errors.E(err, "write stats", path)
		}
	}
	if err := w.Write(&StatsRow{Contig: TotalRow, Dropped: s.Total}); err != nil {
		return errors.E(err, "write stats", path)
	}
	if err := w.Flush(); err != nil {
		return errors.E(err, "write stats", path)
	}
	return nil
}
