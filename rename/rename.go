// Package rename rewrites the contig names of a BAM or SAM file according to a
// translation table. Contigs without a translation are removed from the
// header, the reference indices of the records are remapped onto the new
// header, and records left without any reference are dropped.
package rename

import (
	"context"
	"fmt"

	"github.com/SteampunkIslande/umisamedit/contig"
	"github.com/SteampunkIslande/umisamedit/encoding/bamprovider"
	"github.com/SteampunkIslande/umisamedit/umi"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/hts/sam"
	"github.com/klauspost/compress/gzip"
)

// DefaultNameTag is the default value of Opts.NameTag.
const DefaultNameTag = "RX"

// Opts configures Run.
type Opts struct {
	// InputPath is the BAM or SAM file to read. "-" reads BAM from stdin.
	InputPath string
	// OutputPath is the file to create. Paths ending in ".sam" produce SAM,
	// anything else BAM. "-" writes BAM to stdout.
	OutputPath string
	// TablePath is the two-column translation file.
	TablePath string
	// InputFormat and OutputFormat force the format of the input and output.
	// Unknown means guessing it from the path.
	InputFormat, OutputFormat bamprovider.FileType

	// NameTag is the aux tag whose string value is appended to the names of
	// the kept reads. "" disables the append.
	NameTag string
	// UMIWhitelistPath, if nonempty, lists the known UMIs used to correct the
	// NameTag values before they are appended.
	UMIWhitelistPath string
	// KeepUnplaced keeps the records that have neither a reference nor a mate
	// reference in the input.
	KeepUnplaced bool
	// StatsPath, if nonempty, is where the drop statistics are written as TSV.
	// They are logged regardless.
	StatsPath string
	// CompressionLevel is the gzip level of BAM output.
	CompressionLevel int
	// Program, if its ID is nonempty, is recorded as a @PG line of the output
	// header.
	Program contig.Program
}

// DefaultOpts are the default values for Opts fields not related to paths.
var DefaultOpts = Opts{
	NameTag:          DefaultNameTag,
	CompressionLevel: gzip.DefaultCompression,
}

// Result summarizes a Run.
type Result struct {
	// Read is the number of input records.
	Read int64
	// Written is the number of records written to the output.
	Written int64
	// WriteErrors is the number of records that could not be written.
	WriteErrors int64
	// Drops counts the records dropped for lack of a translated reference.
	Drops contig.DropSummary
}

func (r Result) String() string {
	return fmt.Sprintf("read %d, written %d, dropped %d, write errors %d", r.Read, r.Written, r.Drops.Total, r.WriteErrors)
}

// ParseFormat parses the value of a format flag: "bam", "sam", or "" to guess
// the format from the path.
func ParseFormat(name string) (bamprovider.FileType, error) {
	if name == "" {
		return bamprovider.Unknown, nil
	}
	if t := bamprovider.ParseFileType(name); t != bamprovider.Unknown {
		return t, nil
	}
	return bamprovider.Unknown, errors.E(errors.Invalid, fmt.Sprintf("unknown format %q, expect bam or sam", name))
}

func validateOpts(opts Opts) error {
	if opts.InputPath == "" || opts.OutputPath == "" || opts.TablePath == "" {
		return errors.E(errors.Invalid, "input, output and translation table paths must be set")
	}
	if opts.NameTag != "" && len(opts.NameTag) != 2 {
		return errors.E(errors.Invalid, fmt.Sprintf("tag %q must be two characters long", opts.NameTag))
	}
	if opts.CompressionLevel < gzip.HuffmanOnly || opts.CompressionLevel > gzip.BestCompression {
		return errors.E(errors.Invalid, fmt.Sprintf("compression level %d out of range [%d, %d]",
			opts.CompressionLevel, gzip.HuffmanOnly, gzip.BestCompression))
	}
	return nil
}

// Run translates opts.InputPath into opts.OutputPath. Errors in the options,
// the translation table, the whitelist or the input header are returned
// before the output is created. Records that fail to be written are logged
// and counted in Result.WriteErrors; they do not stop the run.
func Run(ctx context.Context, opts Opts) (res Result, err error) {
	if err = validateOpts(opts); err != nil {
		return
	}
	table, err := contig.LoadTable(ctx, opts.TablePath)
	if err != nil {
		return
	}
	var corrector *umi.SnapCorrector
	if opts.UMIWhitelistPath != "" {
		if corrector, err = umi.LoadSnapCorrector(ctx, opts.UMIWhitelistPath); err != nil {
			return
		}
	}

	provider := bamprovider.NewProvider(opts.InputPath, bamprovider.ProviderOpts{Type: opts.InputFormat})
	defer func() {
		if e := provider.Close(); e != nil && err == nil {
			err = e
		}
	}()
	oldHeader, err := provider.GetHeader()
	if err != nil {
		return
	}
	var progs []contig.Program
	if opts.Program.ID != "" {
		progs = append(progs, opts.Program)
	}
	newHeader, tr, err := contig.TranslateSAMHeader(oldHeader, table, progs...)
	if err != nil {
		return res, errors.E(err, opts.InputPath)
	}
	log.Printf("%s: %d of %d contigs translated", opts.InputPath, tr.Map.Len(), len(tr.OldNames))

	out, err := createOutput(ctx, opts.OutputPath, opts.OutputFormat, newHeader, opts.CompressionLevel)
	if err != nil {
		return
	}
	stats := contig.NewDropStats()
	remapper := contig.NewRemapper(tr, stats, contig.RemapOpts{
		NameTag:      opts.NameTag,
		KeepUnplaced: opts.KeepUnplaced,
		Corrector:    corrector,
	})

	refs := newHeader.Refs()
	rec := contig.NewSAMRecord(nil, refs)
	iter := provider.NewIterator()
	for iter.Scan() {
		r := iter.Record()
		res.Read++
		rec.Reset(r)
		if remapper.Remap(rec) {
			if e := out.write(r); e != nil {
				log.Error.Printf("%s: write record %s: %v", opts.OutputPath, r.Name, e)
				res.WriteErrors++
			} else {
				res.Written++
			}
		}
		sam.PutInFreePool(r)
	}
	if e := iter.Close(); e != nil {
		err = e
	}
	if e := out.close(ctx); e != nil && err == nil {
		err = e
	}
	res.Drops = stats.Summary()
	if err != nil {
		return
	}
	logSummary(res.Drops)
	if opts.StatsPath != "" {
		err = writeStats(ctx, opts.StatsPath, res.Drops)
	}
	log.Debug.Printf("%s: %v", opts.InputPath, res)
	return
}
