package main

// bio-bam-rename renames the contigs of a BAM or SAM file.
//
// Usage: bio-bam-rename [flags] input.bam output.bam translation.tsv

import (
	"flag"
	"os"
	"strings"

	"github.com/SteampunkIslande/umisamedit/contig"
	"github.com/SteampunkIslande/umisamedit/rename"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
)

const programName = "bio-bam-rename"

var (
	tagFlag              = flag.String("tag", rename.DefaultOpts.NameTag, "Aux tag whose value is appended to the names of the kept reads. Empty disables it.")
	umiWhitelistFlag     = flag.String("umi-whitelist", "", "File of known UMIs, one per line. If set, tag values are snap-corrected against them before being appended.")
	keepUnplacedFlag     = flag.Bool("keep-unplaced", false, "Keep the records that have neither a reference nor a mate reference.")
	statsFlag            = flag.String("stats", "", "If set, also write the per-contig drop counts to this TSV file.")
	compressionLevelFlag = flag.Int("compression-level", rename.DefaultOpts.CompressionLevel, "Gzip compression level of BAM output.")
	pgFlag               = flag.Bool("pg", true, "Record this command in a @PG line of the output header.")
	inputFormatFlag      = flag.String("input-format", "", "Format of the input, bam or sam. By default it is guessed from the path.")
	outputFormatFlag     = flag.String("output-format", "", "Format of the output, bam or sam. By default it is guessed from the path.")
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	flag.Usage = func() {
		os.Stderr.WriteString(`Usage: bio-bam-rename [flags] <input> <output> <translation.tsv>

Renames the reference contigs of <input> and writes the result to <output>.
<translation.tsv> has two tab-separated columns: the contig name in <input> and
its new name. Contigs not listed in it are removed from the header. Records
whose reference and mate reference were both removed are dropped; the number of
dropped records is reported per original contig.

<input> and <output> are BAM files, or SAM files if their name ends in .sam.
'-' reads BAM from stdin, or writes BAM to stdout. -input-format and
-output-format override these defaults.

`)
		flag.PrintDefaults()
	}
	shutdown := grail.Init()
	defer shutdown()

	args := flag.Args()
	if len(args) != 3 {
		flag.Usage()
		log.Fatalf("expect 3 arguments, got %d: %v", len(args), args)
	}
	opts := rename.DefaultOpts
	opts.InputPath = args[0]
	opts.OutputPath = args[1]
	opts.TablePath = args[2]
	opts.NameTag = *tagFlag
	opts.UMIWhitelistPath = *umiWhitelistFlag
	opts.KeepUnplaced = *keepUnplacedFlag
	opts.StatsPath = *statsFlag
	opts.CompressionLevel = *compressionLevelFlag
	var err error
	if opts.InputFormat, err = rename.ParseFormat(*inputFormatFlag); err != nil {
		log.Fatalf("-input-format: %v", err)
	}
	if opts.OutputFormat, err = rename.ParseFormat(*outputFormatFlag); err != nil {
		log.Fatalf("-output-format: %v", err)
	}
	if *pgFlag {
		opts.Program = contig.Program{
			ID:          programName,
			Name:        programName,
			CommandLine: strings.Join(os.Args, " "),
		}
	}
	res, err := rename.Run(vcontext.Background(), opts)
	if err != nil {
		log.Fatalf("%s: %v", programName, err)
	}
	log.Printf("%s: %v", programName, res)
}
