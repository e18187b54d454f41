package rename

import (
	"context"
	"io"
	"os"
	"runtime"

	"github.com/SteampunkIslande/umisamedit/encoding/bamprovider"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
)

// Stdout is the output path that makes Run write BAM to the standard output.
const Stdout = "-"

// recordWriter is implemented by bam.Writer and samWriter.
type recordWriter interface {
	Write(r *sam.Record) error
	Close() error
}

// samWriter adds a no-op Close to sam.Writer, which writes through
// unbuffered.
type samWriter struct {
	*sam.Writer
}

func (samWriter) Close() error { return nil }

// output is an open BAM or SAM output file.
type output struct {
	path string
	out  file.File
	w    recordWriter
}

// createOutput creates path and writes header to it. If fileType is Unknown,
// the format is guessed from the path as for inputs, and Stdout gets BAM.
// level is the BAM compression level.
func createOutput(ctx context.Context, path string, fileType bamprovider.FileType, header *sam.Header, level int) (*output, error) {
	o := &output{path: path}
	var w io.Writer
	if path == Stdout {
		w = os.Stdout
	} else {
		out, err := file.Create(ctx, path)
		if err != nil {
			return nil, errors.E(err, "create output", path)
		}
		o.out = out
		w = out.Writer(ctx)
	}
	var err error
	if fileType == bamprovider.Unknown && path != Stdout {
		fileType = bamprovider.GuessFileType(path)
	}
	if fileType == bamprovider.SAM {
		var sw *sam.Writer
		if sw, err = sam.NewWriter(w, header, sam.FlagDecimal); err == nil {
			o.w = samWriter{sw}
		}
	} else {
		var bw *bam.Writer
		if bw, err = bam.NewWriterLevel(w, header, level, runtime.NumCPU()); err == nil {
			o.w = bw
		}
	}
	if err != nil {
		if o.out != nil {
			_ = o.out.Close(ctx)
		}
		return nil, errors.E(err, "write header", path)
	}
	return o, nil
}

func (o *output) write(r *sam.Record) error {
	return o.w.Write(r)
}

// close flushes the writer and closes the file. It returns the first error.
func (o *output) close(ctx context.Context) error {
	e := errors.Once{}
	e.Set(o.w.Close())
	if o.out != nil {
		e.Set(o.out.Close(ctx))
	}
	if err := e.Err(); err != nil {
		return errors.E(err, "close output", o.path)
	}
	return nil
}
