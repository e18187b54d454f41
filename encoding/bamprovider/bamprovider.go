package bamprovider

import (
	"io"
	"os"
	"sync"

	grailerrors "github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
	"github.com/pkg/errors"
	"v.io/x/lib/vlog"
)

// recordReader is the part of bam.Reader and sam.Reader used by the provider.
type recordReader interface {
	Header() *sam.Header
	Read() (*sam.Record, error)
}

// BAMProvider implements Provider for BAM and SAM files. The path may be any
// pathname understood by grailbio/base/file, or Stdin.
type BAMProvider struct {
	// Path of the *.bam or *.sam file. Must be nonempty.
	Path string
	// Type of the file. If Unknown, it is guessed from Path.
	Type FileType
	err  grailerrors.Once

	mu     sync.Mutex
	opened bool
	nIters int
	active bool
	in     file.File
	bamIn  *bam.Reader
	reader recordReader
	header *sam.Header
}

// failedIterator is returned by NewIterator when no record can be read. Its
// Close reports the error that prevented the iteration.
type failedIterator struct {
	err error
}

func (i failedIterator) Scan() bool { return false }

func (i failedIterator) Record() *sam.Record {
	panic("bamprovider: Record called after Scan returned false")
}

func (i failedIterator) Err() error   { return i.err }
func (i failedIterator) Close() error { return i.err }

type bamIterator struct {
	provider *BAMProvider
	reader   recordReader

	err  error
	next *sam.Record
}

// open opens the file and reads its header, once.
//
// REQUIRES: b.mu is locked.
func (b *BAMProvider) open() error {
	if b.opened {
		return b.err.Err()
	}
	b.opened = true

	ctx := vcontext.Background()
	var r io.Reader
	if b.Path == Stdin {
		r = os.Stdin
	} else {
		in, err := file.Open(ctx, b.Path)
		if err != nil {
			b.err.Set(errors.Wrapf(err, "bamprovider: open %s", b.Path))
			return b.err.Err()
		}
		b.in = in
		r = in.Reader(ctx)
	}
	typ := b.Type
	if typ == Unknown {
		typ = GuessFileType(b.Path)
	}
	vlog.VI(1).Infof("%s: reading as %v", b.Path, typ)
	switch typ {
	case SAM:
		samIn, err := sam.NewReader(r)
		if err != nil {
			b.err.Set(errors.Wrapf(err, "bamprovider: %s: read sam header", b.Path))
			return b.err.Err()
		}
		b.reader = samIn
	default:
		bamIn, err := bam.NewReader(r, 1)
		if err != nil {
			b.err.Set(errors.Wrapf(err, "bamprovider: %s: read bam header", b.Path))
			return b.err.Err()
		}
		b.bamIn = bamIn
		b.reader = bamIn
	}
	b.header = b.reader.Header()
	return nil
}

// GetHeader implements the Provider interface.
func (b *BAMProvider) GetHeader() (*sam.Header, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.open(); err != nil {
		return nil, err
	}
	return b.header, nil
}

// NewIterator implements the Provider interface.
func (b *BAMProvider) NewIterator() Iterator {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.nIters > 0 {
		return failedIterator{errors.Errorf("bamprovider: %s: the file can be iterated only once", b.Path)}
	}
	b.nIters++
	if err := b.open(); err != nil {
		return failedIterator{err}
	}
	b.active = true
	return &bamIterator{provider: b, reader: b.reader}
}

// Close implements the Provider interface.
func (b *BAMProvider) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.active {
		vlog.Fatalf("iterator still active for %+v", b.Path)
	}
	if b.bamIn != nil {
		if err := b.bamIn.Close(); err != nil {
			b.err.Set(errors.Wrapf(err, "bamprovider: close %s", b.Path))
		}
		b.bamIn = nil
	}
	if b.in != nil {
		if err := b.in.Close(vcontext.Background()); err != nil {
			b.err.Set(errors.Wrapf(err, "bamprovider: close %s", b.Path))
		}
		b.in = nil
	}
	b.reader = nil
	return b.err.Err()
}

func (b *BAMProvider) freeIterator(i *bamIterator) {
	b.mu.Lock()
	if !b.active {
		vlog.Fatal(i)
	}
	b.active = false
	b.err.Set(i.Err())
	b.mu.Unlock()
}

// Scan implements the Iterator interface.
func (i *bamIterator) Scan() bool {
	if i.err != nil {
		return false
	}
	i.next, i.err = i.reader.Read()
	if i.err != nil {
		if i.err != io.EOF {
			i.err = errors.Wrapf(i.err, "bamprovider: %s: read record", i.provider.Path)
		}
		i.next = nil
		return false
	}
	return true
}

// Record implements the Iterator interface.
func (i *bamIterator) Record() *sam.Record {
	return i.next
}

// Err implements the Iterator interface.
func (i *bamIterator) Err() error {
	if i.err == io.EOF {
		return nil
	}
	return i.err
}

// Close implements the Iterator interface.
func (i *bamIterator) Close() error {
	err := i.Err()
	i.provider.freeIterator(i)
	return err
}
