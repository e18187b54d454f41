package bamprovider

import (
	"strings"

	"github.com/grailbio/hts/sam"
	"v.io/x/lib/vlog"
)

// Stdin is the path that makes a provider read from the standard input.
const Stdin = "-"

// Provider allows reading a BAM or SAM file sequentially.
type Provider interface {
	// GetHeader returns the header of the file. The callee must not modify
	// the returned header object.
	//
	// REQUIRES: Close has not been called.
	GetHeader() (*sam.Header, error)

	// NewIterator returns an iterator over all the records of the file, in
	// file order. The input is read only once, so a provider yields at most
	// one iterator; later calls return an iterator that reports an error.
	//
	// REQUIRES: Close has not been called.
	NewIterator() Iterator

	// Close must be called exactly once. It returns any error encountered
	// by the provider, or any iterator created by the provider.
	//
	// REQUIRES: All the iterators created by NewIterator have been closed.
	Close() error
}

// Iterator iterates over sam.Records in file order. Thread compatible.
type Iterator interface {
	// Scan returns where there are any records remaining in the iterator,
	// and if so, advances the iterator to the next record. If the iterator
	// reaches the end of the file, Scan() returns false.  If an error
	// occurs, Scan() returns false and the error can be retrieved by
	// calling Err().
	//
	// REQUIRES: Close has not been called.
	Scan() bool

	// Record returns the current record in the iterator. This must be
	// called only after a call to Scan() returns true. The caller owns the
	// record, and may return it to sam's free pool once done with it.
	//
	// REQUIRES: Close has not been called.
	Record() *sam.Record

	// Err returns the error encoutered during iteration, or nil if no error
	// occurred.  An io.EOF error will be translated to nil.
	Err() error

	// Close must be called exactly once. It returns the value of Err().
	Close() error
}

// FileType represents the type of a BAM-like file.
type FileType int

const (
	// Unknown is a sentinel.
	Unknown FileType = iota
	// BAM file
	BAM
	// SAM file
	SAM
)

func (t FileType) String() string {
	switch t {
	case BAM:
		return "bam"
	case SAM:
		return "sam"
	default:
		return "unknown"
	}
}

// ParseFileType parses the file type string. "bam" returns bamprovider.BAM, for
// example. On error, it returns Unknown.
func ParseFileType(name string) FileType {
	switch strings.ToLower(name) {
	case "bam":
		return BAM
	case "sam":
		return SAM
	default:
		return Unknown
	}
}

// GuessFileType returns the file type from the pathname. Paths ending in
// ".sam" are SAM. Everything else, including Stdin, is BAM.
func GuessFileType(path string) FileType {
	if strings.HasSuffix(strings.ToLower(path), ".sam") {
		return SAM
	}
	if path != Stdin && !strings.HasSuffix(strings.ToLower(path), ".bam") {
		vlog.VI(1).Infof("%v: could not detect file type, assuming bam.", path)
	}
	return BAM
}

// ProviderOpts defines options for NewProvider.
type ProviderOpts struct {
	// Type forces the file type. If Unknown, it is guessed from the path.
	Type FileType
}

func mergeOpts(optList []ProviderOpts) ProviderOpts {
	opts := ProviderOpts{}
	for _, o := range optList {
		if o.Type != Unknown {
			opts.Type = o.Type
		}
	}
	return opts
}

// NewProvider creates a Provider object that can handle the BAM or SAM file
// of "path". Unless set in optList, the file type is autodetected from the
// path.
func NewProvider(path string, optList ...ProviderOpts) Provider {
	opts := mergeOpts(optList)
	if opts.Type == Unknown {
		opts.Type = GuessFileType(path)
	}
	return &BAMProvider{Path: path, Type: opts.Type}
}
