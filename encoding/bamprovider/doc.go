// Package bamprovider provides utilities for scanning a BAM or SAM file.
//
// The Provider is an interface for reading the header and then the records of
// a BAM or SAM file, in file order.
package bamprovider
