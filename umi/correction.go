package umi

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/antzucaro/matchr"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
)

var (
	alphabet         = map[byte]bool{'A': true, 'C': true, 'G': true, 'T': true}
	alphabetWithNMap = map[byte]bool{'A': true, 'C': true, 'G': true, 'T': true, 'N': true}
)

// snapEntry is the result of snapping one umi. edits is -1 if the umi is not
// snappable.
type snapEntry struct {
	knownUMI string
	edits    int
}

// SnapCorrector implements "snap" correction of UMIs. A umi U is snappable if
// there is a known umi U1 that is strictly closer to U than all other known
// umis, in terms of Levenshtein edit distance.
//
// Snaps are computed on first sight of each distinct umi and memoized, so the
// cost grows with the number of distinct umis observed, not with the number of
// possible k-mers. Thread safe.
type SnapCorrector struct {
	knownUMIs []string
	k         int

	mu    sync.Mutex
	cache map[string]snapEntry
}

// NewSnapCorrector creates a corrector for the given known UMIs. All of them
// must have the same length and consist of ACGT only.
func NewSnapCorrector(knownUMIs []string) (*SnapCorrector, error) {
	if len(knownUMIs) == 0 {
		return nil, errors.E(errors.Invalid, "no umis in input")
	}
	k := len(knownUMIs[0])
	known := make([]string, 0, len(knownUMIs))
	for _, umi := range knownUMIs {
		umi = strings.ToUpper(umi)
		if len(umi) != k {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("umi %s has length %d, other umis have length %d", umi, len(umi), k))
		}
		if !validUMI(umi, false) {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("invalid base in umi %s", umi))
		}
		known = append(known, umi)
	}
	log.Debug.Printf("snap corrector: %d known %d-mers", len(known), k)
	return &SnapCorrector{knownUMIs: known, k: k, cache: map[string]snapEntry{}}, nil
}

// ReadSnapCorrector reads known UMIs, one per line, and creates a corrector.
// Blank lines are ignored.
func ReadSnapCorrector(r io.Reader) (*SnapCorrector, error) {
	var known []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			known = append(known, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return NewSnapCorrector(known)
}

// LoadSnapCorrector reads the list of known UMIs from the given path.
func LoadSnapCorrector(ctx context.Context, path string) (c *SnapCorrector, err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.E(err, "open umi whitelist", path)
	}
	defer func() {
		if e := in.Close(ctx); e != nil && err == nil {
			err = e
		}
	}()
	if c, err = ReadSnapCorrector(in.Reader(ctx)); err != nil {
		return nil, errors.E(err, path)
	}
	return c, nil
}

// K returns the length of the known UMIs.
func (c *SnapCorrector) K() int { return c.k }

// CorrectUMI returns a corrected umi, the number of edits to the corrected
// umi, and true if there is exactly one known UMI that is closest to the
// original umi with respect to Levenshtein edit distance and it differs from
// the original. Otherwise it returns the original umi unchanged, the edit
// count (0 for a known umi, -1 if not snappable), and false. Umis of a length
// other than K, or with characters other than ACGTN (in any case), are not
// snappable.
func (c *SnapCorrector) CorrectUMI(umi string) (correctedUMI string, edits int, corrected bool) {
	upper := strings.ToUpper(umi)
	if len(upper) != c.k || !validUMI(upper, true) {
		return umi, -1, false
	}
	entry := c.snap(upper)
	if entry.edits < 0 || entry.knownUMI == upper {
		return umi, entry.edits, false
	}
	return entry.knownUMI, entry.edits, true
}

// snap finds the unique closest known umi, memoizing the result.
func (c *SnapCorrector) snap(umi string) snapEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.cache[umi]; ok {
		return entry
	}
	best, nBest := -1, 0
	var bestUMI string
	for _, knownUMI := range c.knownUMIs {
		cost := matchr.Levenshtein(umi, knownUMI)
		switch {
		case best < 0 || cost < best:
			best, nBest, bestUMI = cost, 1, knownUMI
		case cost == best:
			nBest++
		}
	}
	entry := snapEntry{edits: -1}
	if nBest == 1 {
		entry = snapEntry{knownUMI: bestUMI, edits: best}
	}
	c.cache[umi] = entry
	return entry
}

func validUMI(umi string, allowN bool) bool {
	for i := 0; i < len(umi); i++ {
		if (allowN && !alphabetWithNMap[umi[i]]) || (!allowN && !alphabet[umi[i]]) {
			return false
		}
	}
	return true
}
