package contig

import (
	"sort"

	"github.com/grailbio/base/log"
)

// IndexMap maps the reference index of a contig in the original header to its
// index in the translated header. Only kept contigs have an entry. The new
// indices are dense: with k entries, they are exactly 0..k-1.
//
// An IndexMap is filled in by Translate and is read-only afterwards, so it is
// safe for concurrent readers.
type IndexMap struct {
	newIDs map[int]int
}

func newIndexMap() *IndexMap {
	return &IndexMap{newIDs: map[int]int{}}
}

// insert adds oldID -> newID. newID must be the next dense index, and oldID
// must not be present yet. Each old index is visited exactly once by
// Translate, so a violation is a bug, not bad input, and it crashes the
// process.
func (m *IndexMap) insert(oldID, newID int) {
	if prev, ok := m.newIDs[oldID]; ok {
		log.Panicf("contig.IndexMap: old index %d already maps to %d (inserting %d)", oldID, prev, newID)
	}
	if newID != len(m.newIDs) {
		log.Panicf("contig.IndexMap: new index %d for old index %d is not dense (expect %d)", newID, oldID, len(m.newIDs))
	}
	m.newIDs[oldID] = newID
}

// Lookup returns the new index of the contig at oldID in the original
// header. It returns (-1, false) if the contig was dropped, or if oldID is -1.
func (m *IndexMap) Lookup(oldID int) (int, bool) {
	newID, ok := m.newIDs[oldID]
	if !ok {
		return -1, false
	}
	return newID, true
}

// Len returns the number of kept contigs.
func (m *IndexMap) Len() int { return len(m.newIDs) }

// OldIDs returns the old indices that have an entry, in ascending order.
func (m *IndexMap) OldIDs() []int {
	ids := make([]int, 0, len(m.newIDs))
	for id := range m.newIDs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
