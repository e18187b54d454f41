package contig

import (
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/hts/sam"
)

// Translation is the result of Translate.
type Translation struct {
	// Entries is the translated header. It contains every entry of the
	// original header except the @SQ lines of contigs without a translation,
	// in the original order.
	Entries []HeaderEntry
	// Map maps the old reference index of each kept contig to its new index.
	Map *IndexMap
	// OldNames lists the contig names of the original header, indexed by the
	// old reference index.
	OldNames []string
}

// OldName returns the original name of the contig at oldID, or "*" if oldID
// does not name a contig of the original header.
func (tr *Translation) OldName(oldID int) string {
	if oldID < 0 || oldID >= len(tr.OldNames) {
		return "*"
	}
	return tr.OldNames[oldID]
}

// Translate renames the @SQ entries of a header using table. An @SQ entry whose
// SN has a translation is copied with only SN replaced; one without a
// translation is removed. All other entries are copied unchanged.
//
// Old reference indices are assigned by counting every @SQ entry, kept or not,
// so they match the indices carried by records of the original file. New
// indices are assigned by counting only the kept entries, so they match the
// positions in Translation.Entries.
func Translate(entries []HeaderEntry, table *Table) (*Translation, error) {
	tr := &Translation{
		Entries: make([]HeaderEntry, 0, len(entries)),
		Map:     newIndexMap(),
	}
	oldID, newID := 0, 0
	for _, e := range entries {
		if e.Type != typeSQ {
			tr.Entries = append(tr.Entries, e)
			continue
		}
		name, ok := e.Tag(nameTag)
		if !ok {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("@SQ line %d has no %s tag: %v", oldID, nameTag, e))
		}
		tr.OldNames = append(tr.OldNames, name)
		if newName, ok := table.Lookup(name); ok {
			tr.Entries = append(tr.Entries, e.withTag(nameTag, newName))
			tr.Map.insert(oldID, newID)
			newID++
		} else {
			log.Debug.Printf("contig %s (index %d) has no translation, dropping", name, oldID)
		}
		oldID++
	}
	return tr, nil
}

// TranslateSAMHeader is a shorthand for Translate on the entries of h followed
// by AddProgram for each of progs and NewSAMHeader. It also returns the
// translation so that records of the original file can be remapped.
func TranslateSAMHeader(h *sam.Header, table *Table, progs ...Program) (*sam.Header, *Translation, error) {
	entries, err := HeaderEntries(h)
	if err != nil {
		return nil, nil, errors.E(errors.Invalid, "parse header", err)
	}
	tr, err := Translate(entries, table)
	if err != nil {
		return nil, nil, err
	}
	newEntries := tr.Entries
	for _, p := range progs {
		newEntries = AddProgram(newEntries, p)
	}
	newHeader, err := NewSAMHeader(newEntries)
	if err != nil {
		return nil, nil, err
	}
	return newHeader, tr, nil
}

// Program describes a @PG line.
type Program struct {
	ID          string
	Name        string
	Version     string
	CommandLine string
}

// AddProgram returns a copy of entries with a @PG line for p appended. The new
// line's PP tag points to the last program of the existing chain, i.e., the
// @PG that no other @PG names as its predecessor. If p.ID is already used, a
// numeric suffix is added to make it unique.
func AddProgram(entries []HeaderEntry, p Program) []HeaderEntry {
	ids := map[string]bool{}
	referenced := map[string]bool{}
	var progIDs []string
	for _, e := range entries {
		if e.Type != typePG {
			continue
		}
		if id, ok := e.Tag("ID"); ok {
			ids[id] = true
			progIDs = append(progIDs, id)
		}
		if pp, ok := e.Tag("PP"); ok {
			referenced[pp] = true
		}
	}
	var prev string
	for _, id := range progIDs {
		if !referenced[id] {
			prev = id
		}
	}
	id := p.ID
	for n := 1; ids[id]; n++ {
		id = fmt.Sprintf("%s.%d", p.ID, n)
	}

	pg := HeaderEntry{Type: typePG, Tags: []TagPair{{"ID", id}}}
	if p.Name != "" {
		pg.Tags = append(pg.Tags, TagPair{"PN", p.Name})
	}
	if prev != "" {
		pg.Tags = append(pg.Tags, TagPair{"PP", prev})
	}
	if p.Version != "" {
		pg.Tags = append(pg.Tags, TagPair{"VN", p.Version})
	}
	if p.CommandLine != "" {
		pg.Tags = append(pg.Tags, TagPair{"CL", p.CommandLine})
	}
	out := make([]HeaderEntry, 0, len(entries)+1)
	out = append(out, entries...)
	return append(out, pg)
}
