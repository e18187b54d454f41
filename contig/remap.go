package contig

import (
	"github.com/SteampunkIslande/umisamedit/umi"
	"github.com/grailbio/base/log"
	"github.com/grailbio/hts/sam"
)

// RemapOpts configures a Remapper.
type RemapOpts struct {
	// NameTag is the two-letter auxiliary tag whose string value is appended
	// to the read name of kept records, as "<name>_<value>". Empty disables
	// the append.
	NameTag string
	// KeepUnplaced keeps records whose reference and mate reference are both
	// -1 in the input, unchanged. By default they are dropped like any other
	// record with no surviving reference, and counted under "*".
	KeepUnplaced bool
	// Corrector, if set, snap-corrects the tag value before it is appended.
	Corrector *umi.SnapCorrector
}

// Remapper rewrites the reference indices of records of the original file so
// that they are valid under the translated header.
//
// Thread compatible: the IndexMap is shared read-only, but DropStats is not
// synchronized.
type Remapper struct {
	tr     *Translation
	stats  *DropStats
	opts   RemapOpts
	tag    sam.Tag
	hasTag bool
}

// NewRemapper creates a Remapper for records of the file whose header was
// translated into tr. Dropped records are counted in stats.
//
// REQUIRES: opts.NameTag is empty or two characters long.
func NewRemapper(tr *Translation, stats *DropStats, opts RemapOpts) *Remapper {
	m := &Remapper{tr: tr, stats: stats, opts: opts}
	switch len(opts.NameTag) {
	case 0:
	case 2:
		m.tag = sam.NewTag(opts.NameTag)
		m.hasTag = true
	default:
		log.Panicf("contig.NewRemapper: tag %q must be two characters long", opts.NameTag)
	}
	return m
}

// Remap updates the reference and mate reference indices of rec in place and
// reports whether rec should be written. A record is dropped only when neither
// its reference nor its mate reference survived translation. If only one
// survived, the other is set to -1.
func (m *Remapper) Remap(rec Record) bool {
	oldID, oldMateID := rec.RefID(), rec.MateRefID()
	if m.opts.KeepUnplaced && oldID < 0 && oldMateID < 0 {
		m.appendTag(rec)
		return true
	}
	newID, ok := m.tr.Map.Lookup(oldID)
	newMateID, mateOK := m.tr.Map.Lookup(oldMateID)
	if !ok && !mateOK {
		m.stats.Record(m.tr.OldName(oldID))
		return false
	}
	rec.SetRefID(newID)
	rec.SetMateRefID(newMateID)
	m.appendTag(rec)
	return true
}

// appendTag appends the value of the configured tag to the read name. Records
// without the tag, or with a non-string value, are left alone.
func (m *Remapper) appendTag(rec Record) {
	if !m.hasTag {
		return
	}
	v, ok := rec.Aux(m.tag)
	if !ok {
		return
	}
	s, ok := v.StringValue()
	if !ok {
		return
	}
	if m.opts.Corrector != nil {
		s, _, _ = m.opts.Corrector.CorrectUMI(s)
	}
	rec.SetName(rec.Name() + "_" + s)
}
