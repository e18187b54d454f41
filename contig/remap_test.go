package contig_test

import (
	"testing"

	"github.com/SteampunkIslande/umisamedit/contig"
	"github.com/SteampunkIslande/umisamedit/umi"
	"github.com/grailbio/hts/sam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRecord is an in-memory contig.Record.
type fakeRecord struct {
	refID, mateRefID int
	name             string
	aux              map[sam.Tag]contig.AuxValue
}

func (r *fakeRecord) RefID() int          { return r.refID }
func (r *fakeRecord) SetRefID(id int)     { r.refID = id }
func (r *fakeRecord) MateRefID() int      { return r.mateRefID }
func (r *fakeRecord) SetMateRefID(id int) { r.mateRefID = id }
func (r *fakeRecord) Name() string        { return r.name }
func (r *fakeRecord) SetName(name string) { r.name = name }
func (r *fakeRecord) Aux(tag sam.Tag) (contig.AuxValue, bool) {
	v, ok := r.aux[tag]
	return v, ok
}

// newTestTranslation translates header contigs chr1, chr2, chr3 with
// {chr1: 1, chr3: 3}, so the index map is {0: 0, 2: 1}.
func newTestTranslation(t *testing.T) *contig.Translation {
	entries, err := contig.ParseHeaderText([]byte("@SQ\tSN:chr1\tLN:100\n@SQ\tSN:chr2\tLN:200\n@SQ\tSN:chr3\tLN:300\n"))
	require.NoError(t, err)
	tr, err := contig.Translate(entries, contig.NewTable(map[string]string{"chr1": "1", "chr3": "3"}))
	require.NoError(t, err)
	return tr
}

func TestRemapDecisionTable(t *testing.T) {
	tr := newTestTranslation(t)
	tests := []struct {
		refID, mateRefID         int
		keep                     bool
		wantRefID, wantMateRefID int
	}{
		{0, 0, true, 0, 0},
		{0, 2, true, 0, 1},
		{2, 0, true, 1, 0},
		{2, 1, true, 1, -1},
		{0, -1, true, 0, -1},
		{1, 0, true, -1, 0},
		{-1, 2, true, -1, 1},
		{1, 1, false, 1, 1},
		{1, -1, false, 1, -1},
		{-1, -1, false, -1, -1},
	}
	for _, test := range tests {
		stats := contig.NewDropStats()
		m := contig.NewRemapper(tr, stats, contig.RemapOpts{})
		rec := &fakeRecord{refID: test.refID, mateRefID: test.mateRefID, name: "r"}
		keep := m.Remap(rec)
		assert.Equal(t, test.keep, keep, "%+v", test)
		assert.Equal(t, test.wantRefID, rec.refID, "%+v", test)
		assert.Equal(t, test.wantMateRefID, rec.mateRefID, "%+v", test)
		if keep {
			assert.EqualValues(t, 0, stats.Total(), "%+v", test)
		} else {
			assert.EqualValues(t, 1, stats.Total(), "%+v", test)
		}
	}
}

func TestRemapDropAccounting(t *testing.T) {
	tr := newTestTranslation(t)
	stats := contig.NewDropStats()
	m := contig.NewRemapper(tr, stats, contig.RemapOpts{})

	// tid=chr2, mtid=chr1: mate survives, so the record is kept.
	rec := &fakeRecord{refID: 1, mateRefID: 0, name: "a"}
	assert.True(t, m.Remap(rec))
	assert.Equal(t, -1, rec.refID)
	assert.Equal(t, 0, rec.mateRefID)
	assert.EqualValues(t, 0, stats.Total())

	// Both on chr2: dropped and counted under the original name.
	assert.False(t, m.Remap(&fakeRecord{refID: 1, mateRefID: 1, name: "b"}))
	s := stats.Summary()
	assert.EqualValues(t, 1, s.Total)
	assert.Equal(t, map[string]int64{"chr2": 1}, s.ByContig)

	assert.False(t, m.Remap(&fakeRecord{refID: 1, mateRefID: -1, name: "c"}))
	assert.False(t, m.Remap(&fakeRecord{refID: -1, mateRefID: -1, name: "d"}))
	s = stats.Summary()
	assert.EqualValues(t, 3, s.Total)
	assert.Equal(t, map[string]int64{"chr2": 2, "*": 1}, s.ByContig)
	assert.Equal(t, []string{"*", "chr2"}, s.Names())
}

func TestRemapKeepUnplaced(t *testing.T) {
	tr := newTestTranslation(t)
	stats := contig.NewDropStats()
	m := contig.NewRemapper(tr, stats, contig.RemapOpts{KeepUnplaced: true, NameTag: "RX"})
	rec := &fakeRecord{refID: -1, mateRefID: -1, name: "u", aux: map[sam.Tag]contig.AuxValue{
		sam.NewTag("RX"): {Kind: contig.AuxString, Str: "AC"},
	}}
	assert.True(t, m.Remap(rec))
	assert.Equal(t, -1, rec.refID)
	assert.Equal(t, -1, rec.mateRefID)
	assert.Equal(t, "u_AC", rec.name)
	assert.False(t, m.Remap(&fakeRecord{refID: 1, mateRefID: 1}))
	assert.EqualValues(t, 1, stats.Total())
}

func TestRemapNameTag(t *testing.T) {
	tr := newTestTranslation(t)
	rx := sam.NewTag("RX")
	tests := []struct {
		aux  map[sam.Tag]contig.AuxValue
		tag  string
		want string
	}{
		{map[sam.Tag]contig.AuxValue{rx: {Kind: contig.AuxString, Str: "ACGT"}}, "RX", "read1_ACGT"},
		{nil, "RX", "read1"},
		{map[sam.Tag]contig.AuxValue{rx: {Kind: contig.AuxInteger, Int: 7}}, "RX", "read1"},
		{map[sam.Tag]contig.AuxValue{rx: {Kind: contig.AuxHex, Str: "1AE3"}}, "RX", "read1"},
		{map[sam.Tag]contig.AuxValue{rx: {Kind: contig.AuxString, Str: "ACGT"}}, "", "read1"},
		{map[sam.Tag]contig.AuxValue{sam.NewTag("BX"): {Kind: contig.AuxString, Str: "GG"}}, "BX", "read1_GG"},
	}
	for _, test := range tests {
		m := contig.NewRemapper(tr, contig.NewDropStats(), contig.RemapOpts{NameTag: test.tag})
		rec := &fakeRecord{refID: 0, mateRefID: 0, name: "read1", aux: test.aux}
		assert.True(t, m.Remap(rec))
		assert.Equal(t, test.want, rec.name, "%+v", test)
	}

	// Dropped records keep their name.
	m := contig.NewRemapper(tr, contig.NewDropStats(), contig.RemapOpts{NameTag: "RX"})
	rec := &fakeRecord{refID: 1, mateRefID: 1, name: "read2", aux: map[sam.Tag]contig.AuxValue{
		rx: {Kind: contig.AuxString, Str: "ACGT"},
	}}
	assert.False(t, m.Remap(rec))
	assert.Equal(t, "read2", rec.name)

	assert.Panics(t, func() { contig.NewRemapper(tr, contig.NewDropStats(), contig.RemapOpts{NameTag: "RXX"}) })
}

func TestRemapUMICorrection(t *testing.T) {
	tr := newTestTranslation(t)
	c, err := umi.NewSnapCorrector([]string{"AAAA", "CCCC"})
	require.NoError(t, err)
	m := contig.NewRemapper(tr, contig.NewDropStats(), contig.RemapOpts{NameTag: "RX", Corrector: c})
	for _, test := range []struct{ umi, want string }{
		{"AAAT", "r_AAAA"},
		{"AACC", "r_AACC"},
		{"AC-G", "r_AC-G"},
	} {
		rec := &fakeRecord{refID: 0, mateRefID: -1, name: "r", aux: map[sam.Tag]contig.AuxValue{
			sam.NewTag("RX"): {Kind: contig.AuxString, Str: test.umi},
		}}
		assert.True(t, m.Remap(rec))
		assert.Equal(t, test.want, rec.name)
	}
}

func TestSAMRecord(t *testing.T) {
	chr1, err := sam.NewReference("chr1", "", "", 100, nil, nil)
	require.NoError(t, err)
	chr2, err := sam.NewReference("chr2", "", "", 200, nil, nil)
	require.NoError(t, err)
	chr3, err := sam.NewReference("chr3", "", "", 300, nil, nil)
	require.NoError(t, err)
	oldHeader, err := sam.NewHeader(nil, []*sam.Reference{chr1, chr2, chr3})
	require.NoError(t, err)

	newHeader, tr, err := contig.TranslateSAMHeader(oldHeader, contig.NewTable(map[string]string{"chr1": "1", "chr3": "3"}))
	require.NoError(t, err)
	rx, err := sam.NewAux(sam.NewTag("RX"), "ACGT")
	require.NoError(t, err)
	nm, err := sam.NewAux(sam.NewTag("NM"), 3)
	require.NoError(t, err)

	r := sam.GetFromFreePool()
	r.Name = "read1"
	r.Ref = chr3
	r.MateRef = chr2
	r.AuxFields = []sam.Aux{nm, rx}

	rec := contig.NewSAMRecord(r, newHeader.Refs())
	assert.Equal(t, 2, rec.RefID())
	assert.Equal(t, 1, rec.MateRefID())
	v, ok := rec.Aux(sam.NewTag("NM"))
	require.True(t, ok)
	assert.Equal(t, contig.AuxInteger, v.Kind)
	assert.EqualValues(t, 3, v.Int)
	_, ok = rec.Aux(sam.NewTag("XX"))
	assert.False(t, ok)

	m := contig.NewRemapper(tr, contig.NewDropStats(), contig.RemapOpts{NameTag: "RX"})
	require.True(t, m.Remap(rec))
	assert.Equal(t, "3", r.Ref.Name())
	assert.Equal(t, 1, r.Ref.ID())
	assert.Nil(t, r.MateRef)
	assert.Equal(t, "read1_ACGT", r.Name)
	assert.Equal(t, r, rec.Unwrap())
}

func TestAuxKindString(t *testing.T) {
	assert.Equal(t, "string", contig.AuxString.String())
	assert.Equal(t, "array", contig.AuxArray.String())
	assert.Equal(t, "AuxKind(42)", contig.AuxKind(42).String())
}
