package contig

import "sort"

// DropStats counts the records dropped because neither their reference nor
// their mate reference had a translation, per original contig name. Counts
// only grow. Thread compatible.
type DropStats struct {
	byContig map[string]int64
	total    int64
}

// NewDropStats creates an empty DropStats.
func NewDropStats() *DropStats {
	return &DropStats{byContig: map[string]int64{}}
}

// Record counts one dropped record whose reference was the given contig of
// the original header.
func (s *DropStats) Record(contig string) {
	s.byContig[contig]++
	s.total++
}

// Total returns the number of dropped records.
func (s *DropStats) Total() int64 { return s.total }

// Summary returns a snapshot of the counts.
func (s *DropStats) Summary() DropSummary {
	byContig := make(map[string]int64, len(s.byContig))
	for contig, n := range s.byContig {
		byContig[contig] = n
	}
	return DropSummary{Total: s.total, ByContig: byContig}
}

// DropSummary is a snapshot of DropStats.
type DropSummary struct {
	// Total is the number of dropped records.
	Total int64
	// ByContig maps an original contig name to the number of records dropped
	// for it.
	ByContig map[string]int64
}

// Names returns the contig names in ByContig, sorted.
func (s DropSummary) Names() []string {
	names := make([]string, 0, len(s.ByContig))
	for name := range s.ByContig {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
