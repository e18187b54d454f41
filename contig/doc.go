// Package contig renames the reference sequences of a BAM or SAM file.
//
// Translate rewrites the @SQ lines of a header using a Table of old to new
// contig names, dropping contigs that have no translation, and returns an
// IndexMap from old to new reference indices. A Remapper then uses that map to
// rewrite the reference and mate-reference index of each record, or to drop
// the record when neither index survives. Dropped records are counted per
// original contig name in a DropStats.
package contig
