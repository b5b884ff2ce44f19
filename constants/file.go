package constants

import "strings"

// Allele tokens accepted in the AB columns of a final report. Anything else
// is counted as a data-quality warning and left undecoded.
var AlleleTokens = map[string]struct{}{
	"A": {},
	"B": {},
	"-": {},
}

// ValidAllele reports whether tok is one of A, B or the no-call dash.
func ValidAllele(tok string) bool {
	_, ok := AlleleTokens[tok]
	return ok
}

// Column and marker names used by the instrument exports.
const (
	HeaderMarker    = "[Header]"  // first line of a final report
	ContentMarker   = "Content"   // chip descriptor line inside the header block
	ColSNPName      = "SNP Name"  // marks the genotype data header
	ColSampleID     = "Sample ID"
	ColAllele1      = "Allele1 - AB"
	ColAllele2      = "Allele2 - AB"
	MapColIndex     = "Index" // marks the map file header
	MapColName      = "Name"  // SNP identifier column of a map file
	MaxSampleIDLen  = 25      // longer sample codes are logged, not rejected
)

// NormalizeFileName maps the short upload prefixes used by the submitter UI
// onto the names the instruments actually deposit: G_x -> GEN_x, M_x -> MAP_x.
func NormalizeFileName(name string) string {
	if strings.HasPrefix(name, "G_") {
		return "GEN_" + name[2:]
	}
	if strings.HasPrefix(name, "M_") {
		return "MAP_" + name[2:]
	}
	return name
}
