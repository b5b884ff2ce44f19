package constants

// JobKind is the declared type of a load job in code_caricamenti.
type JobKind string

// Stable values (these exact strings are stored in Tipo_Cari).
const (
	JobKindMap      JobKind = "M" // SNP map upload
	JobKindGenotype JobKind = "G" // final-report (genotype) upload
)

// Valid reports whether k is one of the two accepted job kinds.
func (k JobKind) Valid() bool {
	return k == JobKindMap || k == JobKindGenotype
}

// Bit_elaborato values. The external submitter creates rows with the bit
// unset and flips it to BitPending once the archive is in place; the poller
// only picks up rows at BitPending and terminal writes set BitDone.
const (
	BitPending = 0
	BitDone    = 1
)
