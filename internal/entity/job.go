package entity

import (
	"time"

	"github.com/herdgen/genoload/constants"
)

// Job is one row of code_caricamenti: a pending load request for a map or
// genotype archive. BitElaborato is nil while the submitter is still staging
// the upload; the poller only sees rows where it reached 0.
type Job struct {
	ID           int64             `json:"nume_cari"`
	SubmittedAt  time.Time         `json:"data_cari"`
	SubmittedBy  string            `json:"user_cari"`
	Kind         constants.JobKind `json:"tipo_cari"`
	FileName     string            `json:"nome_file"`
	BitOK        *int              `json:"bit_ok,omitempty"`
	BitElaborato *int              `json:"bit_elaborato,omitempty"`
	Diagnostic   string            `json:"errori_elab,omitempty"`
}
