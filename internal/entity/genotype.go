package entity

// StagedGenotype is one row of the tmp_finalreports staging table: the
// decoded genotype of one sample, keyed by the job that produced it.
type StagedGenotype struct {
	JobID            int64   `json:"nume_cari"`
	SampleID         string  `json:"campione"`
	CallRate         float64 `json:"callrate_g"`
	MapUsed          string  `json:"mappa_usata_g"`
	Encoded          string  `json:"genotipo"`
	FileName         string  `json:"file_name"`
	ParentageEncoded *string `json:"genotipo_parentela,omitempty"`
}
