// Package genotype decodes raw AB allele calls into the compact per-sample
// genotype encoding stored in the staging table, tracking allele-validity
// and coverage quality metrics along the way.
package genotype

import (
	"log/slog"
	"math"
	"strings"

	"github.com/herdgen/genoload/constants"
)

// Row is one raw (sample, SNP) allele pair parsed from a final report.
type Row struct {
	SampleID string
	SNPName  string
	Allele1  string
	Allele2  string
}

// Record is the decoded genotype of one sample.
type Record struct {
	SampleID string
	MapUsed  string
	CallRate float64
	Encoded  string
}

// Stats are the non-fatal quality counters of one decode. Lab exports
// routinely carry superset/subset SNP lists relative to the canonical map,
// so none of these fail the job on their own.
type Stats struct {
	InvalidAllele1 int
	InvalidAllele2 int
	// NotInMap is the set of file SNPs absent from the map (counted, never decoded).
	NotInMap map[string]struct{}
	// MissingFromFile is how many map SNPs never appeared in any row.
	MissingFromFile int
}

// Decoder accumulates rows for one final report against one resolved map.
type Decoder struct {
	mapName string
	index   map[string]int
	decode  map[string]string
	missing byte
	logger  *slog.Logger

	buffers map[string][]byte
	order   []string
	seen    map[string]struct{}
	stats   Stats
}

// NewDecoder builds a decoder over the map's SNP list in map order.
// decodeTable maps allele pairs ("AA", "AB", ...) to single-character codes;
// missingCode fills positions that never decode.
func NewDecoder(mapName string, snpNames []string, decodeTable map[string]string, missingCode string, logger *slog.Logger) *Decoder {
	if logger == nil {
		logger = slog.Default()
	}
	index := make(map[string]int, len(snpNames))
	for i, name := range snpNames {
		index[strings.ToUpper(strings.TrimSpace(name))] = i
	}
	return &Decoder{
		mapName: mapName,
		index:   index,
		decode:  decodeTable,
		missing: missingCode[0],
		logger:  logger,
		buffers: map[string][]byte{},
		seen:    map[string]struct{}{},
		stats:   Stats{NotInMap: map[string]struct{}{}},
	}
}

// MapSize returns the number of SNP positions per sample.
func (d *Decoder) MapSize() int { return len(d.index) }

// Add consumes one raw row. Unknown SNPs and unrecognized allele pairs are
// counted and skipped, never fatal.
func (d *Decoder) Add(r Row) {
	snp := strings.ToUpper(strings.TrimSpace(r.SNPName))
	d.seen[snp] = struct{}{}

	buf, ok := d.buffers[r.SampleID]
	if !ok {
		buf = make([]byte, len(d.index))
		for i := range buf {
			buf[i] = d.missing
		}
		d.buffers[r.SampleID] = buf
		d.order = append(d.order, r.SampleID)
	}

	if !constants.ValidAllele(r.Allele1) {
		d.stats.InvalidAllele1++
		d.logger.Warn("invalid allele token", "column", constants.ColAllele1, "value", r.Allele1, "count", d.stats.InvalidAllele1)
	}
	if !constants.ValidAllele(r.Allele2) {
		d.stats.InvalidAllele2++
		d.logger.Warn("invalid allele token", "column", constants.ColAllele2, "value", r.Allele2, "count", d.stats.InvalidAllele2)
	}

	pos, ok := d.index[snp]
	if !ok {
		d.stats.NotInMap[snp] = struct{}{}
		return
	}
	if code, ok := d.decode[r.Allele1+r.Allele2]; ok {
		buf[pos] = code[0]
	}
}

// Finish computes call rates and returns one record per sample in first-seen
// order, plus the accumulated quality counters.
func (d *Decoder) Finish() ([]Record, Stats) {
	n := len(d.index)
	for snp := range d.index {
		if _, ok := d.seen[snp]; !ok {
			d.stats.MissingFromFile++
		}
	}

	records := make([]Record, 0, len(d.order))
	for _, sample := range d.order {
		buf := d.buffers[sample]
		called := 0
		for _, c := range buf {
			if c != d.missing {
				called++
			}
		}
		rate := math.Round(float64(called)/float64(n)*10000) / 10000
		records = append(records, Record{
			SampleID: sample,
			MapUsed:  d.mapName,
			CallRate: rate,
			Encoded:  string(buf),
		})
	}
	return records, d.stats
}
