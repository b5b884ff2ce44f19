package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/herdgen/genoload/internal/genotype"
)

// buildSummary composes the advisory diagnostic stored with a successful
// genotype load: the upload count plus the unknown-sample and overwrite
// cross-checks. The cross-checks are best effort; a failed lookup drops the
// block instead of failing the job.
func (p *Processor) buildSummary(ctx context.Context, jobID int64, records []genotype.Record, log *slog.Logger) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d genotypes ready to be uploaded.\n", len(records))

	known, err := p.samples.ListKnownSamples(ctx)
	if err != nil {
		log.Warn("sample archive lookup failed, summary block skipped", "err", err)
	} else {
		var unknown []string
		for _, rec := range records {
			if _, ok := known[rec.SampleID]; !ok {
				unknown = append(unknown, rec.SampleID)
			}
		}
		if len(unknown) > 0 {
			fmt.Fprintf(&b, "%d samples are not present in the sample archive. The first 10 are: %s\n",
				len(unknown), firstN(unknown, 10))
		}
	}

	staged, err := p.genos.StagedSampleSet(ctx, jobID)
	if err != nil {
		log.Warn("staging lookup failed, summary block skipped", "err", err)
	} else {
		var overwritten []string
		for _, rec := range records {
			if _, ok := staged[rec.SampleID]; ok {
				overwritten = append(overwritten, rec.SampleID)
			}
		}
		if len(overwritten) > 0 {
			fmt.Fprintf(&b, "%d genotypes already staged will be overwritten. The first 10 are: %s\n",
				len(overwritten), firstN(overwritten, 10))
		}
	}

	return b.String()
}

func firstN(items []string, n int) string {
	sorted := append([]string(nil), items...)
	sort.Strings(sorted)
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return strings.Join(sorted, ", ")
}
