package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/herdgen/genoload/constants"
	"github.com/herdgen/genoload/internal/archive"
	"github.com/herdgen/genoload/internal/entity"
	"github.com/herdgen/genoload/internal/genotype"
	"github.com/herdgen/genoload/internal/outcome"
	"github.com/herdgen/genoload/internal/snpmap"
	"github.com/herdgen/genoload/internal/tabular"
)

// runGenotypeJob parses a final report, resolves the SNP map it was called
// against, decodes every sample and stages the result. Intermediate states
// (parsed, staged, parentage, alias) are tracked in logs only; the job row
// receives a single terminal write with the returned tag.
func (p *Processor) runGenotypeJob(ctx context.Context, job entity.Job, fileName string, arch *archive.Archive) (outcome.Tag, string, error) {
	log := p.logger.With("job_id", job.ID, "file", fileName)

	alias, err := p.chipAlias(arch)
	if err != nil {
		return "", "", siteErr(SiteParse, err)
	}
	if alias != "" {
		log.Info("chip descriptor found", "alias", alias)
	}

	var rows []genotype.Row
	perSample := map[string]int{}
	fileSNPs := map[string]struct{}{}
	res, err := tabular.Parse(arch, tabular.Params{
		HeaderPredicate: func(line string) bool {
			return strings.HasPrefix(line, constants.ColSNPName)
		},
		Separators: p.doc.Separators,
		Required: []string{
			constants.ColSNPName,
			constants.ColSampleID,
			constants.ColAllele1,
			constants.ColAllele2,
		},
		Row: func(row tabular.Row) error {
			r := genotype.Row{
				SampleID: strings.TrimSpace(row.Field(constants.ColSampleID)),
				SNPName:  row.Field(constants.ColSNPName),
				Allele1:  strings.TrimSpace(row.Field(constants.ColAllele1)),
				Allele2:  strings.TrimSpace(row.Field(constants.ColAllele2)),
			}
			rows = append(rows, r)
			perSample[r.SampleID]++
			fileSNPs[strings.ToUpper(strings.TrimSpace(r.SNPName))] = struct{}{}
			return nil
		},
	})
	if err != nil {
		if errors.Is(err, tabular.ErrHeaderNotFound) {
			log.Error("no final report header recognized with any separator")
			return outcome.TagGenoMissingColumns, "", nil
		}
		return "", "", siteErr(SiteParse, err)
	}
	log.Info("final report parsed", "separator", res.Separator, "rows", res.Rows, "samples", len(perSample), "malformed", res.Malformed)

	if len(perSample) == 0 {
		log.Error("final report carries no samples")
		return outcome.TagGenoInconsistent, "", nil
	}
	snpPerSample := -1
	for sample, count := range perSample {
		if snpPerSample == -1 {
			snpPerSample = count
			continue
		}
		if count != snpPerSample {
			log.Error("samples carry different SNP counts", "sample", sample, "count", count, "expected", snpPerSample)
			return outcome.TagGenoInconsistent, "", nil
		}
	}
	for sample := range perSample {
		if len(sample) > constants.MaxSampleIDLen {
			log.Warn("sample code exceeds archive column width", "sample", sample, "len", len(sample))
		}
	}

	mapName, updateAlias, err := p.resolveMap(ctx, alias, snpPerSample)
	if err != nil {
		return "", "", siteErr(SiteReconcile, err)
	}
	if mapName == "" {
		log.Error("no map matches the report", "alias", alias, "snp_per_sample", snpPerSample)
		return outcome.TagGenoMapMismatch, "", nil
	}

	storedNames, err := p.maps.SNPNames(ctx, mapName)
	if err != nil {
		return "", "", siteErr(SiteReconcile, err)
	}
	if !snpmap.SetsEqual(fileSNPs, snpmap.Normalize(storedNames)) {
		log.Error("report SNP set differs from resolved map", "map", mapName, "file_snps", len(fileSNPs), "map_snps", len(storedNames))
		return outcome.TagGenoMapMismatch, "", nil
	}
	log.Info("map resolved", "map", mapName, "snp_count", len(storedNames))

	dec := genotype.NewDecoder(mapName, storedNames, p.doc.DecodeGenotype, p.doc.MissingCode, log)
	for _, r := range rows {
		dec.Add(r)
	}
	records, stats := dec.Finish()
	log.Info("report decoded",
		"samples", len(records),
		"invalid_allele1", stats.InvalidAllele1,
		"invalid_allele2", stats.InvalidAllele2,
		"snps_not_in_map", len(stats.NotInMap),
		"snps_missing_from_file", stats.MissingFromFile)

	if err := p.genos.InsertBatch(ctx, job.ID, fileName, records); err != nil {
		return "", "", siteErr(SiteStage, err)
	}

	parentage, err := p.stageParentage(ctx, job.ID, rows, log)
	if err != nil {
		return "", "", err
	}

	if updateAlias && alias != "" {
		if err := p.maps.RegisterAlias(ctx, job.ID, mapName, snpPerSample, alias); err != nil {
			return "", "", siteErr(SiteStage, err)
		}
	}

	if p.reporter != nil {
		if err := p.reporter.WriteReport(job, fileName, records, parentage); err != nil {
			log.Warn("per-report export failed", "err", err)
		}
	}

	return outcome.TagGenoReady, p.buildSummary(ctx, job.ID, records, log), nil
}

// chipAlias extracts the chip alias from the Content descriptor line of the
// header block, when present. The descriptor uses the same regional
// separator as the rest of the file.
func (p *Processor) chipAlias(arch *archive.Archive) (string, error) {
	line, err := tabular.FindPrefixed(arch, constants.ContentMarker)
	if err != nil {
		return "", err
	}
	if line == "" {
		return "", nil
	}
	for _, sep := range p.doc.Separators {
		tokens := strings.Split(line, sep)
		if len(tokens) < 2 {
			continue
		}
		// Tab exports pad the descriptor with an empty cell before the alias.
		idx := 1
		if sep == "\t" && len(tokens) > 2 {
			idx = 2
		}
		return strings.TrimSpace(tokens[idx]), nil
	}
	return "", nil
}

// resolveMap picks the map to decode against: the chip alias wins when it is
// bound to a map, otherwise the per-sample SNP count decides. A count-based
// resolution under a known alias is reported back so the binding can be
// registered for the next upload.
func (p *Processor) resolveMap(ctx context.Context, alias string, snpPerSample int) (string, bool, error) {
	if alias != "" {
		name, ok, err := p.maps.FindByAlias(ctx, alias)
		if err != nil {
			return "", false, err
		}
		if ok {
			return name, false, nil
		}
		name, ok, err = p.maps.FindBySNPCount(ctx, snpPerSample)
		if err != nil || !ok {
			return "", false, err
		}
		return name, true, nil
	}
	name, ok, err := p.maps.FindBySNPCount(ctx, snpPerSample)
	if err != nil || !ok {
		return "", false, err
	}
	return name, false, nil
}

// stageParentage decodes the parentage SNP subset and writes it next to the
// staged genotypes. A missing parentage map downgrades the stage to a
// warning; the main load already succeeded.
func (p *Processor) stageParentage(ctx context.Context, jobID int64, rows []genotype.Row, log *slog.Logger) (map[string]string, error) {
	if p.doc.ParentageMap == "" {
		return nil, nil
	}
	infos, err := p.maps.ListMaps(ctx)
	if err != nil {
		return nil, siteErr(SiteStage, err)
	}
	found := false
	for _, m := range infos {
		if m.Name == p.doc.ParentageMap {
			found = true
			break
		}
	}
	if !found {
		log.Warn("parentage map not on record, stage skipped", "map", p.doc.ParentageMap)
		return nil, nil
	}

	parNames, err := p.maps.SNPNames(ctx, p.doc.ParentageMap)
	if err != nil {
		return nil, siteErr(SiteStage, err)
	}
	pdec := genotype.NewDecoder(p.doc.ParentageMap, parNames, p.doc.DecodeGenotype, p.doc.MissingCode, log)
	for _, r := range rows {
		pdec.Add(r)
	}
	precs, _ := pdec.Finish()
	parentage := make(map[string]string, len(precs))
	for _, pr := range precs {
		parentage[pr.SampleID] = pr.Encoded
	}
	if err := p.genos.UpdateParentage(ctx, jobID, parentage); err != nil {
		return nil, siteErr(SiteStage, err)
	}
	log.Info("parentage genotypes staged", "map", p.doc.ParentageMap, "samples", len(parentage))
	return parentage, nil
}
