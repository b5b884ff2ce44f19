package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/herdgen/genoload/constants"
	"github.com/herdgen/genoload/internal/archive"
	"github.com/herdgen/genoload/internal/entity"
	"github.com/herdgen/genoload/internal/outcome"
	"github.com/herdgen/genoload/internal/snpmap"
	"github.com/herdgen/genoload/internal/tabular"
)

// runMapJob parses the uploaded SNP map file, reconciles it against the map
// registry and stores it when it carries new content. Map jobs never stage
// genotypes; their only side effect is the registry itself.
func (p *Processor) runMapJob(ctx context.Context, job entity.Job, fileName string, arch *archive.Archive) (outcome.Tag, string, error) {
	log := p.logger.With("job_id", job.ID, "file", fileName)

	var names []string
	res, err := tabular.Parse(arch, tabular.Params{
		HeaderPredicate: func(line string) bool {
			return strings.HasPrefix(line, constants.MapColIndex)
		},
		Separators: p.doc.Separators,
		Required:   []string{constants.MapColIndex, constants.MapColName},
		Row: func(row tabular.Row) error {
			names = append(names, row.Field(constants.MapColName))
			return nil
		},
	})
	if err != nil {
		if errors.Is(err, tabular.ErrHeaderNotFound) {
			log.Error("no map header recognized with any separator")
			return outcome.TagMapNoHeader, "", nil
		}
		return "", "", siteErr(SiteParse, err)
	}
	log.Info("map file parsed", "separator", res.Separator, "snp_count", len(names), "malformed", res.Malformed)

	// The historic override map keeps its legacy name instead of the
	// size-derived one; it is recognized by its token in the file name.
	declared := fileName
	if p.doc.MapNameOverride != "" && strings.Contains(fileName, p.doc.MapNameOverride) {
		declared = p.doc.MapNameOverride
	}

	dec, err := snpmap.Reconcile(ctx, p.maps, names, declared, p.doc.MapNameOverride)
	if err != nil {
		return "", "", siteErr(SiteReconcile, err)
	}

	switch dec.Kind {
	case snpmap.Rejected:
		reason := "duplicate SNP names"
		if dec.Reason == snpmap.EmptyNames {
			reason = "empty SNP names"
		}
		log.Error("map rejected", "reason", reason)
		return outcome.TagMapInvalidNames, "", nil

	case snpmap.MatchesExisting:
		log.Info("map already on record", "map", dec.MapName)
		return outcome.TagMapMatches, fmt.Sprintf("Map content identical to %s, nothing stored.", dec.MapName), nil

	case snpmap.BrandNew:
		if err := p.maps.CreateMap(ctx, dec.MapName, dec.SNPCount, "", names); err != nil {
			return "", "", siteErr(SiteStage, err)
		}
		return outcome.TagMapBrandNew, fmt.Sprintf("New map stored as %s (%d SNP).", dec.MapName, dec.SNPCount), nil

	case snpmap.NewVariantOfSize:
		if err := p.maps.CreateMap(ctx, dec.MapName, dec.SNPCount, "", names); err != nil {
			return "", "", siteErr(SiteStage, err)
		}
		return outcome.TagMapNewVariant, fmt.Sprintf("New variant stored as %s (%d SNP).", dec.MapName, dec.SNPCount), nil
	}
	return "", "", siteErr(SiteReconcile, fmt.Errorf("unexpected reconcile decision %d", dec.Kind))
}
