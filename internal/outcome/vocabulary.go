// Package outcome translates the pipeline's internal result tags into the
// shared status vocabulary consumed by the downstream processes.
package outcome

import (
	"fmt"

	"github.com/herdgen/genoload/internal/common"
	"github.com/herdgen/genoload/internal/settings"
)

// Tag is an internal result code. The tags are fixed; the status triple each
// one maps to is configuration data loaded from the settings document.
type Tag string

const (
	// Cross-cutting.
	TagTypeMismatch Tag = "c_A" // declared kind contradicts the file signature
	TagCritical     Tag = "c_B" // unrecoverable inside the job, left for retry

	// Map pipeline.
	TagMapInvalidNames Tag = "m_A" // duplicate or empty SNP names
	TagMapNoHeader     Tag = "m_B" // no recognized header
	TagMapMultiFile    Tag = "m_C" // archive with more than one member
	TagMapMatches      Tag = "m_D" // identical map already loaded
	TagMapBrandNew     Tag = "m_E" // first map of this SNP count
	TagMapNewVariant   Tag = "m_F" // new variant under an existing SNP count

	// Genotype pipeline.
	TagGenoMissingColumns Tag = "g_A" // allele columns absent
	TagGenoFileNotFound   Tag = "g_B" // final report not found under the working dir
	TagGenoInconsistent   Tag = "g_C" // SNP count differs across samples
	TagGenoParsed         Tag = "g_D" // report parsed, map resolution pending
	TagGenoErrors         Tag = "g_E" // report rejected after parse
	TagGenoReady          Tag = "g_G" // genotypes staged
	TagGenoMultiFile      Tag = "g_H" // archive with more than one member
	TagGenoLoaded         Tag = "g_I" // genotypes plus parentage subset staged
	TagGenoParentage      Tag = "g_J" // parentage subset updated
	TagGenoAliasAdded     Tag = "g_K" // staged and new map alias registered
	TagGenoMapMismatch    Tag = "g_N" // file does not set-match any loaded map
)

var allTags = []Tag{
	TagTypeMismatch, TagCritical,
	TagMapInvalidNames, TagMapNoHeader, TagMapMultiFile, TagMapMatches, TagMapBrandNew, TagMapNewVariant,
	TagGenoMissingColumns, TagGenoFileNotFound, TagGenoInconsistent, TagGenoParsed, TagGenoErrors,
	TagGenoReady, TagGenoMultiFile, TagGenoLoaded, TagGenoParentage, TagGenoAliasAdded, TagGenoMapMismatch,
}

// Vocabulary resolves tags to status triples.
type Vocabulary struct {
	codes map[Tag]settings.Code
}

// NewVocabulary builds the resolver and verifies every tag the pipeline can
// emit has an entry, so a missing mapping surfaces at startup instead of at
// publish time.
func NewVocabulary(doc *settings.Document) (*Vocabulary, error) {
	codes := make(map[Tag]settings.Code, len(allTags))
	for _, tag := range allTags {
		code, ok := doc.Vocabulary[string(tag)]
		if !ok {
			return nil, common.NewAppError("VOCAB_INCOMPLETE", fmt.Sprintf("no vocabulary entry for tag %s", tag), common.ErrInvalidInput)
		}
		codes[tag] = code
	}
	return &Vocabulary{codes: codes}, nil
}

// Resolve returns the status triple of a tag.
func (v *Vocabulary) Resolve(tag Tag) settings.Code {
	return v.codes[tag]
}
