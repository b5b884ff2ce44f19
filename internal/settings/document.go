// Package settings loads the JSON settings document shared with the other
// loader processes: candidate separators, the genotype decode table, the
// outcome vocabulary and the environment-specific map overrides.
package settings

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/herdgen/genoload/internal/common"
)

// Code is one entry of the outcome vocabulary: the status triple written to
// code_caricamenti when a job reaches that outcome.
type Code struct {
	BitOK         int    `json:"bit_ok"`
	BitElaborato  int    `json:"bit_elaborato"`
	ErroriElab    string `json:"errori_elab"`
}

// Document is the parsed settings file.
type Document struct {
	// Separators are the candidate column separators, tried in order. The
	// instruments export with regional delimiters and the files carry no
	// delimiter metadata.
	Separators []string `json:"separators"`

	// DecodeGenotype maps an allele pair ("AA", "AB", ...) to the single
	// character stored at the SNP position of the encoded genotype.
	DecodeGenotype map[string]string `json:"decode_genotype"`

	// MissingCode is the character used for positions that never decode.
	MissingCode string `json:"missing_code"`

	// MapNameOverride, when non-empty, is a historic map name that bypasses
	// the size-derived suffix naming (environment specific).
	MapNameOverride string `json:"map_name_override"`

	// ParentageMap is the name of the SNP map used by the parentage stage.
	ParentageMap string `json:"parentage_map"`

	// Vocabulary maps the internal outcome tags (c_A, m_A..m_F, g_A..g_N)
	// to the status triples shared with the downstream processes.
	Vocabulary map[string]Code `json:"vocabulary"`
}

// Load reads, schema-validates and decodes the settings document at path.
func Load(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, common.NewAppError("SETTINGS_READ", fmt.Sprintf("reading %s", path), err)
	}
	return Parse(raw)
}

// Parse validates raw against the document schema and decodes it.
func Parse(raw []byte) (*Document, error) {
	if err := ValidateAgainstSchema(buildDocumentSchema(), raw); err != nil {
		return nil, common.NewAppError("SETTINGS_INVALID", "settings document rejected by schema", err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, common.NewAppError("SETTINGS_INVALID", "decoding settings document", err)
	}
	if doc.MissingCode == "" {
		doc.MissingCode = "5"
	}
	return &doc, nil
}

// buildDocumentSchema returns the JSON-Schema (draft 2020-12 subset) for the
// settings document as a generic map, validated locally before decoding.
func buildDocumentSchema() map[string]any {
	codeProps := map[string]any{
		"bit_ok":        map[string]any{"type": "integer", "minimum": 0, "maximum": 1},
		"bit_elaborato": map[string]any{"type": "integer", "minimum": 0, "maximum": 1},
		"errori_elab":   map[string]any{"type": "string"},
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"separators": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items":    map[string]any{"type": "string", "minLength": 1, "maxLength": 1},
			},
			"decode_genotype": map[string]any{
				"type": "object",
				"additionalProperties": map[string]any{
					"type": "string", "minLength": 1, "maxLength": 1,
				},
			},
			"missing_code":      map[string]any{"type": "string", "minLength": 1, "maxLength": 1},
			"map_name_override": map[string]any{"type": "string"},
			"parentage_map":     map[string]any{"type": "string"},
			"vocabulary": map[string]any{
				"type": "object",
				"additionalProperties": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"properties":           codeProps,
					"required":             []string{"bit_ok", "bit_elaborato", "errori_elab"},
				},
			},
		},
		"required": []string{"separators", "decode_genotype", "vocabulary"},
	}
}
