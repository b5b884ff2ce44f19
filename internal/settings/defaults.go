package settings

// Default returns the built-in settings used by the -inmem mode and by
// tests. Production deployments load the shared document instead, so the
// vocabulary text stays aligned with the other loader processes.
func Default() *Document {
	return &Document{
		Separators:  []string{"\t", ";", ","},
		MissingCode: "5",
		DecodeGenotype: map[string]string{
			"AA": "0",
			"AB": "1",
			"BA": "1",
			"BB": "2",
		},
		ParentageMap: "parentage_verification",
		Vocabulary: map[string]Code{
			"c_A": {BitOK: 0, BitElaborato: 1, ErroriElab: "Declared job type does not match the uploaded file"},
			"c_B": {BitOK: 0, BitElaborato: 0, ErroriElab: "Processing failed, job left pending for retry"},

			"m_A": {BitOK: 0, BitElaborato: 1, ErroriElab: "Map contains duplicate or empty SNP names"},
			"m_B": {BitOK: 0, BitElaborato: 1, ErroriElab: "Map file header not recognized"},
			"m_C": {BitOK: 0, BitElaborato: 1, ErroriElab: "Archive contains more than one file"},
			"m_D": {BitOK: 1, BitElaborato: 1, ErroriElab: "Map matches a map already loaded"},
			"m_E": {BitOK: 1, BitElaborato: 1, ErroriElab: "New map loaded"},
			"m_F": {BitOK: 1, BitElaborato: 1, ErroriElab: "New map variant loaded for an existing SNP count"},

			"g_A": {BitOK: 0, BitElaborato: 1, ErroriElab: "Final report is missing required columns"},
			"g_B": {BitOK: 0, BitElaborato: 1, ErroriElab: "Final report file not found or wrongly named"},
			"g_C": {BitOK: 0, BitElaborato: 1, ErroriElab: "Final report has an inconsistent SNP count across samples"},
			"g_D": {BitOK: 1, BitElaborato: 1, ErroriElab: "Final report parsed"},
			"g_E": {BitOK: 0, BitElaborato: 1, ErroriElab: "Final report contains errors"},
			"g_G": {BitOK: 1, BitElaborato: 1, ErroriElab: "Genotypes ready to be uploaded"},
			"g_H": {BitOK: 0, BitElaborato: 1, ErroriElab: "Archive contains more than one file"},
			"g_I": {BitOK: 1, BitElaborato: 1, ErroriElab: "Genotypes and parentage subset loaded"},
			"g_J": {BitOK: 1, BitElaborato: 1, ErroriElab: "Parentage genotypes updated"},
			"g_K": {BitOK: 1, BitElaborato: 1, ErroriElab: "Genotypes loaded and new map alias registered"},
			"g_N": {BitOK: 0, BitElaborato: 1, ErroriElab: "Final report map does not match any loaded map, a new map load is required"},
		},
	}
}
