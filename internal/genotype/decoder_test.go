package genotype

import (
	"testing"
)

var decodeTable = map[string]string{
	"AA": "0",
	"AB": "1",
	"BA": "1",
	"BB": "2",
}

func TestDecoderEncodesInMapOrder(t *testing.T) {
	d := NewDecoder("4_a", []string{"S1", "S2", "S3", "S4"}, decodeTable, "5", nil)
	if d.MapSize() != 4 {
		t.Fatalf("MapSize = %d, want 4", d.MapSize())
	}
	// Rows arrive in file order, not map order.
	d.Add(Row{SampleID: "COW1", SNPName: "S3", Allele1: "B", Allele2: "B"})
	d.Add(Row{SampleID: "COW1", SNPName: "S1", Allele1: "A", Allele2: "A"})
	d.Add(Row{SampleID: "COW1", SNPName: "S2", Allele1: "A", Allele2: "B"})
	d.Add(Row{SampleID: "COW1", SNPName: "S4", Allele1: "B", Allele2: "A"})

	records, stats := d.Finish()
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	rec := records[0]
	if rec.Encoded != "0121" {
		t.Fatalf("encoded = %q, want 0121", rec.Encoded)
	}
	if rec.CallRate != 1 {
		t.Fatalf("call rate = %v, want 1", rec.CallRate)
	}
	if rec.MapUsed != "4_a" {
		t.Fatalf("map used = %q", rec.MapUsed)
	}
	if stats.MissingFromFile != 0 || len(stats.NotInMap) != 0 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestDecoderCallRateWithNoCalls(t *testing.T) {
	d := NewDecoder("4_a", []string{"S1", "S2", "S3", "S4"}, decodeTable, "5", nil)
	d.Add(Row{SampleID: "COW1", SNPName: "S1", Allele1: "A", Allele2: "A"})
	d.Add(Row{SampleID: "COW1", SNPName: "S2", Allele1: "-", Allele2: "-"})
	d.Add(Row{SampleID: "COW1", SNPName: "S3", Allele1: "B", Allele2: "B"})
	d.Add(Row{SampleID: "COW1", SNPName: "S4", Allele1: "-", Allele2: "-"})

	records, _ := d.Finish()
	rec := records[0]
	if rec.Encoded != "0525" {
		t.Fatalf("encoded = %q, want 0525", rec.Encoded)
	}
	if rec.CallRate != 0.5 {
		t.Fatalf("call rate = %v, want 0.5", rec.CallRate)
	}
}

func TestDecoderCallRateRoundsToFourDecimals(t *testing.T) {
	names := []string{"S1", "S2", "S3"}
	d := NewDecoder("3_a", names, decodeTable, "5", nil)
	d.Add(Row{SampleID: "COW1", SNPName: "S1", Allele1: "A", Allele2: "A"})
	d.Add(Row{SampleID: "COW1", SNPName: "S2", Allele1: "-", Allele2: "-"})
	d.Add(Row{SampleID: "COW1", SNPName: "S3", Allele1: "-", Allele2: "-"})

	records, _ := d.Finish()
	if got := records[0].CallRate; got != 0.3333 {
		t.Fatalf("call rate = %v, want 0.3333", got)
	}
}

func TestDecoderCountsQualityIssues(t *testing.T) {
	d := NewDecoder("2_a", []string{"S1", "S2"}, decodeTable, "5", nil)
	// Unknown SNP and an invalid allele token in each column.
	d.Add(Row{SampleID: "COW1", SNPName: "S1", Allele1: "X", Allele2: "A"})
	d.Add(Row{SampleID: "COW1", SNPName: "UNKNOWN", Allele1: "A", Allele2: "Y"})

	records, stats := d.Finish()
	if stats.InvalidAllele1 != 1 || stats.InvalidAllele2 != 1 {
		t.Fatalf("invalid counters = %d/%d, want 1/1", stats.InvalidAllele1, stats.InvalidAllele2)
	}
	if _, ok := stats.NotInMap["UNKNOWN"]; !ok || len(stats.NotInMap) != 1 {
		t.Fatalf("NotInMap = %v", stats.NotInMap)
	}
	if stats.MissingFromFile != 1 {
		t.Fatalf("MissingFromFile = %d, want 1", stats.MissingFromFile)
	}
	// The invalid pair XA decodes to nothing, so S1 stays at the missing code.
	if records[0].Encoded != "55" {
		t.Fatalf("encoded = %q, want 55", records[0].Encoded)
	}
}

func TestDecoderSampleOrderIsFirstSeen(t *testing.T) {
	d := NewDecoder("1_a", []string{"S1"}, decodeTable, "5", nil)
	d.Add(Row{SampleID: "COW2", SNPName: "S1", Allele1: "A", Allele2: "A"})
	d.Add(Row{SampleID: "COW1", SNPName: "S1", Allele1: "B", Allele2: "B"})
	d.Add(Row{SampleID: "COW3", SNPName: "S1", Allele1: "A", Allele2: "B"})

	records, _ := d.Finish()
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}
	want := []string{"COW2", "COW1", "COW3"}
	for i, w := range want {
		if records[i].SampleID != w {
			t.Fatalf("order = %v, want %v at %d", records[i].SampleID, w, i)
		}
	}
}

func TestDecoderCaseInsensitiveSNPNames(t *testing.T) {
	d := NewDecoder("1_a", []string{"snp_one"}, decodeTable, "5", nil)
	d.Add(Row{SampleID: "COW1", SNPName: "SNP_One", Allele1: "A", Allele2: "A"})

	records, stats := d.Finish()
	if records[0].Encoded != "0" {
		t.Fatalf("encoded = %q, want 0", records[0].Encoded)
	}
	if len(stats.NotInMap) != 0 || stats.MissingFromFile != 0 {
		t.Fatalf("stats = %+v", stats)
	}
}
