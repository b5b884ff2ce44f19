package snpmap

import (
	"context"
	"testing"
)

type fakeRegistry struct {
	maps []Info
	snps map[string][]string
}

func (f *fakeRegistry) ListMaps(context.Context) ([]Info, error) { return f.maps, nil }

func (f *fakeRegistry) SNPNames(_ context.Context, name string) ([]string, error) {
	return f.snps[name], nil
}

func TestReconcileBrandNew(t *testing.T) {
	reg := &fakeRegistry{}
	dec, err := Reconcile(context.Background(), reg, []string{"S1", "S2", "S3"}, "MAP_X", "")
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if dec.Kind != BrandNew {
		t.Fatalf("kind = %v, want BrandNew", dec.Kind)
	}
	if dec.MapName != "3_a" || dec.SNPCount != 3 {
		t.Fatalf("decision = %+v", dec)
	}
}

func TestReconcileRejectsDuplicates(t *testing.T) {
	reg := &fakeRegistry{}
	// Duplicate detection is case and whitespace insensitive.
	dec, err := Reconcile(context.Background(), reg, []string{"S1", " s1 ", "S2"}, "MAP_X", "")
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if dec.Kind != Rejected || dec.Reason != DuplicateNames {
		t.Fatalf("decision = %+v, want Rejected/DuplicateNames", dec)
	}
}

func TestReconcileRejectsBlanks(t *testing.T) {
	reg := &fakeRegistry{}
	dec, err := Reconcile(context.Background(), reg, []string{"S1", "  ", "S2"}, "MAP_X", "")
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if dec.Kind != Rejected || dec.Reason != EmptyNames {
		t.Fatalf("decision = %+v, want Rejected/EmptyNames", dec)
	}
}

func TestReconcileMatchesExisting(t *testing.T) {
	reg := &fakeRegistry{
		maps: []Info{{Name: "3_a", SNPCount: 3}},
		snps: map[string][]string{"3_a": {"s1", "s2", "s3"}},
	}
	dec, err := Reconcile(context.Background(), reg, []string{"S3", "S1", "S2"}, "MAP_X", "")
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if dec.Kind != MatchesExisting || dec.MapName != "3_a" {
		t.Fatalf("decision = %+v, want MatchesExisting/3_a", dec)
	}
}

func TestReconcileSuffixWalk(t *testing.T) {
	reg := &fakeRegistry{
		maps: []Info{
			{Name: "3_a", SNPCount: 3},
			{Name: "3_b", SNPCount: 3},
		},
		snps: map[string][]string{
			"3_a": {"A1", "A2", "A3"},
			"3_b": {"B1", "B2", "B3"},
		},
	}
	dec, err := Reconcile(context.Background(), reg, []string{"C1", "C2", "C3"}, "MAP_X", "")
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if dec.Kind != NewVariantOfSize || dec.MapName != "3_c" {
		t.Fatalf("decision = %+v, want NewVariantOfSize/3_c", dec)
	}
}

func TestReconcileNameOverride(t *testing.T) {
	reg := &fakeRegistry{
		maps: []Info{{Name: "3_a", SNPCount: 3}},
		snps: map[string][]string{"3_a": {"A1", "A2", "A3"}},
	}
	dec, err := Reconcile(context.Background(), reg, []string{"C1", "C2", "C3"}, "554_ICAR", "554_ICAR")
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if dec.Kind != NewVariantOfSize || dec.MapName != "554_ICAR" {
		t.Fatalf("decision = %+v, want NewVariantOfSize/554_ICAR", dec)
	}
}

func TestSetsEqual(t *testing.T) {
	a := Normalize([]string{"s1", "S2"})
	b := Normalize([]string{" S1 ", "s2"})
	if !SetsEqual(a, b) {
		t.Fatal("normalized sets should be equal")
	}
	c := Normalize([]string{"S1", "S3"})
	if SetsEqual(a, c) {
		t.Fatal("different content should not be equal")
	}
	if SetsEqual(a, Normalize([]string{"S1"})) {
		t.Fatal("different sizes should not be equal")
	}
}
