package constants

import "testing"

func TestNormalizeFileName(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"G_report123", "GEN_report123"},
		{"M_snplist", "MAP_snplist"},
		{"GEN_already", "GEN_already"},
		{"MAP_already", "MAP_already"},
		{"other", "other"},
		{"G_", "GEN_"},
	}
	for _, c := range cases {
		if got := NormalizeFileName(c.in); got != c.want {
			t.Errorf("NormalizeFileName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestValidAllele(t *testing.T) {
	for _, ok := range []string{"A", "B", "-"} {
		if !ValidAllele(ok) {
			t.Errorf("ValidAllele(%q) = false", ok)
		}
	}
	for _, bad := range []string{"", "C", "a", "AB", " "} {
		if ValidAllele(bad) {
			t.Errorf("ValidAllele(%q) = true", bad)
		}
	}
}

func TestJobKindValid(t *testing.T) {
	if !JobKindMap.Valid() || !JobKindGenotype.Valid() {
		t.Fatal("M and G must be valid kinds")
	}
	if JobKind("X").Valid() || JobKind("").Valid() {
		t.Fatal("unknown kinds must be invalid")
	}
}
