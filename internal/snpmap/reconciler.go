// Package snpmap reconciles newly uploaded SNP maps against the maps already
// on record. Map names are content-addressed only up to their SNP count, so
// exact-content collisions are resolved by a linear probe over suffixed
// names ({n}_a, {n}_b, ...).
package snpmap

import (
	"context"
	"fmt"
	"strings"
)

// Info is one row of the map registry.
type Info struct {
	Name     string
	SNPCount int
	Alias    string
}

// Registry is the read side of the map store the reconciler consults.
type Registry interface {
	ListMaps(ctx context.Context) ([]Info, error)
	SNPNames(ctx context.Context, mapName string) ([]string, error)
}

// DecisionKind classifies the outcome of a reconcile.
type DecisionKind int

const (
	// Rejected: the new map fails validation and must not be stored.
	Rejected DecisionKind = iota
	// MatchesExisting: identical content is already on record, nothing to store.
	MatchesExisting
	// NewVariantOfSize: same SNP count as existing maps but different
	// content, to be registered under the next free suffixed name.
	NewVariantOfSize
	// BrandNew: no map of this SNP count exists yet.
	BrandNew
)

// RejectReason narrows a Rejected decision.
type RejectReason int

const (
	DuplicateNames RejectReason = iota + 1
	EmptyNames
)

// Decision is the reconciler verdict. MapName is the name to store under
// (or the matched name for MatchesExisting).
type Decision struct {
	Kind     DecisionKind
	MapName  string
	SNPCount int
	Reason   RejectReason
}

// Reconcile validates newNames and decides whether they match an existing
// map, extend an existing SNP count with a new variant, or form a brand-new
// map. declaredName is the upload's own map name; when it equals
// nameOverride (a historic, environment-specific exception) the suffix walk
// starts from that name instead of the size-derived one.
func Reconcile(ctx context.Context, reg Registry, newNames []string, declaredName, nameOverride string) (Decision, error) {
	if hasDuplicates(newNames) {
		return Decision{Kind: Rejected, Reason: DuplicateNames}, nil
	}
	if hasBlanks(newNames) {
		return Decision{Kind: Rejected, Reason: EmptyNames}, nil
	}

	n := len(newNames)
	maps, err := reg.ListMaps(ctx)
	if err != nil {
		return Decision{}, fmt.Errorf("list maps: %w", err)
	}

	existing := map[string]struct{}{}
	sizeKnown := false
	for _, m := range maps {
		existing[m.Name] = struct{}{}
		if m.SNPCount == n {
			sizeKnown = true
		}
	}

	if !sizeKnown {
		return Decision{Kind: BrandNew, MapName: fmt.Sprintf("%d_a", n), SNPCount: n}, nil
	}

	newSet := normalize(newNames)
	suffix := 'a'
	candidate := fmt.Sprintf("%d_%c", n, suffix)
	if nameOverride != "" && declaredName == nameOverride {
		candidate = nameOverride
	}

	for {
		if _, ok := existing[candidate]; !ok {
			return Decision{Kind: NewVariantOfSize, MapName: candidate, SNPCount: n}, nil
		}
		stored, err := reg.SNPNames(ctx, candidate)
		if err != nil {
			return Decision{}, fmt.Errorf("read map %s: %w", candidate, err)
		}
		if SetsEqual(newSet, normalize(stored)) {
			return Decision{Kind: MatchesExisting, MapName: candidate, SNPCount: n}, nil
		}
		suffix++
		candidate = fmt.Sprintf("%d_%c", n, suffix)
	}
}

// SetsEqual implements the exact-set-equality test shared with the genotype
// flow: equal sizes plus a full intersection. Both inputs must already be
// deduplicated, which normalize guarantees.
func SetsEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

// Normalize uppercases, trims and deduplicates a name list into a set.
func Normalize(names []string) map[string]struct{} {
	return normalize(names)
}

func normalize(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[strings.ToUpper(strings.TrimSpace(name))] = struct{}{}
	}
	return set
}

func hasDuplicates(names []string) bool {
	return len(normalize(names)) != len(names)
}

func hasBlanks(names []string) bool {
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			return true
		}
	}
	return false
}
