package outcome

import (
	"context"
	"testing"

	"github.com/herdgen/genoload/internal/entity"
	"github.com/herdgen/genoload/internal/settings"
)

func TestNewVocabularyCoversAllTags(t *testing.T) {
	vocab, err := NewVocabulary(settings.Default())
	if err != nil {
		t.Fatalf("NewVocabulary: %v", err)
	}
	code := vocab.Resolve(TagGenoReady)
	if code.BitOK != 1 || code.BitElaborato != 1 {
		t.Fatalf("g_G = %+v, want success bits", code)
	}
	code = vocab.Resolve(TagCritical)
	if code.BitOK != 0 || code.BitElaborato != 0 {
		t.Fatalf("c_B = %+v, want pending bits for retry", code)
	}
}

func TestNewVocabularyRejectsIncompleteDocument(t *testing.T) {
	doc := settings.Default()
	delete(doc.Vocabulary, string(TagMapNewVariant))
	if _, err := NewVocabulary(doc); err == nil {
		t.Fatal("expected error for missing m_F entry")
	}
}

type fakeJobs struct {
	lastID         int64
	lastBitOK      int
	lastElaborato  int
	lastDiagnostic string
	calls          int
}

func (f *fakeJobs) ListPending(context.Context) ([]entity.Job, error) { return nil, nil }

func (f *fakeJobs) SetOutcome(_ context.Context, jobID int64, bitOK, bitElaborato int, diagnostic string) error {
	f.lastID = jobID
	f.lastBitOK = bitOK
	f.lastElaborato = bitElaborato
	f.lastDiagnostic = diagnostic
	f.calls++
	return nil
}

func TestPublishWritesVocabularyTriple(t *testing.T) {
	vocab, err := NewVocabulary(settings.Default())
	if err != nil {
		t.Fatalf("NewVocabulary: %v", err)
	}
	jobs := &fakeJobs{}
	pub := NewPublisher(vocab, jobs, nil, false)

	code, err := pub.Publish(context.Background(), 42, TagMapBrandNew, "")
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if jobs.lastID != 42 || jobs.lastBitOK != 1 || jobs.lastElaborato != 1 {
		t.Fatalf("written triple = %+v", jobs)
	}
	if jobs.lastDiagnostic != settings.Default().Vocabulary["m_E"].ErroriElab {
		t.Fatalf("diagnostic = %q, want vocabulary template", jobs.lastDiagnostic)
	}
	if code.BitOK != 1 || code.BitElaborato != 1 || code.ErroriElab != jobs.lastDiagnostic {
		t.Fatalf("returned code = %+v, want the written triple", code)
	}
}

func TestPublishDetailOverridesTemplate(t *testing.T) {
	vocab, err := NewVocabulary(settings.Default())
	if err != nil {
		t.Fatalf("NewVocabulary: %v", err)
	}
	jobs := &fakeJobs{}
	pub := NewPublisher(vocab, jobs, nil, false)

	code, err := pub.Publish(context.Background(), 7, TagGenoReady, "3 genotypes ready to be uploaded.\n")
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if jobs.lastDiagnostic != "3 genotypes ready to be uploaded.\n" {
		t.Fatalf("diagnostic = %q", jobs.lastDiagnostic)
	}
	if code.ErroriElab != jobs.lastDiagnostic {
		t.Fatalf("returned code diagnostic = %q", code.ErroriElab)
	}
}

func TestPublishDryRunWritesNothing(t *testing.T) {
	vocab, err := NewVocabulary(settings.Default())
	if err != nil {
		t.Fatalf("NewVocabulary: %v", err)
	}
	jobs := &fakeJobs{}
	pub := NewPublisher(vocab, jobs, nil, true)

	if _, err := pub.Publish(context.Background(), 7, TagGenoReady, ""); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if jobs.calls != 0 {
		t.Fatalf("dry run wrote %d outcomes", jobs.calls)
	}
}
