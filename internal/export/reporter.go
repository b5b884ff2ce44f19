// Package export writes the operator-facing artifacts of a run: one CSV per
// staged final report and an XLSX summary of every job the run touched.
package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/herdgen/genoload/internal/entity"
	"github.com/herdgen/genoload/internal/genotype"
	"github.com/herdgen/genoload/internal/settings"
)

// JobResult is one processed job with its published outcome: the tag and
// the status triple as written, not the stale values read at poll time.
type JobResult struct {
	Job  entity.Job
	Tag  string
	Code settings.Code
}

// Reporter accumulates the jobs of one run and writes export files under
// the output directory. All exports are advisory: a failed write is logged
// by the caller and never fails the job.
type Reporter struct {
	outputDir string
	logger    *slog.Logger

	mu   sync.Mutex
	jobs []JobResult
}

func NewReporter(outputDir string, logger *slog.Logger) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reporter{outputDir: outputDir, logger: logger}
}

// RecordJob remembers one processed job and its published outcome for the
// run summary.
func (r *Reporter) RecordJob(res JobResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = append(r.jobs, res)
}

// WriteReport writes the per-report CSV next to the staged rows: one line
// per sample with its call rate, the resolved map and the encoded genotype.
// The parentage column appears only when the parentage stage ran.
func (r *Reporter) WriteReport(job entity.Job, fileName string, records []genotype.Record, parentage map[string]string) error {
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	base := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	path := filepath.Join(r.outputDir, fmt.Sprintf("report_%d_%s.csv", job.ID, base))

	var b strings.Builder
	header := "Campione;CallRate;mappa_usata;Genotipo"
	if parentage != nil {
		header += ";Genotipo_parentela"
	}
	b.WriteString(header + "\n")
	for _, rec := range records {
		fmt.Fprintf(&b, "%s;%.4f;%s;%s", rec.SampleID, rec.CallRate, rec.MapUsed, rec.Encoded)
		if parentage != nil {
			fmt.Fprintf(&b, ";%s", parentage[rec.SampleID])
		}
		b.WriteString("\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing report csv: %w", err)
	}
	r.logger.Info("report exported", "path", path, "samples", len(records))
	return nil
}

// WriteRunSummary writes the XLSX workbook listing every job the run
// processed and returns its path. Called once when the poll loop ends.
func (r *Reporter) WriteRunSummary(runID string) (string, error) {
	r.mu.Lock()
	jobs := append([]JobResult(nil), r.jobs...)
	r.mu.Unlock()
	if len(jobs) == 0 {
		return "", nil
	}
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}

	start := time.Now()
	f := excelize.NewFile()
	const sheet = "Jobs"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return "", err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{"Job", "Submitted", "By", "Kind", "File", "Tag", "BitOK", "BitElaborato", "Diagnostic"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, res := range jobs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, res.Job.ID)
		if !res.Job.SubmittedAt.IsZero() {
			write(2, res.Job.SubmittedAt.Format("2006-01-02 15:04"))
		} else {
			write(2, "")
		}
		write(3, res.Job.SubmittedBy)
		write(4, string(res.Job.Kind))
		write(5, res.Job.FileName)
		write(6, res.Tag)
		write(7, res.Code.BitOK)
		write(8, res.Code.BitElaborato)
		write(9, res.Code.ErroriElab)
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 10)
	_ = f.SetColWidth(sheet, "B", "B", 18)
	_ = f.SetColWidth(sheet, "C", "C", 14)
	_ = f.SetColWidth(sheet, "D", "D", 6)
	_ = f.SetColWidth(sheet, "E", "E", 40)
	_ = f.SetColWidth(sheet, "F", "F", 8)
	_ = f.SetColWidth(sheet, "G", "H", 12)
	_ = f.SetColWidth(sheet, "I", "I", 60)

	path := filepath.Join(r.outputDir, fmt.Sprintf("run_%s.xlsx", runID))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("xlsx write: %w", err)
	}
	r.logger.Info("run summary exported", "path", path, "jobs", len(jobs), "elapsed_ms", time.Since(start).Milliseconds())
	return path, nil
}
