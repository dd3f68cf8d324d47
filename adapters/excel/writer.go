package excel

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"goshape/domain/caption"
	"goshape/domain/run"
	"goshape/internal/errors"
)

// BatchWriter exports generated caption batches as XLSX workbooks
type BatchWriter struct {
	logger *zap.Logger
}

// NewBatchWriter creates a batch writer
func NewBatchWriter(logger *zap.Logger) *BatchWriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchWriter{logger: logger}
}

// WriteFile writes batch to the workbook at path
func (w *BatchWriter) WriteFile(path string, batch *run.Batch) error {
	f, err := w.build(batch)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return errors.ExportFailed("failed to save workbook "+path, err)
	}
	w.logger.Info("batch exported", zap.String("path", path), zap.Int("samples", len(batch.Samples)))
	return nil
}

// Write streams the workbook for batch to out
func (w *BatchWriter) Write(out io.Writer, batch *run.Batch) error {
	f, err := w.build(batch)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(out); err != nil {
		return errors.ExportFailed("failed to write workbook", err)
	}
	return nil
}

func (w *BatchWriter) build(batch *run.Batch) (*excelize.File, error) {
	if batch == nil || batch.Manifest == nil {
		return nil, errors.InvalidInput("batch has no manifest")
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetSamples); err != nil {
		f.Close()
		return nil, errors.ExportFailed("failed to name samples sheet", err)
	}
	for _, sheet := range []string{SheetManifest, SheetStats} {
		if _, err := f.NewSheet(sheet); err != nil {
			f.Close()
			return nil, errors.ExportFailed("failed to create sheet "+sheet, err)
		}
	}

	if err := w.writeSamples(f, batch.Samples); err != nil {
		f.Close()
		return nil, err
	}
	if err := writePairs(f, SheetManifest, manifestPairs(batch.Manifest)); err != nil {
		f.Close()
		return nil, err
	}
	if err := writePairs(f, SheetStats, statsPairs(batch.Stats)); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func (w *BatchWriter) writeSamples(f *excelize.File, samples []run.Sample) error {
	header := make([]interface{}, len(SampleHeaders))
	for i, h := range SampleHeaders {
		header[i] = h
	}
	if err := setRow(f, SheetSamples, 1, header); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.ExportFailed("failed to create header style", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(SampleHeaders), 1)
	if err := f.SetCellStyle(SheetSamples, "A1", last, bold); err != nil {
		return errors.ExportFailed("failed to style header", err)
	}

	for i, s := range samples {
		row, err := sampleRow(s)
		if err != nil {
			return err
		}
		if err := setRow(f, SheetSamples, i+2, row); err != nil {
			return err
		}
	}
	w.logger.Debug("samples sheet written", zap.Int("rows", len(samples)))
	return nil
}

func sampleRow(s run.Sample) ([]interface{}, error) {
	captionJSON, err := json.Marshal(s.Caption)
	if err != nil {
		return nil, errors.ExportFailed(fmt.Sprintf("failed to encode caption of sample %d", s.Index), err)
	}

	var predtype, reference, comparison string
	var value interface{}
	if rel, ok := s.Caption.(*caption.Relation); ok {
		predtype = rel.Predtype
		value = rel.Value
		reference = describe(rel.Reference)
		comparison = describe(rel.Comparison)
	}

	entities := 0
	if s.World != nil {
		entities = s.World.NumEntities()
	}

	return []interface{}{
		s.Index, s.ID.String(), string(s.Mode), s.Correct, s.Attempts,
		predtype, value, reference, comparison, s.IncorrectMode,
		entities, string(captionJSON),
	}, nil
}

// describe renders an entity caption as its attribute values, e.g. "red square"
func describe(c caption.Caption) string {
	desc, ok := c.(*caption.EntityType)
	if !ok {
		return ""
	}
	values := make([]string, 0, len(desc.Attributes))
	for i := len(desc.Attributes) - 1; i >= 0; i-- {
		values = append(values, desc.Attributes[i].Value)
	}
	return strings.Join(values, " ")
}

type pair struct {
	key   string
	value interface{}
}

func manifestPairs(m *run.Manifest) []pair {
	return []pair{
		{"run_id", m.RunID.String()},
		{"realizer", m.Fingerprint.Realizer},
		{"mode", string(m.Fingerprint.Mode)},
		{"seed", m.Fingerprint.Seed},
		{"count", m.Fingerprint.Count},
		{"config_hash", m.Fingerprint.ConfigHash.String()},
		{"run_fingerprint", m.Fingerprint.Fingerprint.String()},
		{"content_fingerprint", m.ContentFingerprint.String()},
		{"created_at", m.CreatedAt.Time().Format("2006-01-02T15:04:05.999999999Z07:00")},
	}
}

func statsPairs(s run.AttemptStats) []pair {
	pairs := []pair{
		{"mean_attempts", s.MeanAttempts},
		{"stddev_attempts", s.StdDevAttempts},
		{"median_attempts", s.MedianAttempts},
		{"max_attempts", s.MaxAttempts},
		{"correct", s.Correct},
		{"incorrect", s.Incorrect},
	}
	pairs = append(pairs, countPairs("failure:", s.Failures)...)
	return append(pairs, countPairs("mode:", s.IncorrectModes)...)
}

func countPairs(prefix string, counts map[string]int) []pair {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]pair, len(keys))
	for i, k := range keys {
		pairs[i] = pair{prefix + k, counts[k]}
	}
	return pairs
}

func writePairs(f *excelize.File, sheet string, pairs []pair) error {
	if err := setRow(f, sheet, 1, []interface{}{"key", "value"}); err != nil {
		return err
	}
	for i, p := range pairs {
		if err := setRow(f, sheet, i+2, []interface{}{p.key, p.value}); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return errors.ExportFailed("invalid cell", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return errors.ExportFailed(fmt.Sprintf("failed to write row %d of %s", row, sheet), err)
	}
	return nil
}
