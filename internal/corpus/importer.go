// Package corpus imports dictionary sources and publishes search-ready corpus snapshots.
package corpus

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/ordbok/internal/models"
)

// Column positions in a dictionary row.
const (
	colID = iota
	colType
	colSwedish
	colArabic
	colArabicExt
	colDefinition
	colForms
	colExampleSwe
	colExampleArb
	colIdiomSwe
	colIdiomArb
	colGender = 13
)

// ErrUnsupportedFormat is returned for source files the importer cannot read.
var ErrUnsupportedFormat = errors.New("unsupported source format")

// ImportReport summarizes an import run.
type ImportReport struct {
	Files      int `json:"files"`
	Imported   int `json:"imported"`
	Duplicates int `json:"duplicates"`
	Skipped    int `json:"skipped"`
	Removed    int `json:"removed"`
}

// Importer reads dictionary rows from JSON, CSV and XLSX files.
type Importer struct{}

// NewImporter returns a new Importer.
func NewImporter() *Importer {
	return &Importer{}
}

// ReadFiles reads every path and merges the rows in order. A duplicate ID keeps its first occurrence.
func (im *Importer) ReadFiles(paths ...string) ([]models.Word, ImportReport, error) {
	var (
		report ImportReport
		words  []models.Word
		seen   = make(map[string]struct{})
	)
	for _, path := range paths {
		batch, skipped, err := im.ReadFile(path)
		if err != nil {
			return nil, report, fmt.Errorf("failed to read %s: %w", path, err)
		}
		report.Files++
		report.Skipped += skipped
		for _, w := range batch {
			if _, dup := seen[w.ID]; dup {
				report.Duplicates++
				continue
			}
			seen[w.ID] = struct{}{}
			words = append(words, w)
		}
	}
	report.Imported = len(words)
	return words, report, nil
}

// ReadFile reads the file at path. It returns the words and the number of rows skipped as empty.
func (im *Importer) ReadFile(path string) ([]models.Word, int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("read file: %w", err)
	}
	return im.ReadBytes(content, strings.ToLower(filepath.Ext(path)))
}

// ReadBytes parses content based on the given extension (".json", ".csv" or ".xlsx").
func (im *Importer) ReadBytes(content []byte, ext string) ([]models.Word, int, error) {
	var (
		rows [][]string
		err  error
	)
	switch ext {
	case ".json":
		rows, err = jsonRows(content)
	case ".csv":
		rows, err = csvRows(content)
	case ".xlsx":
		rows, err = xlsxRows(content)
	default:
		return nil, 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, 0, err
	}

	words := make([]models.Word, 0, len(rows))
	skipped := 0
	for i, row := range rows {
		if i == 0 && isHeader(row) {
			continue
		}
		w, ok := rowToWord(row)
		if !ok {
			skipped++
			continue
		}
		words = append(words, w)
	}
	return words, skipped, nil
}

func isHeader(row []string) bool {
	return len(row) > 0 && strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(row[0], "\ufeff")), "id")
}

func rowToWord(row []string) (models.Word, bool) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	w := models.Word{
		ID:         normalizeID(strings.TrimPrefix(cell(colID), "\ufeff")),
		Type:       cell(colType),
		Swedish:    cell(colSwedish),
		Arabic:     cell(colArabic),
		ArabicExt:  cell(colArabicExt),
		Definition: cell(colDefinition),
		Forms:      cell(colForms),
		ExampleSwe: cell(colExampleSwe),
		ExampleArb: cell(colExampleArb),
		IdiomSwe:   cell(colIdiomSwe),
		IdiomArb:   cell(colIdiomArb),
		Gender:     cell(colGender),
	}
	if w.Swedish == "" && w.Arabic == "" {
		return models.Word{}, false
	}
	if w.ID == "" {
		// Name-based so re-importing the same source yields the same ID.
		w.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte(w.Type+"\x00"+w.Swedish+"\x00"+w.Arabic)).String()
	}
	return w, true
}

// normalizeID renders integral numbers without a fraction, so 12 and 12.0 name the same word.
func normalizeID(id string) string {
	if _, err := strconv.ParseInt(id, 10, 64); err == nil {
		return id
	}
	f, err := strconv.ParseFloat(id, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return id
	}
	return strconv.FormatInt(int64(f), 10)
}

// objectFields maps Word JSON names to row columns.
var objectFields = map[string]int{
	"id":          colID,
	"type":        colType,
	"swedish":     colSwedish,
	"arabic":      colArabic,
	"arabic_ext":  colArabicExt,
	"definition":  colDefinition,
	"forms":       colForms,
	"example_swe": colExampleSwe,
	"example_arb": colExampleArb,
	"idiom_swe":   colIdiomSwe,
	"idiom_arb":   colIdiomArb,
	"gender":      colGender,
}

// jsonRows accepts an array whose elements are either row arrays or Word objects.
func jsonRows(content []byte) ([][]string, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(content, &items); err != nil {
		return nil, fmt.Errorf("decode JSON: %w", err)
	}

	rows := make([][]string, 0, len(items))
	for i, raw := range items {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 {
			continue
		}
		switch raw[0] {
		case '[':
			var cells []any
			if err := decodeNumbers(raw, &cells); err != nil {
				return nil, fmt.Errorf("decode row %d: %w", i, err)
			}
			row := make([]string, len(cells))
			for j, c := range cells {
				row[j] = cellString(c)
			}
			rows = append(rows, row)
		case '{':
			var obj map[string]any
			if err := decodeNumbers(raw, &obj); err != nil {
				return nil, fmt.Errorf("decode row %d: %w", i, err)
			}
			row := make([]string, colGender+1)
			for k, v := range obj {
				if col, ok := objectFields[strings.ToLower(k)]; ok {
					row[col] = cellString(v)
				}
			}
			rows = append(rows, row)
		default:
			// Scalars and nulls carry no word.
			rows = append(rows, nil)
		}
	}
	return rows, nil
}

func decodeNumbers(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}

func cellString(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case json.Number:
		return c.String()
	case bool:
		return strconv.FormatBool(c)
	default:
		return fmt.Sprint(c)
	}
}

func csvRows(content []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse CSV: %w", err)
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func xlsxRows(content []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open Excel: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("get rows for sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}
