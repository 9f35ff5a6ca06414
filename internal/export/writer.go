package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/mokshchadha/invoice-ocr/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// listColumns is the header row for multi-record CSV exports.
var listColumns = []string{
	"ID",
	"File Name",
	"Document Type",
	"Model Used",
	"Processed At",
	"Raw Fallback",
	"Analysis JSON",
}

// Writer exports stored analyses as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the listing header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(listColumns)
}

// WriteAnalyses converts a batch of analyses to CSV rows and writes them.
func (w *Writer) WriteAnalyses(analyses []domain.Analysis) error {
	for i := range analyses {
		if err := w.csv.Write(analysisToRow(&analyses[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

func analysisToRow(a *domain.Analysis) []string {
	return []string{
		fmt.Sprintf("%d", a.ID),
		a.FileName,
		string(a.DocumentType),
		a.ModelUsed,
		a.ProcessedAt.Format(time.RFC3339),
		formatBool(a.IsRawFallback()),
		string(a.AnalysisJSON),
	}
}

func formatBool(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// WriteAnalysisFlat writes a single analysis as a two-row CSV: a header of
// metadata plus the flattened JSON field paths, then one row of values.
func WriteAnalysisFlat(w io.Writer, a *domain.Analysis) error {
	if _, err := w.Write(BOM); err != nil {
		return err
	}

	fields, err := Flatten(a.AnalysisJSON)
	if err != nil {
		return fmt.Errorf("flattening analysis JSON: %w", err)
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	header := append([]string{"file_name", "processed_at"}, keys...)
	row := []string{a.FileName, a.ProcessedAt.Format(time.RFC3339)}
	for _, k := range keys {
		row = append(row, fields[k])
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.Write(row); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// Flatten converts a JSON document into dot-path keys with stringified values.
// Arrays are joined with "; ".
func Flatten(raw []byte) (map[string]string, error) {
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	out := map[string]string{}
	flattenValue("", doc, out)
	return out, nil
}

func flattenValue(prefix string, v interface{}, out map[string]string) {
	switch node := v.(type) {
	case map[string]interface{}:
		for k, child := range node {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			flattenValue(key, child, out)
		}
	case []interface{}:
		parts := make([]string, 0, len(node))
		for _, child := range node {
			parts = append(parts, stringify(child))
		}
		out[prefix] = strings.Join(parts, "; ")
	default:
		if prefix == "" {
			prefix = "value"
		}
		out[prefix] = stringify(v)
	}
}

func stringify(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case map[string]interface{}:
		pairs := make([]string, 0, len(val))
		for k := range val {
			pairs = append(pairs, k)
		}
		sort.Strings(pairs)
		for i, k := range pairs {
			pairs[i] = fmt.Sprintf("%s: %s", k, stringify(val[k]))
		}
		return strings.Join(pairs, "; ")
	default:
		return fmt.Sprintf("%v", v)
	}
}
