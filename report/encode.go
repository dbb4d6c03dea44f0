package report

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/fxamacker/cbor/v2"
	"github.com/shopspring/decimal"
)

const monetaryPrecision int32 = 4 // 4 decimal places for prices and profits

// Format selects a table encoding.
type Format string

const (
	FormatText Format = "text"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatCBOR Format = "cbor"
)

// ErrUnknownFormat is returned for an unsupported output format.
var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatCSV, FormatJSON, FormatCBOR:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// monetaryColumns are rounded to monetaryPrecision in text and CSV output.
var monetaryColumns = map[string]bool{
	"price":       true,
	"mean_price":  true,
	"profit":      true,
	"mean_profit": true,
}

// cborEncMode keeps sub-second timestamps so tables round-trip exactly.
var cborEncMode = func() cbor.EncMode {
	em, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// MarshalCBOR encodes a table as CBOR.
func MarshalCBOR(t *Table) ([]byte, error) {
	data, err := cborEncMode.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("marshal table: %w", err)
	}
	return data, nil
}

// UnmarshalCBOR decodes a CBOR table.
func UnmarshalCBOR(data []byte) (*Table, error) {
	var t Table
	if err := cbor.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("unmarshal table: %w", err)
	}
	return &t, nil
}

// Encode writes t to w in the given format.
func Encode(w io.Writer, t *Table, format Format) error {
	switch format {
	case FormatText:
		return encodeText(w, t)
	case FormatCSV:
		return encodeCSV(w, t)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(t)
	case FormatCBOR:
		data, err := MarshalCBOR(t)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

func encodeText(w io.Writer, t *Table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "%s\t\n", strings.Join(t.Columns, "\t"))
	for _, row := range t.Rows {
		fmt.Fprintf(tw, "%s\t\n", strings.Join(formatRow(t.Columns, row), "\t"))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write table: %w", err)
	}

	if len(t.Summary) > 0 {
		keys := make([]string, 0, len(t.Summary))
		for k := range t.Summary {
			keys = append(keys, k)
		}
		slices.Sort(keys)

		fmt.Fprintln(w)
		for _, k := range keys {
			if _, err := fmt.Fprintf(w, "%s: %s\n", k, formatValue(k, t.Summary[k])); err != nil {
				return fmt.Errorf("write summary: %w", err)
			}
		}
	}
	return nil
}

func encodeCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range t.Rows {
		if err := cw.Write(formatRow(t.Columns, row)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatRow(columns []string, row []float64) []string {
	out := make([]string, len(row))
	for i, v := range row {
		name := ""
		if i < len(columns) {
			name = columns[i]
		}
		out[i] = formatValue(name, v)
	}
	return out
}

// formatValue renders monetary columns at fixed precision and everything
// else in the shortest exact form.
func formatValue(column string, v float64) string {
	if monetaryColumns[column] {
		return decimal.NewFromFloat(v).Round(monetaryPrecision).StringFixed(monetaryPrecision)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
