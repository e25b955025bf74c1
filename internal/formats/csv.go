package formats

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/apperrors"
)

// row is one CSV record addressed by header name.
type row struct {
	line   int
	values map[string]string
}

func (r row) get(header string) string {
	return strings.TrimSpace(r.values[header])
}

func newCSVReader(rd io.Reader) *csv.Reader {
	cr := csv.NewReader(rd)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr
}

// cleanHeader trims header names and drops a UTF-8 byte order mark.
func cleanHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	return out
}

func newRow(header, rec []string, line int) row {
	values := make(map[string]string, len(header))
	for i, h := range header {
		if i < len(rec) {
			values[h] = rec[i]
		}
	}
	return row{line: line, values: values}
}

func missingHeader(format string, header, required []string) error {
	for _, h := range required {
		if !lo.Contains(header, h) {
			return fmt.Errorf("%w: %s: missing header %q", apperrors.ErrUnrecognizedFormat, format, h)
		}
	}
	return nil
}

// readTable reads a CSV file with a header line and checks that every required header
// is present. Missing headers mean the file is in some other format.
func readTable(format string, rd io.Reader, required []string) ([]row, error) {
	cr := newCSVReader(rd)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s: empty file", apperrors.ErrUnrecognizedFormat, format)
		}
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrUnrecognizedFormat, format, err)
	}
	header = cleanHeader(header)
	if err := missingHeader(format, header, required); err != nil {
		return nil, err
	}

	var rows []row
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s line %d: %v", apperrors.ErrMalformedRow, format, line, err)
		}
		rows = append(rows, newRow(header, rec, line))
	}
	return rows, nil
}

// readRecords reads a whole CSV file whose header is not on the first line. The format is
// unknown until the caller finds its header, so unreadable input is unrecognized.
func readRecords(format string, rd io.Reader) ([][]string, error) {
	recs, err := newCSVReader(rd).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrUnrecognizedFormat, format, err)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("%w: %s: empty file", apperrors.ErrUnrecognizedFormat, format)
	}
	return recs, nil
}

// findHeader locates the first record whose leading field is first.
func findHeader(recs [][]string, first string) (int, bool) {
	_, i, ok := lo.FindIndexOf(recs, func(rec []string) bool {
		return len(rec) > 0 && cleanHeader(rec[:1])[0] == first
	})
	return i, ok
}

// rowsAfter maps the records following the header at index headerAt of recs.
func rowsAfter(header []string, recs [][]string, headerAt int) []row {
	rows := make([]row, 0, len(recs)-headerAt-1)
	for i := headerAt + 1; i < len(recs); i++ {
		rows = append(rows, newRow(header, recs[i], i+1))
	}
	return rows
}

// rowError attaches the format and line to a row-level failure.
func rowError(format string, r row, err error) error {
	if errors.Is(err, apperrors.ErrMalformedRow) {
		return fmt.Errorf("%s line %d: %w", format, r.line, err)
	}
	return fmt.Errorf("%w: %s line %d: %w", apperrors.ErrMalformedRow, format, r.line, err)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
}

// parseTimestamp accepts ISO dates and US month-first dates, with or without a time.
func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparseable timestamp %q", apperrors.ErrMalformedRow, s)
}

// parseAmount parses a plain decimal column. Empty is an error.
func parseAmount(column, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", ""))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s %q is not a number", apperrors.ErrMalformedRow, column, s)
	}
	return d, nil
}

// parseOptionalAmount is parseAmount that treats an empty column as zero.
func parseOptionalAmount(column, s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	return parseAmount(column, s)
}

// parseUSD accepts "$10,000.00", "($10.00)", "10000 USD", "10000" or "". Accounting
// parentheses are dropped; direction comes from the transaction type, never from the sign.
func parseUSD(column, s string) (decimal.Decimal, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "USD")
	s = strings.Trim(s, " $()")
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := parseAmount(column, s)
	if err != nil {
		return decimal.Zero, err
	}
	return d.Abs(), nil
}
