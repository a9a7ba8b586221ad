// Package qif parses Quicken Interchange Format files into import records.
package qif

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mny-engine/mny/internal/importer"
	"github.com/mny-engine/mny/internal/model"
)

var dateFormats = []string{
	"01/02/2006",
	"01/02'06",
	"1/2/2006",
	"2006-01-02",
}

// Parse tokenizes a QIF stream. Each line is a one-letter field code plus
// a value; a lone caret terminates the record. Only the fields the ledger
// needs are mapped: D (date), T (amount), P (payee), N (number), C
// (cleared state). Type headers ("!Type:Bank") and unknown fields are
// skipped.
func Parse(r io.Reader) ([]importer.Record, error) {
	var records []importer.Record
	var current importer.Record
	var sawField bool

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if text == "" {
			continue
		}

		if text == "^" {
			if sawField {
				records = append(records, current)
				current = importer.Record{}
				sawField = false
			}
			continue
		}

		code, value := text[0], text[1:]
		switch code {
		case '!':
			// type header, e.g. !Type:Bank
			continue
		case 'D':
			date, err := parseDate(value)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			current.Date = date
		case 'T':
			cents, err := parseAmount(value)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			current.Amount = cents
		case 'P':
			current.Endpoint = strings.TrimSpace(value)
		case 'N':
			current.Number = strings.TrimSpace(value)
		case 'C':
			current.Status = parseCleared(value)
		default:
			continue
		}
		sawField = true
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read QIF stream: %w", err)
	}

	if sawField {
		records = append(records, current)
	}
	return records, nil
}

func parseDate(value string) (time.Time, error) {
	v := strings.TrimSpace(value)
	for _, format := range dateFormats {
		if t, err := time.Parse(format, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable QIF date %q", value)
}

// parseAmount converts a decimal money string to signed cents without
// going through floats.
func parseAmount(value string) (int64, error) {
	v := strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	d, err := decimal.NewFromString(v)
	if err != nil {
		return 0, fmt.Errorf("unparseable QIF amount %q: %w", value, err)
	}
	return d.Mul(decimal.NewFromInt(100)).IntPart(), nil
}

func parseCleared(value string) model.Status {
	switch strings.TrimSpace(value) {
	case "*", "c":
		return model.StatusCleared
	case "X", "R":
		return model.StatusReconciled
	default:
		return model.StatusUnknown
	}
}
