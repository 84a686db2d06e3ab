package etl

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ParseNumeric reads an aid quantity. A comma is a decimal separator and the fraction is
// dropped. Invalid, missing or negative values are 0.
func ParseNumeric(value string) int64 {
	s := strings.TrimSpace(value)
	if s == "" {
		return 0
	}

	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil || d.IsNegative() {
		return 0
	}

	return d.IntPart()
}

// spreadsheetEpoch is day zero of the 1900 date system, valid from March 1900 on.
var spreadsheetEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"02/01/2006",
	"02-01-2006",
	"2/1/2006",
	"2/1/2006 15:04:05",
}

// ParseDate reads a calendar date in any of the supported layouts. Five digit numbers
// are taken as spreadsheet date serials, so a bare year such as 2023 is rejected.
func ParseDate(value string) (time.Time, bool) {
	s := strings.TrimSpace(value)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return utcDay(t), true
		}
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial >= minSerial && serial < maxSerial {
		return spreadsheetEpoch.AddDate(0, 0, int(serial)), true
	}

	return time.Time{}, false
}

const (
	minSerial = 10000
	maxSerial = 100000
)

func utcDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
