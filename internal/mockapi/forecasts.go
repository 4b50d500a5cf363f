package mockapi

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/forecast-dashboard/apimodel"
	ierrors "github.com/jrsteele09/forecast-dashboard/internal/errors"
)

// ViewLimit caps the rows returned by /view-data.
const ViewLimit = 100

const dateLayout = "2006-01-02"

var forecastColumns = []string{"period", "date", "calls_forecast", "aht_forecast", "fte_required"}

// ForecastRepo holds the uploaded forecast table. An upload replaces the whole table.
type ForecastRepo struct {
	mu   sync.RWMutex
	rows []apimodel.ForecastRow
}

func NewForecastRepo() *ForecastRepo {
	return &ForecastRepo{}
}

// Replace swaps the table for rows.
func (r *ForecastRepo) Replace(rows []apimodel.ForecastRow) {
	cp := make([]apimodel.ForecastRow, len(rows))
	copy(cp, rows)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = cp
}

// List returns up to limit rows, newest date first, then by period.
func (r *ForecastRepo) List(limit int) []apimodel.ForecastRow {
	r.mu.RLock()
	rows := make([]apimodel.ForecastRow, len(r.rows))
	copy(rows, r.rows)
	r.mu.RUnlock()

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date > rows[j].Date
		}
		return rows[i].Period < rows[j].Period
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

// ParseForecastCSV reads a forecast CSV with a header row. Column order is
// free and header names are case-insensitive. Rows whose date does not parse
// are skipped.
func ParseForecastCSV(r io.Reader) ([]apimodel.ForecastRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("[ParseForecastCSV] read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, col := range forecastColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("[ParseForecastCSV] missing column %q: %w", col, ierrors.ErrInvalidInput)
		}
	}

	var rows []apimodel.ForecastRow
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("[ParseForecastCSV] line %d: %w", line, err)
		}

		field := func(col string) string {
			return strings.TrimSpace(record[index[col]])
		}

		date, err := time.Parse(dateLayout, field("date"))
		if err != nil {
			continue
		}
		row := apimodel.ForecastRow{
			Period: field("period"),
			Date:   date.Format(dateLayout),
		}
		numbers := []struct {
			col string
			dst *float64
		}{
			{"calls_forecast", &row.CallsForecast},
			{"aht_forecast", &row.AHTForecast},
			{"fte_required", &row.FTERequired},
		}
		for _, n := range numbers {
			v, err := strconv.ParseFloat(field(n.col), 64)
			if err != nil {
				return nil, fmt.Errorf("[ParseForecastCSV] line %d column %s: %w", line, n.col, ierrors.ErrInvalidInput)
			}
			*n.dst = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}
