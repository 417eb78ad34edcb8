package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// table is a header row plus data rows read from a CSV file or the first worksheet of an XLSX file
type table struct {
	columns map[string]int
	rows    [][]string
}

// readTable reads filename, choosing the format by extension
func readTable(filename string) (*table, error) {
	var records [][]string
	var err error
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		records, err = readWorkbook(filename)
	default:
		records, err = readCSV(filename)
	}
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return nil, errors.New("file must have header and at least one data row")
	}

	t := &table{columns: make(map[string]int, len(records[0]))}
	for i, name := range records[0] {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := t.columns[name]; !dup && name != "" {
			t.columns[name] = i
		}
	}
	for _, r := range records[1:] {
		if isBlank(r) {
			continue
		}
		t.rows = append(t.rows, r)
	}
	return t, nil
}

func readCSV(filename string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV %s: %w", filename, err)
	}
	return records, nil
}

func readWorkbook(filename string) ([][]string, error) {
	xlsx, err := excelize.OpenFile(filename)
	if err != nil {
		return nil, fmt.Errorf("unable to read Excel file %s: %w", filename, err)
	}
	defer xlsx.Close()

	sheets := xlsx.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheet found in %s", filename)
	}
	rows, err := xlsx.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("unable to read rows from sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

// require fails when any of the named columns is absent from the header
func (t *table) require(names ...string) error {
	var missing []string
	for _, n := range names {
		if _, ok := t.columns[n]; !ok {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("header is missing columns %v", missing)
	}
	return nil
}

// get returns the trimmed cell of column name in row; absent columns and short rows read as ""
func (t *table) get(row []string, name string) string {
	i, ok := t.columns[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
