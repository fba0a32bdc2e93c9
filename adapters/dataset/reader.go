package dataset

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"clusterlab/domain/analysis"
)

// DataReader reads labeled text records from Excel and CSV files.
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewDataReader creates a reader that handles both Excel and CSV files,
// picking the format from the file extension.
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// ReadRecords reads all rows into text records. The first row must be a
// header; the identifier, text and label columns are auto-detected from
// the header names (see detectColumns). The label column is optional.
func (r *DataReader) ReadRecords() ([]analysis.TextRecord, error) {
	log.Printf("[DataReader] Reading %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	case "xlsx":
		rows, err = r.readExcelRows()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
	if err != nil {
		return nil, err
	}

	if len(rows) < 2 {
		return nil, fmt.Errorf("file must have at least a header row and one data row")
	}

	return r.processRows(rows)
}

func (r *DataReader) readExcelRows() ([][]string, error) {
	start := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	log.Printf("[DataReader] Sheet %s read in %.2fms (%d rows)",
		sheet, float64(time.Since(start).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

func (r *DataReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV data: %w", err)
	}
	return rows, nil
}

// processRows detects the column layout from the header and converts data
// rows into records. Rows with an empty identifier get a synthetic
// row-index identifier; rows with no text are skipped.
func (r *DataReader) processRows(rows [][]string) ([]analysis.TextRecord, error) {
	header := rows[0]
	idCol, textCol, labelCol := detectColumns(header)
	if textCol < 0 {
		return nil, fmt.Errorf("could not detect a text column in header %v", header)
	}
	log.Printf("[DataReader] Detected columns: identifier=%d, text=%d, label=%d", idCol, textCol, labelCol)

	records := make([]analysis.TextRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		text := cell(row, textCol)
		if strings.TrimSpace(text) == "" {
			continue
		}
		id := cell(row, idCol)
		if strings.TrimSpace(id) == "" {
			id = "row_" + strconv.Itoa(i+1)
		}
		records = append(records, analysis.TextRecord{
			Identifier: strings.TrimSpace(id),
			Text:       text,
			Label:      strings.TrimSpace(cell(row, labelCol)),
		})
	}

	log.Printf("[DataReader] Loaded %d records", len(records))
	return records, nil
}

// detectColumns matches header names against the usual candidates. The
// identifier column falls back to the first column; the label column is
// -1 when absent.
func detectColumns(header []string) (idCol, textCol, labelCol int) {
	idCol, textCol, labelCol = -1, -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "id", "identifier", "key":
			if idCol < 0 {
				idCol = i
			}
		case "text", "content", "message", "body":
			if textCol < 0 {
				textCol = i
			}
		case "label", "group", "category":
			if labelCol < 0 {
				labelCol = i
			}
		}
	}
	if idCol < 0 {
		idCol = 0
	}
	if textCol < 0 && len(header) > 1 {
		// No recognizable text header; assume the second column.
		textCol = 1
	}
	return idCol, textCol, labelCol
}

func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}
