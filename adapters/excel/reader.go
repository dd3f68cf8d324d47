package excel

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"goshape/internal/errors"
)

// DataReader reads sheets of an exported workbook back into rows
type DataReader struct {
	filePath string
	logger   *zap.Logger
}

// NewDataReader creates a new data reader
func NewDataReader(filePath string, logger *zap.Logger) *DataReader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DataReader{filePath: filePath, logger: logger}
}

// ReadSheet reads sheet into structured format. The first row holds the headers.
func (r *DataReader) ReadSheet(sheet string) (*ExcelData, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, errors.InvalidInput(fmt.Sprintf("XLSX file not found: %s", r.filePath))
	}

	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open Excel file")
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", sheet)
	}
	r.logger.Debug("sheet read",
		zap.String("sheet", sheet),
		zap.Int("rows", len(rows)),
		zap.Duration("elapsed", time.Since(startTime)))

	if len(rows) < 1 {
		return nil, errors.InvalidInput(fmt.Sprintf("sheet %s has no header row", sheet))
	}
	return processRows(rows), nil
}

// ReadSamples reads the samples sheet
func (r *DataReader) ReadSamples() (*ExcelData, error) {
	return r.ReadSheet(SheetSamples)
}

// ReadPairs reads a key/value sheet such as the manifest
func (r *DataReader) ReadPairs(sheet string) (map[string]string, error) {
	data, err := r.ReadSheet(sheet)
	if err != nil {
		return nil, err
	}
	pairs := make(map[string]string, len(data.Rows))
	for _, row := range data.Rows {
		pairs[row["key"]] = row["value"]
	}
	return pairs, nil
}

// processRows converts raw string rows into ExcelData format
func processRows(rows [][]string) *ExcelData {
	headers := make([]string, len(rows[0]))
	for i, header := range rows[0] {
		headers[i] = strings.TrimSpace(header)
	}

	dataRows := make([]RawRowData, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rowData := make(RawRowData, len(headers))
		for j, cell := range row {
			if j < len(headers) {
				rowData[headers[j]] = strings.TrimSpace(cell)
			}
		}
		dataRows = append(dataRows, rowData)
	}
	return &ExcelData{Headers: headers, Rows: dataRows}
}
