package excel

// RawRowData represents a row of raw Excel data as string key-value pairs
type RawRowData map[string]string

// ExcelData represents one sheet of an Excel workbook
type ExcelData struct {
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows
}

// Sheet names of an exported batch
const (
	SheetSamples  = "Samples"
	SheetManifest = "Manifest"
	SheetStats    = "Stats"
)

// SampleHeaders are the columns of the samples sheet
var SampleHeaders = []string{
	"index", "id", "mode", "correct", "attempts",
	"predtype", "value", "reference", "comparison", "incorrect_mode",
	"entities", "caption",
}
