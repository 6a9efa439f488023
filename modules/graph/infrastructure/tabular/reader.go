// Package tabular decodes ingestion input files into raw field rows. It
// understands CSV, Excel workbooks and JSON seed files, and leaves header
// normalization and typing to the record mapper.
package tabular

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/iota-uz/career-graph/modules/graph/domain/record"
)

// ReadCSV decodes comma-separated rows. The first row is the header; short
// data rows are padded, blank rows are skipped.
func ReadCSV(r io.Reader) ([]record.Fields, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read csv header")
	}

	var rows []record.Fields
	for {
		cells, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "read csv row")
		}
		if row := cellsToFields(header, cells); len(row) > 0 {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// ReadXLSX decodes the first sheet of an Excel workbook, first row as
// header.
func ReadXLSX(path string) ([]record.Fields, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open workbook %s", path)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.Errorf("workbook %s has no sheets", path)
	}
	cells, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "read sheet %s", sheet)
	}
	if len(cells) == 0 {
		return nil, nil
	}

	header := cells[0]
	var rows []record.Fields
	for _, line := range cells[1:] {
		if row := cellsToFields(header, line); len(row) > 0 {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// ReadJSON decodes a seed file holding an array of flat objects. Scalar
// values are stringified; an object value is flattened one level so its keys
// land as individual fields; null values are dropped so the merge semantics
// leave stored properties alone.
func ReadJSON(r io.Reader) ([]record.Fields, error) {
	decoder := json.NewDecoder(r)
	decoder.UseNumber()

	var raw []map[string]any
	if err := decoder.Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "decode json seed")
	}

	rows := make([]record.Fields, 0, len(raw))
	for _, obj := range raw {
		row := record.Fields{}
		for key, value := range obj {
			switch v := value.(type) {
			case nil:
				continue
			case map[string]any:
				for childKey, childValue := range v {
					if s, ok := scalarToString(childValue); ok {
						row[childKey] = s
					}
				}
			default:
				if s, ok := scalarToString(v); ok {
					row[key] = s
				}
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadFile dispatches on the file extension.
func ReadFile(path string) ([]record.Fields, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "open %s", path)
		}
		defer f.Close()
		return ReadCSV(f)
	case ".xlsx", ".xls":
		return ReadXLSX(path)
	case ".json":
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "open %s", path)
		}
		defer f.Close()
		return ReadJSON(f)
	default:
		return nil, errors.Errorf("unsupported file type for %s", path)
	}
}

// WriteJSON renders rows as an indented JSON array, the shape ReadJSON
// accepts back. Used by the workbook-to-seed conversion.
func WriteJSON(w io.Writer, rows []record.Fields) error {
	out := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, row)
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return errors.Wrap(encoder.Encode(out), "encode json seed")
}

// ConvertToJSON reads any supported input file and writes it back as a JSON
// seed, returning the row count.
func ConvertToJSON(inPath, outPath string) (int, error) {
	rows, err := ReadFile(inPath)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return 0, errors.Wrapf(err, "create output dir for %s", outPath)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return 0, errors.Wrapf(err, "create %s", outPath)
	}
	defer f.Close()
	if err := WriteJSON(f, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func cellsToFields(header, cells []string) record.Fields {
	row := record.Fields{}
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		var value string
		if i < len(cells) {
			value = strings.TrimSpace(cells[i])
		}
		if value == "" {
			continue
		}
		row[name] = value
	}
	return row
}

func scalarToString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		if v == "" {
			return "", false
		}
		return v, true
	case json.Number:
		return v.String(), true
	case bool:
		return strconv.FormatBool(v), true
	case float64:
		return fmt.Sprintf("%v", v), true
	default:
		return "", false
	}
}
