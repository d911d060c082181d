// Package output renders API responses for the terminal. Every command hands
// its data to Render with column definitions; the user's chosen format
// decides how it is printed.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

// Supported output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatCSV   = "csv"
	FormatQuiet = "quiet"
)

// Column maps a (possibly dotted) key in a record to a display header.
type Column struct {
	Key    string
	Header string
}

// Options controls how Render presents data.
type Options struct {
	// Format is one of the Format* constants; empty means table.
	Format string
	// Columns define table and CSV layout for list data.
	Columns []Column
	// Title is printed above the table when set.
	Title string
	// IDKey is the field printed in quiet mode; empty means "id".
	IDKey string
	// Fields define the labeled layout for a single record.
	Fields []Column
	// Writer receives all output; defaults to os.Stdout.
	Writer io.Writer
}

// Resolve walks a dotted path through nested objects. A missing key or a
// non-object midway returns nil.
func Resolve(record map[string]any, path string) any {
	var value any = record

	for _, part := range strings.Split(path, ".") {
		object, ok := value.(map[string]any)
		if !ok {
			return nil
		}

		value = object[part]
	}

	return value
}

// FormatValue renders a decoded JSON value as a display cell.
func FormatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "-"
	case bool:
		if v {
			return "Yes"
		}

		return "No"
	case []any:
		if len(v) == 0 {
			return "-"
		}

		if len(v) <= 3 {
			parts := make([]string, len(v))
			for i, item := range v {
				parts[i] = FormatValue(item)
			}

			return strings.Join(parts, ", ")
		}

		return fmt.Sprintf("%d items", len(v))
	case map[string]any:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}

		return string(data)
	case string:
		return v
	case float64:
		// JSON numbers decode as float64; keep integers free of a
		// trailing ".0".
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Render prints data in the format named by opts. List data uses the column
// layout; a single record uses the labeled field layout when given. Data that
// fits no layout falls back to JSON.
func Render(data any, opts Options) error {
	writer := opts.Writer
	if writer == nil {
		writer = os.Stdout
	}

	if list, ok := data.([]any); ok {
		data = asRecords(list)
	}

	switch opts.Format {
	case FormatJSON:
		return renderJSON(writer, data)
	case FormatQuiet:
		return renderQuiet(writer, data, opts.idKey())
	}

	switch v := data.(type) {
	case []map[string]any:
		if opts.Format == FormatCSV && len(opts.Columns) > 0 {
			return renderCSV(writer, v, opts.Columns)
		}

		if len(opts.Columns) > 0 {
			return renderTable(writer, v, opts)
		}

		return renderJSON(writer, data)
	case map[string]any:
		if len(opts.Fields) > 0 {
			return renderSingle(writer, v, opts.Fields)
		}

		return renderJSON(writer, data)
	default:
		_, err := fmt.Fprintln(writer, FormatValue(data))

		return err
	}
}

// asRecords converts a decoded JSON array into records; elements that are
// not objects drop out.
func asRecords(list []any) []map[string]any {
	records := make([]map[string]any, 0, len(list))

	for _, item := range list {
		if record, ok := item.(map[string]any); ok {
			records = append(records, record)
		}
	}

	return records
}

func (o Options) idKey() string {
	if o.IDKey != "" {
		return o.IDKey
	}

	return "id"
}

func renderJSON(writer io.Writer, data any) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")

	return encoder.Encode(data)
}

// renderQuiet prints one ID per line for list data, or the single record's
// ID, so output can feed shell pipelines.
func renderQuiet(writer io.Writer, data any, idKey string) error {
	switch v := data.(type) {
	case []map[string]any:
		for _, record := range v {
			id, ok := record[idKey]
			if !ok {
				continue
			}

			if _, err := fmt.Fprintln(writer, FormatValue(id)); err != nil {
				return err
			}
		}

		return nil
	case map[string]any:
		if id, ok := v[idKey]; ok {
			_, err := fmt.Fprintln(writer, FormatValue(id))

			return err
		}

		return nil
	default:
		return nil
	}
}

func renderTable(writer io.Writer, records []map[string]any, opts Options) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(writer, "No results found.")

		return err
	}

	if opts.Title != "" {
		if _, err := fmt.Fprintln(writer, opts.Title); err != nil {
			return err
		}
	}

	table := tablewriter.NewWriter(writer)

	headers := make([]any, len(opts.Columns))
	for i, column := range opts.Columns {
		headers[i] = column.Header
	}

	table.Header(headers...)

	for _, record := range records {
		row := make([]string, len(opts.Columns))
		for i, column := range opts.Columns {
			row[i] = FormatValue(Resolve(record, column.Key))
		}

		_ = table.Append(row)
	}

	return table.Render()
}

// renderCSV writes the same columns as the table, but missing values stay
// empty instead of the "-" placeholder.
func renderCSV(writer io.Writer, records []map[string]any, columns []Column) error {
	if len(records) == 0 {
		return nil
	}

	csvWriter := csv.NewWriter(writer)

	headers := make([]string, len(columns))
	for i, column := range columns {
		headers[i] = column.Header
	}

	if err := csvWriter.Write(headers); err != nil {
		return err
	}

	for _, record := range records {
		row := make([]string, len(columns))

		for i, column := range columns {
			value := Resolve(record, column.Key)
			if value == nil {
				continue
			}

			row[i] = FormatValue(value)
		}

		if err := csvWriter.Write(row); err != nil {
			return err
		}
	}

	csvWriter.Flush()

	return csvWriter.Error()
}

func renderSingle(writer io.Writer, record map[string]any, fields []Column) error {
	width := 0
	for _, field := range fields {
		if len(field.Header) > width {
			width = len(field.Header)
		}
	}

	for _, field := range fields {
		value := FormatValue(Resolve(record, field.Key))
		if _, err := fmt.Fprintf(writer, "%-*s  %s\n", width, field.Header, value); err != nil {
			return err
		}
	}

	return nil
}

// Success prints a green check-marked message.
func Success(writer io.Writer, format string, args ...any) {
	fmt.Fprintf(writer, "%s %s\n", color.GreenString("✓"), fmt.Sprintf(format, args...))
}

// Error prints a red cross-marked message.
func Error(writer io.Writer, format string, args ...any) {
	fmt.Fprintf(writer, "%s %s\n", color.RedString("✗"), fmt.Sprintf(format, args...))
}

// Warning prints a yellow-marked message.
func Warning(writer io.Writer, format string, args ...any) {
	fmt.Fprintf(writer, "%s %s\n", color.YellowString("!"), fmt.Sprintf(format, args...))
}

// Info prints a blue-marked message.
func Info(writer io.Writer, format string, args ...any) {
	fmt.Fprintf(writer, "%s %s\n", color.BlueString("i"), fmt.Sprintf(format, args...))
}
