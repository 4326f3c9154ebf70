package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
)

type printer struct {
	out    io.Writer
	format string
}

func newPrinter(out io.Writer, format string) printer {
	return printer{out: out, format: format}
}

// emit writes value as JSON, or headers and rows as an aligned table.
func (output printer) emit(value any, headers []string, rows [][]string) error {
	if output.format == outputJSON {
		encoder := json.NewEncoder(output.out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(value)
	}
	writer := tabwriter.NewWriter(output.out, 0, 4, 2, ' ', 0)
	if len(headers) > 0 {
		fmt.Fprintln(writer, strings.Join(headers, "\t"))
	}
	for _, row := range rows {
		fmt.Fprintln(writer, strings.Join(row, "\t"))
	}
	return writer.Flush()
}

// fields prints label/value pairs, one per line.
func (output printer) fields(value any, pairs ...[2]string) error {
	rows := make([][]string, 0, len(pairs))
	for _, pair := range pairs {
		rows = append(rows, []string{pair[0] + ":", pair[1]})
	}
	return output.emit(value, nil, rows)
}

func (output printer) message(text string) error {
	if output.format == outputJSON {
		return output.emit(map[string]string{"message": text}, nil, nil)
	}
	_, err := fmt.Fprintln(output.out, text)
	return err
}

func money(amount decimal.Decimal) string {
	return "₹" + amount.StringFixed(2)
}

func itoa(value int) string {
	return fmt.Sprintf("%d", value)
}

func decimalFromInt(value int) decimal.Decimal {
	return decimal.NewFromInt(int64(value))
}
