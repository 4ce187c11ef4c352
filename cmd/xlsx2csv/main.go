// Command xlsx2csv prints the first worksheet of an xlsx file as CSV.
//
//	xlsx2csv [-no-header] [-filter expr] file.xlsx
//
// The filter expression sees each data row as row ([]string) and its 1-based
// position as num, and keeps the row only when it evaluates to true:
//
//	xlsx2csv -filter 'row[0] != "" && num <= 100' report.xlsx
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/javajack/xltab"
)

func main() {
	noHeader := flag.Bool("no-header", false, "omit the header row")
	filter := flag.String("filter", "", "keep only data rows where this expression is true")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: xlsx2csv [-no-header] [-filter expr] file.xlsx")
		os.Exit(2)
	}

	buf, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}

	if err := writeCSV(os.Stdout, xltab.Parse(buf), *filter, *noHeader); err != nil {
		log.Fatal(err)
	}
}

// writeCSV renders the table as CSV. A non-empty filter is compiled once and
// run against every data row; rows where it errors or does not yield true are
// dropped.
func writeCSV(w io.Writer, t xltab.Table, filter string, noHeader bool) error {
	var prog *vm.Program
	if filter != "" {
		var err error
		prog, err = expr.Compile(filter, expr.AsBool())
		if err != nil {
			return fmt.Errorf("compile filter %q: %w", filter, err)
		}
	}

	cw := csv.NewWriter(w)
	if !noHeader && len(t.Headers) > 0 {
		if err := cw.Write(t.Headers); err != nil {
			return err
		}
	}
	for i, row := range t.Rows {
		if prog != nil {
			keep, err := expr.Run(prog, map[string]any{"row": row, "num": i + 1})
			if err != nil || keep != true {
				continue
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
