// Command export-rules writes the built-in crop rules to an .xlsx workbook
// that can be edited and loaded back through RULES_FILE.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/vladimiradmaev/farm-helper/internal/rules"
)

func main() {
	out := flag.String("o", "crop-rules.xlsx", "output file")
	flag.Parse()

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create %s: %v\n", *out, err)
		os.Exit(1)
	}
	if err := rules.WriteTable(f, rules.DefaultTable()); err != nil {
		f.Close()
		fmt.Fprintf(os.Stderr, "failed to write rules: %v\n", err)
		os.Exit(1)
	}
	if err := f.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to close %s: %v\n", *out, err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d rules to %s\n", len(rules.DefaultTable()), *out)
}
