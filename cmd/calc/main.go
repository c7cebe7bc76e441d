// Command calc prints the per-person totals of an exported bill document.
//
//	calc -f bill.json
//	calc < bill.json
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/mmynk/sharely/internal/billedit"
	"github.com/mmynk/sharely/internal/calculator"
	"github.com/mmynk/sharely/pkg/logging"
)

func main() {
	logging.Setup("")
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		slog.Error("calc failed", "error", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("calc", flag.ContinueOnError)
	file := fs.String("f", "-", "exported bill document to read (- for stdin)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	data, err := readInput(*file, stdin)
	if err != nil {
		return err
	}

	bill, err := billedit.Import(data)
	if err != nil {
		return err
	}
	res := bill.Compute()

	names := make(map[calculator.PersonID]string, len(bill.People))
	for _, p := range bill.People {
		names[calculator.PersonID(p.ID)] = p.Name
	}

	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "Person\tItems\tDiscount\tCharges\tTotal\t")
	for _, line := range res.Lines {
		fmt.Fprintf(w, "%s\t%s\t-%s\t+%s\t%s\t\n",
			names[line.PersonID],
			calculator.FormatCents(line.BaseCents),
			calculator.FormatCents(line.DiscountCents),
			calculator.FormatCents(line.ChargesCents),
			calculator.FormatCents(line.TotalCents),
		)
	}
	if res.UnassignedCents > 0 {
		fmt.Fprintf(w, "Unassigned\t%s\t\t\t\t\n", calculator.FormatCents(res.UnassignedCents))
	}
	fmt.Fprintf(w, "Total\t\t-%s\t+%s\t%s\t\n",
		calculator.FormatCents(res.DiscountCents),
		calculator.FormatCents(res.VATCents+res.ServiceChargeCents),
		calculator.FormatCents(res.GrandTotalCents),
	)
	return w.Flush()
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
