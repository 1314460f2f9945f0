package app

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/vk/formulamap/internal/formula"
)

// writeReport prints one NAME STATE VALUE row per entry. VALUE is the result
// for OK variables and the error message otherwise.
func writeReport(w io.Writer, entries []formula.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSTATE\tVALUE")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Name, e.Value.State(), displayValue(e.Value))
	}
	return tw.Flush()
}

func displayValue(v formula.Value) string {
	if r, ok := v.Result(); ok {
		return formatResult(r)
	}
	return v.Message()
}

func formatResult(r float64) string {
	return strconv.FormatFloat(r, 'g', -1, 64)
}
