package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/petasbytes/go-builder/internal/provider"
)

// ModelsCmd prints the model catalog.
type ModelsCmd struct {
	Provider string `short:"p" long:"provider" description:"only list models of this provider"`
}

func (c *ModelsCmd) Execute(_ []string) error {
	return printModels(os.Stdout, provider.ListModels(c.Provider))
}

func printModels(w io.Writer, models []provider.ModelInfo) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPROVIDER\tTOOLS\tALIASES")
	for _, m := range models {
		tools := "no"
		if m.SupportsTools {
			tools = "yes"
		}
		aliases := "-"
		if len(m.Aliases) > 0 {
			aliases = fmt.Sprint(m.Aliases)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.ID, m.Provider, tools, aliases)
	}
	return tw.Flush()
}
