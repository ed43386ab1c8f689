package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/compositor/pkg/composite"
	"github.com/matzehuels/compositor/pkg/graph"
	gio "github.com/matzehuels/compositor/pkg/io"
)

// makeCommand creates the make command for collapsing vertices.
func (c *CLI) makeCommand() *cobra.Command {
	var (
		opts rewriteOpts
		ids  []int
	)

	cmd := &cobra.Command{
		Use:   "make [graph.json]",
		Short: "Collapse vertices into a composite",
		Long: `Collapse vertices into a single composite vertex.

The vertices are given with --ids (as listed by 'inspect'). Without --ids the
vertices whose "selected" attribute is true are used. Composites among them
are absorbed member by member, and expanded members leave their old group.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runMake(cmd.Context(), args[0], ids, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: overwrite the input)")
	cmd.Flags().IntSliceVar(&ids, "ids", nil, "vertex ids to collapse (default: selected vertices)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "report changes without writing the document")

	return cmd
}

func (c *CLI) runMake(ctx context.Context, input string, ids []int, opts rewriteOpts) error {
	g, err := loadGraph(ctx, input)
	if err != nil {
		return err
	}
	e, err := c.engine(ctx)
	if err != nil {
		return err
	}

	prog := newProgress(loggerFromContext(ctx))
	var v int
	if len(ids) == 0 {
		v, err = e.CreateFromSelection(ctx, g)
	} else {
		v, err = e.CreateComposite(ctx, g, ids)
	}
	if err != nil {
		return err
	}
	if v == graph.NotFound {
		printWarning("Nothing to collapse")
		return nil
	}
	prog.done("Created composite")

	path, err := saveGraph(ctx, g, input, opts)
	if err != nil {
		return err
	}

	st := composite.StateOf(g, v)
	printSuccess("Created composite %s", StyleNumber.Render(itoa(gio.Position(g, v))))
	printKeyValue("Identifier", identifier(g, v))
	printKeyValue("Members", itoa(st.Size()))
	printOutput(path)
	return nil
}
