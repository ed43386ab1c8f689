package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/compositor/pkg/composite"
	"github.com/matzehuels/compositor/pkg/graph"
)

// operation applies one engine call to g. single is the --vertex value, or
// allVertices.
type operation func(ctx context.Context, e *composite.Engine, g graph.Graph, single int) (composite.Result, error)

// expandCommand creates the expand command for restoring composites.
func (c *CLI) expandCommand() *cobra.Command {
	var opts rewriteOpts

	cmd := &cobra.Command{
		Use:   "expand [graph.json]",
		Short: "Restore composites to their members",
		Long: `Restore composites to their members.

Restored members keep a marker tying them to their group, so 'contract' can
collapse them again. Transactions attached to a composite after it was made
are copied onto every member.

Composites whose stored data is inconsistent are reported and left alone.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRewrite(cmd.Context(), "Expanded", args[0], opts, expandOp)
		},
	}
	opts.register(cmd, "composite to expand (default: all)")
	return cmd
}

func expandOp(ctx context.Context, e *composite.Engine, g graph.Graph, single int) (composite.Result, error) {
	if single == allVertices {
		return e.ExpandAll(ctx, g)
	}
	created, err := e.Expand(ctx, g, single)
	if err != nil || created == nil {
		return composite.Result{}, err
	}
	return composite.Result{Changed: 1, Created: created, Removed: []int{single}}, nil
}

// runRewrite loads input, applies op and writes the result.
func (c *CLI) runRewrite(ctx context.Context, verb, input string, opts rewriteOpts, op operation) error {
	g, err := loadGraph(ctx, input)
	if err != nil {
		return err
	}
	if opts.vertex != allVertices {
		if err := checkVertex(g, opts.vertex); err != nil {
			return err
		}
	}
	e, err := c.engine(ctx)
	if err != nil {
		return err
	}

	prog := newProgress(loggerFromContext(ctx))
	r, err := op(ctx, e, g, opts.vertex)
	if err != nil {
		return err
	}
	prog.done(verb + " " + plural(r.Changed, "composite"))

	for _, v := range r.Skipped {
		printWarning("Skipped vertex %d: inconsistent composite data", v)
	}
	if r.Changed == 0 {
		printInfo("Nothing to do")
		return nil
	}

	path, err := saveGraph(ctx, g, input, opts)
	if err != nil {
		return err
	}
	printSuccess("%s %s", verb, plural(r.Changed, "composite"))
	printResult(r)
	printOutput(path)
	return nil
}
