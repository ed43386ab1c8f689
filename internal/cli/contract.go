package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/compositor/pkg/composite"
	"github.com/matzehuels/compositor/pkg/graph"
)

// contractCommand creates the contract command for recollapsing groups.
func (c *CLI) contractCommand() *cobra.Command {
	var opts rewriteOpts

	cmd := &cobra.Command{
		Use:   "contract [graph.json]",
		Short: "Recontract expanded groups",
		Long: `Collapse expanded members back into composites, one per group.

Members deleted while expanded are dropped from the group. A group with a
single survivor becomes a one-member composite, or a plain vertex with
--single-member=release.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRewrite(cmd.Context(), "Contracted", args[0], opts, contractOp)
		},
	}
	opts.register(cmd, "any member of the group to contract (default: all groups)")
	return cmd
}

func contractOp(ctx context.Context, e *composite.Engine, g graph.Graph, single int) (composite.Result, error) {
	if single == allVertices {
		return e.ContractAll(ctx, g)
	}
	_, member := composite.StateOf(g, single).(*composite.Expanded)
	v, err := e.Contract(ctx, g, single)
	switch {
	case err != nil || !member:
		return composite.Result{}, err
	case v == graph.NotFound:
		// Released single member.
		return composite.Result{Changed: 1}, nil
	}
	return composite.Result{Changed: 1, Created: []int{v}}, nil
}
