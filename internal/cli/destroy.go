package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/compositor/pkg/composite"
	"github.com/matzehuels/compositor/pkg/graph"
)

// destroyCommand creates the destroy command for flattening composites.
func (c *CLI) destroyCommand() *cobra.Command {
	var opts rewriteOpts

	cmd := &cobra.Command{
		Use:   "destroy [graph.json]",
		Short: "Flatten composites and drop all group markers",
		Long: `Flatten composites for good.

Composites are expanded without leaving group markers, nested ones included,
and markers on expanded members are cleared. Afterwards the graph holds only
plain vertices and cannot be recontracted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRewrite(cmd.Context(), "Destroyed", args[0], opts, destroyOp)
		},
	}
	opts.register(cmd, "composite or group member to destroy (default: all)")
	return cmd
}

func destroyOp(ctx context.Context, e *composite.Engine, g graph.Graph, single int) (composite.Result, error) {
	if single == allVertices {
		return e.DestroyAll(ctx, g)
	}
	st := composite.StateOf(g, single)
	created, err := e.Destroy(ctx, g, single)
	if err != nil || st == nil {
		return composite.Result{}, err
	}
	r := composite.Result{Changed: 1, Created: created}
	if composite.IsComposite(st) {
		r.Removed = []int{single}
	}
	return r, nil
}
