package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/compositor/pkg/errors"
	"github.com/matzehuels/compositor/pkg/graph"
	gio "github.com/matzehuels/compositor/pkg/io"
)

// allVertices is the --vertex value meaning "every composite".
const allVertices = -1

// rewriteOpts holds the flags shared by commands that rewrite a document.
type rewriteOpts struct {
	output string // output file (default: the input file)
	vertex int    // single vertex to act on, or allVertices
	dryRun bool   // report without writing
}

func (o *rewriteOpts) register(cmd *cobra.Command, vertexHelp string) {
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output file (default: overwrite the input)")
	cmd.Flags().IntVar(&o.vertex, "vertex", allVertices, vertexHelp)
	cmd.Flags().BoolVar(&o.dryRun, "dry-run", false, "report changes without writing the document")
}

// loadGraph reads the document at path. Vertex ids in the returned graph
// are the ones listed by the inspect command.
func loadGraph(ctx context.Context, path string) (*graph.Store, error) {
	g, err := gio.ImportJSON(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("load graph %s: %w", path, err)
	}
	loggerFromContext(ctx).Debug("loaded graph", "path", path, "vertices", g.VertexCount(), "transactions", g.TransactionCount())
	return g, nil
}

// saveGraph writes g to the output named by o, falling back to input.
// It returns the path written, or "" for a dry run.
func saveGraph(ctx context.Context, g *graph.Store, input string, o rewriteOpts) (string, error) {
	if o.dryRun {
		return "", nil
	}
	path := o.output
	if path == "" {
		path = input
	}
	if err := errs.ValidatePath(path); err != nil {
		return "", err
	}
	if err := gio.ExportJSON(ctx, g, path); err != nil {
		return "", fmt.Errorf("write output %s: %w", path, err)
	}
	return path, nil
}

// checkVertex reports a NOT_FOUND error for a --vertex that is not in g.
func checkVertex(g graph.Reader, v int) error {
	if !g.HasVertex(v) {
		return errs.New(errs.ErrCodeNotFound, "vertex %d not found", v)
	}
	return nil
}
