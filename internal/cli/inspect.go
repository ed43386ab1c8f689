package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/compositor/pkg/composite"
	"github.com/matzehuels/compositor/pkg/graph"
)

// summary counts the composite structure of a graph.
type summary struct {
	vertices     int
	transactions int
	composites   []int
	groups       map[*composite.Snapshot][]int
	order        []*composite.Snapshot
}

func summarize(g graph.Reader) summary {
	s := summary{
		vertices:     g.VertexCount(),
		transactions: g.TransactionCount(),
		groups:       make(map[*composite.Snapshot][]int),
	}
	for _, v := range graph.Vertices(g) {
		switch st := composite.StateOf(g, v).(type) {
		case *composite.Contracted:
			s.composites = append(s.composites, v)
		case *composite.Expanded:
			if _, ok := s.groups[st.Snap]; !ok {
				s.order = append(s.order, st.Snap)
			}
			s.groups[st.Snap] = append(s.groups[st.Snap], v)
		}
	}
	return s
}

// inspectCommand creates the inspect command for listing composites.
func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [graph.json]",
		Short: "List composites and expanded groups",
		Long: `List the composites and expanded groups in a graph document.

The vertex ids shown are the ones accepted by --ids and --vertex in the
other commands.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd.Context(), args[0])
		},
	}
}

func runInspect(ctx context.Context, input string) error {
	g, err := loadGraph(ctx, input)
	if err != nil {
		return err
	}
	s := summarize(g)

	fmt.Println(StyleTitle.Render(input))
	printStats(s.vertices, s.transactions)
	if len(s.composites) == 0 && len(s.order) == 0 {
		printInfo("No composites")
		return nil
	}

	printNewline()
	for _, v := range s.composites {
		st := composite.StateOf(g, v)
		label := fmt.Sprintf("%s %s", itoa(v), StyleDim.Render(fmt.Sprint(st)))
		printKeyValue(label, identifier(g, v))
		if err := st.Snapshot().Validate(); err != nil {
			printWarning("inconsistent composite data: %v", err)
		}
	}
	for _, snap := range s.order {
		members := s.groups[snap]
		names := make([]string, len(members))
		for i, v := range members {
			names[i] = fmt.Sprintf("%d %s", v, identifier(g, v))
		}
		label := fmt.Sprintf("group %s", StyleDim.Render(fmt.Sprintf("(%d of %d)", len(members), snap.Len())))
		printKeyValue(label, joinDim(names))
	}
	return nil
}
