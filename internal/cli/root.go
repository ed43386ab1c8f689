package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/compositor/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// The persistent pre-run loads the configuration file named by --config (or
// the default location), applies --single-member and --verbose on top of it
// and attaches the logger to the command context.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Compositor collapses graph vertices into composites and back",
		Long: `Compositor edits attributed graphs stored as JSON documents. Groups of
vertices can be collapsed into a single composite vertex, expanded again
without losing attribute data, recontracted, or flattened for good.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.configure(cmd)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/compositor/config.toml)")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	flags.StringVar(&c.singleMember, "single-member", "", "single survivor policy on recontraction: keep, release")

	root.AddCommand(c.makeCommand())
	root.AddCommand(c.expandCommand())
	root.AddCommand(c.contractCommand())
	root.AddCommand(c.destroyCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.completionCommand())

	return root
}
