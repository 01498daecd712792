package cli

import (
	"github.com/spf13/cobra"

	"portstudio/tui"
)

// NewEditCommand creates the edit command: the interactive terminal
// annotation editor for one symbol.
func NewEditCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <symbol.svg>",
		Short: "Annotate a symbol's ports interactively",
		Long: `Open the terminal editor on one symbol. Ports load from the sidecar
JSON next to the SVG and save back to it on demand.

Keys: click selects, drag moves, a adds, m arms midpoint placement,
x/y arm coordinate matching, g toggles grid snap, l cycles the axis
lock, c converts point/zone, e renames, u/r undo/redo, s saves, q quits.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}
			editor, err := tui.New(args[0], cfg)
			if err != nil {
				return err
			}
			return editor.Run()
		},
	}
}
