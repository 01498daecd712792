package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"portstudio/catalog"
	"portstudio/overlay"
	"portstudio/symbol"
)

// NewDebugCommand creates the debug command: render annotation overlay
// SVGs next to the given symbols.
func NewDebugCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "debug <symbol.svg>...",
		Short:        "Write *_debug.svg overlays showing each symbol's ports",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}
			pal := cfg.Palette()
			for _, svgPath := range args {
				svg, err := os.ReadFile(svgPath)
				if err != nil {
					return err
				}
				doc, _, err := symbol.Load(svgPath)
				if err != nil {
					return fmt.Errorf("%s: %w", svgPath, err)
				}
				out := symbol.DebugPath(svgPath)
				if err := os.WriteFile(out, overlay.Generate(svg, doc, pal), 0o644); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d ports -> %s\n", svgPath, len(doc.Ports), out)
			}
			return nil
		},
	}
}

// NewStatsCommand creates the stats command: completion tallies across
// the library.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "stats",
		Short:        "Report annotation progress across the symbol library",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}
			st, err := catalog.New(cfg.SymbolsRoot).Stats()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if rootOpts.Format == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(st)
			}

			fmt.Fprintf(out, "symbols: %d  completed: %d (%.1f%%)\n", st.Total, st.Completed, st.Percentage)
			fmt.Fprintln(out, "by standard:")
			for _, name := range sortedKeys(st.ByStandard) {
				g := st.ByStandard[name]
				fmt.Fprintf(out, "  %-20s %d/%d\n", name, g.Completed, g.Total)
			}
			fmt.Fprintln(out, "by category:")
			for _, name := range sortedKeys(st.ByCategory) {
				g := st.ByCategory[name]
				fmt.Fprintf(out, "  %-20s %d/%d\n", name, g.Completed, g.Total)
			}
			return nil
		},
	}
}

// NewValidateCommand creates the validate command: load every symbol in
// the library and report the ones whose annotations do not parse.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "validate",
		Short:        "Check every symbol's annotations for load errors",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}
			cat := catalog.New(cfg.SymbolsRoot)
			entries, err := cat.List()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			bad := 0
			for _, e := range entries {
				svgPath, err := cat.Resolve(e.Path)
				if err != nil {
					continue
				}
				if _, _, err := symbol.Load(svgPath); err != nil {
					bad++
					fmt.Fprintf(out, "%s: %v\n", e.Path, err)
				}
			}
			if bad > 0 {
				return fmt.Errorf("%d of %d symbols failed to load", bad, len(entries))
			}
			fmt.Fprintf(out, "%d symbols ok\n", len(entries))
			return nil
		},
	}
}

// NewKeyCommand creates the key command: mint API tokens for the review
// server.
func NewKeyCommand(rootOpts *RootOptions) *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:          "key <label>",
		Short:        "Create an API key for the review server",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if role != "contributor" && role != catalog.RoleReviewer {
				return errors.New("role must be contributor or reviewer")
			}
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}
			review, err := catalog.OpenReview(cfg.ReviewDB)
			if err != nil {
				return err
			}
			defer review.Close()

			token, err := review.CreateKey(context.Background(), args[0], role)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", "contributor", "key role (contributor|reviewer)")
	return cmd
}

func sortedKeys(m map[string]catalog.GroupStat) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
