package cli

import (
	"log"

	"github.com/spf13/cobra"

	"portstudio/catalog"
	"portstudio/server"
)

// NewServeCommand creates the serve command: the HTTP API over the
// symbol library and the collaborative review store.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var listen, symbols, db string

	cmd := &cobra.Command{
		Use:          "serve",
		Short:        "Serve the symbol library over HTTP",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Listen = listen
			}
			if symbols != "" {
				cfg.SymbolsRoot = symbols
			}
			if db != "" {
				cfg.ReviewDB = db
			}

			review, err := catalog.OpenReview(cfg.ReviewDB)
			if err != nil {
				return err
			}
			defer review.Close()

			srv := server.New(catalog.New(cfg.SymbolsRoot), review, cfg.Palette())
			log.Printf("serving %s on %s", cfg.SymbolsRoot, cfg.Listen)
			return srv.App().Listen(cfg.Listen)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&symbols, "symbols", "", "symbol library root (overrides config)")
	cmd.Flags().StringVar(&db, "db", "", "review database path (overrides config)")
	return cmd
}
