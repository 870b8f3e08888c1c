package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"worksheet-quiz/internal/app"
	"worksheet-quiz/internal/config"
)

// NewImportCmd loads a directory of worksheet files into the configured store.
func NewImportCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import [dir]",
		Short: "Import worksheet JSON files into the seed library",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			dir := cfg.Files.Dir
			if len(args) == 1 {
				dir = args[0]
			}
			if dir == "" {
				return fmt.Errorf("no worksheet directory given")
			}

			ctx := cmd.Context()
			log := newLogger(cfg)
			b, err := openBackends(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer b.Close()

			repo := app.NewRepository(b.blobStore(cfg.Store.Key), log, nil)
			if err := repo.Load(ctx); err != nil {
				return err
			}
			result := importDir(ctx, repo, dir, log)

			out := cmd.OutOrStdout()
			for _, err := range result.Errors {
				fmt.Fprintf(out, "  ! %v\n", err)
			}
			fmt.Fprintf(out, "imported %d worksheet(s), %d failed; library holds %d worksheet(s)\n",
				result.Succeeded, result.Failed, repo.Count())
			if result.Failed > 0 {
				return fmt.Errorf("%d document(s) rejected", result.Failed)
			}
			return nil
		},
	}
}
