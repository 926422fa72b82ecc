package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/recobot/internal/adapter/storage"
	"github.com/heartmarshall/recobot/internal/app"
	"github.com/heartmarshall/recobot/internal/config"
	"github.com/heartmarshall/recobot/internal/domain"
	"github.com/heartmarshall/recobot/internal/service/catalogue"
)

var flagIngestID int64

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending catalogue migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadTool()
		if err != nil {
			return err
		}
		ctx := contextOrBackground(cmd)

		db, err := storage.Open(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close() //nolint:errcheck

		if err := storage.Migrate(ctx, db, logger); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print per-category catalogue counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCatalogue(cmd, func(svc *catalogue.Service) error {
			stats, err := svc.Stats(contextOrBackground(cmd))
			if err != nil {
				return err
			}
			printStats(cmd.OutOrStdout(), stats)
			return nil
		})
	},
}

var addCmd = &cobra.Command{
	Use:     "add ID #tag Title...",
	Short:   "Register a channel post by hand",
	Example: "  recobot add 123 #книги Между нами горы",
	Args:    cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCatalogue(cmd, func(svc *catalogue.Service) error {
			res, err := svc.RegisterArgs(contextOrBackground(cmd), strings.Join(args, " "), catalogue.SourceCLI)
			if err != nil {
				return err
			}
			printRegistered(cmd.OutOrStdout(), res.Created, res.Entry)
			return nil
		})
	},
}

var ingestCmd = &cobra.Command{
	Use:   "ingest --id ID",
	Short: "Register a post from its text read on stdin",
	Long:  "ingest reads a post body from stdin and registers it when it carries a category hashtag.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}

		return withCatalogue(cmd, func(svc *catalogue.Service) error {
			res, err := svc.IngestPost(contextOrBackground(cmd), flagIngestID, string(body), catalogue.SourceCLI)
			if err != nil {
				return err
			}
			if res.Skipped {
				fmt.Fprintln(cmd.OutOrStdout(), "skipped: no category hashtag found")
				return nil
			}
			printRegistered(cmd.OutOrStdout(), res.Created, res.Entry)
			return nil
		})
	},
}

func init() {
	ingestCmd.Flags().Int64Var(&flagIngestID, "id", 0, "channel message id of the post")
	_ = ingestCmd.MarkFlagRequired("id")
}

func loadTool() (*config.ToolConfig, *slog.Logger, error) {
	cfg, err := config.LoadTool()
	if err != nil {
		return nil, nil, err
	}
	return cfg, app.NewLogger(cfg.Log), nil
}

func withCatalogue(cmd *cobra.Command, fn func(svc *catalogue.Service) error) error {
	cfg, logger, err := loadTool()
	if err != nil {
		return err
	}

	cat, err := app.OpenCatalogue(contextOrBackground(cmd), cfg.Database, logger)
	if err != nil {
		return err
	}
	defer cat.Close() //nolint:errcheck

	if err := fn(cat.Service); err != nil {
		return describe(err)
	}
	return nil
}

// describe flattens validation errors into a single readable line.
func describe(err error) error {
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	parts := make([]string, 0, len(verr.Errors))
	for _, fe := range verr.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return fmt.Errorf("invalid input: %s", strings.Join(parts, "; "))
}

func printRegistered(w io.Writer, created bool, e domain.Entry) {
	status := "added"
	if !created {
		status = "already registered"
	}
	fmt.Fprintf(w, "%s: %d %s %s\n", status, e.MessageID, e.Category, e.Title)
}

func printStats(w io.Writer, stats domain.CatalogueStats) {
	for _, c := range domain.Categories {
		fmt.Fprintf(w, "%-10s %d\n", c, stats.ByCategory[c])
	}

	var legacy []domain.Category
	for c := range stats.ByCategory {
		if !c.IsValid() {
			legacy = append(legacy, c)
		}
	}
	slices.Sort(legacy)
	for _, c := range legacy {
		fmt.Fprintf(w, "%-10s %d\n", c, stats.ByCategory[c])
	}

	fmt.Fprintf(w, "%-10s %d\n", "total", stats.Total)
}
