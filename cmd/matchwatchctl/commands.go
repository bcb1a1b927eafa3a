package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/riskibarqy/matchwatch/internal/app"
	"github.com/riskibarqy/matchwatch/internal/config"
	"github.com/riskibarqy/matchwatch/internal/domain/identity"
	"github.com/riskibarqy/matchwatch/internal/domain/match"
	"github.com/riskibarqy/matchwatch/internal/infrastructure/repository/file"
	"github.com/riskibarqy/matchwatch/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/matchwatch/internal/platform/logging"
)

func newRootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "matchwatchctl",
		Short:         "Operate the player match tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level to stdout")

	logger := func() *logging.Logger {
		if verbose {
			return logging.NewJSON(logging.LevelDebug)
		}
		return logging.NewJSON(logging.LevelWarn)
	}

	root.AddCommand(
		newCycleCommand(logger),
		newMatchTeamCommand(),
		newMatchPlayerCommand(),
		newOverridesCommand(),
	)
	return root
}

func newCycleCommand(logger func() *logging.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "cycle",
		Short: "Run one full reconcile cycle and print the records as JSON",
		Long: `Run one full reconcile cycle with the same configuration the API uses and print
every player's record. Without feed credentials the demo feed is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			tracker, err := app.NewTracker(ctx, cfg, logger())
			if err != nil {
				return err
			}
			defer func() { _ = tracker.Close() }()

			result, err := tracker.Service.TriggerCycle(ctx)
			if err != nil {
				return fmt.Errorf("run cycle: %w", err)
			}
			records, err := tracker.Service.GetAllRecords(ctx)
			if err != nil {
				return err
			}

			out := struct {
				Cycle   any            `json:"cycle"`
				Records []match.Record `json:"records"`
			}{
				Cycle:   result,
				Records: sortedRecords(records),
			}
			return writeJSON(cmd, out)
		},
	}
}

func newMatchTeamCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "match-team <feed-name> <roster-name>",
		Short:   "Show whether two team names are treated as the same club",
		Example: `  matchwatchctl match-team "FC Internazionale Milano" Inter`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeJSON(cmd, map[string]any{
				"feed":              args[0],
				"roster":            args[1],
				"feed_normalized":   identity.NormalizeTeam(args[0]),
				"roster_normalized": identity.NormalizeTeam(args[1]),
				"matches":           identity.TeamMatches(args[0], args[1]),
			})
		},
	}
}

func newMatchPlayerCommand() *cobra.Command {
	var squad []string

	cmd := &cobra.Command{
		Use:   "match-player <feed-name> <roster-name>",
		Short: "Show whether a feed player name resolves to a roster player",
		Long: `Show whether a feed player name resolves to a roster player. Pass the rest of the
roster squad with --squad to apply the same ambiguity rules the tracker uses.`,
		Example: `  matchwatchctl match-player "K. Walker" "Kyle Walker" --squad "Kyle Walker-Peters"`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := append([]string{args[1]}, squad...)
			index := identity.NewPlayerIndex(names)
			return writeJSON(cmd, map[string]any{
				"feed":              args[0],
				"roster":            args[1],
				"feed_normalized":   identity.NormalizePlayer(args[0]),
				"roster_normalized": identity.NormalizePlayer(args[1]),
				"matches":           index.Matches(args[0], args[1]),
			})
		},
	}
	cmd.Flags().StringSliceVar(&squad, "squad", nil, "other roster names on the same team")
	return cmd
}

func newOverridesCommand() *cobra.Command {
	overrides := &cobra.Command{
		Use:   "overrides",
		Short: "Manage manual match overrides",
	}

	var dryRun bool
	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Upsert a YAML overrides file into Postgres",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read overrides: %w", err)
			}
			entries, err := file.ParseOverrides(ctx, data)
			if err != nil {
				return err
			}
			grouped := file.GroupOverrides(entries)
			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "%d override(s) for %d player(s) are valid\n", len(entries), len(grouped))
				return nil
			}

			return withOverrideRepository(cmd, func(repo *postgres.OverrideRepository) error {
				n, err := repo.Upsert(ctx, grouped)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "upserted %d override(s) for %d player(s)\n", n, len(grouped))
				return nil
			})
		},
	}
	importCmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate the file without writing")

	listCmd := &cobra.Command{
		Use:   "list <player-id>",
		Short: "Print a player's stored overrides as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOverrideRepository(cmd, func(repo *postgres.OverrideRepository) error {
				items, err := repo.ListForPlayer(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd, items)
			})
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <player-id> <fixture-id>...",
		Short: "Remove a player's overrides for the given fixtures",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOverrideRepository(cmd, func(repo *postgres.OverrideRepository) error {
				n, err := repo.Delete(cmd.Context(), args[0], args[1:]...)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d override(s) for %s\n", n, args[0])
				return nil
			})
		},
	}

	overrides.AddCommand(importCmd, listCmd, deleteCmd)
	return overrides
}

func withOverrideRepository(cmd *cobra.Command, fn func(repo *postgres.OverrideRepository) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	dsn, err := app.ParseOverridesDSN(cfg.DBURL, cfg.DBDisablePreparedBinary)
	if err != nil {
		return err
	}
	db, err := app.OpenDB(cmd.Context(), dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(postgres.NewOverrideRepository(db))
}

func sortedRecords(records map[string]match.Record) []match.Record {
	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]match.Record, 0, len(ids))
	for _, id := range ids {
		out = append(out, records[id])
	}
	return out
}

func writeJSON(cmd *cobra.Command, v any) error {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
