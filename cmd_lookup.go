package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cso-health-insurance/server/internal/agent/graph"
	pgstore "github.com/cso-health-insurance/server/internal/store/postgres"
)

// lookupCmd runs one lookup adapter as an eino tool
var lookupCmd = &cobra.Command{
	Use:   "lookup [tool] [json-arguments]",
	Short: "Run a single lookup adapter",
	Long: `Run one lookup adapter directly, bypassing the dialogue.

Without arguments the available tools are listed. Example:
  cso lookup lookup_rs '{"city":"Bandung","rs_mode":"cashless"}'`,
	Args: cobra.MaximumNArgs(2),
	RunE: runLookup,
}

// migrateCmd creates the Postgres schema
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the pgvector extension and store tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := appCfg.Postgres.New()
		if err != nil {
			return err
		}
		defer closeDB(db)
		if err := pgstore.Migrate(cmd.Context(), db); err != nil {
			return err
		}
		color.Green("Migration complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lookupCmd, migrateCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a := &app{}
	defer a.Close()
	if err := buildLookups(ctx, appCfg, a); err != nil {
		return err
	}

	runner, err := graph.BuildToolRunner(ctx, a.lookups.Tools())
	if err != nil {
		return err
	}
	if len(args) == 0 {
		color.Cyan("Available tools: %s", strings.Join(runner.Names(), ", "))
		return nil
	}

	arguments := "{}"
	if len(args) == 2 {
		arguments = args[1]
	}
	out, err := runner.Call(ctx, args[0], arguments)
	if err != nil {
		color.Red("Failed: %v", err)
		return err
	}
	return printJSON(out)
}

func printJSON(raw string) error {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		fmt.Println(raw)
		return nil
	}
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(pretty))
	return nil
}
