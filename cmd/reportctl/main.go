// cmd/reportctl/main.go
// Operator CLI for the reports database.
// Usage:
//
//	reportctl migrate
//	reportctl list --user <uuid>
//	reportctl delete <report-id> --user <uuid>
//	reportctl token --user <uuid> [--ttl 72h]
package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tadeyemo32/strategai-backend/config"
	"github.com/tadeyemo32/strategai-backend/logger"
	"github.com/tadeyemo32/strategai-backend/services"
)

var (
	configPath string
	userID     string
	tokenTTL   time.Duration
)

var rootCmd = &cobra.Command{
	Use:           "reportctl",
	Short:         "Manage stored company research reports",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the reports table",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		// OpenDB migrates on connect
		if _, err := services.OpenDB(cfg.DB); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "reports table is up to date")
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List a user's reports, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		reports, err := store.ListReports(cmd.Context(), userID)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCOMPANY\tCREATED\tMODEL")
		for _, r := range reports {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, r.CompanyName, r.CreatedAt.Format(time.RFC3339), r.AIVersion)
		}
		return w.Flush()
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <report-id>",
	Short: "Delete one of a user's reports",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		if err := store.DeleteReport(cmd.Context(), userID, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
		return nil
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an HS256 access token for local testing",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Auth.JWTSecret == "" {
			return fmt.Errorf("SUPABASE_JWT_SECRET is not set")
		}
		token, err := services.GenerateJWT([]byte(cfg.Auth.JWTSecret), userID, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("CONFIG_PATH"), "optional YAML config file")

	for _, c := range []*cobra.Command{listCmd, deleteCmd, tokenCmd} {
		c.Flags().StringVar(&userID, "user", "", "owner user id")
		_ = c.MarkFlagRequired("user")
	}
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 72*time.Hour, "token lifetime")

	rootCmd.AddCommand(migrateCmd, listCmd, deleteCmd, tokenCmd)
}

func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.File); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openStore() (*services.ReportStore, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	db, err := services.OpenDB(cfg.DB)
	if err != nil {
		return nil, err
	}
	return services.NewReportStore(db), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
