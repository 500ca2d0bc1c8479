package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"adbidder/internal/auth"
	"adbidder/internal/config"
	"adbidder/internal/db"
	gormrepository "adbidder/internal/repository/gorm"
	"adbidder/internal/service"
)

var (
	cfgPath string
	envOnly bool
)

func main() {
	_ = godotenv.Load()
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "bidderctl",
		Short:         "Operator tools for the search-ad bidder",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	def := os.Getenv("SA_CONFIG")
	if def == "" {
		def = "config/config.yaml"
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", def, "config file")
	root.PersistentFlags().BoolVar(&envOnly, "env-only", false, "read config from SA_* env vars only")
	root.AddCommand(tokenCmd(), exportCmd(), pruneCmd())
	return root
}

func loadConfig() (config.Config, error) {
	return config.Load(cfgPath, envOnly)
}

func tokenCmd() *cobra.Command {
	var (
		name string
		role string
		ttl  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			j := auth.JWT{Secret: []byte(cfg.Auth.JWTSecret), TokenTTL: ttl}
			tok, exp, err := j.Sign(auth.Claims{Name: name, Role: role})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", exp.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "operator", "token subject")
	cmd.Flags().StringVar(&role, "role", "operator", "token role")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}

func openAudit(cfg config.Config) (*service.AuditService, func(), error) {
	conn, err := db.Open(cfg.DB, nil)
	if err != nil {
		return nil, nil, err
	}
	loc, err := time.LoadLocation(cfg.DB.Timezone)
	if err != nil {
		loc = time.Local
	}
	svc := &service.AuditService{Repo: gormrepository.New(conn.Gorm), Location: loc}
	return svc, func() { _ = db.Close(conn) }, nil
}

func exportCmd() *cobra.Command {
	var (
		date string
		out  string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write one day of the bid audit log as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			svc, closeDB, err := openAudit(cfg)
			if err != nil {
				return err
			}
			defer closeDB()
			day, err := svc.ParseDay(strings.TrimSpace(date))
			if err != nil {
				return fmt.Errorf("date must be YYYY-MM-DD: %w", err)
			}
			w := cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			rows, err := svc.WriteDailyCSV(cmd.Context(), w, day)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d rows\n", rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day to export (YYYY-MM-DD), defaults to today")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, defaults to stdout")
	return cmd
}

func pruneCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete bid audit entries older than the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if days <= 0 {
				days = cfg.Audit.RetentionDays
			}
			svc, closeDB, err := openAudit(cfg)
			if err != nil {
				return err
			}
			defer closeDB()
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			n, err := svc.Prune(ctx, days)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d entries older than %d days\n", n, days)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "retention in days, defaults to audit.retention_days")
	return cmd
}
