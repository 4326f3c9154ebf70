package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/MarkoPoloResearchLab/storefront/internal/devapi"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	flagListenAddr     = "listen-addr"
	flagAllowedOrigins = "allowed-origins"
	flagJWTSigningKey  = "jwt-signing-key"
	flagTokenTTL       = "token-ttl"
	flagAdminEmail     = "admin-email"
	flagAdminPassword  = "admin-password"
	envPrefix          = "DEVAPI"
)

func main() {
	rootCmd := newRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "devapi: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cfg := devapi.Config{}
	cmd := &cobra.Command{
		Use:           "devapi",
		Short:         "In-memory storefront backend for development and tests",
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd, &cfg)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return devapi.Run(ctx, cfg)
		},
	}

	cmd.Flags().String(flagListenAddr, ":5000", "HTTP listen address")
	cmd.Flags().String(flagAllowedOrigins, "http://localhost:3000", "comma-separated list of allowed CORS origins")
	cmd.Flags().String(flagJWTSigningKey, "", "HS256 signing key for issued tokens (required)")
	cmd.Flags().Duration(flagTokenTTL, 0, "token lifetime (default 72h)")
	cmd.Flags().String(flagAdminEmail, "", "seeded admin email")
	cmd.Flags().String(flagAdminPassword, "", "seeded admin password")

	return cmd
}

func loadConfig(cmd *cobra.Command, cfg *devapi.Config) error {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for _, flagName := range []string{flagListenAddr, flagAllowedOrigins, flagJWTSigningKey, flagTokenTTL, flagAdminEmail, flagAdminPassword} {
		if err := v.BindPFlag(flagName, cmd.Flags().Lookup(flagName)); err != nil {
			return err
		}
	}

	if !v.IsSet(flagJWTSigningKey) || strings.TrimSpace(v.GetString(flagJWTSigningKey)) == "" {
		return fmt.Errorf("%s is required", flagJWTSigningKey)
	}

	cfg.ListenAddr = strings.TrimSpace(v.GetString(flagListenAddr))
	cfg.AllowedOrigins = devapi.ParseAllowedOrigins(v.GetString(flagAllowedOrigins))
	cfg.SigningKey = v.GetString(flagJWTSigningKey)
	cfg.TokenTTL = v.GetDuration(flagTokenTTL)
	cfg.AdminEmail = strings.TrimSpace(v.GetString(flagAdminEmail))
	cfg.AdminPassword = v.GetString(flagAdminPassword)

	return cfg.Validate()
}
