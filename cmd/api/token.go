package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"vet-records/internal/adapters/auth/jwtauth"
	"vet-records/internal/ports/auth"
)

var (
	tokenUser string
	tokenRole string
	tokenTTL  time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a signed JWT for local testing",
	Example: `  vetdb token --user u-1 --role recepcion
  vetdb token --user u-2 --role veterinario --ttl 1h`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		tok, err := jwtauth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer).
			Issue(auth.Claims{UserID: tokenUser, Role: tokenRole}, tokenTTL)
		if err != nil {
			return fmt.Errorf("issuing token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "user id (sub)")
	tokenCmd.Flags().StringVar(&tokenRole, "role", auth.RoleAdmin, "admin | recepcion | veterinario")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 8*time.Hour, "token lifetime")
	_ = tokenCmd.MarkFlagRequired("user")
}
