package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/recobot/internal/auth"
)

var flagSubject string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an admin API bearer token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadTool()
		if err != nil {
			return err
		}
		if len(cfg.Admin.JWTSecret) < 32 {
			return errors.New("admin.jwt_secret must be at least 32 characters")
		}

		tokens := auth.NewJWTManager(cfg.Admin.JWTSecret, cfg.Admin.JWTIssuer, cfg.Admin.TokenTTL)
		issued, err := tokens.GenerateAdminToken(flagSubject)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), issued.Token)
		fmt.Fprintf(cmd.ErrOrStderr(), "id: %s, expires: %s\n", issued.ID, issued.ExpiresAt.Format(time.RFC3339))
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&flagSubject, "subject", "", "who the token is issued to")
	_ = tokenCmd.MarkFlagRequired("subject")
}
