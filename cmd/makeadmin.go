package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"fitcoach/internal/pkg/mongodb"
	"fitcoach/internal/repository"
	authRepo "fitcoach/internal/repository/auth"
	"fitcoach/internal/service"
)

var (
	makeAdminEmail string
	makeAdminBy    string
)

var makeAdminCmd = &cobra.Command{
	Use:   "make-admin",
	Short: "Grant admin access to an existing account",
	Long: `Look up an account by email and write its admin marker. The account
must already exist; provisioning an unknown email fails.`,
	RunE: runMakeAdmin,
}

func init() {
	rootCmd.AddCommand(makeAdminCmd)

	makeAdminCmd.Flags().StringVar(&makeAdminEmail, "email", "", "email of the account to promote")
	makeAdminCmd.Flags().StringVar(&makeAdminBy, "by", "make-admin", "who is granting the access (audit field)")
	_ = makeAdminCmd.MarkFlagRequired("email")
}

func runMakeAdmin(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	mongoClient, err := mongodb.New(&cfg.Mongo)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	defer func() {
		_ = mongoClient.Close(context.Background())
	}()

	db := mongoClient.Database()
	adminSvc := service.NewAdminService(
		authRepo.NewUserRepo(db),
		repository.NewUserProfileRepo(db),
		repository.NewAdminRepo(db),
		repository.NewConversationRepo(db),
		repository.NewStatsRepo(db),
		authRepo.NewRefreshTokenRepo(db),
		nil,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	marker, err := adminSvc.MakeAdmin(ctx, makeAdminEmail, makeAdminBy)
	if err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			return fmt.Errorf("no account registered with email %s", makeAdminEmail)
		}
		return err
	}

	log.Info().
		Str("user_id", marker.UserID).
		Str("email", marker.Email).
		Msg("admin access granted")
	fmt.Printf("Granted admin access to %s (user id %s)\n", marker.Email, marker.UserID)

	return nil
}
