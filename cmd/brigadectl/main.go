// Command brigadectl performs administrative tasks against the drill log
// database: schema migration, catalog seeding and account creation.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"brigade-backend/internal/config"
	"brigade-backend/internal/database"
	"brigade-backend/internal/middleware"
	"brigade-backend/internal/models"
	"brigade-backend/internal/repository"
	"brigade-backend/internal/services"
	"brigade-backend/migrations"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	seedFile      string
	addUserAdmin  bool
	passwordStdin bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "brigadectl",
		Short:        "Administer the fire brigade drill log",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newSeedViolationsCmd())
	rootCmd.AddCommand(newAddUserCmd())

	return rootCmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stores, _, err := openStores(cmd.Context())
			if err != nil {
				return err
			}
			defer stores.Close()
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Database schema up to date")
			return nil
		},
	}
}

func newSeedViolationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed-violations",
		Short: "Load violation texts and penalty times from a TOML file",
		Args:  cobra.NoArgs,
		RunE:  runSeedViolations,
	}
	cmd.Flags().StringVar(&seedFile, "file", "violations.toml", "catalog file with [[violation]] entries")
	return cmd
}

func runSeedViolations(cmd *cobra.Command, _ []string) error {
	catalog, err := config.LoadViolationCatalog(seedFile)
	if err != nil {
		return err
	}

	stores, _, err := openStores(cmd.Context())
	if err != nil {
		return err
	}
	defer stores.Close()

	for _, v := range catalog {
		if err := stores.Violations.Upsert(cmd.Context(), v); err != nil {
			return fmt.Errorf("failed to store violation %d: %w", v.ID, err)
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ %d violations written\n", len(catalog))
	return nil
}

func newAddUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-user <username>",
		Short: "Create an account; the password is prompted for",
		Args:  cobra.ExactArgs(1),
		RunE:  runAddUser,
	}
	cmd.Flags().BoolVar(&addUserAdmin, "admin", false, "create an administrator (hidden from the group list)")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from the first line of stdin")
	return cmd
}

func runAddUser(cmd *cobra.Command, args []string) error {
	password, err := readPassword(cmd)
	if err != nil {
		return err
	}

	stores, cfg, err := openStores(cmd.Context())
	if err != nil {
		return err
	}
	defer stores.Close()

	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret, cfg.TokenTTL, cfg.SecureCookies())
	authService := services.NewAuthService(stores.Accounts, jwtAuth, nil)

	username := args[0]
	if addUserAdmin {
		_, err = authService.CreateAdmin(cmd.Context(), username, password)
	} else {
		_, err = authService.Register(cmd.Context(), models.RegisterRequest{Username: username, Password: password})
	}
	if err != nil {
		var conflictErr *services.ConflictError
		if errors.As(err, &conflictErr) {
			return fmt.Errorf("user %q already exists", username)
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Created user %s\n", username)
	return nil
}

func readPassword(cmd *cobra.Command) (string, error) {
	if passwordStdin {
		return readPasswordLine(cmd.InOrStdin())
	}

	fmt.Fprint(cmd.OutOrStdout(), "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cmd.OutOrStdout())
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		return "", errors.New("password must not be empty")
	}
	return string(pwd), nil
}

func readPasswordLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("password must not be empty")
	}
	return line, nil
}

func openStores(ctx context.Context) (*repository.Stores, *config.Config, error) {
	cfg := config.Load()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	stores, err := database.OpenStores(ctx, cfg.DatabaseURL, cfg.MigrationsFS(migrations.FS))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return stores, cfg, nil
}
