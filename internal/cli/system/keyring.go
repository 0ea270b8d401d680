package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/maestro/internal/cli"
	"github.com/julianstephens/maestro/internal/keyring"
	"github.com/julianstephens/maestro/internal/storage/postgres"
)

// KeyringCmd manages the database connection string kept in the OS keyring.
type KeyringCmd struct {
	Set    KeyringSetCmd    `cmd:"" help:"Store a PostgreSQL connection string."`
	Get    KeyringGetCmd    `cmd:"" help:"Show the stored connection string with its password masked."`
	Delete KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
	Status KeyringStatusCmd `cmd:"" help:"Check keyring availability." default:"1"`
}

type KeyringSetCmd struct {
	ConnectionString string `arg:"" help:"PostgreSQL connection string to store in keyring"`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	connStr := strings.TrimSpace(cmd.ConnectionString)
	if !cli.IsPostgres(connStr) && !strings.Contains(connStr, "host=") {
		return errors.New("connection string must be a valid PostgreSQL connection string")
	}

	err := postgres.ValidateConnString(connStr)
	switch {
	case errors.Is(err, postgres.ErrEmbeddedCredentials):
		// The keyring is encrypted, so a password is acceptable here
		ctx.Println("⚠️  Warning: Connection string contains embedded credentials.")
		ctx.Println("   It will be stored as-is in the encrypted OS keyring.")
		ctx.Println("   To keep passwords out of connection strings, use .pgpass instead.")
	case err != nil:
		return fmt.Errorf("invalid connection string: %w", err)
	}

	if err := keyring.SetConnectionString(connStr); err != nil {
		return err
	}

	ctx.Println("✓ Connection string stored in OS keyring")
	ctx.Printf("  maestro will use it when --config and %s are unset\n", cli.EnvConnection)
	return nil
}

type KeyringGetCmd struct{}

func (cmd *KeyringGetCmd) Run(ctx *cli.Context) error {
	connStr, err := keyring.GetConnectionString()
	if errors.Is(err, keyring.ErrNotFound) {
		return errors.New("no connection string found in keyring. Use 'maestro keyring set' to store one")
	}
	if err != nil {
		return fmt.Errorf("failed to retrieve connection string from keyring: %w", err)
	}
	ctx.Println(MaskPassword(connStr))
	return nil
}

type KeyringDeleteCmd struct{}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	err := keyring.DeleteConnectionString()
	if errors.Is(err, keyring.ErrNotFound) {
		return errors.New("no connection string found in keyring")
	}
	if err != nil {
		return err
	}
	ctx.Println("✓ Connection string deleted from OS keyring")
	return nil
}

type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		ctx.Println("❌ OS keyring is not available on this system")
		return keyring.ErrKeyringUnavailable
	}
	ctx.Println("✓ OS keyring is available")

	stored, err := keyring.Default().Stored()
	switch {
	case err != nil:
		return err
	case stored:
		ctx.Println("✓ Connection string is stored in keyring")
	default:
		ctx.Println("ℹ No connection string stored in keyring")
	}
	return nil
}

// MaskPassword hides the password of a URL or key=value connection string.
func MaskPassword(connStr string) string {
	if cli.IsPostgres(connStr) {
		scheme, rest, _ := strings.Cut(connStr, "://")
		// The last @ separates user info from the host; passwords may contain @
		at := strings.LastIndex(rest, "@")
		if at == -1 {
			return connStr
		}
		user, _, hasPassword := strings.Cut(rest[:at], ":")
		if !hasPassword {
			return connStr
		}
		return scheme + "://" + user + ":****" + rest[at:]
	}

	fields := strings.Fields(connStr)
	for i, f := range fields {
		if strings.HasPrefix(f, "password=") {
			fields[i] = "password=****"
		}
	}
	return strings.Join(fields, " ")
}
