// Package cli implements the paperbase CLI commands.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/paperbase/paperbase/internal/index"
	"github.com/paperbase/paperbase/internal/nodes"
	"github.com/paperbase/paperbase/internal/store"
)

var (
	dbPath     string
	ownerFlag  string
	formatFlag string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "paperbase",
	Short: "Document tree with task notifications",
	Long:  "A document management core. Folders and documents in SQLite, cascading deletes, tags, and task notifications relayed to WebSocket clients.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $PAPERBASE_DB or ~/.paperbase/paperbase.db)")
	RootCmd.PersistentFlags().StringVarP(&ownerFlag, "owner", "o", "", "Owner id (default: $PAPERBASE_OWNER or \"default\")")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if env := os.Getenv("PAPERBASE_DB"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".paperbase", "paperbase.db")
}

func getOwner() string {
	if ownerFlag != "" {
		return ownerFlag
	}
	if env := os.Getenv("PAPERBASE_OWNER"); env != "" {
		return env
	}
	return "default"
}

func cliLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger().
		Level(zerolog.InfoLevel)
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(getDBPath())
}

// openManager wires the store to the index publisher. An unset
// PAPERBASE_REDIS leaves index notifications off; a broken one is
// reported and treated the same.
func openManager() (*nodes.Manager, *store.SQLiteStore, error) {
	s, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	t, err := index.NewTransportFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: index notifications disabled: %v\n", err)
	}
	pub := index.NewPublisher(t, "", cliLogger().Level(zerolog.WarnLevel))
	return nodes.NewManager(s, pub), s, nil
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
