// Package cli implements the docstore command line tool.
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/agenttrace/docstore/internal/config"
	"github.com/agenttrace/docstore/internal/domain"
	"github.com/agenttrace/docstore/internal/pkg/database"
	apperrors "github.com/agenttrace/docstore/internal/pkg/errors"
	"github.com/agenttrace/docstore/internal/pkg/logger"
	"github.com/agenttrace/docstore/internal/repository/mongo"
)

// Version is set at build time
var Version = "0.1.0"

// Opener connects to the database named by cfg. The returned function
// releases the connection.
type Opener func(ctx context.Context, cfg *config.Config) (database.DocumentDatabase, func(context.Context) error, error)

// OpenMongo is the default Opener
func OpenMongo(ctx context.Context, cfg *config.Config) (database.DocumentDatabase, func(context.Context) error, error) {
	db, err := database.NewMongo(ctx, cfg.Mongo)
	if err != nil {
		return nil, nil, err
	}
	return db.Database(""), db.Close, nil
}

// app carries the state shared by all commands of one invocation
type app struct {
	open Opener

	// Global flags
	uri        string
	dbName     string
	collection string
	pretty     bool
	verbose    bool

	cfg *config.Config
}

// NewRootCommand builds the docstore command tree. A nil open uses
// OpenMongo.
func NewRootCommand(open Opener) *cobra.Command {
	if open == nil {
		open = OpenMongo
	}
	a := &app{open: open}

	root := &cobra.Command{
		Use:   "docstore",
		Short: "docstore - query and edit MongoDB documents",
		Long: `docstore reads and writes documents of a MongoDB collection.

Queries and documents use JSON or mongo shell syntax.

Example:
  docstore find "{status: 'active'}" -c Users --limit 10
  docstore get 507f1f77bcf86cd799439011 -c Users
  echo '{name: "Alice"}' | docstore save -c Users`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.configure()
		},
	}

	root.PersistentFlags().StringVar(&a.uri, "uri", "", "MongoDB connection string (or set DOCSTORE_MONGO_URI)")
	root.PersistentFlags().StringVarP(&a.dbName, "database", "d", "", "Database name (or set DOCSTORE_MONGO_DATABASE)")
	root.PersistentFlags().StringVarP(&a.collection, "collection", "c", "", "Collection name (defaults to DOCSTORE_MONGO_DEFAULT_COLLECTION, then Documents)")
	root.PersistentFlags().BoolVar(&a.pretty, "pretty", false, "Indent JSON output")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose output")

	root.AddCommand(
		a.getCmd(),
		a.findCmd(),
		a.findOneCmd(),
		a.saveCmd(),
		a.deleteCmd(),
		a.newIDCmd(),
	)

	// errors reach the terminal through the error state
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return apperrors.BadRequest(err.Error())
	})

	return root
}

// Execute runs the CLI with os.Args and returns the process exit code
func Execute() int {
	return Run(NewRootCommand(nil), os.Args[1:], os.Stderr)
}

// Run executes root with args. Failures are written to stderr as
// "Error: <message>" and yield exit code 1.
func Run(root *cobra.Command, args []string, stderr io.Writer) int {
	root.SetArgs(args)

	var state apperrors.State
	state.Set(root.Execute())
	if state.HasError() {
		fmt.Fprintln(stderr, state.String())
		return 1
	}
	return 0
}

func (a *app) configure() error {
	level := "error"
	if a.verbose {
		level = "debug"
	}
	if err := logger.Init(logger.Config{Level: level, Format: "console"}); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.uri != "" {
		cfg.Mongo.URI = a.uri
	}
	if a.dbName != "" {
		cfg.Mongo.Database = a.dbName
	}
	a.cfg = cfg
	if a.collection == "" {
		a.collection = cfg.Mongo.DefaultCollection
	}
	return nil
}

// withRepo opens the database, runs fn on the bound collection and closes
// the connection again
func (a *app) withRepo(cmd *cobra.Command, fn func(ctx context.Context, repo *mongo.DocumentRepository[domain.Document]) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Mongo.OperationTimeout)
	defer cancel()

	db, closeDB, err := a.open(ctx, a.cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeDB != nil {
			_ = closeDB(context.Background())
		}
	}()

	repo, err := mongo.NewDocumentRepository[domain.Document](ctx, db, mongo.WithCollection(a.collection), mongo.WithLogger(logger.L()))
	if err != nil {
		return err
	}

	return fn(ctx, repo)
}

// print writes JSON text to the command output, indented with --pretty
func (a *app) print(cmd *cobra.Command, text string) error {
	out := cmd.OutOrStdout()
	if !a.pretty {
		_, err := fmt.Fprintln(out, text)
		return err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(text), "", "  "); err != nil {
		return err
	}
	_, err := fmt.Fprintln(out, buf.String())
	return err
}
