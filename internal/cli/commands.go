package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agenttrace/docstore/internal/domain"
	"github.com/agenttrace/docstore/internal/pkg/id"
	"github.com/agenttrace/docstore/internal/query"
	"github.com/agenttrace/docstore/internal/repository/mongo"
)

type repo = mongo.DocumentRepository[domain.Document]

func (a *app) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Print the document stored under a string id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRepo(cmd, func(ctx context.Context, r *repo) error {
				doc, err := r.LoadJSON(ctx, args[0])
				if err != nil {
					return err
				}
				return a.print(cmd, doc)
			})
		},
	}
}

func (a *app) findCmd() *cobra.Command {
	var page mongo.Page

	cmd := &cobra.Command{
		Use:   "find [query]",
		Short: "Print the documents matching a query as a JSON array",
		Long: `Print the documents matching a query as a JSON array.

Without a query every document of the collection is printed.

Examples:
  docstore find -c Users
  docstore find "{age: 30, name: /^al/i}" -c Users --skip 10 --limit 10`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseFilter(args)
			if err != nil {
				return err
			}
			return a.withRepo(cmd, func(ctx context.Context, r *repo) error {
				docs, err := r.FindJSON(ctx, filter, page)
				if err != nil {
					return err
				}
				return a.print(cmd, docs)
			})
		},
	}

	cmd.Flags().Int64Var(&page.Skip, "skip", 0, "Number of matches to skip")
	cmd.Flags().Int64Var(&page.Limit, "limit", 0, "Maximum number of matches to print")
	return cmd
}

func (a *app) findOneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find-one [query]",
		Short: "Print the first document matching a query, or null",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseFilter(args)
			if err != nil {
				return err
			}
			return a.withRepo(cmd, func(ctx context.Context, r *repo) error {
				doc, err := r.FindOneJSON(ctx, filter)
				if err != nil {
					return err
				}
				return a.print(cmd, doc)
			})
		},
	}
}

func (a *app) saveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save [document|-]",
		Short: "Insert or replace a document",
		Long: `Insert a document, or replace the stored document with the same _id.

The document is read from standard input when it is "-" or omitted. A
document without _id receives a generated ObjectId string.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readDocument(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			return a.withRepo(cmd, func(ctx context.Context, r *repo) error {
				result, err := r.SaveFromJSON(ctx, text)
				if err != nil {
					return err
				}
				out, err := json.Marshal(result)
				if err != nil {
					return err
				}
				return a.print(cmd, string(out))
			})
		},
	}
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete the document stored under a string id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRepo(cmd, func(ctx context.Context, r *repo) error {
				return r.DeleteByID(ctx, args[0])
			})
		},
	}
}

func (a *app) newIDCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new-id",
		Short: "Print a new ObjectId",
		Args:  cobra.NoArgs,
		// no database is needed
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), id.NewObjectID())
			return err
		},
	}
}

func parseFilter(args []string) (any, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return query.All(), nil
	}
	return query.Parse(args[0])
}

func readDocument(in io.Reader, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	b, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	return string(b), nil
}
