package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/illmade-knight/go-docstore/pkg/docstore"
	"github.com/spf13/cobra"
)

func addPayloadFlags(cmd *cobra.Command) {
	cmd.Flags().String("data", "", "document data as a JSON object")
	cmd.Flags().String("file", "", "read document data from a JSON file ('-' for stdin)")
	cmd.MarkFlagsMutuallyExclusive("data", "file")
	cmd.MarkFlagsOneRequired("data", "file")
}

// readPayload decodes the JSON object given through --data or --file.
func readPayload(cmd *cobra.Command) (docstore.Document, error) {
	var raw []byte
	if data, _ := cmd.Flags().GetString("data"); data != "" {
		raw = []byte(data)
	} else {
		path, _ := cmd.Flags().GetString("file")
		var err error
		if path == "-" {
			raw, err = io.ReadAll(cmd.InOrStdin())
		} else {
			raw, err = os.ReadFile(path)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read document data: %w", err)
		}
	}

	var doc docstore.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("document data must be a JSON object: %w", err)
	}
	if doc == nil {
		return nil, errors.New("document data must be a JSON object, got null")
	}
	return doc, nil
}

func (c *cli) newSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <collection> <document-id>",
		Short: "Create or overwrite a document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readPayload(cmd)
			if err != nil {
				return err
			}
			return c.withStore(cmd.Context(), func(store *docstore.Store) error {
				return store.Set(cmd.Context(), args[0], args[1], doc)
			})
		},
	}
	addPayloadFlags(cmd)
	return cmd
}

func (c *cli) newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <collection>",
		Short: "Store a document under a generated ID and print the ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readPayload(cmd)
			if err != nil {
				return err
			}
			return c.withStore(cmd.Context(), func(store *docstore.Store) error {
				id, err := store.Add(cmd.Context(), args[0], doc)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), id)
				return nil
			})
		},
	}
	addPayloadFlags(cmd)
	return cmd
}

func (c *cli) newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <collection> <document-id>",
		Short: "Print a document as JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(store *docstore.Store) error {
				doc, err := store.Get(cmd.Context(), args[0], args[1])
				if errors.Is(err, docstore.ErrNotFound) {
					return fmt.Errorf("document %s/%s: %w", args[0], args[1], err)
				}
				if err != nil {
					return err
				}
				out, err := json.MarshalIndent(doc, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to encode document: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			})
		},
	}
}

func (c *cli) newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <collection> <document-id>",
		Short: "Delete a document (its sub-collections are kept)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(store *docstore.Store) error {
				return store.Delete(cmd.Context(), args[0], args[1])
			})
		},
	}
}

func (c *cli) newDropCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drop <collection>",
		Short: "Delete every document of a collection in batches",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			batchSize := c.cfg.BatchSize
			if cmd.Flags().Changed("batch-size") {
				batchSize, _ = cmd.Flags().GetInt("batch-size")
			}
			if err := docstore.ValidateBatchSize(batchSize); err != nil {
				return err
			}
			return c.withStore(cmd.Context(), func(store *docstore.Store) error {
				result, err := store.DeleteCollection(cmd.Context(), args[0], batchSize)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d documents from %s in %d batches\n", result.Deleted, args[0], result.Batches)
				return nil
			})
		},
	}
	cmd.Flags().Int("batch-size", docstore.DefaultBatchSize, "documents deleted per atomic commit (1-500)")
	return cmd
}

func (c *cli) newEnsureDatabaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ensure-database",
		Short: "Create the configured Firestore database if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			spec := c.cfg.Database
			if cmd.Flags().Changed("location") {
				spec.LocationID, _ = cmd.Flags().GetString("location")
			}
			if cmd.Flags().Changed("type") {
				dbType, _ := cmd.Flags().GetString("type")
				spec.Type = docstore.DatabaseType(dbType)
			}

			manager, err := c.openManager(cmd.Context(), c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer func() { _ = manager.Close() }()
			created, err := manager.EnsureDatabase(cmd.Context(), spec)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "created database %s\n", spec.ResolvedID())
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "database %s already exists\n", spec.ResolvedID())
			}
			return nil
		},
	}
	cmd.Flags().String("location", "", "location for a new database (e.g. nam5, eur3)")
	cmd.Flags().String("type", "", "database type: FIRESTORE_NATIVE or DATASTORE_MODE")
	return cmd
}

func (c *cli) newVerifyDatabaseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify-database",
		Short: "Check that the configured Firestore database exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			manager, err := c.openManager(cmd.Context(), c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer func() { _ = manager.Close() }()

			if err := manager.Verify(cmd.Context(), c.cfg.Database); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "database %s exists\n", c.cfg.Database.ResolvedID())
			return nil
		},
	}
}
