package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load <collection> <file>",
		Short: "Upsert documents from a JSON or NDJSON file into a collection",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := readDocumentsFile(args[1])
			if err != nil {
				return err
			}

			n, err := apiClient.Documents.Upsert(cmd.Context(), args[0], docs)
			if err != nil {
				return fmt.Errorf("loaded %d of %d documents: %w", n, len(docs), err)
			}

			return output(map[string]int{"upserted": n}, strconv.Itoa(n))
		},
	}
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <collection> <id>",
		Short: "Fetch one document by key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := apiClient.Documents.Get(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return formatJSON(doc)
		},
	}
}
