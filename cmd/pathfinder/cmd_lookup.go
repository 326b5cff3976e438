package main

import (
	"errors"

	"github.com/spf13/cobra"
)

func newLookupCmd() *cobra.Command {
	var stagePath, inputPath string

	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Run a $bidirectionalGraphLookup stage over input documents",
		Long: `Run a $bidirectionalGraphLookup stage over input documents.

The stage is read from an HCL file (.hcl) or a JSON object. Inputs are a JSON
array or newline-delimited JSON; "-" reads stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stage, err := readStage(stagePath)
			if err != nil {
				return err
			}

			docs, err := readDocumentsFile(inputPath)
			if err != nil {
				return err
			}
			if len(docs) == 0 {
				return errors.New("no input documents")
			}

			results, err := apiClient.Lookup.Run(cmd.Context(), stage, docs)
			if err != nil {
				return err
			}
			return formatJSON(results)
		},
	}

	cmd.Flags().StringVar(&stagePath, "stage", "", "Stage definition file (required)")
	cmd.Flags().StringVar(&inputPath, "input", "-", "Input documents file")
	_ = cmd.MarkFlagRequired("stage")

	return cmd
}
