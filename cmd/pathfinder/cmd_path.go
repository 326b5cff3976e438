package main

import (
	"github.com/spf13/cobra"

	"github.com/persistorai/pathfinder/client"
)

func newPathCmd() *cobra.Command {
	var (
		req      client.PathRequest
		alg      string
		maxDepth int
		stop     bool
		keyField string
	)

	cmd := &cobra.Command{
		Use:   "path <from> <to>",
		Short: "Find a path between two documents",
		Long: `Find a path between two documents of a collection.

Algorithms: bfs (default), weighted, bidirectional, batch.
weighted requires --weight-field; the others ignore it.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Start, req.End = args[0], args[1]
			req.Algorithm = client.Algorithm(alg)

			if cmd.Flags().Changed("max-depth") {
				req.MaxDepth = &maxDepth
			}
			if cmd.Flags().Changed("stop-at-first-meeting") {
				req.StopAtFirstMeeting = &stop
			}

			p, err := apiClient.Paths.Find(cmd.Context(), req)
			if err != nil {
				return err
			}
			return outputPath(p, keyField)
		},
	}

	cmd.Flags().StringVarP(&req.Collection, "collection", "c", "", "Collection to search (required)")
	cmd.Flags().StringVarP(&req.AdjacencyField, "field", "f", "", "Adjacency field (required)")
	cmd.Flags().StringVarP(&alg, "algorithm", "a", "bfs", "bfs|weighted|bidirectional|batch")
	cmd.Flags().StringVar(&req.IDField, "id-field", "", "Field neighbors are matched on (default: key field)")
	cmd.Flags().StringVar(&req.WeightField, "weight-field", "", "Edge weight field for weighted search")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "Maximum hops (default: server setting)")
	cmd.Flags().BoolVar(&stop, "stop-at-first-meeting", true, "Bidirectional: stop at the first crossing")
	cmd.Flags().StringVar(&keyField, "key-field", "_id", "Key field used for table and quiet output")
	_ = cmd.MarkFlagRequired("collection")
	_ = cmd.MarkFlagRequired("field")

	return cmd
}
