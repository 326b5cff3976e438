package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server liveness and readiness",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			h, err := apiClient.Health(ctx)
			if err != nil {
				return fmt.Errorf("server unreachable at %s: %w", flagURL, err)
			}

			ready, err := apiClient.Ready(ctx)
			if err != nil {
				return err
			}

			if flagFmt == "json" {
				if err := formatJSON(map[string]any{"health": h, "ready": ready}); err != nil {
					return err
				}
			} else {
				names := make([]string, 0, len(ready.Checks))
				for name := range ready.Checks {
					names = append(names, name)
				}
				sort.Strings(names)

				rows := [][]string{
					{"version", h.Version},
					{"backend", h.Backend},
					{"store", h.Store},
				}
				for _, name := range names {
					rows = append(rows, []string{"check:" + name, ready.Checks[name]})
				}
				formatTable([]string{"ITEM", "STATUS"}, rows)
			}

			if ready.Status != "ready" {
				return errors.New("server is not ready")
			}
			return nil
		},
	}
}
