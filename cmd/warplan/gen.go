package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"warplan/internal/util"
	"warplan/internal/war"
)

func newGenCmd() *cobra.Command {
	var (
		attackers, targets int
		seed               int64
		out                string
	)
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Write a random snapshot in the normalized form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if attackers < 0 || targets < 0 {
				return fmt.Errorf("--attackers and --targets must not be negative")
			}
			req := war.Generate(util.New(seed), attackers, targets)
			req.ID = fmt.Sprintf("gen-%d", seed)
			return writeOutput(cmd.OutOrStdout(), out, req)
		},
	}
	cmd.Flags().IntVar(&attackers, "attackers", 15, "attackers in the roster")
	cmd.Flags().IntVar(&targets, "targets", 15, "opponent bases")
	cmd.Flags().Int64Var(&seed, "seed", 12345, "random seed")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, .yaml for YAML (default stdout JSON)")
	return cmd
}
