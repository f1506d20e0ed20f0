package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kurral/feedengine/internal/policy"
)

var (
	statusFixture string
	statusChirp   string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the fact-check policy decision for a fixture chirp",
	RunE: func(cmd *cobra.Command, args []string) error {
		fx, err := loadFixture(statusFixture)
		if err != nil {
			return err
		}
		engine := policy.NewEngine(cfg.Policy)
		for _, chirp := range fx.Chirps {
			if statusChirp != "" && chirp.ID != statusChirp {
				continue
			}
			decided := engine.DecideStatus(chirp.Claims, chirp.FactChecks)
			fmt.Printf("%-12s %-12s claims=%d checks=%d\n", chirp.ID, decided, len(chirp.Claims), len(chirp.FactChecks))
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().StringVar(&statusFixture, "fixture", "", "path to fixture json")
	statusCmd.Flags().StringVar(&statusChirp, "chirp", "", "limit to one chirp id")
	_ = statusCmd.MarkFlagRequired("fixture")
}
