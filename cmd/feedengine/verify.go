package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kurral/feedengine/internal/policy"
	"github.com/kurral/feedengine/internal/provider"
)

var verifyChirp string

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Fetch a chirp's verification from the provider and print the policy decision",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Verifier.BaseURL == "" {
			return fmt.Errorf("verifier.base_url is not configured")
		}
		client := provider.NewVerifierClient(cfg.Verifier)
		result, err := client.Fetch(cmd.Context(), verifyChirp)
		if err != nil {
			return err
		}
		decided := policy.NewEngine(cfg.Policy).DecideStatus(result.Claims, result.FactChecks)
		fmt.Printf("%-12s %-12s claims=%d checks=%d\n", verifyChirp, decided, len(result.Claims), len(result.FactChecks))
		return nil
	},
}

func init() {
	verifyCmd.Flags().StringVar(&verifyChirp, "chirp", "", "chirp id to verify")
	_ = verifyCmd.MarkFlagRequired("chirp")
	rootCmd.AddCommand(verifyCmd)
}
