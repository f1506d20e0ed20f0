package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kurral/feedengine/internal/domain"
	"github.com/kurral/feedengine/internal/policy"
	"github.com/kurral/feedengine/internal/rank"
)

// Fixture is the JSON input for the one-shot commands: a candidate set
// and the users it references.
type Fixture struct {
	Chirps []domain.Chirp `json:"chirps"`
	Users  []domain.User  `json:"users"`
}

func loadFixture(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("read fixture: %w", err)
	}
	var fx Fixture
	if err := json.Unmarshal(data, &fx); err != nil {
		return Fixture{}, fmt.Errorf("parse fixture: %w", err)
	}
	return fx, nil
}

var (
	rankFixture string
	rankViewer  string
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank a fixture's chirps for one viewer and print the feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		fx, err := loadFixture(rankFixture)
		if err != nil {
			return err
		}

		users := make(map[string]domain.User, len(fx.Users))
		for _, u := range fx.Users {
			users[u.ID] = u
		}
		resolve := func(id string) (domain.User, bool) {
			u, ok := users[id]
			return u, ok
		}

		// Fixtures carry raw claims; statuses are always derived, never
		// trusted from input.
		engine := policy.NewEngine(cfg.Policy)
		for i := range fx.Chirps {
			engine.Restatus(&fx.Chirps[i])
		}

		viewerCfg := domain.DefaultForYouConfig()
		if viewer, ok := users[rankViewer]; ok {
			viewerCfg = viewer.Config
		}

		feed := rank.NewRanker(cfg.Ranking).Rank(fx.Chirps, rankViewer, viewerCfg, resolve)

		if feed.EmptyReason != domain.EmptyNone {
			fmt.Printf("empty feed: %s\n", feed.EmptyReason)
			return nil
		}
		for i, entry := range feed.Entries {
			fmt.Printf("%2d. %-12s %.4f  %s\n", i+1, entry.Chirp.ID, entry.Score, entry.Explanation)
		}
		return nil
	},
}

func init() {
	rankCmd.Flags().StringVar(&rankFixture, "fixture", "", "path to fixture json")
	rankCmd.Flags().StringVar(&rankViewer, "viewer", "", "viewer user id")
	_ = rankCmd.MarkFlagRequired("fixture")
	_ = rankCmd.MarkFlagRequired("viewer")
}
