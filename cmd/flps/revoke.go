package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/flps/internal/roster"
)

// revocationLine is the JSON answer of revoke-check.
type revocationLine struct {
	GuildID           string `json:"guild_id"`
	AwardID           string `json:"award_id"`
	Revocable         bool   `json:"revocable"`
	MaxRevocationDays int    `json:"max_revocation_days"`
}

func revokeCheckCmd(c *cli) *cobra.Command {
	var (
		rosterPath string
		awardID    string
		nowFlag    string
	)

	cmd := &cobra.Command{
		Use:   "revoke-check",
		Short: "Report whether an award may still be revoked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			snap, err := roster.Load(rosterPath)
			if err != nil {
				return err
			}
			now, err := resolveNow(nowFlag, snap)
			if err != nil {
				return err
			}

			svc, err := c.newService()
			if err != nil {
				return err
			}
			if err := svc.LoadSnapshot(ctx, snap); err != nil {
				return err
			}

			ok, err := svc.CanRevoke(ctx, snap.GuildID, awardID, now)
			if err != nil {
				return fmt.Errorf("award %s: %w", awardID, err)
			}

			line := revocationLine{
				GuildID:           snap.GuildID,
				AwardID:           awardID,
				Revocable:         ok,
				MaxRevocationDays: svc.Configuration(snap.GuildID).Recency.MaxRevocationDays,
			}
			if err := json.NewEncoder(cmd.OutOrStdout()).Encode(line); err != nil {
				return fmt.Errorf("failed to write result: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&rosterPath, "roster", "", "roster snapshot YAML file")
	cmd.Flags().StringVar(&awardID, "award", "", "award id to check")
	cmd.Flags().StringVar(&nowFlag, "now", "", "check time, RFC3339 or YYYY-MM-DD (default: roster now, then current time)")
	_ = cmd.MarkFlagRequired("roster")
	_ = cmd.MarkFlagRequired("award")

	return cmd
}
