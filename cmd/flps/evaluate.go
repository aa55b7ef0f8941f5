package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	service "github.com/okian/flps/internal/app"
	"github.com/okian/flps/internal/domain/model"
	"github.com/okian/flps/internal/domain/score"
	"github.com/okian/flps/internal/roster"
	"github.com/okian/flps/pkg/logger"
)

// breakdownLine is the JSON form of one raider's score breakdown.
type breakdownLine struct {
	RaiderID      string   `json:"raider_id"`
	RaiderName    string   `json:"raider_name"`
	Role          string   `json:"role"`
	ACS           float64  `json:"acs"`
	MAS           float64  `json:"mas"`
	EPS           float64  `json:"eps"`
	RMS           float64  `json:"rms"`
	UV            float64  `json:"uv"`
	TB            float64  `json:"tb"`
	RM            float64  `json:"rm"`
	IPI           float64  `json:"ipi"`
	RDF           float64  `json:"rdf"`
	FLPS          float64  `json:"flps"`
	Eligible      bool     `json:"eligible"`
	Ineligibility []string `json:"ineligibility,omitempty"`
}

// errorLine reports a raider that could not be scored.
type errorLine struct {
	RaiderID string `json:"raider_id"`
	Error    string `json:"error"`
	Kind     string `json:"kind,omitempty"`
}

func newBreakdownLine(b model.FlpsBreakdown) breakdownLine {
	line := breakdownLine{
		RaiderID:   b.RaiderID,
		RaiderName: b.RaiderName,
		Role:       string(b.Role),
		ACS:        b.ACS.Value(),
		MAS:        b.MAS.Value(),
		EPS:        b.EPS.Value(),
		RMS:        b.RMS.Value(),
		UV:         b.UV.Value(),
		TB:         b.TB.Value(),
		RM:         b.RM.Value(),
		IPI:        b.IPI.Value(),
		RDF:        b.RDF.Value(),
		FLPS:       b.FLPS.Value(),
		Eligible:   b.Eligible,
	}
	for _, r := range b.Ineligibility {
		line.Ineligibility = append(line.Ineligibility, string(r))
	}
	return line
}

func newErrorLine(raiderID string, err error) errorLine {
	line := errorLine{RaiderID: raiderID, Error: err.Error()}
	if kind, ok := score.KindOf(err); ok {
		line.Kind = kind.String()
	}
	return line
}

func evaluateCmd(c *cli) *cobra.Command {
	var (
		rosterPath string
		nowFlag    string
		strict     bool
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score every raider of a roster snapshot",
		Long: `Score every raider of a roster snapshot and print one JSON line per raider,
in roster order. A raider that cannot be scored is printed as an error line
and the others are still scored. With --strict the first failure aborts the
run and nothing is printed.`,
		Args: cobra.NoArgs,
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
			if err := svc.Start(ctx); err != nil {
				return fmt.Errorf("failed to start service: %w", err)
			}
			defer svc.Stop()

			if err := svc.LoadSnapshot(ctx, snap); err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			if strict {
				breakdowns, err := svc.EvaluateRosterStrict(ctx, snap.GuildID, snap.Raiders, now)
				if err != nil {
					return err
				}
				for _, b := range breakdowns {
					if err := enc.Encode(newBreakdownLine(b)); err != nil {
						return fmt.Errorf("failed to write breakdown: %w", err)
					}
				}
				return nil
			}

			results, err := svc.EvaluateRoster(ctx, snap.GuildID, snap.Raiders, now)
			if err != nil {
				return err
			}
			failed, err := writeResults(cmd.OutOrStdout(), results)
			if err != nil {
				return err
			}
			c.log.Info(ctx, "roster evaluated",
				logger.String("guild_id", snap.GuildID),
				logger.Int("raiders", len(results)),
				logger.Int("failed", failed),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&rosterPath, "roster", "", "roster snapshot YAML file")
	cmd.Flags().StringVar(&nowFlag, "now", "", "evaluation time, RFC3339 or YYYY-MM-DD (default: roster now, then current time)")
	cmd.Flags().BoolVar(&strict, "strict", false, "abort on the first raider that cannot be scored")
	_ = cmd.MarkFlagRequired("roster")

	return cmd
}

func writeResults(w io.Writer, results []service.Result) (int, error) {
	enc := json.NewEncoder(w)
	var failed int
	for _, r := range results {
		var line any
		if r.Err != nil {
			failed++
			line = newErrorLine(r.RaiderID, r.Err)
		} else {
			line = newBreakdownLine(r.Breakdown)
		}
		if err := enc.Encode(line); err != nil {
			return failed, fmt.Errorf("failed to write result: %w", err)
		}
	}
	return failed, nil
}

// resolveNow picks the --now flag, then the roster's own instant, then the clock.
func resolveNow(flag string, snap roster.Snapshot) (time.Time, error) {
	if flag != "" {
		now, err := roster.ParseTime(flag)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --now: %w", err)
		}
		return now, nil
	}
	if !snap.Now.IsZero() {
		return snap.Now, nil
	}
	return time.Now().UTC(), nil
}
