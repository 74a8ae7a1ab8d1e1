package cli

import (
	"fmt"
	"time"

	"github.com/grandjury/grandjury-go/pkg/client"
	"github.com/grandjury/grandjury-go/pkg/scoring"
	"github.com/urfave/cli/v2"
)

var (
	previousFlag = &cli.Float64Flag{
		Name:     "previous",
		Usage:    "Previous score",
		Required: true,
	}

	votesFlag = &cli.Float64SliceFlag{
		Name:     "vote",
		Usage:    "Vote value (repeatable)",
		Required: true,
	}

	reputationsFlag = &cli.Float64SliceFlag{
		Name:     "reputation",
		Usage:    "Voter reputation weight, pairs with --vote by position (repeatable)",
		Required: true,
	}

	decayFlag = &cli.Float64Flag{
		Name:  "decay",
		Usage: "Decay factor in [0,1]",
		Value: scoring.DecayDefault,
	}

	previousTimeFlag = &cli.StringFlag{
		Name:  "previous-time",
		Usage: "Previous score timestamp (RFC 3339, default: one hour ago)",
	}

	fastFlag = &cli.BoolFlag{
		Name:  "fast",
		Usage: "Use the fast JSON codec for the request",
	}

	scoreCmd = &cli.Command{
		Name:            "score",
		Usage:           "Compute a decay-adjusted score locally",
		HideHelpCommand: true,
		Action:          cmdScore,
		Flags: []cli.Flag{
			previousFlag,
			votesFlag,
			reputationsFlag,
			decayFlag,
		},
	}

	evaluateCmd = &cli.Command{
		Name:            "evaluate",
		Usage:           "Compute a decay-adjusted score on the GrandJury server",
		HideHelpCommand: true,
		Action:          cmdEvaluate,
		Flags: []cli.Flag{
			previousFlag,
			votesFlag,
			reputationsFlag,
			previousTimeFlag,
			fastFlag,
		},
	}
)

type scoreResult struct {
	Previous float64   `json:"previous" yaml:"previous"`
	Score    float64   `json:"score" yaml:"score"`
	Decay    float64   `json:"decay" yaml:"decay"`
	Votes    int       `json:"votes" yaml:"votes"`
	Computed time.Time `json:"computed" yaml:"computed"`
}

func cmdScore(c *cli.Context) error {
	previous := c.Float64(previousFlag.Name)
	votes := c.Float64Slice(votesFlag.Name)
	reputations := c.Float64Slice(reputationsFlag.Name)
	decay := c.Float64(decayFlag.Name)

	score, err := scoring.Score(previous, votes, reputations, scoring.Params{Decay: decay})
	if err != nil {
		return fmt.Errorf("computing score: %w", err)
	}

	return encode(scoreResult{
		Previous: previous,
		Score:    score,
		Decay:    decay,
		Votes:    len(votes),
		Computed: time.Now().UTC(),
	})
}

func cmdEvaluate(c *cli.Context) error {
	req := client.EvaluateRequest{
		PreviousScore: c.Float64(previousFlag.Name),
		Votes:         c.Float64Slice(votesFlag.Name),
		Reputations:   c.Float64Slice(reputationsFlag.Name),
	}

	if s := c.String(previousTimeFlag.Name); s != "" {
		if _, err := time.Parse(time.RFC3339, s); err != nil {
			return fmt.Errorf("parsing --%s: %w", previousTimeFlag.Name, err)
		}
		req.PreviousTimestamp = s
	}

	cl, err := newEvaluateClient(c)
	if err != nil {
		return err
	}

	res, err := cl.Evaluate(c.Context, req)
	if err != nil {
		return fmt.Errorf("evaluating: %w", err)
	}

	return encode(res)
}

func newEvaluateClient(c *cli.Context) (*client.Client, error) {
	if c.Bool(fastFlag.Name) {
		return newClient(c, client.WithCodec(client.FastCodec{}))
	}
	return newClient(c)
}
