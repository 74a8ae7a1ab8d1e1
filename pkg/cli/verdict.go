package cli

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/grandjury/grandjury-go/pkg/adapter"
	"github.com/grandjury/grandjury-go/pkg/client"
	"github.com/grandjury/grandjury-go/pkg/record"
	"github.com/grandjury/grandjury-go/pkg/schema"
	"github.com/grandjury/grandjury-go/pkg/verdict"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

var (
	dataFlag = &cli.StringSliceFlag{
		Name:     "data",
		Usage:    "Path to a vote data file [csv, parquet] (repeatable)",
		Required: true,
	}

	remoteFlag = &cli.BoolFlag{
		Name:  "remote",
		Usage: "Compute on the GrandJury server instead of locally",
	}

	bucketMinutesFlag = &cli.IntFlag{
		Name:  "bucket-minutes",
		Usage: "Histogram bucket width in minutes",
		Value: verdict.BucketMinutesDefault,
	}

	votersFlag = &cli.StringSliceFlag{
		Name:     "voters",
		Usage:    "Expected voter ID (repeatable)",
		Required: true,
	}

	inferenceFlag = &cli.StringSliceFlag{
		Name:  "inference",
		Usage: "Restrict to inference ID (repeatable, optional)",
	}

	grossFlag = &cli.BoolFlag{
		Name:  "gross",
		Usage: "Report a single population-wide ratio instead of per-inference",
	}

	goodVoteFlag = &cli.StringFlag{
		Name:  "good-vote",
		Usage: "Vote value counted as good [e.g. true, 1, accept]",
		Value: "true",
	}

	thresholdFlag = &cli.Float64Flag{
		Name:  "threshold",
		Usage: "Majority threshold in [0,1], inclusive",
		Value: verdict.ThresholdDefault,
	}

	verdictCmd = &cli.Command{
		Name:            "verdict",
		Aliases:         []string{"v"},
		Usage:           "Vote statistics over tabular vote data",
		HideHelpCommand: true,
		Subcommands: []*cli.Command{
			{
				Name:   "histogram",
				Usage:  "Count votes per time bucket",
				Action: cmdVerdictHistogram,
				Flags:  []cli.Flag{dataFlag, bucketMinutesFlag, remoteFlag},
			},
			{
				Name:   "completeness",
				Usage:  "Fraction of expected voters that voted, per inference",
				Action: cmdVerdictCompleteness,
				Flags:  []cli.Flag{dataFlag, votersFlag, inferenceFlag, grossFlag, remoteFlag},
			},
			{
				Name:   "confidence",
				Usage:  "Mean completeness across the inference population",
				Action: cmdVerdictConfidence,
				Flags:  []cli.Flag{dataFlag, votersFlag, inferenceFlag, remoteFlag},
			},
			{
				Name:   "majority",
				Usage:  "Whether good votes reach the threshold, per inference",
				Action: cmdVerdictMajority,
				Flags:  []cli.Flag{dataFlag, goodVoteFlag, thresholdFlag, remoteFlag},
			},
			{
				Name:   "distribution",
				Usage:  "Vote value counts per inference",
				Action: cmdVerdictDistribution,
				Flags:  []cli.Flag{dataFlag, inferenceFlag, remoteFlag},
			},
		},
	}
)

// runVerdict adapts every --data file and applies fn to each resulting
// set. A single input prints the bare result; multiple inputs fan out
// concurrently and print a path-keyed map.
func runVerdict(c *cli.Context, fn func(record.Set) (any, error)) error {
	paths := c.StringSlice(dataFlag.Name)
	if len(paths) == 0 {
		return cli.ShowSubcommandHelp(c)
	}

	if len(paths) == 1 {
		records, err := adapter.FromFile(paths[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", paths[0], err)
		}
		res, err := fn(records)
		if err != nil {
			return err
		}
		return encode(res)
	}

	results := make(map[string]any, len(paths))
	var mu sync.Mutex
	g, _ := errgroup.WithContext(c.Context)
	for _, p := range paths {
		p := p
		g.Go(func() error {
			records, err := adapter.FromFile(p)
			if err != nil {
				return fmt.Errorf("reading %s: %w", p, err)
			}
			res, err := fn(records)
			if err != nil {
				return fmt.Errorf("%s: %w", p, err)
			}
			mu.Lock()
			results[p] = res
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return encode(results)
}

func newClient(c *cli.Context, opts ...client.Option) (*client.Client, error) {
	cfg := getConfig(c)

	key := cfg.Conf.APIKey
	if key == "" {
		if k, err := getAPIKey(); err == nil {
			key = k
		}
	}

	opts = append([]client.Option{client.WithAPIKey(key)}, opts...)
	return client.New(cfg.Conf.BaseURL, opts...)
}

func cmdVerdictHistogram(c *cli.Context) error {
	opts := verdict.HistogramOptions{BucketMinutes: c.Int(bucketMinutesFlag.Name)}
	return runVerdict(c, func(records record.Set) (any, error) {
		if c.Bool(remoteFlag.Name) {
			cl, err := newClient(c)
			if err != nil {
				return nil, err
			}
			return cl.Histogram(c.Context, records, opts)
		}
		if err := schema.Validate(schema.OpVoteHistogram, records); err != nil {
			return nil, err
		}
		return verdict.Histogram(records, opts)
	})
}

func cmdVerdictCompleteness(c *cli.Context) error {
	voters := c.StringSlice(votersFlag.Name)
	opts := verdict.CompletenessOptions{InferenceIDs: c.StringSlice(inferenceFlag.Name)}
	gross := c.Bool(grossFlag.Name)

	return runVerdict(c, func(records record.Set) (any, error) {
		if c.Bool(remoteFlag.Name) {
			cl, err := newClient(c)
			if err != nil {
				return nil, err
			}
			if gross {
				return cl.GrossCompleteness(c.Context, records, voters, opts)
			}
			return cl.Completeness(c.Context, records, voters, opts)
		}
		if err := schema.Validate(schema.OpVoteCompleteness, records); err != nil {
			return nil, err
		}
		if gross {
			return verdict.GrossCompleteness(records, voters, opts)
		}
		return verdict.Completeness(records, voters, opts)
	})
}

func cmdVerdictConfidence(c *cli.Context) error {
	voters := c.StringSlice(votersFlag.Name)
	opts := verdict.CompletenessOptions{InferenceIDs: c.StringSlice(inferenceFlag.Name)}

	return runVerdict(c, func(records record.Set) (any, error) {
		if c.Bool(remoteFlag.Name) {
			cl, err := newClient(c)
			if err != nil {
				return nil, err
			}
			return cl.PopulationConfidence(c.Context, records, voters, opts)
		}
		if err := schema.Validate(schema.OpPopulationConfidence, records); err != nil {
			return nil, err
		}
		return verdict.PopulationConfidence(records, voters, opts)
	})
}

func cmdVerdictMajority(c *cli.Context) error {
	goodVote := parseVoteValue(c.String(goodVoteFlag.Name))
	threshold := c.Float64(thresholdFlag.Name)

	return runVerdict(c, func(records record.Set) (any, error) {
		if c.Bool(remoteFlag.Name) {
			cl, err := newClient(c)
			if err != nil {
				return nil, err
			}
			return cl.MajorityGoodVotes(c.Context, records, goodVote, threshold)
		}
		if err := schema.Validate(schema.OpMajorityGoodVotes, records); err != nil {
			return nil, err
		}
		return verdict.MajorityGoodVotes(records, goodVote, threshold)
	})
}

func cmdVerdictDistribution(c *cli.Context) error {
	ids := c.StringSlice(inferenceFlag.Name)

	return runVerdict(c, func(records record.Set) (any, error) {
		if c.Bool(remoteFlag.Name) {
			cl, err := newClient(c)
			if err != nil {
				return nil, err
			}
			return cl.Distribution(c.Context, records, ids)
		}
		if err := schema.Validate(schema.OpVotesDistribution, records); err != nil {
			return nil, err
		}
		return verdict.Distribution(records, ids)
	})
}

// parseVoteValue interprets a flag string the way vote values arrive in
// data files: bool, then number, then plain string.
func parseVoteValue(s string) any {
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
