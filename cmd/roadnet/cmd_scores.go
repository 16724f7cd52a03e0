package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/spf13/cobra"

	"github.com/hupe1980/roadnet"
	"github.com/hupe1980/roadnet/scores"
	"github.com/hupe1980/roadnet/scores/dynamo"
)

func newScoresCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scores",
		Short: "Process and move edge score tables",
	}
	cmd.AddCommand(
		newScoresProcessCmd(a),
		newScoresPushCmd(a),
		newScoresPullCmd(a),
	)
	return cmd
}

func newScoresProcessCmd(a *app) *cobra.Command {
	var (
		samples string
		out     string
		radius  float32
	)
	cmd := &cobra.Command{
		Use:   "process NAME",
		Short: "Snap raw score samples onto the edges of snapshot NAME",
		Long: `Reads raw samples ([{"latitude","longitude","score"}]) and assigns each to
the closest edge. Edges already present in the output blob keep their score.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			t, err := a.loadScores(ctx, out)
			if err != nil {
				return err
			}
			if err := t.LoadSamplesFile(samples); err != nil {
				return err
			}

			r, err := a.openRouter(ctx, args[0], roadnet.WithScores(t), roadnet.WithSnapRadius(radius))
			if err != nil {
				return err
			}
			defer r.Close()

			res, err := r.ProcessScores(ctx)
			if err != nil {
				return err
			}
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			if err := roadnet.SaveScores(ctx, store, out, t); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d samples: %d assigned, %d duplicates, %d unresolved\n",
				res.Samples, res.Assigned, res.Duplicates, res.Unresolved)
			return nil
		},
	}
	cmd.Flags().StringVar(&samples, "samples", "samples.json", "raw sample JSON file")
	cmd.Flags().StringVarP(&out, "out", "o", "scores.json", "score blob to update")
	cmd.Flags().Float32Var(&radius, "radius", scores.DefaultRadius, "snap radius in metres")
	return cmd
}

type dynamoFlags struct {
	table   string
	network string
	region  string
}

func (f *dynamoFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.table, "table", "roadnet-scores", "DynamoDB table")
	cmd.Flags().StringVar(&f.network, "network", "", "network key in the table (default: blob name)")
	cmd.Flags().StringVar(&f.region, "region", "", "AWS region (default: from environment)")
}

func (f *dynamoFlags) store(ctx context.Context, blob string) (*dynamo.Store, error) {
	var opts []func(*config.LoadOptions) error
	if f.region != "" {
		opts = append(opts, config.WithRegion(f.region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	network := f.network
	if network == "" {
		network = blob
	}
	return dynamo.New(dynamodb.NewFromConfig(cfg), f.table, network), nil
}

func newScoresPushCmd(a *app) *cobra.Command {
	var f dynamoFlags
	cmd := &cobra.Command{
		Use:   "push BLOB",
		Short: "Copy a score blob into DynamoDB",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			t, err := roadnet.LoadScores(ctx, store, args[0])
			if err != nil {
				return err
			}
			ddb, err := f.store(ctx, args[0])
			if err != nil {
				return err
			}
			if err := ddb.Export(ctx, t); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pushed %d scores to %s\n", t.Len(), f.table)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newScoresPullCmd(a *app) *cobra.Command {
	var f dynamoFlags
	cmd := &cobra.Command{
		Use:   "pull BLOB",
		Short: "Write the DynamoDB scores of a network to a score blob",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ddb, err := f.store(ctx, args[0])
			if err != nil {
				return err
			}
			t := scores.NewTable()
			if err := ddb.Import(ctx, t); err != nil {
				return err
			}
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			if err := roadnet.SaveScores(ctx, store, args[0], t); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pulled %d scores from %s\n", t.Len(), f.table)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}
