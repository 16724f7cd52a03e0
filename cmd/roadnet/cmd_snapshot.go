package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/roadnet/blobstore"
)

func newSnapshotCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "List and copy blobs between stores",
	}

	var to, from string
	push := &cobra.Command{
		Use:   "push NAME...",
		Short: "Copy blobs from --store to another store",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.copyBlobs(cmd, a.store, to, args)
		},
	}
	push.Flags().StringVar(&to, "to", "", "destination store")
	_ = push.MarkFlagRequired("to")

	pull := &cobra.Command{
		Use:   "pull NAME...",
		Short: "Copy blobs from another store into --store",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.copyBlobs(cmd, from, a.store, args)
		},
	}
	pull.Flags().StringVar(&from, "from", "", "source store")
	_ = pull.MarkFlagRequired("from")

	list := &cobra.Command{
		Use:   "list [PREFIX]",
		Short: "List the blobs in --store",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}
			names, err := store.List(cmd.Context(), prefix)
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}

	cmd.AddCommand(push, pull, list)
	return cmd
}

func (a *app) copyBlobs(cmd *cobra.Command, from, to string, names []string) error {
	ctx := cmd.Context()
	src, err := openStore(ctx, from)
	if err != nil {
		return err
	}
	dst, err := openStore(ctx, to)
	if err != nil {
		return err
	}
	for _, name := range names {
		n, err := blobstore.Copy(ctx, dst, src, name)
		if err != nil {
			return fmt.Errorf("copy %s: %w", name, err)
		}
		a.logger.InfoContext(ctx, "blob copied", "name", name, "bytes", n, "from", from, "to", to)
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d bytes\n", name, n)
	}
	return nil
}
