package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/roadnet"
	"github.com/hupe1980/roadnet/blobstore"
	"github.com/hupe1980/roadnet/codec"
	"github.com/hupe1980/roadnet/geo"
	"github.com/hupe1980/roadnet/persistence"
	"github.com/hupe1980/roadnet/profile"
	"github.com/hupe1980/roadnet/scores"
)

func (a *app) openStore(ctx context.Context) (blobstore.BlobStore, error) {
	return openStore(ctx, a.store)
}

// openRouter loads snapshot name with the profile table.
func (a *app) openRouter(ctx context.Context, name string, opts ...roadnet.Option) (*roadnet.Router, error) {
	profiles, err := profile.LoadFile(a.profiles)
	if err != nil {
		return nil, err
	}
	store, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	opts = append([]roadnet.Option{roadnet.WithLogger(a.logger.WithNetwork(name))}, opts...)
	return roadnet.Open(ctx, store, name, profiles, opts...)
}

// loadScores reads score blob name, or returns an empty table when it does
// not exist yet.
func (a *app) loadScores(ctx context.Context, name string) (*scores.Table, error) {
	store, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	t, err := roadnet.LoadScores(ctx, store, name)
	if errors.Is(err, roadnet.ErrNotFound) {
		a.logger.InfoContext(ctx, "score blob not found, starting empty", "name", name)
		return scores.NewTable(), nil
	}
	return t, err
}

func parseCoordinate(s string) (geo.Coordinate, error) {
	lat, lon, ok := strings.Cut(s, ",")
	if !ok {
		return geo.Coordinate{}, fmt.Errorf("coordinate %q: want lat,lon", s)
	}
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 32)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("coordinate %q: %w", s, err)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(lon), 32)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("coordinate %q: %w", s, err)
	}
	return geo.Coordinate{Latitude: float32(la), Longitude: float32(lo)}, nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := codec.Default.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

func newBuildCmd(a *app) *cobra.Command {
	var (
		input       string
		compression string
	)
	cmd := &cobra.Command{
		Use:   "build NAME",
		Short: "Build a network snapshot from a JSON network file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := persistence.ParseCompression(compression)
			if err != nil {
				return err
			}
			n, err := readNetwork(input)
			if err != nil {
				return err
			}
			g, err := buildGraph(n)
			if err != nil {
				return err
			}
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			size, err := roadnet.SaveGraph(ctx, store, args[0], g, c, nil)
			a.logger.LogSave(ctx, args[0], size, err)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: %d vertices, %d edges, %d bytes\n",
				args[0], g.VertexCount(), g.EdgeCount(), size)
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "network.json", "network JSON file")
	cmd.Flags().StringVar(&compression, "compression", "none", "payload compression: none, lz4 or zstd")
	return cmd
}

func newInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect NAME",
		Short: "Print the size and profile mix of a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRouter(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer r.Close()

			g := r.Graph()
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "vertices:  %d\n", g.VertexCount())
			fmt.Fprintf(w, "edges:     %d\n", g.EdgeCount())
			fmt.Fprintf(w, "edge data: %d words\n", g.EdgeDataSize())

			counts := profileCounts(r)
			for _, p := range r.Profiles().Profiles() {
				fmt.Fprintf(w, "profile %d %-12s %d edges\n", p.ID, p.Name, counts[p.ID])
				delete(counts, p.ID)
			}
			for _, id := range slices.Sorted(maps.Keys(counts)) {
				fmt.Fprintf(w, "profile %d %-12s %d edges\n", id, "(unknown)", counts[id])
			}
			return nil
		},
	}
}

func newRouteCmd(a *app) *cobra.Command {
	var (
		from, to   string
		scoresBlob string
	)
	cmd := &cobra.Command{
		Use:   "route NAME",
		Short: "Compute the shortest route between two coordinates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			src, err := parseCoordinate(from)
			if err != nil {
				return err
			}
			dst, err := parseCoordinate(to)
			if err != nil {
				return err
			}

			var opts []roadnet.Option
			if scoresBlob != "" {
				t, err := a.loadScores(ctx, scoresBlob)
				if err != nil {
					return err
				}
				opts = append(opts, roadnet.WithScores(t))
			}
			r, err := a.openRouter(ctx, args[0], opts...)
			if err != nil {
				return err
			}
			defer r.Close()

			path, err := r.Route(ctx, src, dst)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), path)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "start as lat,lon")
	cmd.Flags().StringVar(&to, "to", "", "destination as lat,lon")
	cmd.Flags().StringVar(&scoresBlob, "scores", "", "score blob overriding edge weights")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
