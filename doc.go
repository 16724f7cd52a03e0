// Package roadnet routes over road networks stored as compact geometric graphs.
//
// A network is a graph.Graph whose edges carry an encoded distance and
// profile, a profile.Table turning profiles into cost factors, and an
// optional scores.Table overriding the factor of individual edges.
//
// # Quick Start
//
//	ctx := context.Background()
//	profiles, _ := profile.LoadFile("profiles.yaml")
//	store := blobstore.NewLocalStore("./networks")
//
//	router, err := roadnet.Open(ctx, store, "lux.rnet", profiles)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer router.Close()
//
//	path, err := router.Route(ctx,
//	    geo.Coordinate{Latitude: 49.61, Longitude: 6.13},
//	    geo.Coordinate{Latitude: 49.50, Longitude: 5.98},
//	)
//
// # Snapshots
//
// Router.Save and SaveGraph write the graph inside a checksummed envelope,
// optionally compressed with LZ4 or zstd. Open memory-maps uncompressed
// snapshots from a LocalStore so large networks load without copying.
// Remote stores (blobstore/s3, blobstore/minio) are read into memory.
//
// # Scores
//
// Raw samples logged into a scores.Table are snapped to edges with
// Router.ProcessScores. Scored edges cost distance × score instead of
// distance × profile factor.
package roadnet
