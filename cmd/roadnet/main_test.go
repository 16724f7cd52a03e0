package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/roadnet/codec"
	"github.com/hupe1980/roadnet/geo"
	"github.com/hupe1980/roadnet/search"
)

const testNetwork = `{
  "vertices": [
    {"latitude": 0, "longitude": 0},
    {"latitude": 0, "longitude": 0.001},
    {"latitude": 0, "longitude": 0.002},
    {"latitude": 0.001, "longitude": 0.001},
    {"latitude": 0.01, "longitude": 0.01},
    {"latitude": 0.01, "longitude": 0.011}
  ],
  "edges": [
    {"from": 0, "to": 1, "profile": 1},
    {"from": 1, "to": 2, "profile": 1},
    {"from": 0, "to": 3, "profile": 1},
    {"from": 3, "to": 2, "profile": 1, "shape": [{"latitude": 0.0005, "longitude": 0.0015}]},
    {"from": 4, "to": 5, "profile": 2}
  ]
}`

const testProfiles = `profiles:
  - id: 1
    name: road
    factor: 1
  - id: 2
    name: track
    speed: 20
`

const testSamples = `[{"latitude": 0.00001, "longitude": 0.0003, "score": 2}]`

// workspace writes the input files and returns the store directory.
func workspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range map[string]string{
		"network.json":  testNetwork,
		"profiles.yaml": testProfiles,
		"samples.json":  testSamples,
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	return dir
}

func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{
		"--store", filepath.Join(dir, "store"),
		"--profiles", filepath.Join(dir, "profiles.yaml"),
		"--log-level", "error",
	}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func build(t *testing.T, dir string, extra ...string) {
	t.Helper()
	out, err := run(t, dir, append([]string{"build", "--input", filepath.Join(dir, "network.json"), "lux.rnet"}, extra...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote lux.rnet: 6 vertices, 5 edges")
}

func TestBuildAndInspect(t *testing.T) {
	for _, compression := range []string{"none", "lz4", "zstd"} {
		t.Run(compression, func(t *testing.T) {
			dir := workspace(t)
			build(t, dir, "--compression", compression)

			out, err := run(t, dir, "inspect", "lux.rnet")
			require.NoError(t, err)
			assert.Contains(t, out, "vertices:  6")
			assert.Contains(t, out, "edges:     5")
			assert.Contains(t, out, "edge data: 1 words")
			assert.Regexp(t, `profile 1 road\s+4 edges`, out)
			assert.Regexp(t, `profile 2 track\s+1 edges`, out)
		})
	}
}

func TestBuildErrors(t *testing.T) {
	dir := workspace(t)

	_, err := run(t, dir, "build", "--input", filepath.Join(dir, "missing.json"), "lux.rnet")
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = run(t, dir, "build", "--input", filepath.Join(dir, "network.json"), "--compression", "brotli", "lux.rnet")
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"vertices":[{"latitude":0,"longitude":0}],"edges":[{"from":0,"to":3,"profile":1}]}`), 0o600))
	_, err = run(t, dir, "build", "--input", bad, "lux.rnet")
	assert.Error(t, err)

	_, err = run(t, dir, "inspect", "missing.rnet")
	assert.Error(t, err)
}

func TestRoute(t *testing.T) {
	dir := workspace(t)
	build(t, dir)

	out, err := run(t, dir, "route", "--from", "0.00001,0.0003", "--to", "0.00001,0.0017", "lux.rnet")
	require.NoError(t, err)

	var path search.Path
	require.NoError(t, codec.Default.Unmarshal([]byte(strings.TrimSpace(out)), &path))
	assert.Len(t, path.Edges, 2)
	assert.Equal(t, uint32(0), path.Edges[0])
	assert.Greater(t, path.Distance, float32(100))

	_, err = run(t, dir, "route", "--from", "0.00001,0.0003", "--to", "0.01,0.0105", "lux.rnet")
	assert.Error(t, err)

	_, err = run(t, dir, "route", "--from", "nope", "--to", "0,0", "lux.rnet")
	assert.Error(t, err)

	_, err = run(t, dir, "route", "--from", "0,0", "lux.rnet")
	assert.Error(t, err)
}

func TestScoresProcess(t *testing.T) {
	dir := workspace(t)
	build(t, dir)
	samples := filepath.Join(dir, "samples.json")

	out, err := run(t, dir, "scores", "process", "--samples", samples, "lux.rnet")
	require.NoError(t, err)
	assert.Contains(t, out, "1 samples: 1 assigned, 0 duplicates, 0 unresolved")
	assert.FileExists(t, filepath.Join(dir, "store", "scores.json"))

	// the edge keeps the score it received first
	out, err = run(t, dir, "scores", "process", "--samples", samples, "lux.rnet")
	require.NoError(t, err)
	assert.Contains(t, out, "1 samples: 0 assigned, 1 duplicates, 0 unresolved")

	_, err = run(t, dir, "route", "--scores", "scores.json", "--from", "0.00001,0.0003", "--to", "0.00001,0.0017", "lux.rnet")
	require.NoError(t, err)
}

func TestSnapshotPushPull(t *testing.T) {
	dir := workspace(t)
	build(t, dir)
	remote := filepath.Join(dir, "remote")

	out, err := run(t, dir, "snapshot", "push", "--to", remote, "lux.rnet")
	require.NoError(t, err)
	assert.Contains(t, out, "lux.rnet: ")
	assert.FileExists(t, filepath.Join(remote, "lux.rnet"))

	require.NoError(t, os.Remove(filepath.Join(dir, "store", "lux.rnet")))
	_, err = run(t, dir, "snapshot", "pull", "--from", "file://"+remote, "lux.rnet")
	require.NoError(t, err)

	out, err = run(t, dir, "snapshot", "list")
	require.NoError(t, err)
	assert.Equal(t, "lux.rnet\n", out)

	_, err = run(t, dir, "snapshot", "push", "--to", "ftp://host/x", "lux.rnet")
	assert.Error(t, err)
}

func TestParseCoordinate(t *testing.T) {
	c, err := parseCoordinate("49.61, 6.13")
	require.NoError(t, err)
	assert.Equal(t, geo.Coordinate{Latitude: 49.61, Longitude: 6.13}, c)

	for _, s := range []string{"", "49.61", "a,1", "1,b"} {
		_, err := parseCoordinate(s)
		assert.Error(t, err, s)
	}
}

func TestLoggerFlags(t *testing.T) {
	dir := workspace(t)
	_, err := run(t, dir, "--log-format", "xml", "snapshot", "list")
	assert.Error(t, err)
	_, err = run(t, dir, "--log-level", "loud", "snapshot", "list")
	assert.Error(t, err)
}
