package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"profile-server/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleCommand_WritesChartAndProfile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "chart.html")
	jsonOut := filepath.Join(dir, "profile.json")

	rootCmd.SetArgs([]string{
		"sample", "--env", "dev",
		"--north", "44.6", "--south", "44.5", "--east", "-78.5", "--west", "-78.6",
		"--out", out, "--json", jsonOut,
	})
	require.NoError(t, rootCmd.Execute())

	html, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Elevation profile")

	profile, err := util.ReadProfileFromJSON(jsonOut)
	require.NoError(t, err)
	assert.Len(t, profile, 30)
	assert.Equal(t, 44.6, profile[0].Location.Lat)
}

func TestSampleCommand_RejectsInvertedBounds(t *testing.T) {
	rootCmd.SetArgs([]string{
		"sample", "--env", "dev",
		"--north", "44.5", "--south", "44.6", "--east", "-78.5", "--west", "-78.6",
		"--out", filepath.Join(t.TempDir(), "chart.html"),
	})
	assert.Error(t, rootCmd.Execute())
}
