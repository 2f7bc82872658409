package shaderoute

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readExported(t *testing.T, fname string) [][]string {
	t.Helper()
	file, err := os.Open(fname)
	require.NoError(t, err)
	defer file.Close()
	reader := csv.NewReader(file)
	reader.Comma = ';'
	records, err := reader.ReadAll()
	require.NoError(t, err)
	return records
}

func TestExportToCSV(t *testing.T) {
	net := gridNetwork(t)
	dir := t.TempDir()
	require.NoError(t, net.ExportToCSV(filepath.Join(dir, "grid.csv")))

	nodes := readExported(t, filepath.Join(dir, "grid_nodes.csv"))
	require.Len(t, nodes, 7)
	assert.Equal(t, []string{"id", "degree", "x", "y"}, nodes[0])
	assert.Equal(t, []string{"2", "3", "100.000000", "0.000000"}, nodes[2])

	links := readExported(t, filepath.Join(dir, "grid_links.csv"))
	require.Len(t, links, 8)
	header := links[0]
	assert.Equal(t, "link_id", header[0])
	assert.Equal(t, "shadow_8", header[9])
	assert.Equal(t, "shadow_19", header[20])
	assert.Equal(t, "geom", header[21])

	var crosswalk []string
	for _, row := range links[1:] {
		if row[0] == "2-5" {
			crosswalk = row
		}
	}
	require.NotNil(t, crosswalk)
	assert.Equal(t, "true", crosswalk[7])
	assert.Equal(t, "none", crosswalk[8])
	assert.Equal(t, "0.500", crosswalk[9])
	assert.Equal(t, "LINESTRING(100 0,100 100)", crosswalk[21])
}

func TestNetworkBound(t *testing.T) {
	bound := gridNetwork(t).Bound()
	assert.Equal(t, orb.Point{0, 0}, bound.Min)
	assert.Equal(t, orb.Point{200, 100}, bound.Max)
}
