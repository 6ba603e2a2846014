package sink

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sin9ular37/Address-MatchMaster/app/models"
)

func TestCSVSink_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "matched.csv")
	s, err := NewCSV(path)
	require.NoError(t, err)

	results := []models.MatchResult{
		{
			AddressID:  "A1",
			POIID:      "P1",
			POIName:    "宣化街小区",
			Score:      0.9812,
			Reason:     models.ReasonMatched,
			AdminLevel: models.AdminDistrict,
			Location:   &models.LatLng{Lat: 45.7412, Lng: 126.6523},
		},
		{
			AddressID: "A2",
			Reason:    models.ReasonNoCandidates,
		},
	}
	require.NoError(t, s.Write(context.Background(), results))
	require.NoError(t, s.Close(context.Background()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"address_id", "poi_id", "poi_name", "score", "reason", "admin_level", "lat", "lng"}, rows[0])
	assert.Equal(t, "A1", rows[1][0])
	assert.Equal(t, "P1", rows[1][1])
	assert.Equal(t, "0.9812", rows[1][3])
	assert.Equal(t, "matched", rows[1][4])
	assert.Equal(t, "district", rows[1][5])

	// 未命中行：POI 列与坐标列留空
	assert.Equal(t, "A2", rows[2][0])
	assert.Empty(t, rows[2][1])
	assert.Equal(t, "no-candidates", rows[2][4])
	assert.Empty(t, rows[2][6])
}
