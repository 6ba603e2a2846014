package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Sin9ular37/Address-MatchMaster/app/models"
)

// CSVSink 结果写为 CSV 文件
type CSVSink struct {
	path string
}

// NewCSV 创建 CSV 下沉器，输出目录不存在时自动创建
func NewCSV(path string) (*CSVSink, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}
	return &CSVSink{path: path}, nil
}

func (s *CSVSink) Write(_ context.Context, results []models.MatchResult) error {
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"address_id", "poi_id", "poi_name", "score", "reason", "admin_level", "lat", "lng"}); err != nil {
		return err
	}
	for _, r := range results {
		lat, lng := "", ""
		if r.Location != nil {
			lat = strconv.FormatFloat(r.Location.Lat, 'f', 6, 64)
			lng = strconv.FormatFloat(r.Location.Lng, 'f', 6, 64)
		}
		row := []string{
			r.AddressID,
			r.POIID,
			r.POIName,
			strconv.FormatFloat(r.Score, 'f', 4, 64),
			string(r.Reason),
			r.AdminLevel.String(),
			lat,
			lng,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (s *CSVSink) Close(context.Context) error { return nil }
