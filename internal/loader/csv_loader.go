// Package loader 从 CSV 装载 POI gazetteer 与运单地址批。
// 引擎只消费有序记录序列，文件格式细节都挡在这一层。
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Sin9ular37/Address-MatchMaster/app/models"
)

// header 列名 → 下标映射，列序不敏感
type header map[string]int

func (h header) get(row []string, name string) string {
	idx, ok := h[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func readHeader(r *csv.Reader) (header, error) {
	row, err := r.Read()
	if err != nil {
		return nil, err
	}
	h := make(header, len(row))
	for i, name := range row {
		h[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF")))] = i
	}
	return h, nil
}

// LoadPOIs 读取 POI 文件。列：id, name, category, province, city,
// district, address, lat, lng。id 与 address/name 之外的列可缺省。
func LoadPOIs(path string) ([]models.POIRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open poi file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	h, err := readHeader(r)
	if err != nil {
		return nil, fmt.Errorf("read poi header: %w", err)
	}

	var pois []models.POIRecord
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read poi row: %w", err)
		}
		poi := models.POIRecord{
			ID:       h.get(row, "id"),
			Name:     h.get(row, "name"),
			Category: h.get(row, "category"),
			Admin: models.AdminPath{
				Province: h.get(row, "province"),
				City:     h.get(row, "city"),
				District: h.get(row, "district"),
			},
			RawAddress: h.get(row, "address"),
		}
		if lat, lng := h.get(row, "lat"), h.get(row, "lng"); lat != "" && lng != "" {
			latF, errLat := strconv.ParseFloat(lat, 64)
			lngF, errLng := strconv.ParseFloat(lng, 64)
			if errLat == nil && errLng == nil {
				poi.Location = &models.LatLng{Lat: latF, Lng: lngF}
			}
		}
		pois = append(pois, poi)
	}
	return pois, nil
}

// LoadAddresses 读取地址文件。列：id, province, city, district, address。
// id 缺省时按行号补 ROW_n。
func LoadAddresses(path string) ([]models.AddressRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open address file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	h, err := readHeader(r)
	if err != nil {
		return nil, fmt.Errorf("read address header: %w", err)
	}

	var addrs []models.AddressRecord
	for i := 1; ; i++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read address row: %w", err)
		}
		id := h.get(row, "id")
		if id == "" {
			id = fmt.Sprintf("ROW_%d", i)
		}
		addrs = append(addrs, models.AddressRecord{
			ID: id,
			Admin: models.AdminPath{
				Province: h.get(row, "province"),
				City:     h.get(row, "city"),
				District: h.get(row, "district"),
			},
			RawAddress: h.get(row, "address"),
		})
	}
	return addrs, nil
}
