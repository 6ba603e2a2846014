package models

// AdminLevel 行政匹配粒度：无 < 省 < 市 < 区县
type AdminLevel int

const (
	AdminNone AdminLevel = iota
	AdminProvince
	AdminCity
	AdminDistrict
)

func (l AdminLevel) String() string {
	switch l {
	case AdminProvince:
		return "province"
	case AdminCity:
		return "city"
	case AdminDistrict:
		return "district"
	default:
		return "none"
	}
}

// AdminPath 行政区划路径，从粗到细：省 → 市 → 区县，每级可为空
type AdminPath struct {
	Province string `json:"province,omitempty"`
	City     string `json:"city,omitempty"`
	District string `json:"district,omitempty"`
}

// IsZero 判断路径是否完全为空
func (p AdminPath) IsZero() bool {
	return p.Province == "" && p.City == "" && p.District == ""
}

// MatchLevel 返回两条路径的最深匹配级别。逐级独立比较，
// 取双方都非空且相等的最细一级。
func (p AdminPath) MatchLevel(other AdminPath) AdminLevel {
	level := AdminNone
	if p.Province != "" && p.Province == other.Province {
		level = AdminProvince
	}
	if p.City != "" && p.City == other.City {
		level = AdminCity
	}
	if p.District != "" && p.District == other.District {
		level = AdminDistrict
	}
	return level
}

// LatLng POI 坐标（可选）
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// POIRecord gazetteer 参考点位记录，加载后不可变
type POIRecord struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Category   string    `json:"category,omitempty"`
	Admin      AdminPath `json:"admin"`
	RawAddress string    `json:"raw_address"`
	Location   *LatLng   `json:"location,omitempty"`
}

// AddressRecord 待匹配的运单地址。RawAddress 可能混有噪声：
// 电话号码、括号备注、配送说明等。
type AddressRecord struct {
	ID         string    `json:"id"`
	Admin      AdminPath `json:"admin"`
	RawAddress string    `json:"raw_address"`
}
