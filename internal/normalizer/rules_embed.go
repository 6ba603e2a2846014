package normalizer

import (
	_ "embed"
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"
)

//go:embed data/rules.yaml
var rulesYAML []byte

// rulesConfig data/rules.yaml 的原始结构
type rulesConfig struct {
	Replacements  map[string]string `yaml:"replacements"`
	NoisePatterns struct {
		Bracket string `yaml:"bracket"`
		Phone   string `yaml:"phone"`
		Contact string `yaml:"contact"`
	} `yaml:"noise_patterns"`
	AdminRules struct {
		Municipalities   []string `yaml:"municipalities"`
		ProvinceSuffixes []string `yaml:"province_suffixes"`
		CitySuffixes     []string `yaml:"city_suffixes"`
		DistrictSuffixes []string `yaml:"district_suffixes"`
	} `yaml:"admin_rules"`
	FieldPatterns struct {
		Building string `yaml:"building"`
		Unit     string `yaml:"unit"`
		Room     string `yaml:"room"`
		House    string `yaml:"house"`
		Road     string `yaml:"road"`
	} `yaml:"field_patterns"`
}

// Rules 编译后的归一化规则集
type Rules struct {
	Replacements map[string]string

	Bracket *regexp.Regexp
	Phone   *regexp.Regexp
	Contact *regexp.Regexp

	Municipalities  []string
	ProvincePattern *regexp.Regexp
	CityPattern     *regexp.Regexp
	DistrictPattern *regexp.Regexp

	Building *regexp.Regexp
	Unit     *regexp.Regexp
	Room     *regexp.Regexp
	House    *regexp.Regexp
	Road     *regexp.Regexp
}

// LoadRules 解析并编译内嵌规则
func LoadRules() (*Rules, error) {
	var cfg rulesConfig
	if err := yaml.Unmarshal(rulesYAML, &cfg); err != nil {
		return nil, fmt.Errorf("parse rules.yaml: %w", err)
	}

	r := &Rules{
		Replacements:   cfg.Replacements,
		Municipalities: cfg.AdminRules.Municipalities,
	}

	var err error
	compile := func(expr string) *regexp.Regexp {
		if err != nil {
			return nil
		}
		var re *regexp.Regexp
		re, err = regexp.Compile(expr)
		return re
	}

	r.Bracket = compile(cfg.NoisePatterns.Bracket)
	r.Phone = compile(cfg.NoisePatterns.Phone)
	r.Contact = compile(cfg.NoisePatterns.Contact)

	r.ProvincePattern = compile(anchoredSuffix(cfg.AdminRules.ProvinceSuffixes))
	r.CityPattern = compile(anchoredSuffix(cfg.AdminRules.CitySuffixes))
	r.DistrictPattern = compile(anchoredSuffix(cfg.AdminRules.DistrictSuffixes))

	r.Building = compile(cfg.FieldPatterns.Building)
	r.Unit = compile(cfg.FieldPatterns.Unit)
	r.Room = compile(cfg.FieldPatterns.Room)
	r.House = compile(cfg.FieldPatterns.House)
	r.Road = compile(cfg.FieldPatterns.Road)

	if err != nil {
		return nil, fmt.Errorf("compile rules: %w", err)
	}
	return r, nil
}

// anchoredSuffix 生成形如 ^(汉字{2,10}?(?:后缀1|后缀2)) 的行政区划前缀正则。
// 后缀表按长度降序给出，保证"自治县"优先于"县"。
func anchoredSuffix(suffixes []string) string {
	alt := ""
	for i, s := range suffixes {
		if i > 0 {
			alt += "|"
		}
		alt += regexp.QuoteMeta(s)
	}
	return `^([\p{Han}]{1,10}?(?:` + alt + `))`
}
