package causal

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/cqox-backend/internal/domain/emotion"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// fallbackLevel absorbs values that are not listed in the catalog.
const fallbackLevel = "other"

// Catalog enumerates every known level of the categorical confounders so the
// encoded feature layout is identical for every user and every run.
type Catalog struct {
	ScenarioTypes []string `yaml:"scenario_types"`
	Locations     []string `yaml:"locations"`
	Topics        []string `yaml:"topics"`
}

func DefaultCatalog() Catalog {
	c, err := ParseCatalog(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return c
}

// LoadCatalog reads a catalog file; an empty path yields the embedded one.
func LoadCatalog(path string) (Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultCatalog(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(raw)
}

func ParseCatalog(raw []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog: %w", err)
	}
	for name, levels := range map[string][]string{
		"scenario_types": c.ScenarioTypes,
		"locations":      c.Locations,
		"topics":         c.Topics,
	} {
		if len(levels) == 0 {
			return Catalog{}, fmt.Errorf("catalog %s is empty", name)
		}
		seen := make(map[string]struct{}, len(levels))
		for _, l := range levels {
			if _, dup := seen[l]; dup {
				return Catalog{}, fmt.Errorf("catalog %s lists %q twice", name, l)
			}
			seen[l] = struct{}{}
		}
	}
	return c, nil
}

type category struct {
	name   string
	levels []string
	index  map[string]int
}

func newCategory(name string, levels []string) category {
	idx := make(map[string]int, len(levels))
	for i, l := range levels {
		idx[l] = i
	}
	return category{name: name, levels: levels, index: idx}
}

// level returns the catalog position of v, routing unknown values to the
// fallback level when the catalog has one and to the reference otherwise.
func (c category) level(v string) int {
	if i, ok := c.index[strings.TrimSpace(v)]; ok {
		return i
	}
	if i, ok := c.index[fallbackLevel]; ok {
		return i
	}
	return 0
}

// Encoder turns an EpisodeRecord into the confounder vector: the three
// pre-state scores followed by reference-dropped one-hot blocks for scenario
// type, location and topic.
type Encoder struct {
	categories []category
	columns    []string
}

var numericConfounders = []string{"pre_anxiety", "pre_crying_risk", "pre_speech_block_risk"}

func NewEncoder(c Catalog) *Encoder {
	e := &Encoder{
		categories: []category{
			newCategory("scenario_type", c.ScenarioTypes),
			newCategory("location", c.Locations),
			newCategory("topic", c.Topics),
		},
	}
	e.columns = append(e.columns, numericConfounders...)
	for _, cat := range e.categories {
		for _, l := range cat.levels[1:] {
			e.columns = append(e.columns, cat.name+"="+l)
		}
	}
	return e
}

func (e *Encoder) Width() int { return len(e.columns) }

func (e *Encoder) Columns() []string {
	out := make([]string, len(e.columns))
	copy(out, e.columns)
	return out
}

// Encode writes the confounders of r into dst (len Width()). It reports false
// when a numeric confounder is missing, leaving dst unspecified.
func (e *Encoder) Encode(r emotion.EpisodeRecord, dst []float64) bool {
	if len(dst) != len(e.columns) {
		return false
	}
	nums := [...]float64{r.PreAnxiety, r.PreCryingRisk, r.PreSpeechBlockRisk}
	for i, v := range nums {
		if !finite(v) {
			return false
		}
		dst[i] = v
	}
	for i := len(nums); i < len(dst); i++ {
		dst[i] = 0
	}
	offset := len(nums)
	values := [...]string{r.ScenarioType, r.Location, r.Topic}
	for ci, cat := range e.categories {
		if lvl := cat.level(values[ci]); lvl > 0 {
			dst[offset+lvl-1] = 1
		}
		offset += len(cat.levels) - 1
	}
	return true
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
