package causal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogLayout(t *testing.T) {
	c := DefaultCatalog()
	require.Equal(t, "interview", c.ScenarioTypes[0])
	require.Contains(t, c.Locations, fallbackLevel)
	require.Contains(t, c.Topics, fallbackLevel)

	enc := NewEncoder(c)
	want := 3 + len(c.ScenarioTypes) - 1 + len(c.Locations) - 1 + len(c.Topics) - 1
	require.Equal(t, want, enc.Width())
	require.Equal(t, []string{"pre_anxiety", "pre_crying_risk", "pre_speech_block_risk"}, enc.Columns()[:3])
}

func TestEncoderWidthIndependentOfSubset(t *testing.T) {
	enc := NewEncoder(DefaultCatalog())
	a := baseRecord(0)
	b := baseRecord(1)
	b.ScenarioType = "partner"
	b.Location = "cafe"
	b.Topic = "将来の暮らし"

	da := make([]float64, enc.Width())
	db := make([]float64, enc.Width())
	require.True(t, enc.Encode(a, da))
	require.True(t, enc.Encode(b, db))

	var onesA, onesB int
	for i := 3; i < enc.Width(); i++ {
		onesA += int(da[i])
		onesB += int(db[i])
	}
	require.Equal(t, 0, onesA, "reference levels encode to all zeros")
	require.Equal(t, 3, onesB)
}

func TestEncoderUnknownLevelsUseFallback(t *testing.T) {
	enc := NewEncoder(DefaultCatalog())
	r := baseRecord(0)
	r.Location = "moon base"
	r.Topic = "unheard of"
	dst := make([]float64, enc.Width())
	require.True(t, enc.Encode(r, dst))

	cols := enc.Columns()
	for i, c := range cols {
		switch c {
		case "location=other", "topic=other":
			require.Equal(t, 1.0, dst[i], c)
		}
	}
}

func TestEncoderRejectsMissingNumeric(t *testing.T) {
	enc := NewEncoder(DefaultCatalog())
	r := baseRecord(0)
	r.PreCryingRisk = nan()
	require.False(t, enc.Encode(r, make([]float64, enc.Width())))
	require.False(t, enc.Encode(baseRecord(0), make([]float64, 2)))
}

func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scenario_types: [a, b]\nlocations: [x]\ntopics: [t, other]\n"), 0o600))
	c, err := LoadCatalog(path)
	require.NoError(t, err)
	require.Equal(t, 3+1+0+1, NewEncoder(c).Width())

	_, err = ParseCatalog([]byte("scenario_types: [a, a]\nlocations: [x]\ntopics: [t]\n"))
	require.Error(t, err)
	_, err = ParseCatalog([]byte("scenario_types: [a]\nlocations: []\ntopics: [t]\n"))
	require.Error(t, err)

	def, err := LoadCatalog("")
	require.NoError(t, err)
	require.Equal(t, DefaultCatalog(), def)
}
