package causal

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/cqox-backend/internal/domain/emotion"
	"github.com/yungbote/cqox-backend/internal/pkg/pointers"
)

func nan() float64 { return math.NaN() }

func TestDatasetGroupsByUser(t *testing.T) {
	other := uuid.MustParse("00000000-0000-4000-8000-000000000001")
	a, b, c := baseRecord(0), baseRecord(1), baseRecord(2)
	b.UserID = other

	d := NewDataset([]emotion.EpisodeRecord{a, b, c})
	require.Equal(t, 3, d.Len())
	require.Equal(t, []uuid.UUID{other, testUser}, d.Users())
	got := d.UserRecords(testUser)
	require.Len(t, got, 2)
	require.Equal(t, a.EpisodeID, got[0].EpisodeID)
	require.Equal(t, c.EpisodeID, got[1].EpisodeID)
	require.Empty(t, d.UserRecords(uuid.New()))
}

func TestGroupByPartnerRole(t *testing.T) {
	a, b, c := baseRecord(0), baseRecord(1), baseRecord(2)
	d, e := baseRecord(3), baseRecord(4)
	a.PartnerRole = pointers.String("上司")
	c.PartnerRole = pointers.String("")
	d.PartnerRole = pointers.String("  ")
	e.PartnerRole = pointers.String(" 上司\t")
	roles, groups := GroupByPartnerRole([]emotion.EpisodeRecord{a, b, c, d, e})
	require.Equal(t, []string{"unspecified", "上司"}, roles)
	require.Len(t, groups["unspecified"], 3)
	require.Len(t, groups["上司"], 2)
}

func TestNewRandStreams(t *testing.T) {
	a := NewRand(1, testUser, "journaling_10m", "crying_level")
	b := NewRand(1, testUser, "journaling_10m", "crying_level")
	c := NewRand(1, testUser, "journaling_10m", "stress_after")
	av, bv, cv := a.Uint64(), b.Uint64(), c.Uint64()
	require.Equal(t, av, bv)
	require.NotEqual(t, av, cv)
}
