package causal

import (
	"sort"

	"github.com/google/uuid"

	"github.com/yungbote/cqox-backend/internal/domain/emotion"
)

// Dataset is an arena of extracted records with a per-user index. Record
// order inside a user follows the extraction order, which keeps resampling
// reproducible for a given seed.
type Dataset struct {
	records []emotion.EpisodeRecord
	byUser  map[uuid.UUID][]int
	users   []uuid.UUID
}

func NewDataset(records []emotion.EpisodeRecord) *Dataset {
	d := &Dataset{
		records: records,
		byUser:  make(map[uuid.UUID][]int),
	}
	for i := range records {
		uid := records[i].UserID
		if _, ok := d.byUser[uid]; !ok {
			d.users = append(d.users, uid)
		}
		d.byUser[uid] = append(d.byUser[uid], i)
	}
	sort.Slice(d.users, func(i, j int) bool { return d.users[i].String() < d.users[j].String() })
	return d
}

func (d *Dataset) Len() int { return len(d.records) }

// Users returns user ids in a stable order.
func (d *Dataset) Users() []uuid.UUID {
	out := make([]uuid.UUID, len(d.users))
	copy(out, d.users)
	return out
}

func (d *Dataset) UserRecords(userID uuid.UUID) []emotion.EpisodeRecord {
	idx := d.byUser[userID]
	out := make([]emotion.EpisodeRecord, 0, len(idx))
	for _, i := range idx {
		out = append(out, d.records[i])
	}
	return out
}

// GroupByPartnerRole splits records by partner role; roles come back sorted.
func GroupByPartnerRole(records []emotion.EpisodeRecord) ([]string, map[string][]emotion.EpisodeRecord) {
	groups := make(map[string][]emotion.EpisodeRecord)
	for _, r := range records {
		role := r.PartnerRoleOrDefault()
		groups[role] = append(groups[role], r)
	}
	roles := make([]string, 0, len(groups))
	for role := range groups {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles, groups
}
