package tier

// Tier is a named subscription level with a total order used for access
// decisions.
type Tier string

const (
	Free       Tier = "free"
	Freelancer Tier = "freelancer"
	Pro        Tier = "pro"
	Agency     Tier = "agency"
)

// ranks is the single source of truth for tier ordering. Unknown tiers are
// deliberately absent so they rank as zero.
var ranks = map[Tier]int{
	Free:       0,
	Freelancer: 1,
	Pro:        2,
	Agency:     3,
}

// All lists known tiers in ascending rank order.
var All = []Tier{Free, Freelancer, Pro, Agency}

// Rank returns the integer position of a tier in the purchasing-power order.
// Unrecognized tiers rank as 0 so an unknown value never grants access it
// should not have.
func Rank(t Tier) int {
	return ranks[t]
}

// IsValid reports whether t is one of the known tiers.
func (t Tier) IsValid() bool {
	_, ok := ranks[t]
	return ok
}

// CanAccess reports whether a user at tier user may access a feature that
// requires tier required. This is the single authorization gate for every
// tool and tier-gated surface; tier comparisons must not be reimplemented
// elsewhere.
func CanAccess(user, required Tier) bool {
	return Rank(user) >= Rank(required)
}
