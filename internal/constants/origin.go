package constants

// OriginPolicy decides which endpoint a newly activated agent starts from.
type OriginPolicy string

const (
	// OriginAlternate alternates between loc_a and loc_b on successive activations,
	// starting with loc_a.
	OriginAlternate OriginPolicy = "alternate"

	// OriginRandom picks loc_a or loc_b with equal probability.
	OriginRandom OriginPolicy = "random"
)

// Valid returns true if the policy is a recognized value.
func (p OriginPolicy) Valid() bool {
	switch p {
	case OriginAlternate, OriginRandom:
		return true
	}
	return false
}

// String returns the string representation of the policy.
func (p OriginPolicy) String() string {
	return string(p)
}
