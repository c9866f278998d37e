package consts

// distance ranges in meters
const (
	// CORHORT_DISTANCE_RANGE bounds who counts as part of the dynamic
	// cohort around an account.
	CORHORT_DISTANCE_RANGE = 5000

	// NEARBY_DISTANCE_RANGE bounds what a proximity verification is
	// expected to cover.
	NEARBY_DISTANCE_RANGE = 100
)
