package schema

const (
	ProfileCollection = "profile"
)

// Profile - per-account presence data used for nearby queries
type Profile struct {
	ID            string   `bson:"id"`
	AccountNumber string   `bson:"account_number"`
	Location      *GeoJSON `bson:"location,omitempty"`
	Country       string   `bson:"country,omitempty"`
	Language      string   `bson:"language,omitempty"`
}

// GeoJSON - mongo location format
type GeoJSON struct {
	Type        string    `bson:"type"`
	Coordinates []float64 `bson:"coordinates"`
}
