package domain

// Role is owned by the role store. Users reference roles by ID only.
type Role struct {
	ID             string `json:"id" bson:"_id"`
	Name           string `json:"name" bson:"name"`
	NormalizedName string `json:"normalized_name" bson:"normalized_name"`
}
