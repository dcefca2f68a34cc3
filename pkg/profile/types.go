// Package profile holds the user-profile domain model the ingestion pipeline
// writes: transportation habits, lifestyle traits and predicted categories.
package profile

// CategoryStatus reflects how a category is shown and edited client-side.
type CategoryStatus string

const (
	CategoryActive   CategoryStatus = "Active"
	CategoryInactive CategoryStatus = "Inactive"
	CategoryEdit     CategoryStatus = "Edit"
)

// CostTiers are the only accepted values for Category.Cost.
var CostTiers = []string{"$", "$$", "$$$", "$$$$"}

// TransportMode is one entry of the transportation map.
// Radius is nil iff Selected is false.
type TransportMode struct {
	Selected bool     `json:"selected"`
	Radius   *float64 `json:"radius"`
}

// TransportationResult is the parsed transportation section payload.
type TransportationResult struct {
	Transportation map[string]TransportMode `json:"transportation"`
	HomeAddress    string                   `json:"homeAddress"`
}

// LifestyleResult is the parsed lifestyle section payload.
// Lifestyle holds the user's core priorities; OtherPreferences the broader set.
type LifestyleResult struct {
	Lifestyle          []string `json:"lifestyle"`
	OtherPreferences   []string `json:"otherPreferences"`
	LifestyleParagraph string   `json:"lifestyleParagraph"`
}

// FavoritePlace is populated by the recommendation step, not by ingestion.
// Ingestion only ever writes an empty map.
type FavoritePlace struct {
	Address       string `json:"address"`
	WhyTheyLikeIt string `json:"why_they_like_it"`
	PhotoURL      string `json:"photo_url"`
}

// Category is one predicted category document under users/{uid}/categories.
// ID is assigned by the store on insert.
type Category struct {
	ID             string                   `json:"id,omitempty"`
	Title          string                   `json:"title"`
	Cost           string                   `json:"cost"`
	Preference     string                   `json:"preference"`
	Subcategories  []string                 `json:"subcategories"`
	Vibes          []string                 `json:"vibes"`
	Status         CategoryStatus           `json:"status"`
	FavoritePlaces map[string]FavoritePlace `json:"favorite_places,omitempty"`
}

// CategoriesResult is the parsed categories section payload.
type CategoriesResult struct {
	Categories []Category `json:"categories"`
}

// Profile is the users/{uid} document as the pipeline sees it.
// Name, Birthday and Gender are user-edited; ingestion never overwrites them.
type Profile struct {
	Name               string                   `json:"name"`
	Birthday           string                   `json:"birthday"`
	Gender             string                   `json:"gender"`
	HomeAddress        string                   `json:"home_address"`
	Transportations    map[string]TransportMode `json:"transportations"`
	LifestyleTraits    map[string]bool          `json:"lifestyle_traits"`
	LifestyleParagraph string                   `json:"lifestyle_paragraph"`
	AdditionalInfo     string                   `json:"additional_info"`
	FCMTokens          []string                 `json:"-"`
}

// Snapshot is the client-visible state republished after a refresh.
type Snapshot struct {
	Profile    *Profile    `json:"profile"`
	Categories []*Category `json:"categories"`
}
