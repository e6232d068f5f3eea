package domain

// EnvelopeLayout enumerates the visual layouts an envelope can render with.
type EnvelopeLayout string

const (
	LayoutClassic EnvelopeLayout = "classic"
	LayoutAirmail EnvelopeLayout = "airmail"
	LayoutRoyal   EnvelopeLayout = "royal"
)

// Stamp is an immutable catalog entry for a purchasable stamp. Accounts own
// quantities of stamps; one unit is consumed per selected stamp at send time.
type Stamp struct {
	ID          string `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Icon        string `json:"icon" db:"icon"`
	Color       string `json:"color" db:"color"`
	Price       int    `json:"price" db:"price"`
	IsDefault   bool   `json:"is_default" db:"is_default"`
	Description string `json:"description" db:"description"`
}

// Envelope is an immutable catalog entry for an unlockable envelope. Unlike
// stamps, envelopes are owned at most once and never consumed.
type Envelope struct {
	ID          string         `json:"id" db:"id"`
	Name        string         `json:"name" db:"name"`
	Price       int            `json:"price" db:"price"`
	IsDefault   bool           `json:"is_default" db:"is_default"`
	StyleClass  string         `json:"style_class" db:"style_class"`
	Layout      EnvelopeLayout `json:"layout" db:"layout"`
	Description string         `json:"description" db:"description"`
}

// DefaultStamps is the catalog seeded when the stamp collection is empty.
// IDs are stable slugs so seeding stays idempotent across deployments.
var DefaultStamps = []Stamp{
	{ID: "ancient-oak", Name: "Ancient Oak", Icon: "Tree", Color: "#2e7d32", Price: 0, IsDefault: true, Description: "A symbol of strength and longevity."},
	{ID: "cloud-peak", Name: "Cloud Peak", Icon: "Cloud", Color: "#81d4fa", Price: 0, IsDefault: true, Description: "For messages that drift like the wind."},
	{ID: "golden-sol", Name: "Golden Sol", Icon: "Sun", Color: "#fbc02d", Price: 0, IsDefault: true, Description: "A warm greeting from the heart."},
	{ID: "silver-crescent", Name: "Silver Crescent", Icon: "Moon", Color: "#9e9e9e", Price: 50, IsDefault: false, Description: "Secrets whispered in the night."},
	{ID: "eternal-flame", Name: "Eternal Flame", Icon: "Flame", Color: "#f44336", Price: 75, IsDefault: false, Description: "Passionate words that never fade."},
	{ID: "deep-blue", Name: "Deep Blue", Icon: "Waves", Color: "#2196f3", Price: 60, IsDefault: false, Description: "Calm thoughts from across the sea."},
}

// DefaultEnvelopes is the catalog seeded when the envelope collection is empty.
var DefaultEnvelopes = []Envelope{
	{ID: "classic-parchment", Name: "Classic Parchment", Price: 0, IsDefault: true, StyleClass: "envelope-parchment", Layout: LayoutClassic, Description: "A standard, reliable envelope for everyday correspondence."},
	{ID: "airmail", Name: "Airmail", Price: 50, IsDefault: false, StyleClass: "envelope-airmail", Layout: LayoutAirmail, Description: "For urgent messages that must fly swiftly across the realm."},
	{ID: "royal-velvet", Name: "Royal Velvet", Price: 100, IsDefault: false, StyleClass: "envelope-royal", Layout: LayoutRoyal, Description: "A luxurious envelope fit for kings and queens."},
}
