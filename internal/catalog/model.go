package catalog

// CanonicalTitle is the primary catalog's match for one input title. It is
// built once per pipeline run and never mutated afterwards.
type CanonicalTitle struct {
	PrimaryID          int64
	Title              string
	OriginalQueryTitle string
	Year               int // 0 when unknown
	Overview           string
	GenreIDs           []int
	VoteAverage        float64
	PosterPath         string
	RuntimeMinutes     int // 0 when unknown
	IMDbID             string
}

// Details carries the per-title fields only the details endpoint returns.
type Details struct {
	RuntimeMinutes int
	IMDbID         string
}

// Offer types recorded on RawSourceRecord.
const (
	OfferSubscription = "sub"
	OfferFree         = "free"
	OfferAds          = "ads"
	OfferTVE          = "tve"
	OfferBuy          = "buy"
	OfferRent         = "rent"
)

// RawSourceRecord is one availability row as an upstream reported it.
type RawSourceRecord struct {
	ProviderName string
	Region       string
	OfferType    string
	URL          string
}
