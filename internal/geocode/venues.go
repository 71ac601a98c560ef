package geocode

import "strings"

// Coordinates is a WGS-84 latitude/longitude pair.
type Coordinates struct {
	Lat float64
	Lon float64
}

// BostonCenter is the fallback coordinate when a venue cannot be resolved.
var BostonCenter = Coordinates{Lat: 42.3601, Lon: -71.0589}

type venue struct {
	name   string
	coords Coordinates
}

// knownVenues maps common Boston-area venues and neighborhoods to
// pre-cached coordinates so the usual suspects never hit the network.
// Matching is case-insensitive substring and the first entry wins, so
// specific names sit above the broader ones (plain "boston" goes last)
// that would otherwise shadow them.
var knownVenues = []venue{
	{"boston common", Coordinates{42.3550, -71.0656}},
	{"boston university", Coordinates{42.3505, -71.1054}},
	{"faneuil hall", Coordinates{42.3601, -71.0549}},
	{"mit", Coordinates{42.3601, -71.0942}},
	{"harvard", Coordinates{42.3770, -71.1167}},
	{"northeastern", Coordinates{42.3398, -71.0892}},
	{"seaport", Coordinates{42.3519, -71.0449}},
	{"back bay", Coordinates{42.3503, -71.0810}},
	{"south end", Coordinates{42.3420, -71.0692}},
	{"north end", Coordinates{42.3647, -71.0542}},
	{"downtown crossing", Coordinates{42.3555, -71.0602}},
	{"beacon hill", Coordinates{42.3588, -71.0707}},
	{"fenway", Coordinates{42.3467, -71.0972}},
	{"allston", Coordinates{42.3539, -71.1337}},
	{"brighton", Coordinates{42.3464, -71.1627}},
	{"jamaica plain", Coordinates{42.3097, -71.1151}},
	{"roxbury", Coordinates{42.3152, -71.0886}},
	{"dorchester", Coordinates{42.3016, -71.0674}},
	{"isbcc", Coordinates{42.3307, -71.0834}},
	{"islamic society of boston", Coordinates{42.3307, -71.0834}},
	{"encore boston harbor", Coordinates{42.3876, -71.0756}},
	{"memoire", Coordinates{42.3876, -71.0756}},
	{"cambridge", Coordinates{42.3736, -71.1097}},
	{"somerville", Coordinates{42.3876, -71.0995}},
	{"brookline", Coordinates{42.3318, -71.1212}},
	{"boston", Coordinates{42.3601, -71.0589}},
}

// LookupVenue resolves a location text against the known-venue table.
func LookupVenue(location string) (Coordinates, bool) {
	lower := strings.ToLower(location)
	for _, v := range knownVenues {
		if strings.Contains(lower, v.name) {
			return v.coords, true
		}
	}
	return Coordinates{}, false
}
