package service

import "github.com/timmy/viralpost/internal/domain"

// Location is a caller supplied coordinate used to pick a meme style.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Approximate bounding box of India.
const (
	indiaMinLat = 6.0
	indiaMaxLat = 37.6
	indiaMinLon = 68.1
	indiaMaxLon = 97.4
)

// StyleForLocation returns Indian inside India's bounding box and Global
// everywhere else, including for a nil location.
func StyleForLocation(loc *Location) domain.MemeStyle {
	if loc == nil {
		return domain.MemeStyleGlobal
	}
	if loc.Lat >= indiaMinLat && loc.Lat <= indiaMaxLat &&
		loc.Lon >= indiaMinLon && loc.Lon <= indiaMaxLon {
		return domain.MemeStyleIndian
	}
	return domain.MemeStyleGlobal
}
