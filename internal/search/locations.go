// Package search – canonical location data.
//
// The Nigerian state list is small and stable, so it ships embedded. LGA
// lists are deployment data (774 entries, revised occasionally) and load
// from a JSON file at boot; a missing file yields an empty LGA index, which
// the flow treats as "accept free text" rather than an error.
package search

import (
	"encoding/json"
	"os"
)

// NigerianStates are the 36 states plus the Federal Capital Territory, as
// presented by the location search widget.
var NigerianStates = []string{
	"Abia", "Adamawa", "Akwa Ibom", "Anambra", "Bauchi", "Bayelsa",
	"Benue", "Borno", "Cross River", "Delta", "Ebonyi", "Edo",
	"Ekiti", "Enugu", "FCT Abuja", "Gombe", "Imo", "Jigawa",
	"Kaduna", "Kano", "Katsina", "Kebbi", "Kogi", "Kwara",
	"Lagos", "Nasarawa", "Niger", "Ogun", "Ondo", "Osun",
	"Oyo", "Plateau", "Rivers", "Sokoto", "Taraba", "Yobe",
	"Zamfara",
}

// NewStateIndex returns the index over the canonical state list.
func NewStateIndex() *Index {
	return NewIndex(NigerianStates)
}

// LoadLGAIndex reads a JSON object mapping state name to its LGA list and
// returns a single flat index over every LGA. path == "" or a missing file
// returns an empty index (LGA search then degrades to free text).
func LoadLGAIndex(path string) (*Index, error) {
	if path == "" {
		return NewIndex(nil), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewIndex(nil), nil
		}
		return nil, err
	}
	var byState map[string][]string
	if err := json.Unmarshal(raw, &byState); err != nil {
		return nil, err
	}
	var all []string
	for _, lgas := range byState {
		all = append(all, lgas...)
	}
	return NewIndex(all), nil
}
