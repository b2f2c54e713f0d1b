package geo

import "pressing-api/internal/models"

// District approximates a commune of Abidjan with an axis-aligned bounding
// box. Cheap and synchronous; good enough for attributing a map pin to a
// commune, not for cadastral work.
type District struct {
	Name  string
	North float64
	South float64
	East  float64
	West  float64
}

// OtherDistrict is returned when no bounding box matches.
const OtherDistrict = "Autre"

// districts is consulted in order and the first match wins, so overlapping
// boxes resolve deterministically. Append only; never reorder.
var districts = []District{
	{Name: "Plateau", South: 5.300, North: 5.335, West: -4.035, East: -4.012},
	{Name: "Treichville", South: 5.280, North: 5.308, West: -4.020, East: -3.988},
	{Name: "Marcory", South: 5.278, North: 5.312, West: -3.988, East: -3.948},
	{Name: "Koumassi", South: 5.278, North: 5.312, West: -3.948, East: -3.918},
	{Name: "Port-Bouët", South: 5.230, North: 5.278, West: -3.998, East: -3.900},
	{Name: "Adjamé", South: 5.335, North: 5.372, West: -4.045, East: -4.015},
	{Name: "Attécoubé", South: 5.320, North: 5.370, West: -4.075, East: -4.045},
	{Name: "Cocody", South: 5.320, North: 5.420, West: -4.015, East: -3.930},
	{Name: "Yopougon", South: 5.295, North: 5.375, West: -4.125, East: -4.045},
	{Name: "Abobo", South: 5.395, North: 5.470, West: -4.050, East: -3.980},
}

// Districts returns the fixed commune list in lookup order.
func Districts() []District {
	out := make([]District, len(districts))
	copy(out, districts)
	return out
}

// Contains reports whether c falls inside the district's bounding box.
// Boundaries are inclusive.
func (d District) Contains(c models.Coordinate) bool {
	return c.Lat >= d.South && c.Lat <= d.North && c.Lng >= d.West && c.Lng <= d.East
}

// DistrictFor returns the name of the first district whose bounding box
// contains c, or OtherDistrict when none matches.
func DistrictFor(c models.Coordinate) string {
	for _, d := range districts {
		if d.Contains(c) {
			return d.Name
		}
	}
	return OtherDistrict
}
