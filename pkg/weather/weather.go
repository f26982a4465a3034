/*
weather implements a weather lookup tool over a closed set of cities. The
records have the shape of an OpenWeather current weather response, but
no network call is made: any city outside the set is reported as not found.
*/
package weather

import (
	"slices"

	// Packages
	cases "golang.org/x/text/cases"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type Weather struct {
	Coord      Coord       `json:"coord"`
	Conditions []Condition `json:"weather"`
	Base       string      `json:"base"`
	Main       Main        `json:"main"`
	Visibility int         `json:"visibility"`
	Wind       Wind        `json:"wind"`
	Clouds     Clouds      `json:"clouds"`
	Dt         int64       `json:"dt"`
	Sys        Sys         `json:"sys"`
	Timezone   int         `json:"timezone"`
	Id         int         `json:"id"`
	Name       string      `json:"name"`
	Cod        int         `json:"cod"`
}

type Coord struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

type Condition struct {
	Id          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type Main struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Pressure  int     `json:"pressure"`
	Humidity  int     `json:"humidity"`
}

type Wind struct {
	Speed float64 `json:"speed"`
	Deg   int     `json:"deg"`
}

type Clouds struct {
	All int `json:"all"`
}

type Sys struct {
	Type    int    `json:"type"`
	Id      int    `json:"id"`
	Country string `json:"country"`
	Sunrise int64  `json:"sunrise"`
	Sunset  int64  `json:"sunset"`
}

// NotFound is returned as the payload for a city outside the known set
type NotFound struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	ErrCityNotFound     = "city_not_found"
	ErrCityNotFoundText = "城市未找到，请输入有效城市名称"
)

var (
	// Keyed by case-folded city name
	records = map[string]Weather{
		"beijing": {
			Coord:      Coord{Lon: 116.4074, Lat: 39.9042},
			Conditions: []Condition{{Id: 801, Main: "Clouds", Description: "few clouds", Icon: "02d"}},
			Base:       "stations",
			Main:       Main{Temp: 12.5, FeelsLike: 11.9, TempMin: 12.5, TempMax: 12.5, Pressure: 1012, Humidity: 52},
			Visibility: 6000,
			Wind:       Wind{Speed: 3.6, Deg: 80},
			Clouds:     Clouds{All: 23},
			Dt:         1671673146,
			Sys:        Sys{Type: 1, Id: 9246, Country: "CN", Sunrise: 1671650426, Sunset: 1671693807},
			Timezone:   28800,
			Id:         1816670,
			Name:       "Beijing",
			Cod:        200,
		},
		"shanghai": {
			Coord:      Coord{Lon: 121.4737, Lat: 31.2304},
			Conditions: []Condition{{Id: 802, Main: "Clouds", Description: "scattered clouds", Icon: "03d"}},
			Base:       "stations",
			Main:       Main{Temp: 18.2, FeelsLike: 17.8, TempMin: 18.2, TempMax: 18.2, Pressure: 1010, Humidity: 72},
			Visibility: 5000,
			Wind:       Wind{Speed: 4.1, Deg: 150},
			Clouds:     Clouds{All: 38},
			Dt:         1671673146,
			Sys:        Sys{Type: 1, Id: 9261, Country: "CN", Sunrise: 1671650044, Sunset: 1671692578},
			Timezone:   28800,
			Id:         1796236,
			Name:       "Shanghai",
			Cod:        200,
		},
	}
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Lookup returns the weather record for a city, matched without regard to
// case, and false if the city is not known
func Lookup(city string) (*Weather, bool) {
	record, exists := records[cases.Fold().String(city)]
	if !exists {
		return nil, false
	}

	// Copy the conditions so callers cannot modify the record
	record.Conditions = slices.Clone(record.Conditions)
	return &record, true
}

// Cities returns the names of the known cities, sorted
func Cities() []string {
	result := make([]string, 0, len(records))
	for _, record := range records {
		result = append(result, record.Name)
	}
	slices.Sort(result)
	return result
}

// Current returns the weather record for a city, or the not found payload
func Current(city string) any {
	if record, exists := Lookup(city); exists {
		return record
	}
	return NotFound{
		Error:   ErrCityNotFound,
		Message: ErrCityNotFoundText,
	}
}
