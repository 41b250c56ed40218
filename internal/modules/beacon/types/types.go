package types

// Observation is one weather-station sample as delivered by the data bus.
// Sensor fields are pointers: a nil field means the sensor is not installed
// or has not reported yet. Rain fields are accumulations, not rates.
type Observation struct {
	Timestamp int64  `json:"timestamp"`       // unix seconds
	Units     string `json:"units,omitempty"` // unit system tag: us, metric, metricwx

	WindDir     *float64 `json:"wind_dir_deg,omitempty"`
	WindSpeed   *float64 `json:"wind_speed,omitempty"`
	WindGust    *float64 `json:"wind_gust,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	Humidity    *float64 `json:"humidity_pct,omitempty"`
	Pressure    *float64 `json:"pressure,omitempty"`

	Rain     *float64 `json:"rain,omitempty"`      // since previous observation
	RainHour *float64 `json:"rain_hour,omitempty"` // last 60 minutes
	Rain24   *float64 `json:"rain_24h,omitempty"`  // last 24 hours
	RainDay  *float64 `json:"rain_day,omitempty"`  // since local midnight
}

// StationPosition is the fixed station location plus the APRS symbol pair.
// Set once from config and read-only afterwards.
type StationPosition struct {
	Latitude    float64 // signed decimal degrees, north positive
	Longitude   float64 // signed decimal degrees, east positive
	SymbolTable byte    // APRS symbol table identifier, e.g. '/'
	SymbolCode  byte    // APRS symbol code, e.g. '_' for a weather station
}

// BeaconRecord is one beacon prior to text rendering. Fields is always
// fully populated: every slot holds either a rendered value or its
// placeholder, never an empty string.
type BeaconRecord struct {
	Callsign  string
	Position  *StationPosition
	Timestamp int64
	Fields    WeatherFields
	Comment   string
}

// WeatherFields holds the rendered fixed-width field strings in canonical
// APRS units. Widths: 3/3/3/3/3/3/3/2/5.
type WeatherFields struct {
	WindDir     string
	WindSpeed   string
	WindGust    string
	Temperature string
	RainHour    string
	Rain24      string
	RainDay     string
	Humidity    string
	Pressure    string
}
