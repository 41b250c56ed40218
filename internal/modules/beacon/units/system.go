package units

// System maps each weather quantity to the source unit a station using
// that unit system reports in. The tags mirror the unit systems common
// weather-station software emits.
type System struct {
	Temperature TemperatureUnit
	Speed       SpeedUnit
	Rain        RainUnit
	Pressure    PressureUnit
}

var systems = map[string]System{
	"us": {
		Temperature: Fahrenheit,
		Speed:       MilesPerHour,
		Rain:        Inches,
		Pressure:    InchesHg,
	},
	"metric": {
		Temperature: Celsius,
		Speed:       KmPerHour,
		Rain:        Millimeters,
		Pressure:    Hectopascals,
	},
	"metricwx": {
		Temperature: Celsius,
		Speed:       MetersPerSecond,
		Rain:        Millimeters,
		Pressure:    Hectopascals,
	},
}

// SystemFor resolves a unit system tag. An empty tag defaults to "us".
func SystemFor(tag string) (System, error) {
	if tag == "" {
		tag = "us"
	}
	s, ok := systems[tag]
	if !ok {
		return System{}, &ConversionError{Quantity: "unit system", Unit: tag}
	}
	return s, nil
}
