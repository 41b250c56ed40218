package encode

import (
	"testing"

	"github.com/gjr80/weewx-aprx/internal/modules/beacon/types"
)

func f(v float64) *float64 { return &v }

func TestFormatTemperature(t *testing.T) {
	cases := []struct {
		name string
		v    *float64
		want string
	}{
		{"zero", f(0), "000"},
		{"negative keeps sign in slot", f(-5), "-05"},
		{"freezing", f(32), "032"},
		{"typical", f(72), "072"},
		{"clamps high", f(1500), "999"},
		{"clamps low", f(-120), "-99"},
		{"missing", nil, "..."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatTemperature(tc.v); got != tc.want {
				t.Errorf("FormatTemperature(%v) = %q; want %q", tc.v, got, tc.want)
			}
		})
	}
}

func TestFormatHumidity(t *testing.T) {
	cases := []struct {
		name string
		v    *float64
		want string
	}{
		{"saturated renders 00", f(100), "00"},
		{"zero clamps to 01", f(0), "01"},
		{"typical", f(45), "45"},
		{"above range clamps to 00", f(150), "00"},
		{"negative clamps to 01", f(-3), "01"},
		{"missing", nil, ".."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatHumidity(tc.v); got != tc.want {
				t.Errorf("FormatHumidity(%v) = %q; want %q", tc.v, got, tc.want)
			}
		})
	}
}

func TestFormatWindDir(t *testing.T) {
	cases := []struct {
		name string
		v    *float64
		want string
	}{
		{"north", f(0), "000"},
		{"south", f(180), "180"},
		{"full circle", f(360), "360"},
		{"clamps above", f(400), "360"},
		{"clamps below", f(-10), "000"},
		{"missing", nil, "..."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatWindDir(tc.v); got != tc.want {
				t.Errorf("FormatWindDir(%v) = %q; want %q", tc.v, got, tc.want)
			}
		})
	}
}

func TestFormatSpeed(t *testing.T) {
	if got := FormatSpeed(f(5)); got != "005" {
		t.Errorf("FormatSpeed(5) = %q; want 005", got)
	}
	if got := FormatSpeed(f(1500)); got != "999" {
		t.Errorf("FormatSpeed(1500) = %q; want 999", got)
	}
	if got := FormatSpeed(nil); got != "..." {
		t.Errorf("FormatSpeed(nil) = %q; want ...", got)
	}
}

func TestFormatRain(t *testing.T) {
	cases := []struct {
		name string
		v    *float64
		want string
	}{
		{"dry", f(0), "000"},
		{"hundredths scaling", f(1.23), "123"},
		{"truncates to three digits", f(12.5), "999"},
		{"rounds half up", f(0.005), "001"},
		{"missing", nil, "..."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatRain(tc.v); got != tc.want {
				t.Errorf("FormatRain(%v) = %q; want %q", tc.v, got, tc.want)
			}
		})
	}
}

func TestFormatPressure(t *testing.T) {
	cases := []struct {
		name string
		v    *float64
		want string
	}{
		{"standard atmosphere", f(1013.2), "10132"},
		{"low", f(980), "09800"},
		{"clamps high", f(12000), "99999"},
		{"missing renders all dots", nil, "....."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatPressure(tc.v); got != tc.want {
				t.Errorf("FormatPressure(%v) = %q; want %q", tc.v, got, tc.want)
			}
		})
	}
}

func TestFormatFields_NeverPartial(t *testing.T) {
	widths := func(fs types.WeatherFields) map[string]int {
		return map[string]int{
			"wind dir":    len(fs.WindDir),
			"wind speed":  len(fs.WindSpeed),
			"wind gust":   len(fs.WindGust),
			"temperature": len(fs.Temperature),
			"rain hour":   len(fs.RainHour),
			"rain 24h":    len(fs.Rain24),
			"rain day":    len(fs.RainDay),
			"humidity":    len(fs.Humidity),
			"pressure":    len(fs.Pressure),
		}
	}

	want := map[string]int{
		"wind dir": 3, "wind speed": 3, "wind gust": 3, "temperature": 3,
		"rain hour": 3, "rain 24h": 3, "rain day": 3,
		"humidity": 2, "pressure": 5,
	}

	t.Run("all sensors missing", func(t *testing.T) {
		got := widths(FormatFields(Values{}))
		for name, w := range want {
			if got[name] != w {
				t.Errorf("%s width = %d; want %d", name, got[name], w)
			}
		}
	})

	t.Run("all sensors present", func(t *testing.T) {
		got := widths(FormatFields(Values{
			WindDir: f(180), WindSpeed: f(5), WindGust: f(10),
			Temperature: f(-5), RainHour: f(0.1), Rain24: f(0.2), RainDay: f(0.3),
			Humidity: f(45), Pressure: f(1013.2),
		}))
		for name, w := range want {
			if got[name] != w {
				t.Errorf("%s width = %d; want %d", name, got[name], w)
			}
		}
	})
}
