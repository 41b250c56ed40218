package encode

import (
	"fmt"
	"math"
)

// FormatLatitude renders a signed decimal latitude as APRS ddmm.hhH,
// e.g. 40.0 -> "4000.00N". Hundredths of a minute are truncated, not
// rounded.
func FormatLatitude(lat float64) string {
	deg, min, hund := sexagesimal(lat)
	hemi := byte('N')
	if lat < 0 {
		hemi = 'S'
	}
	return fmt.Sprintf("%02d%02d.%02d%c", deg, min, hund, hemi)
}

// FormatLongitude renders a signed decimal longitude as APRS dddmm.hhH,
// e.g. -105.0 -> "10500.00W".
func FormatLongitude(lon float64) string {
	deg, min, hund := sexagesimal(lon)
	hemi := byte('E')
	if lon < 0 {
		hemi = 'W'
	}
	return fmt.Sprintf("%03d%02d.%02d%c", deg, min, hund, hemi)
}

func sexagesimal(v float64) (deg, min, hund int) {
	d, frac := math.Modf(math.Abs(v))
	m, fracMin := math.Modf(frac * 60.0)
	return int(d), int(m), int(fracMin * 100.0)
}
