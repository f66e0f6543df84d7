package validate

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

var (
	decimalPattern = regexp.MustCompile(`^[+-]?\d+(?:\.\d+)?$`)
	dmsPattern     = regexp.MustCompile(
		`^\s*(?P<deg>[+-]?\d+(?:\.\d+)?)\s*[°ºd]?\s*(?:(?P<min>\d+(?:\.\d+)?)\s*['m]?\s*)?(?:(?P<sec>\d+(?:\.\d+)?)\s*["s]?\s*)?(?P<hem>[NnSsEeWw])?\s*$`)
	coordSplit = regexp.MustCompile(`\s*[;,]\s*`)
)

// ParseCoordinates parses a latitude/longitude pair in decimal or
// sexagesimal (DMS) form, e.g. "40.446, -79.982" or
// `40°26'46"N, 79°58'56"W`, and returns the point in lon/lat order.
func ParseCoordinates(value string) (*geom.Point, error) {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return nil, eris.New("validate: empty coordinate value")
	}

	parts := coordSplit.Split(cleaned, -1)
	if len(parts) != 2 {
		return nil, eris.New("validate: expected two coordinates (lat, lon) separated by ',' or ';'")
	}

	lat, err := parseCoordinate(parts[0])
	if err != nil {
		return nil, err
	}
	lon, err := parseCoordinate(parts[1])
	if err != nil {
		return nil, err
	}

	p := geom.NewPointFlat(geom.XY, []float64{lon, lat})
	if p.Y() < -90 || p.Y() > 90 {
		return nil, eris.Errorf("validate: latitude %v out of range", p.Y())
	}
	if p.X() < -180 || p.X() > 180 {
		return nil, eris.Errorf("validate: longitude %v out of range", p.X())
	}
	return p, nil
}

func parseCoordinate(token string) (float64, error) {
	token = strings.TrimSpace(token)
	if decimalPattern.MatchString(token) {
		return strconv.ParseFloat(token, 64)
	}
	return parseDMS(token)
}

func parseDMS(token string) (float64, error) {
	m := dmsPattern.FindStringSubmatch(token)
	if m == nil {
		return 0, eris.Errorf("validate: invalid coordinate %q (must be decimal or sexagesimal)", token)
	}
	group := func(name string) string {
		for i, n := range dmsPattern.SubexpNames() {
			if n == name {
				return m[i]
			}
		}
		return ""
	}

	deg, err := strconv.ParseFloat(group("deg"), 64)
	if err != nil {
		return 0, eris.Wrapf(err, "validate: parse degrees %q", token)
	}
	var minutes, seconds float64
	if s := group("min"); s != "" {
		minutes, _ = strconv.ParseFloat(s, 64)
	}
	if s := group("sec"); s != "" {
		seconds, _ = strconv.ParseFloat(s, 64)
	}

	sign := 1.0
	if deg < 0 {
		sign = -1.0
		deg = -deg
	}
	dd := sign * (deg + minutes/60 + seconds/3600)

	switch strings.ToUpper(group("hem")) {
	case "S", "W":
		if dd > 0 {
			dd = -dd
		}
	case "N", "E":
		if dd < 0 {
			dd = -dd
		}
	}
	return dd, nil
}
