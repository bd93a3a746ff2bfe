package fitment

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var ErrVINRequired = errors.New("VIN is required")

// Vehicle is the decoded fitment request. Year is 0 when the payload held
// nothing parseable.
type Vehicle struct {
	VIN       string
	Year      int
	Make      string
	Model     string
	BodyClass string
	DriveType string
}

// ParseVehicle reads a vehicle from an arbitrary JSON object. Only a
// non-empty string vin is required; unknown fields are ignored.
func ParseVehicle(body map[string]any) (Vehicle, error) {
	vin, _ := body["vin"].(string)
	vin = strings.TrimSpace(vin)
	if vin == "" {
		return Vehicle{}, ErrVINRequired
	}

	return Vehicle{
		VIN:       vin,
		Year:      parseYear(body["year"]),
		Make:      stringField(body, "make"),
		Model:     stringField(body, "model"),
		BodyClass: stringField(body, "bodyClass"),
		DriveType: stringField(body, "driveType"),
	}, nil
}

// maxYear bounds accepted years; larger magnitudes read as unparseable.
const maxYear = 9999

func parseYear(v any) int {
	switch y := v.(type) {
	case float64:
		if math.IsNaN(y) || math.Abs(y) > maxYear {
			return 0
		}
		return int(y)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(y))
		if err != nil || n > maxYear || n < -maxYear {
			return 0
		}
		return n
	default:
		return 0
	}
}

func stringField(body map[string]any, key string) string {
	s, _ := body[key].(string)
	return strings.TrimSpace(s)
}
