package fitment

import (
	"encoding/json"
	"errors"
	"testing"
)

func decode(t *testing.T, body string) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(body), &m); err != nil {
		t.Fatal(err)
	}
	return m
}

func TestParseVehicleRequiresVIN(t *testing.T) {
	for _, body := range []string{
		`{}`,
		`{"vin": ""}`,
		`{"vin": "   "}`,
		`{"vin": 12345}`,
		`{"vin": null, "make": "Honda"}`,
	} {
		if _, err := ParseVehicle(decode(t, body)); !errors.Is(err, ErrVINRequired) {
			t.Errorf("%s: expected ErrVINRequired, got %v", body, err)
		}
	}
}

func TestParseVehicleYear(t *testing.T) {
	tests := []struct {
		body string
		want int
	}{
		{`{"vin":"X","year":2015}`, 2015},
		{`{"vin":"X","year":"2015"}`, 2015},
		{`{"vin":"X","year":" 2012 "}`, 2012},
		{`{"vin":"X","year":"twenty"}`, 0},
		{`{"vin":"X","year":true}`, 0},
		{`{"vin":"X"}`, 0},
		{`{"vin":"X","year":1e30}`, 0},
		{`{"vin":"X","year":-1e30}`, 0},
		{`{"vin":"X","year":"9223372036854775807"}`, 0},
		{`{"vin":"X","year":2015.9}`, 2015},
	}
	for _, tt := range tests {
		v, err := ParseVehicle(decode(t, tt.body))
		if err != nil {
			t.Fatalf("%s: %v", tt.body, err)
		}
		if v.Year != tt.want {
			t.Errorf("%s: year = %d, want %d", tt.body, v.Year, tt.want)
		}
	}
}

func TestParseVehicleIgnoresUnknownFields(t *testing.T) {
	v, err := ParseVehicle(decode(t, `{"vin":"1HGCM82633A004352","make":"Honda","model":"Accord",
		"bodyClass":"4dr Sedan","driveType":"FWD","trim":"EX","engine":{"cyl":4}}`))
	if err != nil {
		t.Fatal(err)
	}
	want := Vehicle{VIN: "1HGCM82633A004352", Make: "Honda", Model: "Accord", BodyClass: "4dr Sedan", DriveType: "FWD"}
	if v != want {
		t.Fatalf("got %+v, want %+v", v, want)
	}
}
