package fitment

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		vocab Vocabulary
		want  string
		ok    bool
	}{
		{"empty", "", BodyClasses, "", false},
		{"blank", "   ", DriveTypes, "", false},
		{"sedan synonym", "4dr Sedan", BodyClasses, "sedan", true},
		{"saloon", "Saloon", BodyClasses, "sedan", true},
		{"crossover", "Compact Crossover", BodyClasses, "suv", true},
		{"five door", "5-dr wagon", BodyClasses, "hatchback", true},
		{"pickup", "Pickup", BodyClasses, "truck", true},
		{"fwd upper", "FWD", DriveTypes, "fwd", true},
		{"4x2 is fwd", "4x2", DriveTypes, "fwd", true},
		{"4x4 is awd", "4X4", DriveTypes, "awd", true},
		{"rear", "Rear Wheel Drive", DriveTypes, "rwd", true},
		{"fallback lower-cases", "Convertible", BodyClasses, "convertible", true},
		{"declaration order wins", "SUV Truck", BodyClasses, "suv", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Normalize(tt.in, tt.vocab)
			if got != tt.want || ok != tt.ok {
				t.Fatalf("Normalize(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestNormalizeMixedCaseSynonymNeverMatches(t *testing.T) {
	// The mixed-case synonym is never hit; the lower-case "suv" entry is.
	got, _ := Normalize("Sport Utility Vehicle (SUV)/Multi-Purpose Vehicle (MPV)", BodyClasses)
	if got != "suv" {
		t.Fatalf("got %q, want suv", got)
	}
	got, _ = Normalize("Multi-Purpose Vehicle (MPV)", BodyClasses)
	if got != "multi-purpose vehicle (mpv)" {
		t.Fatalf("got %q", got)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, vocab := range []Vocabulary{DriveTypes, BodyClasses} {
		for _, e := range vocab {
			got, ok := Normalize(e.Token, vocab)
			if !ok || got != e.Token {
				t.Errorf("Normalize(%q) = %q, want itself", e.Token, got)
			}
			again, _ := Normalize(got, vocab)
			if again != got {
				t.Errorf("second pass changed %q to %q", got, again)
			}
		}
	}
}
