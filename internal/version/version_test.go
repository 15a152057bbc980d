package version

import "testing"

func TestColoredPlain(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	tests := []struct{ in, want string }{
		{"1.2.3", "1.2.3"},
		{"0.1.0-dev", "0.1.0-dev"},
		{"1.0.0-rc.1+build.7", "1.0.0-rc.1+build.7"},
		{"  ", "dev"},
	}
	for _, tt := range tests {
		Version = tt.in
		if got := Colored(false); got != tt.want {
			t.Errorf("Colored(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestColoredAddsEscapes(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	Version = "1.2.3"
	if got := Colored(true); got == "1.2.3" {
		t.Fatalf("Colored(true) returned the plain version")
	}
}
