package profile

import "testing"

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want Profile
	}{
		{"", Private},
		{"Privat", Private},
		{"private", Private},
		{"Geschäftlich", Business},
		{"geschaeftlich", Business},
		{" business ", Business},
	}
	for _, c := range cases {
		got, err := Parse(c.in)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("Parse(%q) = %q, want %q", c.in, got, c.want)
		}
	}

	if _, err := Parse("family"); err == nil {
		t.Fatal("expected error for unknown profile")
	}
}
