package entity

import "testing"

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Crème Brûlée":  "creme-brulee",
		"  Tomato Sauce ": "tomato-sauce",
		"Oil & Vinegar":  "oil-vinegar",
		"bread_loaf":     "bread-loaf",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}
