package effects

import (
	"fmt"
	"math/rand"
	"strings"
)

// Name identifies one of the canned filters
type Name string

const (
	Grayscale Name = "Grayscale"
	Sepia     Name = "Sepia"
	Invert    Name = "Invert"
	OilPaint  Name = "OilPaint"
	Pixelate  Name = "Pixelate"
	Vignette  Name = "Vignette"
	Glow      Name = "Glow"
	Polaroid  Name = "Polaroid"
)

// catalog order is the manual cycling order
var catalog = [...]Name{
	Grayscale,
	Sepia,
	Invert,
	OilPaint,
	Pixelate,
	Vignette,
	Glow,
	Polaroid,
}

// Len returns the number of effects in the catalog
func Len() int {
	return len(catalog)
}

// At returns the effect at index i. The index wraps, so any int is valid.
func At(i int) Name {
	n := len(catalog)
	return catalog[((i%n)+n)%n]
}

// Names returns a copy of the catalog in order
func Names() []Name {
	names := make([]Name, len(catalog))
	copy(names, catalog[:])
	return names
}

// Random draws a uniformly distributed effect. Draws are independent, so
// consecutive calls may return the same name.
func Random(r *rand.Rand) Name {
	if r == nil {
		return catalog[rand.Intn(len(catalog))]
	}
	return catalog[r.Intn(len(catalog))]
}

// Parse resolves a case-insensitive effect name. Hyphens, underscores and
// spaces are ignored so "oil-paint" resolves to OilPaint.
func Parse(s string) (Name, error) {
	key := normalize(s)
	for _, name := range catalog {
		if normalize(string(name)) == key {
			return name, nil
		}
	}
	return "", fmt.Errorf("unknown effect %q", s)
}

// Valid reports whether the name is part of the catalog
func (n Name) Valid() bool {
	for _, name := range catalog {
		if name == n {
			return true
		}
	}
	return false
}

func (n Name) String() string {
	return string(n)
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)
}
