// Package handle derives unique user handles from display names.
package handle

import (
	"context"
	"strconv"
	"strings"

	"github.com/gosimple/slug"
)

// Fallback is used when a name yields no usable characters.
const Fallback = "reader"

// maxAttempts bounds the suffix search so a broken lookup cannot spin forever.
const maxAttempts = 10000

// Base builds the handle stem from a given and family name: transliterated to
// ASCII, lowercased, with every separator removed.
//
//	"Jane", "Doe"       -> "janedoe"
//	"Zoë", "Ødegård"    -> "zoeodegard"
//	"", ""              -> "reader"
func Base(givenName, familyName string) string {
	s := slug.Make(strings.TrimSpace(givenName + " " + familyName))
	s = strings.NewReplacer("-", "", "_", "").Replace(s)
	if s == "" {
		return Fallback
	}
	return s
}

// TakenFunc reports whether a handle is already registered.
type TakenFunc func(ctx context.Context, handle string) (bool, error)

// Unique returns base if it is free, otherwise base with the smallest numeric
// suffix >= 2 that is free.
func Unique(ctx context.Context, base string, taken TakenFunc) (string, error) {
	candidate := base
	for n := 2; n < maxAttempts; n++ {
		used, err := taken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !used {
			return candidate, nil
		}
		candidate = base + strconv.Itoa(n)
	}
	return "", ErrExhausted
}
