// Package profile defines the bookkeeping profiles a user switches between.
package profile

import (
	"fmt"
	"strings"
)

// Profile separates private from business bookkeeping.
type Profile string

const (
	Private  Profile = "Privat"
	Business Profile = "Geschäftlich"
)

// Default is the profile used when a request does not name one.
const Default = Private

// All lists the known profiles.
func All() []Profile {
	return []Profile{Private, Business}
}

// Parse accepts the canonical German names as well as the lowercase
// English aliases used by API clients.
func Parse(s string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return Default, nil
	case "privat", "private", "personal":
		return Private, nil
	case "geschäftlich", "geschaeftlich", "business":
		return Business, nil
	}
	return "", fmt.Errorf("unknown profile %q", s)
}

func (p Profile) String() string {
	return string(p)
}
