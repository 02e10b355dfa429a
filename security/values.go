/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package security

import "sort"

// Password is a secret held as runes so it can be cleared after use.
type Password []rune

// NewPassword copies s into a Password.
func NewPassword(s string) Password {
	return Password([]rune(s))
}

// Reveal returns the secret as a string.
func (p Password) Reveal() string {
	return string(p)
}

// String masks the secret.
func (p Password) String() string {
	return "****"
}

// Clear overwrites the secret in place.
func (p Password) Clear() {
	for i := range p {
		p[i] = 0
	}
}

// Principal is one identity a subject is known by within a realm.
type Principal struct {
	Realm string `json:"realm"`
	Name  string `json:"name"`
}

// PrincipalCollection is the ordered set of principals of an authenticated subject.
// The first principal is the primary one.
type PrincipalCollection []Principal

// Add appends a principal unless it is already present.
func (pc PrincipalCollection) Add(realm, name string) PrincipalCollection {
	for _, p := range pc {
		if p.Realm == realm && p.Name == name {
			return pc
		}
	}
	return append(pc, Principal{Realm: realm, Name: name})
}

// Primary returns the first principal.
func (pc PrincipalCollection) Primary() (Principal, bool) {
	if len(pc) == 0 {
		return Principal{}, false
	}
	return pc[0], true
}

// FromRealm returns the principal names known to realm.
func (pc PrincipalCollection) FromRealm(realm string) []string {
	var names []string
	for _, p := range pc {
		if p.Realm == realm {
			names = append(names, p.Name)
		}
	}
	return names
}

// Realms returns the distinct realm names in sorted order.
func (pc PrincipalCollection) Realms() []string {
	seen := make(map[string]bool)
	var realms []string
	for _, p := range pc {
		if !seen[p.Realm] {
			seen[p.Realm] = true
			realms = append(realms, p.Realm)
		}
	}
	sort.Strings(realms)
	return realms
}
