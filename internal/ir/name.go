package ir

import "golang.org/x/text/unicode/norm"

// canonicalName NFC-normalises a value name so that printed forms are
// byte-stable no matter how the source spelled combining characters.
func canonicalName(name string) string {
	if name == "" || norm.NFC.IsNormalString(name) {
		return name
	}
	return norm.NFC.String(name)
}
