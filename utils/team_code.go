package utils

import (
	"crypto/rand"
	"encoding/hex"
	"strings"

	"github.com/gosimple/slug"
)

// Phonetic alphabet codes handed out first so facilitators get memorable team
// ids on the projector.
var phoneticCodes = []string{
	"ALPHA", "BRAVO", "CHARLIE", "DELTA", "ECHO", "FOXTROT",
	"GOLF", "HOTEL", "INDIA", "JULIET", "KILO", "LIMA",
	"MIKE", "NOVEMBER", "OSCAR", "PAPA", "QUEBEC", "ROMEO",
	"SIERRA", "TANGO", "UNIFORM", "VICTOR", "WHISKEY", "XRAY",
	"YANKEE", "ZULU",
}

// GenerateTeamCode returns the first unused phonetic code, then falls back to
// random TEAM-XXXXXXXX codes once all twenty-six are taken.
func GenerateTeamCode(exists func(string) bool) string {
	for _, code := range phoneticCodes {
		if !exists(code) {
			return code
		}
	}
	buf := make([]byte, 4)
	_, _ = rand.Read(buf)
	return "TEAM-" + strings.ToUpper(hex.EncodeToString(buf))
}

// NormalizeTeamID turns a facilitator-chosen display name into a stable
// uppercase team code ("Red Team!" -> "RED-TEAM").
func NormalizeTeamID(name string) string {
	return strings.ToUpper(slug.Make(name))
}
