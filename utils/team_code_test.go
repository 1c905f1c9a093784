package utils

import (
	"strings"
	"testing"
)

func TestGenerateTeamCodePhoneticFirst(t *testing.T) {
	taken := map[string]bool{}
	got := GenerateTeamCode(func(code string) bool { return taken[code] })
	if got != "ALPHA" {
		t.Fatalf("first code = %q, want ALPHA", got)
	}

	taken["ALPHA"] = true
	taken["BRAVO"] = true
	if got := GenerateTeamCode(func(code string) bool { return taken[code] }); got != "CHARLIE" {
		t.Fatalf("third code = %q, want CHARLIE", got)
	}
}

func TestGenerateTeamCodeFallsBackWhenExhausted(t *testing.T) {
	got := GenerateTeamCode(func(string) bool { return true })
	if !strings.HasPrefix(got, "TEAM-") {
		t.Fatalf("exhausted fallback = %q, want TEAM- prefix", got)
	}
	if len(got) != len("TEAM-")+8 {
		t.Fatalf("fallback code length = %d, want %d", len(got), len("TEAM-")+8)
	}
}

func TestNormalizeTeamID(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Red Team!", "RED-TEAM"},
		{"alpha", "ALPHA"},
		{"  The  Defenders  ", "THE-DEFENDERS"},
	}
	for _, tt := range tests {
		if got := NormalizeTeamID(tt.in); got != tt.want {
			t.Errorf("NormalizeTeamID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
