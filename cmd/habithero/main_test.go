package main

import "testing"

func TestNeedsStore(t *testing.T) {
	tests := map[string]bool{
		"":                   true,
		"tui":                true,
		"habit add <title>":  true,
		"backup create":      true,
		"init":               false,
		"keyring set <conn>": false,
		"login <user-id>":    false,
		"whoami":             false,
	}
	for command, want := range tests {
		if got := needsStore(command); got != want {
			t.Errorf("needsStore(%q) = %v, want %v", command, got, want)
		}
	}
}
