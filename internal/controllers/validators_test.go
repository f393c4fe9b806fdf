package controllers

import "testing"

func TestValidateUsername(t *testing.T) {
	cases := []struct {
		username string
		ok       bool
	}{
		{"alice1234", true},
		{"bob_2", true},
		{"abcd", false},
		{"alice!", false},
		{"has space9", false},
	}
	for _, tc := range cases {
		fields := validateUsername(tc.username)
		if tc.ok && len(fields) != 0 {
			t.Fatalf("%q: expected valid, got %v", tc.username, fields)
		}
		if !tc.ok && len(fields) == 0 {
			t.Fatalf("%q: expected rejection", tc.username)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		password string
		ok       bool
	}{
		{"Pass1234", true},
		{"Pa1", false},         // too short
		{"password1", false},   // no uppercase
		{"PASSWORD1", false},   // no lowercase
		{"Passwords", false},   // no digit
	}
	for _, tc := range cases {
		fields := validatePassword("password", tc.password)
		if tc.ok && len(fields) != 0 {
			t.Fatalf("%q: expected valid, got %v", tc.password, fields)
		}
		if !tc.ok && len(fields) == 0 {
			t.Fatalf("%q: expected rejection", tc.password)
		}
	}
}

func TestValidateAdminPassword(t *testing.T) {
	if fields := validateAdminPassword("password", "Pass1234"); len(fields) == 0 {
		t.Fatalf("8-char password without special char should fail the admin policy")
	}
	if fields := validateAdminPassword("password", "LongPass1234!"); len(fields) != 0 {
		t.Fatalf("expected valid admin password, got %v", fields)
	}
}

func TestValidatePhoneNumber(t *testing.T) {
	if fields := validatePhoneNumber("+254 (700) 123-456"); len(fields) != 0 {
		t.Fatalf("expected valid phone number, got %v", fields)
	}
	if fields := validatePhoneNumber("call-me"); len(fields) == 0 {
		t.Fatalf("letters should be rejected")
	}
	if fields := validatePhoneNumber(""); len(fields) != 0 {
		t.Fatalf("empty phone is allowed (clears the field), got %v", fields)
	}
}

func TestNormalizeCity(t *testing.T) {
	cases := map[string]string{
		"  nairobi ": "Nairobi",
		"NEW YORK":   "New York",
		"mombasa":    "Mombasa",
	}
	for in, want := range cases {
		if got := normalizeCity(in); got != want {
			t.Fatalf("normalizeCity(%q): got %q want %q", in, got, want)
		}
	}
}

func TestNormalizeNumber(t *testing.T) {
	if got := normalizeNumber("  nbo-101 "); got != "NBO-101" {
		t.Fatalf("normalizeNumber: got %q", got)
	}
}
