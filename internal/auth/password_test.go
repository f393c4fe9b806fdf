package auth

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("Sup3rSecret")
	if err != nil {
		t.Fatalf("hashing failed: %v", err)
	}
	if hash == "Sup3rSecret" {
		t.Fatalf("hash must not equal the plaintext")
	}
	if !VerifyPassword("Sup3rSecret", hash) {
		t.Fatalf("correct password should verify")
	}
	if VerifyPassword("WrongPass1", hash) {
		t.Fatalf("wrong password should not verify")
	}
}

func TestHashPassword_Salted(t *testing.T) {
	first, err := HashPassword("Sup3rSecret")
	if err != nil {
		t.Fatalf("hashing failed: %v", err)
	}
	second, err := HashPassword("Sup3rSecret")
	if err != nil {
		t.Fatalf("hashing failed: %v", err)
	}
	if first == second {
		t.Fatalf("two hashes of the same password should differ")
	}
	if !VerifyPassword("Sup3rSecret", first) || !VerifyPassword("Sup3rSecret", second) {
		t.Fatalf("both salted hashes should verify")
	}
}
