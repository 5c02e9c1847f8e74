package models

import "testing"

func TestUserPasswordRoundTrip(t *testing.T) {
	u := User{Email: "amel@example.com", Name: "Amel"}
	if err := u.SetPassword("correct horse"); err != nil {
		t.Fatalf("SetPassword failed: %v", err)
	}
	if u.PasswordHash == "correct horse" {
		t.Fatal("password stored in plain text")
	}
	if !u.CheckPassword("correct horse") {
		t.Error("CheckPassword rejected the right password")
	}
	if u.CheckPassword("wrong") {
		t.Error("CheckPassword accepted a wrong password")
	}
}
