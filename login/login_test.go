package login

import (
	"strings"
	"testing"
)

func TestIssueAndParseToken(t *testing.T) {
	token, exp, err := IssueToken("member@inrooms.test", false)
	if err != nil {
		t.Fatal(err)
	}
	if exp == 0 {
		t.Fatal("expiry not set")
	}
	mail, ok := GetEmailFromToken(token)
	if !ok || mail != "member@inrooms.test" {
		t.Fatalf("round trip failed: %q ok=%t", mail, ok)
	}
}

func TestTamperedTokenRejected(t *testing.T) {
	token, _, err := IssueToken("member@inrooms.test", false)
	if err != nil {
		t.Fatal(err)
	}
	parts := strings.Split(token, ".")
	forged := parts[0] + "." + parts[1] + "." + "forgedsignature"
	if _, ok := GetEmailFromToken(forged); ok {
		t.Fatal("forged signature must be rejected")
	}
	if _, ok := GetEmailFromToken("not-a-token"); ok {
		t.Fatal("malformed token must be rejected")
	}
}

func TestRememberTokenHasLongerExpiry(t *testing.T) {
	_, short, err := IssueToken("a@b.c", false)
	if err != nil {
		t.Fatal(err)
	}
	_, long, err := IssueToken("a@b.c", true)
	if err != nil {
		t.Fatal(err)
	}
	if long <= short {
		t.Fatalf("remember sessions must outlast default ones: %d <= %d", long, short)
	}
}
