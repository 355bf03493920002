package task

import "testing"

func TestParseEndpoint(t *testing.T) {
	cases := []struct {
		in      string
		wantErr bool
		host    string
		port    int
	}{
		{"1.2.3.4:8080", false, "1.2.3.4", 8080},
		{"proxy.example.com:1080", false, "proxy.example.com", 1080},
		{"1.2.3.4", true, "", 0},
		{"1.2.3.4:0", true, "", 0},
		{"1.2.3.4:70000", true, "", 0},
		{":8080", true, "", 0},
	}
	for _, c := range cases {
		got, err := ParseEndpoint(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseEndpoint(%q): expected error, got %+v", c.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseEndpoint(%q): unexpected error: %v", c.in, err)
			continue
		}
		if got.Host != c.host || got.Port != c.port {
			t.Errorf("ParseEndpoint(%q) = %+v, want host=%s port=%d", c.in, got, c.host, c.port)
		}
	}
}

func TestParseCredentialDropsLinesWithoutColon(t *testing.T) {
	if _, err := ParseCredential("nocolonhere"); err == nil {
		t.Fatal("expected error for credential line with no ':'")
	}
}

func TestParseCredentialSplitsOnFirstColon(t *testing.T) {
	c, err := ParseCredential("user:pass:word")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Username != "user" || c.Password != "pass:word" {
		t.Fatalf("got %+v, want username=user password=pass:word", c)
	}
	if !c.HasValue() {
		t.Fatal("expected HasValue() true for a parsed credential")
	}
}

func TestZeroValueCredentialHasNoValue(t *testing.T) {
	var c Credential
	if c.HasValue() {
		t.Fatal("zero-value Credential must report HasValue() false")
	}
}

func TestCredentialLess(t *testing.T) {
	a := Credential{Username: "alice", Password: "z"}
	b := Credential{Username: "bob", Password: "a"}
	if !a.Less(b) {
		t.Fatal("expected alice < bob by username")
	}
	c := Credential{Username: "alice", Password: "a"}
	d := Credential{Username: "alice", Password: "z"}
	if !c.Less(d) {
		t.Fatal("expected equal-username credentials to order by password")
	}
}
