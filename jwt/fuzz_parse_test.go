package jwt

import (
	"strings"
	"testing"
	"time"
)

func FuzzParseAccess(f *testing.F) {
	mgr, err := NewManager(Config{
		AccessTTL:     time.Minute,
		SigningMethod: MethodHS256,
		PrivateKey:    []byte("fuzz-signing-key-0123456789abcdef"),
		Issuer:        "gocred-fuzz",
	})
	if err != nil {
		f.Fatal(err)
	}

	token, err := mgr.CreateAccess("alice", "keyed-transposition")
	if err != nil {
		f.Fatal(err)
	}
	header, rest, _ := strings.Cut(token, ".")

	f.Add(token)
	f.Add(header + ".")
	f.Add(header + "." + rest + "x")
	f.Add("")
	f.Add("..")
	f.Add("eyJhbGciOiJub25lIn0.eyJzdWIiOiJhbGljZSJ9.")

	f.Fuzz(func(t *testing.T, input string) {
		claims, err := mgr.ParseAccess(input)
		if err != nil {
			if claims != nil {
				t.Fatalf("claims returned alongside error %v", err)
			}
			return
		}
		if claims.Subject == "" {
			t.Fatalf("accepted token %q without a subject", input)
		}
	})
}
