package crack

import (
	"errors"
	"strings"
	"testing"
)

func TestHash_KnownVectors(t *testing.T) {
	cases := []struct {
		alg, plaintext, want string
	}{
		{MD5, "password", "5f4dcc3b5aa765d61d8327deb882cf99"},
		{SHA1, "password", "5baa61e4c9b93f3f0682250b6cf8331b7ee68fd8"},
		{SHA256, "password", "5e884898da28047151d0e56f8dc6292773603d0d6aabbdd62a11ef721d1542d8"},
		{SHA512, "", "cf83e1357eefb8bdf1542850d66d8007d620e4050b5715dc83f4a921d36ce9ce47d0d13c5d85f2b0ff8318d2877eec2f63b931bd47417a81a538327af927da3e"},
		{NTLM, "password", "8846f7eaee8fb117ad06bdd830b7586c"},
		{Keccak256, "", "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"},
	}

	for _, tc := range cases {
		t.Run(tc.alg, func(t *testing.T) {
			got, err := Hash(tc.alg, tc.plaintext)
			if err != nil {
				t.Fatalf("Hash(%s) error: %v", tc.alg, err)
			}
			if got != tc.want {
				t.Errorf("Hash(%s) = %q, want %q", tc.alg, got, tc.want)
			}
		})
	}
}

func TestHash_UnknownAlgorithm(t *testing.T) {
	if _, err := Hash("crc32", "x"); !errors.Is(err, ErrUnknownAlgorithm) {
		t.Errorf("expected ErrUnknownAlgorithm, got %v", err)
	}
	if Supports("crc32") {
		t.Error("crc32 should not be supported")
	}
	if !Supports(Bcrypt) || !Supports(NTLM) {
		t.Error("bcrypt and ntlm should be supported")
	}
}

func TestVerify(t *testing.T) {
	t.Run("hex digest ignores case", func(t *testing.T) {
		ok, err := Verify(MD5, "5F4DCC3B5AA765D61D8327DEB882CF99", "password")
		if err != nil || !ok {
			t.Errorf("Verify = %v, %v; want true, nil", ok, err)
		}
	})

	t.Run("wrong plaintext", func(t *testing.T) {
		ok, err := Verify(SHA1, "5baa61e4c9b93f3f0682250b6cf8331b7ee68fd8", "hunter2")
		if err != nil || ok {
			t.Errorf("Verify = %v, %v; want false, nil", ok, err)
		}
	})

	t.Run("bcrypt", func(t *testing.T) {
		h, err := Hash(Bcrypt, "letmein")
		if err != nil {
			t.Fatalf("Hash error: %v", err)
		}
		if !strings.HasPrefix(h, "$2a$") {
			t.Errorf("unexpected bcrypt prefix: %q", h)
		}

		if ok, err := Verify(Bcrypt, h, "letmein"); err != nil || !ok {
			t.Errorf("Verify(letmein) = %v, %v; want true, nil", ok, err)
		}
		if ok, err := Verify(Bcrypt, h, "letmeout"); err != nil || ok {
			t.Errorf("Verify(letmeout) = %v, %v; want false, nil", ok, err)
		}
		if ok, err := Verify(Bcrypt, "not-a-bcrypt-hash", "letmein"); err != nil || ok {
			t.Errorf("Verify(malformed) = %v, %v; want false, nil", ok, err)
		}
	})

	t.Run("unknown algorithm", func(t *testing.T) {
		if _, err := Verify("rot13", "x", "y"); !errors.Is(err, ErrUnknownAlgorithm) {
			t.Errorf("expected ErrUnknownAlgorithm, got %v", err)
		}
	})
}

func TestParseLine(t *testing.T) {
	cases := []struct {
		line, hash, plaintext string
		ok                    bool
	}{
		{"abc:pass", "abc", "pass", true},
		{"abc:pa:ss", "abc", "pa:ss", true},
		{"abc::", "abc", ":", true},
		{"abc:", "abc", "", true},
		{"nocolon", "nocolon", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.line, func(t *testing.T) {
			h, p, ok := ParseLine(tc.line)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if ok && (h != tc.hash || p != tc.plaintext) {
				t.Errorf("ParseLine(%q) = %q, %q; want %q, %q", tc.line, h, p, tc.hash, tc.plaintext)
			}
		})
	}
}

func TestParseLine_PlaintextWithColon(t *testing.T) {
	digest, err := Hash(MD5, "pa:ss")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	h, p, ok := ParseLine(digest + ":pa:ss")
	if !ok {
		t.Fatal("expected line to parse")
	}
	if h != digest || p != "pa:ss" {
		t.Fatalf("ParseLine = %q, %q; want %q, %q", h, p, digest, "pa:ss")
	}

	match, err := Verify(MD5, h, p)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if !match {
		t.Error("expected plaintext with colon to verify")
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize(MD5, " ABCD "); got != "abcd" {
		t.Errorf("Normalize(md5) = %q", got)
	}
	if got := Normalize(Bcrypt, "$2a$04$AbC"); got != "$2a$04$AbC" {
		t.Errorf("Normalize(bcrypt) = %q", got)
	}
}
