// Package crack hashes and verifies candidate plaintexts for the algorithms the
// game server hands out.
package crack

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/md4"
)

// Supported algorithm names.
const (
	MD5       = "md5"
	SHA1      = "sha1"
	SHA256    = "sha256"
	SHA512    = "sha512"
	NTLM      = "ntlm"
	Bcrypt    = "bcrypt"
	Keccak256 = "keccak256"
)

// ErrUnknownAlgorithm is returned for algorithm names outside the supported set.
var ErrUnknownAlgorithm = errors.New("unknown hash algorithm")

// digests maps every hex-digest algorithm to its hash function.
var digests = map[string]func([]byte) []byte{
	MD5:       func(b []byte) []byte { s := md5.Sum(b); return s[:] },
	SHA1:      func(b []byte) []byte { s := sha1.Sum(b); return s[:] },
	SHA256:    func(b []byte) []byte { s := sha256.Sum256(b); return s[:] },
	SHA512:    func(b []byte) []byte { s := sha512.Sum512(b); return s[:] },
	NTLM:      ntlm,
	Keccak256: func(b []byte) []byte { return crypto.Keccak256(b) },
}

// Supports reports whether alg is a known algorithm name.
func Supports(alg string) bool {
	_, ok := digests[alg]
	return ok || alg == Bcrypt
}

// Hash returns the canonical hash of plaintext. Hex digests are lowercase;
// bcrypt uses the minimum cost and a random salt.
func Hash(alg, plaintext string) (string, error) {
	if alg == Bcrypt {
		h, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.MinCost)
		if err != nil {
			return "", fmt.Errorf("bcrypt: %w", err)
		}
		return string(h), nil
	}

	digest, ok := digests[alg]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, alg)
	}
	return hex.EncodeToString(digest([]byte(plaintext))), nil
}

// Verify reports whether plaintext hashes to hash under alg.
func Verify(alg, hash, plaintext string) (bool, error) {
	if alg == Bcrypt {
		// a malformed hash is not a match
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil, nil
	}

	want, err := Hash(alg, plaintext)
	if err != nil {
		return false, err
	}
	return want == Normalize(alg, hash), nil
}

// Normalize returns the form hashes of alg are compared in.
func Normalize(alg, hash string) string {
	hash = strings.TrimSpace(hash)
	if alg == Bcrypt {
		return hash
	}
	return strings.ToLower(hash)
}

// ParseLine splits a "hash:plaintext" result line at its first colon.
// No supported digest contains a colon, so the plaintext may. ok is false
// without a colon.
func ParseLine(line string) (hash, plaintext string, ok bool) {
	return strings.Cut(line, ":")
}

// ntlm is MD4 over the UTF-16LE encoding of the password.
func ntlm(b []byte) []byte {
	units := utf16.Encode([]rune(string(b)))
	buf := make([]byte, 2*len(units))
	for i, u := range units {
		binary.LittleEndian.PutUint16(buf[2*i:], u)
	}
	h := md4.New()
	h.Write(buf)
	return h.Sum(nil)
}
