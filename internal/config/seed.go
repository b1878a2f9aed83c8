package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jabbercracky/jabbercracky-client/internal/models"
)

// Seed is the initial emulator state: who may play and what can be cracked.
type Seed struct {
	Users     []SeedUser     `yaml:"users"`
	HashLists []SeedHashList `yaml:"hash_lists"`
}

// SeedUser maps a bearer token to a username.
type SeedUser struct {
	Token    string `yaml:"token"`
	Username string `yaml:"username"`
}

// SeedHashList describes one hash list. Hashes are taken verbatim;
// Plaintexts are hashed with Algorithm when the emulator starts.
type SeedHashList struct {
	ID         models.ListID `yaml:"id"`
	Name       string        `yaml:"name"`
	Algorithm  string        `yaml:"algorithm"`
	Open       *bool         `yaml:"open"`
	ClosesAt   *time.Time    `yaml:"closes_at"`
	Hashes     []string      `yaml:"hashes"`
	Plaintexts []string      `yaml:"plaintexts"`
}

// IsOpen defaults to true when the seed does not say otherwise.
func (l SeedHashList) IsOpen() bool {
	return l.Open == nil || *l.Open
}

// LoadSeed reads and validates a YAML seed file.
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}

	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}

	seen := make(map[models.ListID]bool, len(seed.HashLists))
	for i, l := range seed.HashLists {
		if l.ID == "" {
			return nil, fmt.Errorf("seed hash list #%d: missing id", i)
		}
		if seen[l.ID] {
			return nil, fmt.Errorf("seed hash list %s: duplicate id", l.ID)
		}
		seen[l.ID] = true
		if l.Algorithm == "" {
			seed.HashLists[i].Algorithm = "md5"
		}
	}
	for i, u := range seed.Users {
		if u.Token == "" || u.Username == "" {
			return nil, fmt.Errorf("seed user #%d: token and username are required", i)
		}
	}

	return &seed, nil
}
