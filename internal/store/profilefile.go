package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/sheetguard/internal/validation"
)

// ErrInvalidProfileFile is returned when a profile file cannot be used.
var ErrInvalidProfileFile = errors.New("invalid profile file")

// LoadProfileFile reads a profile from a YAML or JSON file.
func LoadProfileFile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read profile file: %w", err)
	}

	p, err := ParseProfile(data)
	if err != nil {
		return Profile{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return p, nil
}

// ParseProfile decodes a YAML or JSON profile document. Rules are checked
// as the service checks them before saving, except that unknown kinds are
// kept so newer profile files still load.
func ParseProfile(data []byte) (Profile, error) {
	var p Profile
	var err error
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		err = json.Unmarshal(trimmed, &p)
	} else {
		err = yaml.Unmarshal(data, &p)
	}
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %v", ErrInvalidProfileFile, err)
	}

	for i, r := range p.Rules {
		if r.ID == "" {
			p.Rules[i].ID = fmt.Sprintf("rule-%d", i+1)
		}
		err := validation.ValidateDefinition(r)
		if err != nil && !errors.Is(err, validation.ErrUnknownKind) {
			return Profile{}, fmt.Errorf("%w: rule %d: %v", ErrInvalidProfileFile, i+1, err)
		}
	}
	return p, nil
}

// MarshalProfile encodes p as YAML.
func MarshalProfile(p Profile) ([]byte, error) {
	return yaml.Marshal(p)
}
