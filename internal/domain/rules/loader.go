package rules

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Decode reads a YAML rule document from r. The document starts from the
// version it names (or DefaultVersion) and overrides only the keys it sets.
func Decode(r io.Reader) (RuleSet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return RuleSet{}, fmt.Errorf("reading rules: %w", err)
	}

	var head struct {
		Version string `yaml:"version"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return RuleSet{}, fmt.Errorf("parsing rules: %w", err)
	}

	rs, err := ForVersion(head.Version)
	if err != nil {
		return RuleSet{}, fmt.Errorf("%w: %q", err, head.Version)
	}
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return RuleSet{}, fmt.Errorf("parsing rules: %w", err)
	}
	if err := rs.Validate(); err != nil {
		return RuleSet{}, err
	}
	return rs, nil
}

// LoadFile reads a rule document from path.
func LoadFile(path string) (RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, fmt.Errorf("reading rules: %w", err)
	}
	return Decode(bytes.NewReader(data))
}

// Resolve returns the rule set for version, overridden by the document at path
// when path is non-empty.
func Resolve(version, path string) (RuleSet, error) {
	if path != "" {
		return LoadFile(path)
	}
	rs, err := ForVersion(version)
	if err != nil {
		return RuleSet{}, fmt.Errorf("%w: %q", err, version)
	}
	return rs, nil
}

// Encode writes rs as a YAML document.
func Encode(w io.Writer, rs RuleSet) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rs); err != nil {
		return fmt.Errorf("encoding rules: %w", err)
	}
	return enc.Close()
}
