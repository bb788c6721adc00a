package library

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/scalesmith/internal/scale"
)

// ErrFormat is returned for a library file that cannot be decoded.
var ErrFormat = errors.New("library: bad file format")

type document struct {
	Families []scale.Family `yaml:"families"`
}

// Decode reads the families held in a library file. Two layouts are
// accepted, in YAML or JSON syntax:
//
//	families:
//	  - name: Pentatonic
//	    intervals: [2, 2, 3, 2, 3]
//	    modes: [Major Pentatonic, ...]
//
// and the saved-scales map {"Pentatonic": [[2, 2, 3, 2, 3], ["Major Pentatonic", ...]]}.
// Every family is validated; an empty file holds no families.
func Decode(path string, data []byte) ([]scale.Family, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFormat, path, err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: %s: top level must be a mapping", ErrFormat, path)
	}
	top := root.Content[0]

	var families []scale.Family
	if hasKey(top, "families") {
		var doc document
		if err := top.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrFormat, path, err)
		}
		families = doc.Families
	} else {
		fams, err := decodeSaved(top)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrFormat, path, err)
		}
		families = fams
	}

	seen := make(map[string]struct{}, len(families))
	for i := range families {
		if err := families[i].Validate(); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrFormat, path, err)
		}
		if _, dup := seen[families[i].Name]; dup {
			return nil, fmt.Errorf("%w: %s: duplicate family %q", ErrFormat, path, families[i].Name)
		}
		seen[families[i].Name] = struct{}{}
	}
	return families, nil
}

func hasKey(m *yaml.Node, key string) bool {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return true
		}
	}
	return false
}

// decodeSaved reads the name → [intervals, modes] map in file order.
func decodeSaved(m *yaml.Node) ([]scale.Family, error) {
	out := make([]scale.Family, 0, len(m.Content)/2)
	for i := 0; i+1 < len(m.Content); i += 2 {
		name := m.Content[i].Value
		var pair []yaml.Node
		if err := m.Content[i+1].Decode(&pair); err != nil {
			return nil, fmt.Errorf("family %q: %w", name, err)
		}
		if len(pair) != 2 {
			return nil, fmt.Errorf("family %q: want [intervals, modes]", name)
		}
		f := scale.Family{Name: name}
		if err := pair[0].Decode(&f.Intervals); err != nil {
			return nil, fmt.Errorf("family %q intervals: %w", name, err)
		}
		if err := pair[1].Decode(&f.Modes); err != nil {
			return nil, fmt.Errorf("family %q modes: %w", name, err)
		}
		out = append(out, f)
	}
	return out, nil
}

// EncodeYAML renders families in the families: layout.
func EncodeYAML(families []scale.Family) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(document{Families: families}); err != nil {
		return nil, fmt.Errorf("library: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("library: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeJSON renders families as the saved-scales map, one family per line
// in the given order.
func EncodeJSON(families []scale.Family) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("{")
	for i, f := range families {
		name, err := json.Marshal(f.Name)
		if err != nil {
			return nil, fmt.Errorf("library: encode: %w", err)
		}
		pair, err := json.Marshal([]interface{}{f.Intervals, f.Modes})
		if err != nil {
			return nil, fmt.Errorf("library: encode: %w", err)
		}
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n  ")
		buf.Write(name)
		buf.WriteString(": ")
		buf.Write(pair)
	}
	buf.WriteString("\n}\n")
	return buf.Bytes(), nil
}

// Encode renders families in the format the file extension of path calls
// for: the saved-scales map for .json, the families: layout otherwise.
func Encode(path string, families []scale.Family) ([]byte, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return EncodeJSON(families)
	}
	return EncodeYAML(families)
}

// FileName returns the library file a new family is saved to.
func FileName(family string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(family) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	name := strings.TrimSuffix(b.String(), "-")
	if name == "" {
		name = "family"
	}
	return filepath.Join("custom", name+".yaml")
}
