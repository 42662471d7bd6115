package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// settableKeys lists the dotted keys `config set` accepts.
var settableKeys = map[string]bool{
	"db_path":               true,
	"actor":                 true,
	"codes.width":           true,
	"codes.separator":       true,
	"web.addr":              true,
	"web.label_cache_ttl":   true,
	"log.debug":             true,
	"log.path":              true,
	"tracing.enabled":       true,
	"tracing.exporter":      true,
	"tracing.file_path":     true,
	"tracing.otlp_endpoint": true,
	"tracing.sample_rate":   true,
}

// IsSettable reports whether key may be written with SaveValue.
func IsSettable(key string) bool {
	return settableKeys[key]
}

// SaveValue sets a dotted key in the config file, creating intermediate
// mappings as needed. Comments and formatting elsewhere are preserved by
// editing the yaml.Node tree.
func SaveValue(configPath, key, value string) error {
	if !IsSettable(key) {
		return fmt.Errorf("unknown config key %q", key)
	}

	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}

	var doc yaml.Node
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}
	if doc.Kind == 0 {
		doc = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode}},
		}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("parsing config: top level is not a mapping")
	}

	parts := strings.Split(key, ".")
	node := root
	for _, p := range parts[:len(parts)-1] {
		node = childMapping(node, p)
	}
	setScalar(node, parts[len(parts)-1], value)

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()

	return writeAtomic(configPath, buf.Bytes())
}

// childMapping returns the mapping under key, adding it when missing.
func childMapping(parent *yaml.Node, key string) *yaml.Node {
	for i := 0; i < len(parent.Content)-1; i += 2 {
		if parent.Content[i].Value == key {
			child := parent.Content[i+1]
			if child.Kind != yaml.MappingNode {
				child = &yaml.Node{Kind: yaml.MappingNode}
				parent.Content[i+1] = child
			}
			return child
		}
	}
	child := &yaml.Node{Kind: yaml.MappingNode}
	parent.Content = append(parent.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: key},
		child,
	)
	return child
}

func setScalar(parent *yaml.Node, key, value string) {
	for i := 0; i < len(parent.Content)-1; i += 2 {
		if parent.Content[i].Value == key {
			v := parent.Content[i+1]
			comment := v.LineComment
			*v = yaml.Node{Kind: yaml.ScalarNode, Value: value, LineComment: comment}
			return
		}
	}
	parent.Content = append(parent.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: key},
		&yaml.Node{Kind: yaml.ScalarNode, Value: value},
	)
}

// writeAtomic writes to a temp file, then renames it over path.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, ".toolasset.yaml.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(data); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
