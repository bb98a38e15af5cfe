package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// loadRecords reads a catalog file. Accepted shapes are a top-level list of
// objects, or an object holding that list under wrapKey.
func loadRecords(path, wrapKey string) ([]map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &doc)
	default:
		err = json.Unmarshal(raw, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if obj, ok := doc.(map[string]any); ok {
		doc = obj[wrapKey]
	}
	list, ok := doc.([]any)
	if !ok {
		return nil, fmt.Errorf("%s: expected a list of records or a %q list", path, wrapKey)
	}

	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
			continue
		}
		// non-object entries become keyless records and are reported as skipped
		out = append(out, map[string]any{})
	}
	return out, nil
}
