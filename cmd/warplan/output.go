package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

func marshalPretty(v any) ([]byte, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// writeOutput writes v to path, or to stdout when path is empty or "-".
// Paths ending in .yaml or .yml get YAML, everything else indented JSON.
func writeOutput(stdout io.Writer, path string, v any) error {
	var (
		b   []byte
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		b, err = yaml.Marshal(v)
	default:
		b, err = marshalPretty(v)
	}
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	if path == "" || path == "-" {
		_, err = stdout.Write(b)
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
