package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MrTurnables/dpps-prototype/internal/domain/detection"
	"github.com/MrTurnables/dpps-prototype/internal/domain/entity"
)

// Output formats
const (
	formatJSON = "json"
	formatYAML = "yaml"
)

// batchFile is the object form of an input file. A bare array of invoices
// is accepted as well.
type batchFile struct {
	Invoices []entity.InvoiceRecord `json:"invoices"`
	Config   *detection.ConfigPatch `json:"config,omitempty"`
}

type pairFile struct {
	Current   entity.InvoiceRecord   `json:"current"`
	Candidate entity.InvoiceRecord   `json:"candidate"`
	Config    *detection.ConfigPatch `json:"config,omitempty"`
}

// readDocument reads path and returns its content as JSON. YAML files
// (.yaml, .yml) are converted first so every input shares the JSON field
// names and the invoice codecs.
func readDocument(path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("--file is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc interface{}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		data, err = json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to convert %s: %w", path, err)
		}
	}
	return data, nil
}

func readBatch(path string) (*batchFile, error) {
	data, err := readDocument(path)
	if err != nil {
		return nil, err
	}

	var batch batchFile
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &batch.Invoices)
	} else {
		err = json.Unmarshal(data, &batch)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode invoices from %s: %w", path, err)
	}
	if len(batch.Invoices) == 0 {
		return nil, fmt.Errorf("%s contains no invoices", path)
	}
	return &batch, nil
}

func readPair(path string) (*pairFile, error) {
	data, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	var pair pairFile
	if err := json.Unmarshal(data, &pair); err != nil {
		return nil, fmt.Errorf("failed to decode invoice pair from %s: %w", path, err)
	}
	return &pair, nil
}

// writeOutput prints v as indented JSON or as YAML. YAML is produced from
// the JSON form so both formats use the same keys.
func writeOutput(w io.Writer, format string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}

	switch format {
	case formatJSON, "":
		_, err = fmt.Fprintln(w, string(data))
		return err
	case formatYAML:
		var doc interface{}
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (want json or yaml)", format)
	}
}
