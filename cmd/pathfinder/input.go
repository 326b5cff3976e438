package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/persistorai/pathfinder/client"
	"github.com/persistorai/pathfinder/internal/lookup"
)

// readDocuments decodes either a JSON array of objects or newline-delimited
// JSON objects.
func readDocuments(r io.Reader) ([]client.Document, error) {
	br := bufio.NewReader(r)

	first, err := peekNonSpace(br)
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if first == '[' {
		var docs []client.Document
		if err := json.NewDecoder(br).Decode(&docs); err != nil {
			return nil, fmt.Errorf("decoding document array: %w", err)
		}
		return docs, nil
	}

	var docs []client.Document
	dec := json.NewDecoder(br)
	for {
		var d client.Document
		err := dec.Decode(&d)
		if errors.Is(err, io.EOF) {
			return docs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decoding document %d: %w", len(docs)+1, err)
		}
		docs = append(docs, d)
	}
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		if !bytes.ContainsRune([]byte(" \t\r\n"), rune(b)) {
			return b, br.UnreadByte()
		}
	}
}

func readDocumentsFile(path string) ([]client.Document, error) {
	if path == "-" {
		return readDocuments(os.Stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	return readDocuments(f)
}

// readStage loads a stage definition from an HCL file or a JSON object file.
// Both are validated locally before anything is sent.
func readStage(path string) (map[string]any, error) {
	if strings.EqualFold(filepath.Ext(path), ".hcl") {
		spec, err := lookup.LoadSpecFile(path)
		if err != nil {
			return nil, err
		}
		return spec.Serialize(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading stage file: %w", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing stage file: %w", err)
	}

	spec, err := lookup.ParseStage(raw)
	if err != nil {
		return nil, err
	}
	return spec.Serialize(), nil
}
