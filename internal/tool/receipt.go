package tool

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ProductKind classifies a build product listed in a receipt.
type ProductKind string

const (
	KindExecutable     ProductKind = "Executable"
	KindDynamicLibrary ProductKind = "DynamicLibrary"
	KindOther          ProductKind = "Other"
)

// Product is one build output recorded in a tool-build receipt.
type Product struct {
	Path string      `json:"path"`
	Kind ProductKind `json:"kind"`
}

// Receipt is the record the host build system writes after building the
// generator tool. This engine only reads receipts, never writes them.
type Receipt struct {
	Products []Product `json:"products"`
}

// ReadReceipt loads and parses a receipt file.
func ReadReceipt(path string) (*Receipt, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read receipt %s: %w", path, err)
	}

	var receipt Receipt
	if err := json.Unmarshal(data, &receipt); err != nil {
		return nil, fmt.Errorf("failed to parse receipt %s: %w", path, err)
	}

	return &receipt, nil
}

// Expand rewrites path placeholders in every product using the given
// expander.
func (r *Receipt) Expand(expand func(string) string) {
	for i := range r.Products {
		r.Products[i].Path = expand(r.Products[i].Path)
	}
}

// DefaultExpander substitutes $(EngineDir) and $(ProjectDir) placeholders.
func DefaultExpander(engineDir, projectDir string) func(string) string {
	replacer := strings.NewReplacer(
		"$(EngineDir)", engineDir,
		"$(ProjectDir)", projectDir,
	)

	return replacer.Replace
}

// SidecarLibraryVersion reads the version integer the host build records in
// a `<library>.version` sidecar file. Libraries without a sidecar report
// version 0, which keeps an unversioned toolset self-consistent.
func SidecarLibraryVersion(path string) (int, error) {
	data, err := os.ReadFile(path + ".version")
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}

		return 0, fmt.Errorf("failed to read version sidecar for %s: %w", path, err)
	}

	version, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid version sidecar for %s: %w", path, err)
	}

	return version, nil
}
