package module

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Input is the module-set file the host build system hands to hgen: target
// metadata plus one entry per module. Header discovery and role
// classification happen on the host side; hgen only consumes the result.
type Input struct {
	Target  TargetInput   `json:"target"`
	Modules []ModuleInput `json:"modules"`
}

// TargetInput carries the build-target metadata.
type TargetInput struct {
	Name            string `json:"name"`
	ProjectFile     string `json:"projectFile"`
	IsGame          bool   `json:"isGame"`
	IsGeneratorTool bool   `json:"isGeneratorTool"`
	LocalRoot       string `json:"localRoot"`
	RemoteRoot      string `json:"remoteRoot"`
}

// ModuleInput mirrors Descriptor in serialized form.
type ModuleInput struct {
	Name                  string   `json:"name"`
	RootDirectory         string   `json:"rootDirectory"`
	ModuleKind            string   `json:"moduleKind"`
	ClassesHeaders        []string `json:"classesHeaders"`
	PublicHeaders         []string `json:"publicHeaders"`
	PrivateHeaders        []string `json:"privateHeaders"`
	PrecompiledHeaderPath string   `json:"precompiledHeaderPath"`
	GeneratedOutputBase   string   `json:"generatedOutputBase"`

	// CodeGenVersion defaults to the latest schema when omitted
	CodeGenVersion *int `json:"codeGenVersion"`
}

// LoadInput reads and validates a module-set file.
func LoadInput(path string) (*Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read module set %s: %w", path, err)
	}

	var input Input
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("failed to parse module set %s: %w", path, err)
	}

	if input.Target.Name == "" {
		return nil, fmt.Errorf("module set %s has no target name", path)
	}

	return &input, nil
}

// Descriptors converts the input entries into descriptors, enforcing the
// unique generated-code directory invariant.
func (in *Input) Descriptors() ([]*Descriptor, error) {
	seen := make(map[string]string, len(in.Modules))
	descriptors := make([]*Descriptor, 0, len(in.Modules))

	for _, mi := range in.Modules {
		if mi.Name == "" {
			return nil, fmt.Errorf("module with empty name in target %s", in.Target.Name)
		}

		if mi.GeneratedOutputBase == "" {
			return nil, fmt.Errorf("module %s has no generated output base", mi.Name)
		}

		d := &Descriptor{
			Name:                  mi.Name,
			RootDirectory:         mi.RootDirectory,
			Kind:                  parseKind(mi.ModuleKind),
			ClassesHeaders:        mi.ClassesHeaders,
			PublicHeaders:         mi.PublicHeaders,
			PrivateHeaders:        mi.PrivateHeaders,
			PrecompiledHeaderPath: mi.PrecompiledHeaderPath,
			GeneratedOutputBase:   mi.GeneratedOutputBase,
			CodeGenVersion:        CodeGenLatest,
		}

		if mi.CodeGenVersion != nil {
			d.CodeGenVersion = CodeGenVersion(*mi.CodeGenVersion)
		}

		dir := d.GeneratedDir()
		if other, ok := seen[dir]; ok {
			return nil, fmt.Errorf("modules %s and %s share generated-code directory %s", other, d.Name, dir)
		}

		seen[dir] = d.Name
		descriptors = append(descriptors, d)
	}

	return descriptors, nil
}

func parseKind(s string) Kind {
	switch strings.ToLower(s) {
	case "engine":
		return KindEngine
	case "plugin":
		return KindPlugin
	}

	return KindGame
}
