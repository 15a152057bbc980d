package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
)

// Manifest is a loaded tracegen.toml.
type Manifest struct {
	Path     string
	Root     string
	Package  PackageConfig
	Generate GenerateConfig
}

type PackageConfig struct {
	Name string `toml:"name"`
	// Requires is a semver constraint on the tracegen version, e.g. ">= 0.1".
	Requires string `toml:"requires"`
}

// GenerateConfig is the [generate] table. Paths are relative to the
// manifest directory.
type GenerateConfig struct {
	// Inputs are description files or glob patterns.
	Inputs         []string `toml:"inputs"`
	OutDir         string   `toml:"out_dir"`
	Sigs           bool     `toml:"sigs"`
	DispatchPrefix string   `toml:"dispatch_prefix"`
	// State emits the snapshot unit of descriptions carrying a [state] table.
	State bool `toml:"state"`
}

type manifestFile struct {
	Package  PackageConfig  `toml:"package"`
	Generate GenerateConfig `toml:"generate"`
}

var (
	// ErrPackageSectionMissing indicates that [package] is missing.
	ErrPackageSectionMissing = errors.New("missing [package]")
	// ErrPackageNameMissing indicates that [package].name is missing or invalid.
	ErrPackageNameMissing = errors.New("missing [package].name")
	// ErrNoInputs indicates that [generate].inputs is empty.
	ErrNoInputs = errors.New("missing [generate].inputs")
)

// DefaultOutDir is used when [generate].out_dir is absent.
const DefaultOutDir = "gen"

// LoadManifest walks up from startDir and loads the first tracegen.toml.
// ok is false when there is none.
func LoadManifest(startDir string) (*Manifest, bool, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err := ReadManifest(path)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}

// ReadManifest parses the manifest at path.
func ReadManifest(path string) (*Manifest, error) {
	var cfg manifestFile
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return nil, fmt.Errorf("%s: %w", path, ErrPackageSectionMissing)
	}
	name := strings.TrimSpace(cfg.Package.Name)
	if !meta.IsDefined("package", "name") || name == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrPackageNameMissing)
	}
	if !IsValidName(name) {
		return nil, fmt.Errorf("%s: invalid [package].name %q", path, name)
	}
	if req := strings.TrimSpace(cfg.Package.Requires); req != "" {
		if _, err := semver.NewConstraint(req); err != nil {
			return nil, fmt.Errorf("%s: invalid [package].requires %q: %w", path, req, err)
		}
	}
	if !meta.IsDefined("generate", "inputs") || len(cfg.Generate.Inputs) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoInputs)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	cfg.Package.Name = name
	if !meta.IsDefined("generate", "out_dir") || strings.TrimSpace(cfg.Generate.OutDir) == "" {
		cfg.Generate.OutDir = DefaultOutDir
	}
	return &Manifest{
		Path:     path,
		Root:     filepath.Dir(path),
		Package:  cfg.Package,
		Generate: cfg.Generate,
	}, nil
}

// CheckTool verifies that the running tracegen version satisfies
// [package].requires. Pre-release suffixes are ignored, so 0.2.0-dev
// satisfies ">= 0.2".
func (m *Manifest) CheckTool(version string) error {
	req := strings.TrimSpace(m.Package.Requires)
	if req == "" {
		return nil
	}
	constraint, err := semver.NewConstraint(req)
	if err != nil {
		return fmt.Errorf("invalid version constraint %s: %w", req, err)
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("invalid tracegen version %s: %w", version, err)
	}
	release, err := v.SetPrerelease("")
	if err != nil {
		return err
	}
	if !constraint.Check(&release) {
		return fmt.Errorf("%s requires tracegen %s, but running %s", m.Package.Name, req, version)
	}
	return nil
}

// IsValidName reports whether name is an ASCII identifier.
func IsValidName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r > unicode.MaxASCII {
			return false
		}
		if i == 0 && r != '_' && !unicode.IsLetter(r) {
			return false
		}
		if i > 0 && r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// Inputs expands [generate].inputs into sorted absolute paths. A pattern
// that matches nothing is an error, as is any path outside the project.
func (m *Manifest) Inputs() ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, pattern := range m.Generate.Inputs {
		pattern = strings.TrimSpace(pattern)
		if filepath.IsAbs(pattern) {
			return nil, fmt.Errorf("%s: input %q must be relative", m.Path, pattern)
		}
		full := filepath.Join(m.Root, filepath.FromSlash(pattern))
		matches, err := filepath.Glob(full)
		if err != nil {
			return nil, fmt.Errorf("%s: input %q: %w", m.Path, pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%s: input %q matches no file", m.Path, pattern)
		}
		for _, match := range matches {
			if !pathWithin(m.Root, match) {
				return nil, fmt.Errorf("%s: input %q escapes the project root", m.Path, pattern)
			}
			if !seen[match] {
				seen[match] = true
				out = append(out, match)
			}
		}
	}
	slices.Sort(out)
	return out, nil
}

// OutDir returns the absolute output directory.
func (m *Manifest) OutDir() (string, error) {
	dir := filepath.Clean(filepath.Join(m.Root, filepath.FromSlash(m.Generate.OutDir)))
	if !pathWithin(m.Root, dir) {
		return "", fmt.Errorf("%s: out_dir %q escapes the project root", m.Path, m.Generate.OutDir)
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		return "", fmt.Errorf("%s: out_dir %q is not a directory", m.Path, m.Generate.OutDir)
	}
	return dir, nil
}

// UnitName derives the base name of generated files from a description
// path: "specs/d3d9.toml" gives "d3d9".
func UnitName(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	var b strings.Builder
	for _, r := range base {
		if r <= unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "api"
	}
	return b.String()
}

func pathWithin(root, path string) bool {
	if root == "" || path == "" {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
