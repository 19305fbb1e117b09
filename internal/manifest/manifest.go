package manifest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
)

var (
	ErrInvalidRequirement = errors.New("invalid requirement")
	ErrDuplicatePackage   = errors.New("duplicate package")
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9._-]*[A-Za-z0-9])?$`)

// constraint operators ordered longest-first so that prefix matching
// never mistakes ">=" for ">".
var operators = []string{"===", "==", "!=", "<=", ">=", "~=", "<", ">"}

type Constraint struct {
	Op      string
	Version string
}

func (c Constraint) String() string {
	return c.Op + c.Version
}

type Requirement struct {
	Name        string
	Constraints []Constraint
	Line        int
}

func (r Requirement) String() string {
	if len(r.Constraints) == 0 {
		return r.Name
	}

	parts := make([]string, 0, len(r.Constraints))
	for _, c := range r.Constraints {
		parts = append(parts, c.String())
	}
	return r.Name + strings.Join(parts, ",")
}

type Manifest struct {
	Requirements []Requirement
}

// Parse reads a pip-style requirements manifest: one requirement per line,
// blank lines and #-comments skipped, inline comments stripped.
func Parse(r io.Reader) (Manifest, error) {
	var m Manifest

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := stripComment(scanner.Text())
		if line == "" {
			continue
		}

		req, err := parseRequirement(line)
		if err != nil {
			return Manifest{}, fmt.Errorf("line %d: %w", lineNo, err)
		}
		req.Line = lineNo
		m.Requirements = append(m.Requirements, req)
	}

	if err := scanner.Err(); err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}

	return m, nil
}

func ParseFile(path string) (Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	m, err := Parse(f)
	if err != nil {
		return Manifest{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return m, nil
}

// Validate rejects duplicate package names. Names compare case-insensitively
// with "." and "_" folded to "-", matching installer normalization rules.
func (m Manifest) Validate() error {
	seen := make(map[string]Requirement, len(m.Requirements))
	for _, req := range m.Requirements {
		key := NormalizeName(req.Name)
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("%w: %s declared on line %d and line %d", ErrDuplicatePackage, req.Name, prev.Line, req.Line)
		}
		seen[key] = req
	}
	return nil
}

// Lookup finds a requirement by normalized package name.
func (m Manifest) Lookup(name string) (Requirement, bool) {
	key := NormalizeName(name)
	for _, req := range m.Requirements {
		if NormalizeName(req.Name) == key {
			return req, true
		}
	}
	return Requirement{}, false
}

// PackageNames returns the declared package names, sorted.
func (m Manifest) PackageNames() []string {
	names := make([]string, 0, len(m.Requirements))
	for _, req := range m.Requirements {
		names = append(names, req.Name)
	}
	sort.Strings(names)
	return names
}

func NormalizeName(name string) string {
	lowered := strings.ToLower(strings.TrimSpace(name))
	lowered = strings.ReplaceAll(lowered, "_", "-")
	return strings.ReplaceAll(lowered, ".", "-")
}

func parseRequirement(line string) (Requirement, error) {
	name := line
	spec := ""
	if idx := strings.IndexAny(line, "<>=!~"); idx >= 0 {
		name = strings.TrimSpace(line[:idx])
		spec = strings.TrimSpace(line[idx:])
	}

	if name == "" {
		return Requirement{}, fmt.Errorf("%w: missing package name in %q", ErrInvalidRequirement, line)
	}
	if !namePattern.MatchString(name) {
		return Requirement{}, fmt.Errorf("%w: bad package name %q", ErrInvalidRequirement, name)
	}

	req := Requirement{Name: name}
	if spec == "" {
		return req, nil
	}

	for _, part := range strings.Split(spec, ",") {
		constraint, err := parseConstraint(strings.TrimSpace(part))
		if err != nil {
			return Requirement{}, err
		}
		req.Constraints = append(req.Constraints, constraint)
	}

	return req, nil
}

func parseConstraint(part string) (Constraint, error) {
	if part == "" {
		return Constraint{}, fmt.Errorf("%w: empty version constraint", ErrInvalidRequirement)
	}

	for _, op := range operators {
		if !strings.HasPrefix(part, op) {
			continue
		}

		version := strings.TrimSpace(strings.TrimPrefix(part, op))
		if version == "" {
			return Constraint{}, fmt.Errorf("%w: operator %q without version", ErrInvalidRequirement, op)
		}
		if strings.ContainsAny(version, "<>=!~ ") {
			return Constraint{}, fmt.Errorf("%w: bad version %q", ErrInvalidRequirement, version)
		}
		return Constraint{Op: op, Version: version}, nil
	}

	return Constraint{}, fmt.Errorf("%w: unrecognized version constraint %q", ErrInvalidRequirement, part)
}

func stripComment(line string) string {
	if idx := strings.Index(line, "#"); idx >= 0 {
		line = line[:idx]
	}
	return strings.TrimSpace(line)
}
