// Package pep514 discovers Python installations registered in the registry
// as described by PEP 514: Software\Python\<Company>\<Tag> under HKCU and
// HKLM, with launch details under each tag's InstallPath subkey.
package pep514

import (
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/joshuapare/regwalk/internal/regvalue"
	"github.com/joshuapare/regwalk/internal/store"
	"github.com/joshuapare/regwalk/pkg/types"
)

const (
	// PythonCore is the company key used by python.org installers.
	PythonCore = "PythonCore"
	// PyLauncher is a company key owned by the py launcher, not an environment.
	PyLauncher = "PyLauncher"

	// RegistryPath is the key holding company keys under each root.
	RegistryPath = `Software\Python`

	installPathKey = "InstallPath"

	defaultCompanyName = "Python Software Foundation"
	defaultSupportURL  = "http://www.python.org/"
	unknownArch        = "(unknown)"
	notExecutable      = "(not executable)"
)

// Location is one place environments are registered.
type Location struct {
	Root types.Root
	Path string
}

// Locations are searched in order; the first registration of a
// (company, tag) pair wins.
var Locations = []Location{
	{Root: types.CurrentUser, Path: RegistryPath},
	{Root: types.LocalMachine, Path: RegistryPath},
}

// Environment is one runnable registration.
type Environment struct {
	Root                types.Root
	Company             string
	Tag                 string
	ExecutablePath      string
	ExecutableArguments string
}

// String renders "Company\Tag - path args", or marks the environment as not
// executable when it has no ExecutablePath.
func (e Environment) String() string {
	if e.ExecutablePath == "" {
		return fmt.Sprintf("%s\\%s - %s", e.Company, e.Tag, notExecutable)
	}
	return fmt.Sprintf("%s\\%s - %s %s", e.Company, e.Tag, e.ExecutablePath, e.ExecutableArguments)
}

// Finder reads registrations through an Accessor.
type Finder struct {
	acc *store.Accessor
}

// NewFinder returns a Finder over acc.
func NewFinder(acc *store.Accessor) *Finder {
	return &Finder{acc: acc}
}

// Environments lists registrations from every Location, skipping the
// launcher's own key and later duplicates of a (company, tag) pair. A
// non-empty company restricts the result to that company.
func (f *Finder) Environments(company string) ([]Environment, error) {
	seen := map[[2]string]bool{}
	var out []Environment
	for _, loc := range Locations {
		for c, err := range f.acc.Children(loc.Root, loc.Path) {
			if err != nil {
				if errors.Is(err, types.ErrNotFound) {
					break
				}
				return nil, err
			}
			if c == PyLauncher || (company != "" && !strings.EqualFold(c, company)) {
				continue
			}
			companyPath := store.JoinPath(loc.Path, c)
			for tag, err := range f.acc.Children(loc.Root, companyPath) {
				if err != nil {
					if errors.Is(err, types.ErrNotFound) {
						break
					}
					return nil, err
				}
				id := [2]string{c, tag}
				if seen[id] {
					continue
				}
				seen[id] = true

				ip, err := f.values(loc.Root, store.JoinPath(companyPath, tag, installPathKey))
				if err != nil {
					return nil, err
				}
				out = append(out, Environment{
					Root:                loc.Root,
					Company:             c,
					Tag:                 tag,
					ExecutablePath:      ip.get("ExecutablePath"),
					ExecutableArguments: ip.get("ExecutableArguments"),
				})
			}
		}
	}
	return out, nil
}

// values is a case-insensitive view of one key's values. A missing key
// reads as empty.
type values map[string]string

func (v values) get(name string) string {
	return v[strings.ToUpper(name)]
}

func (v values) or(name, fallback string) string {
	if s := v.get(name); s != "" {
		return s
	}
	return fallback
}

func (f *Finder) values(root types.Root, path string) (values, error) {
	return collectValues(f.acc.Values(root, path))
}

func collectValues(seq iter.Seq2[types.Value, error]) (values, error) {
	out := values{}
	for v, err := range seq {
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				return out, nil
			}
			return nil, err
		}
		switch v.Type {
		case types.REG_SZ, types.REG_EXPAND_SZ:
			out[strings.ToUpper(v.Name)] = regvalue.String(v.Data)
		default:
			out[strings.ToUpper(v.Name)] = regvalue.Render(v)
		}
	}
	return out, nil
}
