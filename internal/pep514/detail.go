package pep514

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/joshuapare/regwalk/internal/store"
	"github.com/joshuapare/regwalk/pkg/types"
)

// Company describes a company key.
type Company struct {
	Root       types.Root
	Key        string
	Name       string
	SupportURL string
	Tags       []Tag
}

// Tag holds the metadata of one registration. Missing values are filled
// with the fallbacks PEP 514 defines for PythonCore.
type Tag struct {
	Key                    string
	Name                   string
	SupportURL             string
	Version                string
	SysVersion             string
	SysArchitecture        string
	InstallPath            string
	ExecutablePath         string
	WindowedExecutablePath string
	HasInstallPath         bool
}

// Company reads one company key with all of its tags.
func (f *Finder) Company(root types.Root, company string) (*Company, error) {
	companyPath := store.JoinPath(RegistryPath, company)
	if err := f.acc.Exists(root, companyPath); err != nil {
		return nil, err
	}
	cv, err := f.values(root, companyPath)
	if err != nil {
		return nil, err
	}
	core := company == PythonCore
	c := &Company{Root: root, Key: company}
	c.Name = cv.or("DisplayName", pick(core, defaultCompanyName, company))
	c.SupportURL = cv.or("SupportUrl", pick(core, defaultSupportURL, ""))

	for tag, err := range f.acc.Children(root, companyPath) {
		if err != nil {
			return nil, err
		}
		t, err := f.tag(root, store.JoinPath(companyPath, tag), tag, core)
		if err != nil {
			return nil, err
		}
		c.Tags = append(c.Tags, t)
	}
	return c, nil
}

func (f *Finder) tag(root types.Root, path, key string, core bool) (Tag, error) {
	tv, err := f.values(root, path)
	if err != nil {
		return Tag{}, err
	}
	short := key
	if len(short) > 3 {
		short = short[:3]
	}
	t := Tag{
		Key:             key,
		Name:            tv.or("DisplayName", pick(core, "Python "+key, key)),
		SupportURL:      tv.or("SupportUrl", pick(core, defaultSupportURL, "")),
		Version:         tv.or("Version", pick(core, short, "")),
		SysVersion:      tv.or("SysVersion", pick(core, short, "")),
		SysArchitecture: tv.or("SysArchitecture", unknownArch),
	}

	ipPath := store.JoinPath(path, installPathKey)
	if err := f.acc.Exists(root, ipPath); err != nil {
		if errors.Is(err, types.ErrNotFound) || errors.Is(err, types.ErrAccessDenied) {
			return t, nil
		}
		return Tag{}, err
	}
	ip, err := f.values(root, ipPath)
	if err != nil {
		return Tag{}, err
	}
	t.HasInstallPath = true
	t.InstallPath = ip.get("")
	t.ExecutablePath = ip.or("ExecutablePath", pick(core, joinWindows(t.InstallPath, "python.exe"), ""))
	t.WindowedExecutablePath = ip.or("WindowedExecutablePath", pick(core, joinWindows(t.InstallPath, "pythonw.exe"), ""))
	return t, nil
}

func pick(cond bool, a, b string) string {
	if cond {
		return a
	}
	return b
}

// joinWindows joins with a backslash unless dir already ends in a separator.
func joinWindows(dir, file string) string {
	if dir == "" || strings.HasSuffix(dir, `\`) || strings.HasSuffix(dir, "/") {
		return dir + file
	}
	return dir + `\` + file
}

// WriteEnvironments prints one line per environment.
func WriteEnvironments(w io.Writer, envs []Environment) error {
	for _, e := range envs {
		if _, err := fmt.Fprintln(w, e); err != nil {
			return err
		}
	}
	return nil
}

// WriteCompany prints the detailed report of a company and its tags.
func WriteCompany(w io.Writer, c *Company) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Company: %s\n", c.Name)
	fmt.Fprintf(&b, "Support: %s\n\n", c.SupportURL)
	for _, t := range c.Tags {
		fmt.Fprintf(&b, "%s\\%s\n", c.Key, t.Key)
		fmt.Fprintf(&b, "Name: %s\n", t.Name)
		fmt.Fprintf(&b, "Support: %s\n", t.SupportURL)
		fmt.Fprintf(&b, "Version: %s\n", t.Version)
		fmt.Fprintf(&b, "SysVersion: %s\n", t.SysVersion)
		fmt.Fprintf(&b, "SysArchitecture: %s\n", t.SysArchitecture)
		if t.HasInstallPath {
			fmt.Fprintf(&b, "InstallPath: %s\n", t.InstallPath)
			fmt.Fprintf(&b, "ExecutablePath: %s\n", t.ExecutablePath)
			fmt.Fprintf(&b, "WindowedExecutablePath: %s\n", t.WindowedExecutablePath)
		}
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}
