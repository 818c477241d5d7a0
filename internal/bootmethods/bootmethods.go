// Package bootmethods is the registry of network boot methods that can be
// disabled on a subnet.
package bootmethods

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed bootmethods.yaml
var registryYAML []byte

type BootMethod struct {
	Name           string   `yaml:"name"`
	BIOSBootMethod string   `yaml:"bios_boot_method"`
	ArchOctets     []string `yaml:"arch_octets"`
	PathPrefixHTTP bool     `yaml:"path_prefix_http"`
}

// Disableable reports whether DHCP can steer clients away from the method.
func (m BootMethod) Disableable() bool {
	return len(m.ArchOctets) > 0 || m.PathPrefixHTTP
}

var (
	loadOnce sync.Once
	methods  []BootMethod
	loadErr  error
)

// All returns the registry, parsing the embedded YAML on first use.
func All() ([]BootMethod, error) {
	loadOnce.Do(func() {
		loadErr = yaml.Unmarshal(registryYAML, &methods)
	})
	return methods, loadErr
}

// FindByArchOrOctet matches a method by name or by DHCP arch octet.
func FindByArchOrOctet(arch, octet string) (BootMethod, bool) {
	all, err := All()
	if err != nil {
		return BootMethod{}, false
	}
	for _, m := range all {
		if strings.EqualFold(m.Name, arch) {
			return m, true
		}
		for _, o := range m.ArchOctets {
			if strings.EqualFold(o, octet) {
				return m, true
			}
		}
	}
	return BootMethod{}, false
}

// Normalize maps each entry (name, "00:07" or "0x07") to a registered
// method name. Unknown entries and methods that cannot be disabled are
// rejected.
func Normalize(archs []string) ([]string, error) {
	out := make([]string, 0, len(archs))
	for _, arch := range archs {
		arch = strings.TrimSpace(arch)
		m, ok := FindByArchOrOctet(arch, strings.Replace(arch, "0x", "00:", 1))
		if !ok || !m.Disableable() {
			return nil, fmt.Errorf("unknown boot architecture %s", arch)
		}
		out = append(out, m.Name)
	}
	return out, nil
}
