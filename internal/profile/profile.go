package profile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sdko-org/areacheck/internal/geometry"
	"github.com/sdko-org/areacheck/internal/validate"
)

type Scope int

const (
	// PerClient keeps one history per caller address.
	PerClient Scope = iota
	// Global keeps a single timeline shared by every caller.
	Global
)

// GlobalKey is the history key used by the Global scope.
const GlobalKey = "*"

func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "client", "per-client":
		return PerClient, nil
	case "global":
		return Global, nil
	}
	return 0, fmt.Errorf("unknown history scope %q", s)
}

func (s Scope) String() string {
	if s == Global {
		return "global"
	}
	return "client"
}

// Key returns the history key for a caller.
func (s Scope) Key(client string) string {
	if s == Global {
		return GlobalKey
	}
	return client
}

// Profile is a complete region and validation configuration.
type Profile struct {
	Name            string
	Region          geometry.Region
	Rules           validate.Rules
	Mode            validate.Mode
	Scope           Scope
	HistoryCapacity int
}

var profiles = map[string]func() Profile{
	"lab": func() Profile {
		return Profile{
			Name:            "lab",
			Region:          geometry.LabRegion(),
			Rules:           validate.LabRules(),
			Mode:            validate.CollectAll,
			Scope:           Global,
			HistoryCapacity: 128,
		}
	},
	"quadrant": func() Profile {
		return Profile{
			Name:            "quadrant",
			Region:          geometry.QuadrantRegion(),
			Rules:           validate.QuadrantRules(),
			Mode:            validate.CollectAll,
			Scope:           PerClient,
			HistoryCapacity: 50,
		}
	},
}

// Lookup returns a fresh copy of the named profile.
func Lookup(name string) (Profile, error) {
	build, ok := profiles[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Profile{}, fmt.Errorf("unknown profile %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	return build(), nil
}

func Names() []string {
	names := make([]string, 0, len(profiles))
	for n := range profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
