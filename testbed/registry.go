package testbed

import (
	"fmt"
	"sort"

	"github.com/spaghettifunk/frameflight/engine"
	"github.com/spaghettifunk/frameflight/engine/config"
	"github.com/spaghettifunk/frameflight/engine/core"
)

// Factory builds a demo application from the file config.
type Factory func(cfg *config.Config) (*engine.Game, error)

var applications = map[string]Factory{
	"box":   NewBoxApp,
	"crate": NewCrateApp,
	"blend": NewBlendApp,
}

// New returns the application registered under name.
func New(name string, cfg *config.Config) (*engine.Game, error) {
	factory, ok := applications[name]
	if !ok {
		return nil, fmt.Errorf("application '%s': %w", name, core.ErrUnknownApplication)
	}
	return factory(cfg)
}

// Names lists the registered applications in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(applications))
	for name := range applications {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
