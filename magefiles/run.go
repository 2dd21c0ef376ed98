//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

type Run mg.Namespace

// Runs a demo application (box, crate or blend) for the given number of
// frames. Zero frames runs until interrupted.
func (Run) Demo(app string, frames int) error {
	fmt.Printf("Run %s demo...\n", app)
	_, err := goRun(append([]string{"run", "."}, demoArgs(app, frames)...)...).exec()
	return err
}

// Builds the binary once and runs every demo for a few frames.
func (Run) Smoke() error {
	mg.Deps(Build.Binary)
	for _, app := range []string{"box", "crate", "blend"} {
		fmt.Printf("Smoke %s...\n", app)
		if err := sh.RunV("./"+binaryPath, demoArgs(app, 10)...); err != nil {
			return err
		}
	}
	return nil
}

// Lists the demo applications.
func (Run) Apps() error {
	out, err := goRun("run", ".", "apps").captured().exec()
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}
