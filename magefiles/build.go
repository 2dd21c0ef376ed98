//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Tidies the module and builds the frameflight binary into bin/.
func (Build) Binary() error {
	if err := goTidy(); err != nil {
		return err
	}
	_, err := goRun("build", "-o", binaryPath, ".").exec()
	return err
}

// Runs vet and the whole test suite with the race detector.
func (Build) Test() error {
	if _, err := goRun("vet", "./...").exec(); err != nil {
		return err
	}
	// the race detector needs cgo
	_, err := goRun("test", "-race", "./...").withEnv("CGO_ENABLED", "1").exec()
	return err
}
