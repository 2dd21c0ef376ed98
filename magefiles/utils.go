//go:build mage

package main

import (
	"fmt"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binaryPath = "bin/frameflight"

// goCmd is one invocation of the go tool.
type goCmd struct {
	args []string
	env  map[string]string
	// quiet captures the output instead of streaming it.
	quiet bool
}

func goRun(args ...string) goCmd {
	return goCmd{args: args}
}

func (c goCmd) withEnv(key, value string) goCmd {
	env := make(map[string]string, len(c.env)+1)
	for k, v := range c.env {
		env[k] = v
	}
	env[key] = value
	c.env = env
	return c
}

func (c goCmd) captured() goCmd {
	c.quiet = true
	return c
}

func (c goCmd) exec() (string, error) {
	fmt.Printf("Executing: go %s\n", strings.Join(c.args, " "))
	if c.quiet && !mg.Verbose() {
		out, err := sh.OutputWith(c.env, mg.GoCmd(), c.args...)
		if err != nil {
			fmt.Println("... failed command output:")
			fmt.Println(out)
			return "", fmt.Errorf("go %s: %w", c.args[0], err)
		}
		return out, nil
	}
	if err := sh.RunWithV(c.env, mg.GoCmd(), c.args...); err != nil {
		return "", fmt.Errorf("go %s: %w", c.args[0], err)
	}
	return "", nil
}

func goTidy() error {
	if _, err := goRun("mod", "tidy").captured().exec(); err != nil {
		return fmt.Errorf("failed to run go mod tidy: %w", err)
	}
	return nil
}

// demoArgs builds the command line of the frameflight CLI.
func demoArgs(app string, frames int) []string {
	return []string{"run", "--app", app, "--frames", fmt.Sprint(frames)}
}
