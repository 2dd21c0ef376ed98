package engine

import (
	"context"

	"github.com/spaghettifunk/frameflight/engine/core"
	"github.com/spaghettifunk/frameflight/engine/renderer"
	"github.com/spaghettifunk/frameflight/engine/renderer/metadata"
)

type Game struct {
	ApplicationConfig *ApplicationConfig

	// Set by the engine during Initialize, before FnInitialize runs.
	Renderer *renderer.Renderer
	Events   *core.EventSystem
	Input    *core.InputSystem
	// Materials loaded from the materials directory at start-up.
	Materials []*metadata.MaterialConfig

	State interface{}

	FnBoot       Boot
	FnInitialize Initialize
	FnUpdate     Update
	FnRender     Render
	FnOnResize   OnResize
	FnOnKey      OnKey
	FnShutdown   Shutdown
}

// Boot runs before any engine system exists. It may adjust ApplicationConfig.
type Boot func() error
type Initialize func() error
type Update func(totalTime, deltaTime float64) error

// Render receives the context of the running loop. Pass it to BeginFrame
// and EndFrame so a cancelled run stops waiting on the GPU.
type Render func(ctx context.Context, totalTime, deltaTime float64) error
type OnResize func(width uint32, height uint32) error
type OnKey func(key core.KeyCode, pressed bool) error
type Shutdown func() error

func (g *Game) update(totalTime, deltaTime float64) error {
	if g.FnUpdate == nil {
		return nil
	}
	return g.FnUpdate(totalTime, deltaTime)
}

func (g *Game) render(ctx context.Context, totalTime, deltaTime float64) error {
	if g.FnRender == nil {
		return nil
	}
	return g.FnRender(ctx, totalTime, deltaTime)
}
