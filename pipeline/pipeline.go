// Package pipeline wires steps together and runs hooks around them.
package pipeline

import (
	"context"
	"time"

	"github.com/Skryldev/imagebatch/core"
	apperrors "github.com/Skryldev/imagebatch/errors"
)

// Pipeline executes a sequence of Steps, notifying hooks around each one.
// A Pipeline is cheap to build; the engine assembles one per transcode.
type Pipeline struct {
	steps []core.Step
	hooks []core.Hook
}

// New returns an empty Pipeline.
func New() *Pipeline { return &Pipeline{} }

// Use appends a step to the pipeline. Returns the same Pipeline for chaining.
func (p *Pipeline) Use(s ...core.Step) *Pipeline {
	p.steps = append(p.steps, s...)
	return p
}

// AddHook registers observers.
func (p *Pipeline) AddHook(h ...core.Hook) *Pipeline {
	p.hooks = append(p.hooks, h...)
	return p
}

// Run executes the pipeline on img. It returns the final ImageData and a map
// of per-step timing observations. Cancellation is checked before every
// step and reported as KindCanceled.
func (p *Pipeline) Run(ctx context.Context, img *core.ImageData) (*core.ImageData, map[string]time.Duration, error) {
	timings := make(map[string]time.Duration, len(p.steps))
	current := img

	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return nil, timings, apperrors.New(apperrors.KindCanceled, step.Name(), err)
		}

		result, elapsed, err := p.runStep(ctx, step, current)
		timings[step.Name()] = elapsed
		if err != nil {
			return nil, timings, err
		}
		current = result
	}
	return current, timings, nil
}

func (p *Pipeline) runStep(ctx context.Context, step core.Step, img *core.ImageData) (*core.ImageData, time.Duration, error) {
	p.callHooksBefore(ctx, step.Name(), img)

	start := time.Now()
	result, err := step.Execute(ctx, img)
	elapsed := time.Since(start)

	p.callHooksAfter(ctx, step.Name(), result, elapsed, err)
	return result, elapsed, err
}

func (p *Pipeline) callHooksBefore(ctx context.Context, name string, img *core.ImageData) {
	for _, h := range p.hooks {
		h.BeforeStep(ctx, name, img)
	}
}

func (p *Pipeline) callHooksAfter(ctx context.Context, name string, img *core.ImageData, d time.Duration, err error) {
	for _, h := range p.hooks {
		h.AfterStep(ctx, name, img, d, err)
	}
}
