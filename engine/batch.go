package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Skryldev/imagebatch/core"
	apperrors "github.com/Skryldev/imagebatch/errors"
	"github.com/Skryldev/imagebatch/utils"
)

// settled carries one finished task to the aggregator.
type settled struct {
	idx int
	res core.ProcessingResult
}

// outputClaims records which input wrote each output path in a batch.
type outputClaims struct {
	mu     sync.Mutex
	owners map[string]string
}

func (c *outputClaims) claim(path, input string) (prev string, taken bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.owners == nil {
		c.owners = make(map[string]string)
	}
	prev, taken = c.owners[path]
	c.owners[path] = input
	return prev, taken
}

// RunBatch transcodes every input into outputFolder and returns the results
// in input order. Per-file failures become failed results; RunBatch itself
// never fails. onProgress, when non-nil, is called once per settled file in
// completion order and once more with Done set. All calls come from a single
// goroutine.
//
// A folder that cannot be created fails every input with
// KindInvalidOutputPath before any file is read.
//
// Output names are the input base name with the new extension, so inputs
// sharing a base name from different folders write the same file. The last
// writer wins and a batch.output.collision warning is logged.
func (e *Engine) RunBatch(ctx context.Context, inputs []string, outputFolder string, params core.Parameters, onProgress func(core.BatchProgress)) core.BatchResult {
	start := time.Now()
	total := len(inputs)
	batch := core.BatchResult{
		ID:           uuid.NewString(),
		OutputFolder: outputFolder,
		Results:      make([]core.ProcessingResult, total),
	}
	emit := func(p core.BatchProgress) {
		if onProgress != nil {
			onProgress(p)
		}
	}
	finish := func() core.BatchResult {
		batch.Elapsed = time.Since(start)
		emit(core.BatchProgress{Completed: total, Total: total, TotalElapsed: batch.Elapsed, Done: true})
		ok := batch.Succeeded()
		e.logger.Info("batch.done", "batch", batch.ID, "succeeded", ok, "failed", total-ok, "elapsed", batch.Elapsed)
		return batch
	}

	e.logger.Info("batch.start", "batch", batch.ID, "files", total, "folder", outputFolder,
		"format", params.Format, "workers", e.cfg.ResolvedWorkers())

	fatal := params.Validate()
	if fatal == nil {
		fatal = e.store.EnsureDir(outputFolder)
	}
	if fatal != nil {
		e.logger.Error("batch.precondition", "batch", batch.ID, "error", fatal)
		for i, in := range inputs {
			batch.Results[i] = core.ProcessingResult{InputPath: in, Format: params.Format, Err: fatal}
		}
		atomic.AddInt64(&e.errorCount, int64(total))
		return finish()
	}

	done := make(chan settled, total)
	aggregated := make(chan struct{})
	go func() {
		defer close(aggregated)
		completed := 0
		for s := range done {
			batch.Results[s.idx] = s.res
			completed++
			emit(core.BatchProgress{
				Completed:         completed,
				Total:             total,
				LastCompletedName: filepath.Base(s.res.InputPath),
			})
		}
	}()

	var claims outputClaims
	var g errgroup.Group
	g.SetLimit(e.cfg.ResolvedWorkers())
	for i, in := range inputs {
		if err := ctx.Err(); err != nil {
			atomic.AddInt64(&e.errorCount, 1)
			done <- settled{idx: i, res: canceled(in, params.Format, err)}
			continue
		}
		g.Go(func() error {
			done <- settled{idx: i, res: e.processOne(ctx, batch.ID, in, outputFolder, params, &claims)}
			return nil
		})
	}
	_ = g.Wait()
	close(done)
	<-aggregated

	return finish()
}

func canceled(input string, f core.Format, err error) core.ProcessingResult {
	return core.ProcessingResult{
		InputPath: input,
		Format:    f,
		Err:       apperrors.New(apperrors.KindCanceled, "batch.task", err),
	}
}

// processOne runs one file end to end: transcode (with the WebP fallback),
// then write. Panics from a codec are turned into an EncodeFailure.
func (e *Engine) processOne(ctx context.Context, batchID, input, folder string, params core.Parameters, claims *outputClaims) (res core.ProcessingResult) {
	start := time.Now()
	res = core.ProcessingResult{InputPath: input, Format: params.Format}

	defer func() {
		if r := recover(); r != nil {
			res = core.ProcessingResult{
				InputPath:  input,
				Format:     res.Format,
				SizeBefore: res.SizeBefore,
				Err:        apperrors.New(apperrors.KindEncodeFailure, "batch.task", fmt.Errorf("panic: %v", r)),
			}
		}
		res.Elapsed = time.Since(start)
		if res.Success {
			atomic.AddInt64(&e.processedCount, 1)
			e.logger.Debug("batch.file.done", "batch", batchID, "file", filepath.Base(input),
				"output", res.OutputPath, "bytes", res.SizeAfter, "elapsed", res.Elapsed)
			return
		}
		atomic.AddInt64(&e.errorCount, 1)
		e.logger.Warn("batch.file.failed", "batch", batchID, "file", filepath.Base(input),
			"kind", res.Kind(), "error", res.Err)
	}()

	if err := ctx.Err(); err != nil {
		return canceled(input, params.Format, err)
	}
	if info, err := os.Stat(input); err == nil && info.Mode().IsRegular() {
		res.SizeBefore = info.Size()
	}

	out, err := e.transcoder.Transcode(ctx, input, params)
	if err != nil {
		sub, ok := core.DecideFallback(params.Format, err)
		if !ok {
			res.Err = err
			return res
		}
		e.logger.Warn("batch.fallback", "batch", batchID, "file", filepath.Base(input),
			"from", params.Format, "to", sub, "reason", err)
		e.metrics.RecordFallback(params.Format, sub)
		res.FellBack = true
		res.Format = sub

		out, err = e.transcoder.Transcode(ctx, input, params.WithFormat(sub))
		if err != nil {
			res.Err = err
			return res
		}
	}

	path := utils.OutputPath(folder, input, out.Format.Extension())
	if prev, taken := claims.claim(path, input); taken {
		e.logger.Warn("batch.output.collision", "batch", batchID, "file", input,
			"overwrites", prev, "output", path)
	}
	if err := e.store.Put(ctx, path, out.Data); err != nil {
		res.Err = err
		return res
	}

	res.OutputPath = path
	res.Format = out.Format
	res.Success = true
	res.SizeAfter = int64(len(out.Data))
	res.Width = out.Width
	res.Height = out.Height
	if res.SizeBefore == 0 {
		res.SizeBefore = out.OriginalSize
	}
	return res
}
