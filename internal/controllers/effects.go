package controllers

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"math/rand"
	"sync"
	"time"

	"image-effect-desktop/internal/effects"
	"image-effect-desktop/internal/logger"
	"image-effect-desktop/internal/models"
	"image-effect-desktop/internal/services"
)

// ErrNoImageLoaded is returned by operations that need a loaded image
var ErrNoImageLoaded = errors.New("no image loaded")

const defaultHistorySize = 50

// Display is the UI surface the controller publishes to. Implementations must
// be safe to call from any goroutine.
type Display interface {
	SetManualImage(img image.Image)
	SetAutoImage(img image.Image)
	SetAutoRunning(running bool)
	UpdateStatus(message string)
	ShowError(title string, err error)
	// PickImage asks the user for one file. onPicked receives a nil reader
	// and nil error when the user cancels.
	PickImage(onPicked func(name string, reader io.ReadCloser, err error))
}

type Options struct {
	AutoInterval time.Duration
	Seed         int64
	HasSeed      bool
	HistorySize  int
}

// EffectController owns the loaded image, the manual cursor and the auto
// cycle. One instance lives for the whole session.
type EffectController struct {
	images  *services.ImageService
	filters *services.FilterService
	display Display
	logger  logger.Logger
	history *models.EffectHistory

	interval time.Duration

	// manualMu serializes ApplyManual so each call consumes one cursor slot
	manualMu sync.Mutex

	mu         sync.Mutex
	current    *models.ImageData
	loadSeq    uint64
	cursor     int
	autoState  models.AutoState
	autoCancel context.CancelFunc
	autoSeq    uint64
	rng        *rand.Rand

	wg sync.WaitGroup
}

func NewEffectController(
	images *services.ImageService,
	filters *services.FilterService,
	display Display,
	log logger.Logger,
	opts Options,
) *EffectController {
	if opts.AutoInterval <= 0 {
		opts.AutoInterval = 3 * time.Second
	}
	if opts.HistorySize <= 0 {
		opts.HistorySize = defaultHistorySize
	}

	seed := opts.Seed
	if !opts.HasSeed {
		seed = time.Now().UnixNano()
	}

	return &EffectController{
		images:   images,
		filters:  filters,
		display:  display,
		logger:   log,
		history:  models.NewEffectHistory(opts.HistorySize),
		interval: opts.AutoInterval,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// RequestImage opens the file picker and loads the chosen file in the background
func (ec *EffectController) RequestImage(ctx context.Context) {
	ec.display.PickImage(func(name string, reader io.ReadCloser, err error) {
		if err != nil {
			ec.handleError("File selection failed", err)
			return
		}
		if reader == nil {
			return
		}

		go func() {
			defer reader.Close()
			// failures are already reported to the display
			_, _ = ec.LoadImage(ctx, name, reader)
		}()
	})
}

// LoadImage decodes a new source image, makes it current, resets the manual
// cursor and shows it unmodified in both views. On failure nothing changes.
func (ec *EffectController) LoadImage(ctx context.Context, name string, reader io.Reader) (*models.ImageData, error) {
	data, err := ec.images.Decode(ctx, name, reader)
	if err != nil {
		ec.logger.Warning("EffectController", "image load failed", map[string]interface{}{
			"name":  name,
			"error": err.Error(),
		})
		ec.display.ShowError("Could not load image", err)
		return nil, err
	}

	ec.mu.Lock()
	ec.current = data
	ec.cursor = 0
	ec.loadSeq++
	ec.mu.Unlock()

	ec.display.SetManualImage(data.Image)
	ec.display.SetAutoImage(data.Image)
	ec.display.UpdateStatus(fmt.Sprintf("Loaded %s (%dx%d %s)", data.Name, data.Width, data.Height, data.Format))

	ec.logger.Info("EffectController", "image loaded", map[string]interface{}{
		"name":   data.Name,
		"width":  data.Width,
		"height": data.Height,
		"format": data.Format,
	})

	return data, nil
}

// ApplyManual applies the effect under the cursor to the loaded image and
// advances the cursor
func (ec *EffectController) ApplyManual(ctx context.Context) (*models.EffectResult, error) {
	ec.manualMu.Lock()
	defer ec.manualMu.Unlock()

	ec.mu.Lock()
	src := ec.current
	index := ec.cursor
	seq := ec.loadSeq
	ec.mu.Unlock()

	if src == nil {
		ec.display.UpdateStatus("Load an image first")
		return nil, ErrNoImageLoaded
	}

	name := effects.At(index)
	result, err := ec.filters.Apply(ctx, src, name)
	if err != nil {
		ec.handleError("Effect failed", err)
		return nil, err
	}

	ec.mu.Lock()
	stale := ec.loadSeq != seq
	if !stale {
		ec.cursor = (index + 1) % effects.Len()
	}
	ec.mu.Unlock()

	if stale {
		// a new image arrived while rendering; its views already show it
		return result, nil
	}

	ec.history.Record(models.SourceManual, result)
	ec.display.SetManualImage(result.Image)
	ec.display.UpdateStatus(fmt.Sprintf("Applied %s (%d ms)", name, result.Duration.Milliseconds()))

	return result, nil
}

// ToggleAuto starts the auto cycle when idle and stops it when running
func (ec *EffectController) ToggleAuto(ctx context.Context) (models.AutoState, error) {
	ec.mu.Lock()

	if ec.autoState == models.AutoRunning {
		ec.stopAutoLocked()
		ec.mu.Unlock()

		ec.display.SetAutoRunning(false)
		ec.display.UpdateStatus("Auto cycle stopped")
		ec.logger.Info("EffectController", "auto cycle stopped", nil)
		return models.AutoIdle, nil
	}

	if ec.current == nil {
		ec.mu.Unlock()
		ec.display.UpdateStatus("Load an image first")
		return models.AutoIdle, ErrNoImageLoaded
	}

	loopCtx, cancel := context.WithCancel(ctx)
	ec.autoSeq++
	seq := ec.autoSeq
	ec.autoCancel = cancel
	ec.autoState = models.AutoRunning
	ec.wg.Add(1)
	ec.mu.Unlock()

	go ec.autoLoop(loopCtx, seq)

	ec.display.SetAutoRunning(true)
	ec.display.UpdateStatus(fmt.Sprintf("Auto cycle every %s", ec.interval))
	ec.logger.Info("EffectController", "auto cycle started", map[string]interface{}{
		"interval": ec.interval.String(),
	})
	return models.AutoRunning, nil
}

// ApplyEffect renders one named effect. Unrecognized names return img unchanged.
func (ec *EffectController) ApplyEffect(ctx context.Context, img image.Image, name effects.Name) (image.Image, error) {
	return ec.filters.ApplyImage(ctx, img, name)
}

func (ec *EffectController) AutoState() models.AutoState {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	return ec.autoState
}

func (ec *EffectController) Cursor() int {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	return ec.cursor
}

func (ec *EffectController) CurrentImage() *models.ImageData {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	return ec.current
}

func (ec *EffectController) History() *models.EffectHistory {
	return ec.history
}

func (ec *EffectController) Backend() string {
	return ec.filters.Backend()
}

// Shutdown stops the auto cycle and waits for its goroutine to exit
func (ec *EffectController) Shutdown(ctx context.Context) error {
	ec.mu.Lock()
	if ec.autoState == models.AutoRunning {
		ec.stopAutoLocked()
	}
	ec.mu.Unlock()

	done := make(chan struct{})
	go func() {
		ec.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("auto cycle did not stop: %w", ctx.Err())
	}
}

func (ec *EffectController) Name() string {
	return "EffectController"
}

// Wait blocks until every auto loop goroutine has returned
func (ec *EffectController) Wait() {
	ec.wg.Wait()
}

func (ec *EffectController) stopAutoLocked() {
	if ec.autoCancel != nil {
		ec.autoCancel()
	}
	ec.autoCancel = nil
	ec.autoState = models.AutoIdle
}

func (ec *EffectController) autoLoop(ctx context.Context, seq uint64) {
	defer ec.wg.Done()
	defer ec.finishAuto(seq)

	for {
		if ctx.Err() != nil {
			return
		}

		ec.mu.Lock()
		src := ec.current
		name := effects.Random(ec.rng)
		ec.mu.Unlock()

		result, err := ec.filters.Apply(ctx, src, name)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			ec.logger.Error("EffectController", err, map[string]interface{}{
				"effect": string(name),
				"path":   string(models.SourceAuto),
			})
		} else if !ec.publishAuto(ctx, result) {
			return
		}

		timer := time.NewTimer(ec.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// publishAuto shows an auto result unless the cycle was cancelled meanwhile
func (ec *EffectController) publishAuto(ctx context.Context, result *models.EffectResult) bool {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	if ctx.Err() != nil {
		return false
	}

	ec.display.SetAutoImage(result.Image)
	ec.history.Record(models.SourceAuto, result)
	return true
}

// finishAuto resets the state when a loop ends on its own, e.g. when the
// parent context is cancelled rather than the user toggling off
func (ec *EffectController) finishAuto(seq uint64) {
	ec.mu.Lock()
	orphaned := ec.autoSeq == seq && ec.autoState == models.AutoRunning
	if orphaned {
		ec.stopAutoLocked()
	}
	ec.mu.Unlock()

	if orphaned {
		ec.display.SetAutoRunning(false)
	}
}

func (ec *EffectController) handleError(title string, err error) {
	ec.logger.Error("EffectController", err, map[string]interface{}{
		"title": title,
	})
	ec.display.ShowError(title, err)
}
