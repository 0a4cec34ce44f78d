package controllers

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image-effect-desktop/internal/effects"
	"image-effect-desktop/internal/logger"
	"image-effect-desktop/internal/models"
	"image-effect-desktop/internal/services"
)

type applyCall struct {
	src  image.Image
	name effects.Name
}

// recordingLibrary returns a fresh image for every call and remembers what it
// was asked to do
type recordingLibrary struct {
	mu    sync.Mutex
	calls []applyCall
	fail  error
}

func (l *recordingLibrary) Name() string { return "recording" }
func (l *recordingLibrary) Close() error { return nil }

func (l *recordingLibrary) Apply(_ context.Context, src image.Image, name effects.Name) (image.Image, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, applyCall{src: src, name: name})
	if l.fail != nil {
		return nil, l.fail
	}
	return image.NewNRGBA(src.Bounds()), nil
}

func (l *recordingLibrary) snapshot() []applyCall {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]applyCall(nil), l.calls...)
}

func (l *recordingLibrary) names() []effects.Name {
	calls := l.snapshot()
	names := make([]effects.Name, len(calls))
	for i, c := range calls {
		names[i] = c.name
	}
	return names
}

type fakeDisplay struct {
	mu       sync.Mutex
	manual   []image.Image
	auto     []image.Image
	running  []bool
	statuses []string
	errs     []error

	pickName string
	pickData []byte
	pickErr  error
}

func (d *fakeDisplay) SetManualImage(img image.Image) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.manual = append(d.manual, img)
}

func (d *fakeDisplay) SetAutoImage(img image.Image) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.auto = append(d.auto, img)
}

func (d *fakeDisplay) SetAutoRunning(running bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.running = append(d.running, running)
}

func (d *fakeDisplay) UpdateStatus(message string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.statuses = append(d.statuses, message)
}

func (d *fakeDisplay) ShowError(_ string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.errs = append(d.errs, err)
}

func (d *fakeDisplay) PickImage(onPicked func(string, io.ReadCloser, error)) {
	if d.pickErr != nil {
		onPicked("", nil, d.pickErr)
		return
	}
	if d.pickData == nil {
		onPicked("", nil, nil)
		return
	}
	onPicked(d.pickName, io.NopCloser(bytes.NewReader(d.pickData)), nil)
}

func (d *fakeDisplay) manualCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.manual)
}

func (d *fakeDisplay) autoCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.auto)
}

func (d *fakeDisplay) lastManual() image.Image {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.manual[len(d.manual)-1]
}

func (d *fakeDisplay) lastRunning() (bool, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.running) == 0 {
		return false, false
	}
	return d.running[len(d.running)-1], true
}

func (d *fakeDisplay) errCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.errs)
}

func pngBytes(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestController(t *testing.T, opts Options) (*EffectController, *recordingLibrary, *fakeDisplay) {
	t.Helper()
	log := logger.NewNop()
	lib := &recordingLibrary{}
	display := &fakeDisplay{}
	if opts.AutoInterval == 0 {
		opts.AutoInterval = 10 * time.Millisecond
	}
	ec := NewEffectController(
		services.NewImageService(log),
		services.NewFilterService(lib, log),
		display,
		log,
		opts,
	)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = ec.Shutdown(ctx)
	})
	return ec, lib, display
}

func load(t *testing.T, ec *EffectController, name string, c color.NRGBA) *models.ImageData {
	t.Helper()
	data, err := ec.LoadImage(context.Background(), name, bytes.NewReader(pngBytes(t, 100, 100, c)))
	require.NoError(t, err)
	return data
}

func TestApplyManualCyclesCatalogInOrder(t *testing.T) {
	ec, lib, _ := newTestController(t, Options{})
	load(t, ec, "a.png", color.NRGBA{R: 200, A: 255})

	const calls = 19
	for i := 0; i < calls; i++ {
		_, err := ec.ApplyManual(context.Background())
		require.NoError(t, err)
	}

	expected := make([]effects.Name, calls)
	for i := range expected {
		expected[i] = effects.At(i)
	}
	assert.Equal(t, expected, lib.names())
	assert.Equal(t, calls%effects.Len(), ec.Cursor())
}

func TestLoadImageResetsCursor(t *testing.T) {
	ec, _, display := newTestController(t, Options{})
	load(t, ec, "a.png", color.NRGBA{G: 10, A: 255})

	for i := 0; i < 5; i++ {
		_, err := ec.ApplyManual(context.Background())
		require.NoError(t, err)
	}
	require.Equal(t, 5, ec.Cursor())

	b := load(t, ec, "b.png", color.NRGBA{B: 10, A: 255})
	assert.Equal(t, 0, ec.Cursor())
	assert.Same(t, b.Image, display.lastManual())
}

func TestEffectsNeverCompound(t *testing.T) {
	ec, lib, _ := newTestController(t, Options{})
	a := load(t, ec, "a.png", color.NRGBA{R: 1, G: 2, B: 3, A: 255})

	for i := 0; i < 3; i++ {
		_, err := ec.ApplyManual(context.Background())
		require.NoError(t, err)
	}

	_, err := ec.ToggleAuto(context.Background())
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return len(lib.snapshot()) >= 6 }, 2*time.Second, 5*time.Millisecond)
	_, err = ec.ToggleAuto(context.Background())
	require.NoError(t, err)
	ec.Wait()

	for _, call := range lib.snapshot() {
		assert.Same(t, a.Image, call.src, "%s must see the loaded image", call.name)
	}
}

func TestManualScenarioAcrossLoads(t *testing.T) {
	ec, lib, display := newTestController(t, Options{})
	a := load(t, ec, "a.png", color.NRGBA{R: 50, A: 255})

	first, err := ec.ApplyManual(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Grayscale", first.Effect)
	assert.Same(t, first.Image, display.lastManual())

	second, err := ec.ApplyManual(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Sepia", second.Effect)
	assert.Same(t, second.Image, display.lastManual())

	b := load(t, ec, "b.png", color.NRGBA{G: 50, A: 255})
	third, err := ec.ApplyManual(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Grayscale", third.Effect)
	assert.Same(t, third.Image, display.lastManual())

	calls := lib.snapshot()
	require.Len(t, calls, 3)
	assert.Same(t, a.Image, calls[0].src)
	assert.Same(t, a.Image, calls[1].src)
	assert.Same(t, b.Image, calls[2].src)
}

func TestApplyManualWithoutImage(t *testing.T) {
	ec, lib, display := newTestController(t, Options{})

	result, err := ec.ApplyManual(context.Background())
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrNoImageLoaded)
	assert.Empty(t, lib.snapshot())
	assert.Zero(t, display.manualCount())
	assert.Zero(t, display.errCount(), "missing image is not shown as an error dialog")
}

func TestToggleAutoWithoutImageStaysIdle(t *testing.T) {
	ec, lib, display := newTestController(t, Options{})

	state, err := ec.ToggleAuto(context.Background())
	assert.ErrorIs(t, err, ErrNoImageLoaded)
	assert.Equal(t, models.AutoIdle, state)
	assert.Equal(t, models.AutoIdle, ec.AutoState())

	time.Sleep(30 * time.Millisecond)
	assert.Empty(t, lib.snapshot())
	assert.Zero(t, display.autoCount())
	_, seen := display.lastRunning()
	assert.False(t, seen)
}

func TestToggleAutoStopsDisplayUpdates(t *testing.T) {
	ec, _, display := newTestController(t, Options{AutoInterval: 5 * time.Millisecond})
	load(t, ec, "a.png", color.NRGBA{R: 9, A: 255})
	afterLoad := display.autoCount()

	state, err := ec.ToggleAuto(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.AutoRunning, state)

	assert.Eventually(t, func() bool { return display.autoCount() >= afterLoad+3 }, 2*time.Second, 5*time.Millisecond)

	state, err = ec.ToggleAuto(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.AutoIdle, state)
	ec.Wait()

	frozen := display.autoCount()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, frozen, display.autoCount())

	running, _ := display.lastRunning()
	assert.False(t, running)
}

func TestAutoTickShowsImmediatelyAndWaitsBetweenTicks(t *testing.T) {
	ec, lib, _ := newTestController(t, Options{AutoInterval: time.Hour})
	load(t, ec, "a.png", color.NRGBA{R: 9, A: 255})

	_, err := ec.ToggleAuto(context.Background())
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return len(lib.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	assert.Len(t, lib.snapshot(), 1)

	_, err = ec.ToggleAuto(context.Background())
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		ec.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("auto loop did not exit during its wait")
	}
}

func TestAutoDrawsFollowSeed(t *testing.T) {
	ec, lib, _ := newTestController(t, Options{AutoInterval: time.Millisecond, Seed: 42, HasSeed: true})
	load(t, ec, "a.png", color.NRGBA{R: 9, A: 255})

	_, err := ec.ToggleAuto(context.Background())
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return len(lib.snapshot()) >= 6 }, 2*time.Second, time.Millisecond)
	_, err = ec.ToggleAuto(context.Background())
	require.NoError(t, err)
	ec.Wait()

	r := rand.New(rand.NewSource(42))
	got := lib.names()
	for i := 0; i < 6; i++ {
		assert.Equal(t, effects.Random(r), got[i], "draw %d", i)
	}
}

func TestAutoReadsNewlyLoadedImage(t *testing.T) {
	ec, lib, _ := newTestController(t, Options{AutoInterval: 5 * time.Millisecond})
	load(t, ec, "a.png", color.NRGBA{R: 9, A: 255})

	_, err := ec.ToggleAuto(context.Background())
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return len(lib.snapshot()) >= 1 }, time.Second, time.Millisecond)

	b := load(t, ec, "b.png", color.NRGBA{B: 9, A: 255})
	assert.Eventually(t, func() bool {
		calls := lib.snapshot()
		return calls[len(calls)-1].src == b.Image
	}, time.Second, time.Millisecond)
	assert.Equal(t, models.AutoRunning, ec.AutoState())
}

func TestParentCancellationReturnsToIdle(t *testing.T) {
	ec, _, display := newTestController(t, Options{AutoInterval: 5 * time.Millisecond})
	load(t, ec, "a.png", color.NRGBA{R: 9, A: 255})

	ctx, cancel := context.WithCancel(context.Background())
	_, err := ec.ToggleAuto(ctx)
	require.NoError(t, err)

	cancel()
	ec.Wait()

	assert.Equal(t, models.AutoIdle, ec.AutoState())
	running, seen := display.lastRunning()
	assert.True(t, seen)
	assert.False(t, running)

	state, err := ec.ToggleAuto(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.AutoRunning, state, "a fresh toggle starts a new cycle")
}

func TestRapidTogglingLeavesConsistentState(t *testing.T) {
	ec, _, _ := newTestController(t, Options{AutoInterval: time.Millisecond})
	load(t, ec, "a.png", color.NRGBA{R: 9, A: 255})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = ec.ToggleAuto(context.Background())
		}()
	}
	wg.Wait()

	// 20 toggles from idle end idle
	assert.Equal(t, models.AutoIdle, ec.AutoState())
	ec.Wait()
}

func TestDecodeErrorKeepsPreviousImage(t *testing.T) {
	ec, _, display := newTestController(t, Options{})
	a := load(t, ec, "a.png", color.NRGBA{R: 9, A: 255})
	_, err := ec.ApplyManual(context.Background())
	require.NoError(t, err)
	shown := display.manualCount()

	_, err = ec.LoadImage(context.Background(), "broken.png", bytes.NewReader([]byte("not an image")))
	require.Error(t, err)
	var decodeErr *services.DecodeError
	assert.True(t, errors.As(err, &decodeErr))
	assert.ErrorIs(t, err, services.ErrDecode)

	_, err = ec.LoadImage(context.Background(), "anim.gif", bytes.NewReader(pngBytes(t, 2, 2, color.NRGBA{A: 255})))
	assert.ErrorIs(t, err, services.ErrDecode)

	assert.Same(t, a, ec.CurrentImage())
	assert.Equal(t, 1, ec.Cursor())
	assert.Equal(t, shown, display.manualCount())
	assert.Equal(t, 2, display.errCount())
}

func TestBackendFailureLeavesCursor(t *testing.T) {
	ec, lib, display := newTestController(t, Options{})
	load(t, ec, "a.png", color.NRGBA{R: 9, A: 255})
	lib.fail = errors.New("backend exploded")

	_, err := ec.ApplyManual(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, ec.Cursor())
	assert.Equal(t, 1, display.errCount())
}

func TestApplyEffectPassesUnknownNamesThrough(t *testing.T) {
	ec, lib, _ := newTestController(t, Options{})
	img := image.NewNRGBA(image.Rect(0, 0, 3, 3))

	out, err := ec.ApplyEffect(context.Background(), img, effects.Name("Emboss"))
	require.NoError(t, err)
	assert.Same(t, img, out)
	assert.Empty(t, lib.snapshot())
}

func TestRequestImageLoadsPickedFile(t *testing.T) {
	ec, _, display := newTestController(t, Options{})
	display.pickName = "picked.png"
	display.pickData = pngBytes(t, 8, 6, color.NRGBA{R: 1, A: 255})

	ec.RequestImage(context.Background())

	assert.Eventually(t, func() bool { return ec.CurrentImage() != nil }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "picked.png", ec.CurrentImage().Name)
	assert.Equal(t, 8, ec.CurrentImage().Width)
}

func TestRequestImageCancelledDoesNothing(t *testing.T) {
	ec, _, display := newTestController(t, Options{})

	ec.RequestImage(context.Background())

	time.Sleep(20 * time.Millisecond)
	assert.Nil(t, ec.CurrentImage())
	assert.Zero(t, display.errCount())
}

func TestHistoryRecordsBothPaths(t *testing.T) {
	ec, _, _ := newTestController(t, Options{AutoInterval: 5 * time.Millisecond})
	load(t, ec, "a.png", color.NRGBA{R: 9, A: 255})

	_, err := ec.ApplyManual(context.Background())
	require.NoError(t, err)
	_, err = ec.ToggleAuto(context.Background())
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return ec.History().Stats().Total >= 3 }, time.Second, 5*time.Millisecond)
	_, err = ec.ToggleAuto(context.Background())
	require.NoError(t, err)
	ec.Wait()

	entries := ec.History().Entries()
	require.NotEmpty(t, entries)
	assert.Equal(t, models.SourceManual, entries[0].Source)
	assert.Equal(t, models.SourceAuto, entries[len(entries)-1].Source)
}
