package renderer_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sunstrip/internal/clock"
	"sunstrip/internal/renderer"
	"sunstrip/internal/sun"
)

type fakeProvider struct {
	calls int
	data  *sun.Data
	err   error
}

func (p *fakeProvider) Fetch(ctx context.Context) (*sun.Data, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	d := *p.data
	return &d, nil
}

type fakeDriver struct {
	mu     sync.Mutex
	frames []clock.Frame
	halted bool
	closed bool
}

func (d *fakeDriver) Render(f clock.Frame) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.frames = append(d.frames, f)
	return nil
}

func (d *fakeDriver) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.halted = true
	return nil
}

func (d *fakeDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func (d *fakeDriver) frameCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.frames)
}

func newTestRenderer(t *testing.T, provider sun.Provider, driver *fakeDriver) *renderer.Renderer {
	t.Helper()
	mapping, err := clock.NewMapping(332)
	require.NoError(t, err)
	painter := clock.NewPainter(mapping, []int{527, 962, 227, 1234})

	return renderer.NewRenderer(renderer.RendererConfig{
		Provider: provider,
		Driver:   driver,
		Painter:  painter,
		Mapping:  mapping,
		Location: time.UTC,
		Refresh:  24 * time.Hour,
		Interval: time.Second,
		Enabled:  true,
	})
}

func TestRenderOnceFetchesOnFirstRun(t *testing.T) {
	provider := &fakeProvider{data: &sun.Data{
		SunriseMinutes:   527,
		SunsetMinutes:    962,
		SolarNoonMinutes: 744,
		DayLengthSeconds: 26131,
		FetchedAt:        time.Now(),
	}}
	driver := &fakeDriver{}
	r := newTestRenderer(t, provider, driver)

	frame, err := r.RenderOnce(context.Background(), time.Now().UTC())
	require.NoError(t, err)

	assert.Equal(t, 1, provider.calls)
	assert.Len(t, driver.frames, 1)
	assert.Len(t, frame, 332)
	assert.Equal(t, 527, r.GetSunData().SunriseMinutes)
}

func TestRenderOnceSkipsFetchWhileFresh(t *testing.T) {
	provider := &fakeProvider{data: &sun.Data{
		SunriseMinutes: 527,
		SunsetMinutes:  962,
		FetchedAt:      time.Now(),
	}}
	r := newTestRenderer(t, provider, &fakeDriver{})

	now := time.Now().UTC()
	_, err := r.RenderOnce(context.Background(), now)
	require.NoError(t, err)
	_, err = r.RenderOnce(context.Background(), now.Add(time.Minute))
	require.NoError(t, err)

	assert.Equal(t, 1, provider.calls, "fresh data must not refetch")

	// Past the refresh interval the next cycle fetches again.
	_, err = r.RenderOnce(context.Background(), now.Add(24*time.Hour+time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 2, provider.calls)
}

func TestRenderOnceKeepsStaleDataOnFailure(t *testing.T) {
	provider := &fakeProvider{data: &sun.Data{
		SunriseMinutes:   527,
		SunsetMinutes:    962,
		SolarNoonMinutes: 744,
		FetchedAt:        time.Now().Add(-48 * time.Hour),
	}}
	driver := &fakeDriver{}
	r := newTestRenderer(t, provider, driver)

	// Seed with stale-but-valid data.
	_, err := r.RenderOnce(context.Background(), time.Now().UTC())
	require.NoError(t, err)
	before := *r.GetSunData()

	// Every later fetch fails; the cached data must survive untouched and
	// frames keep rendering from it.
	provider.err = errors.New("api unreachable")
	_, err = r.RenderOnce(context.Background(), time.Now().UTC())
	require.NoError(t, err)

	after := *r.GetSunData()
	assert.Equal(t, before, after, "no partial overwrite on fetch failure")
	assert.Len(t, driver.frames, 2)
}

func TestRenderOnceRendersWithoutAnyData(t *testing.T) {
	provider := &fakeProvider{err: errors.New("down since boot")}
	driver := &fakeDriver{}
	r := newTestRenderer(t, provider, driver)

	frame, err := r.RenderOnce(context.Background(), time.Now().UTC())
	require.NoError(t, err)

	// Zero sun data still produces a frame with hour ticks and solstices.
	assert.Greater(t, frame.LitCount(), 0)
	assert.Equal(t, &sun.Data{}, r.GetSunData())
}

func TestStartRunsUntilCancelled(t *testing.T) {
	provider := &fakeProvider{data: &sun.Data{
		SunriseMinutes: 527,
		SunsetMinutes:  962,
		FetchedAt:      time.Now(),
	}}
	driver := &fakeDriver{}

	mapping, err := clock.NewMapping(332)
	require.NoError(t, err)
	painter := clock.NewPainter(mapping, []int{527})

	r := renderer.NewRenderer(renderer.RendererConfig{
		Provider: provider,
		Driver:   driver,
		Painter:  painter,
		Mapping:  mapping,
		Location: time.UTC,
		Interval: 10 * time.Millisecond,
		Enabled:  true,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Start(ctx) }()

	require.Eventually(t, func() bool {
		return r.IsRunning() && driver.frameCount() >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.False(t, r.IsRunning())
	assert.GreaterOrEqual(t, r.CurrentPixel(), 0)
	assert.NotNil(t, r.GetLatestFrame())
}

func TestStartDisabled(t *testing.T) {
	mapping, err := clock.NewMapping(332)
	require.NoError(t, err)
	disabled := renderer.NewRenderer(renderer.RendererConfig{
		Provider: &fakeProvider{},
		Driver:   &fakeDriver{},
		Painter:  clock.NewPainter(mapping, nil),
		Mapping:  mapping,
		Enabled:  false,
	})
	require.NoError(t, disabled.Start(context.Background()))
	assert.False(t, disabled.IsRunning())
}

// The serve shutdown sequence: cancel, wait for Start to return, then Stop.
// Once Start has returned no tick can touch the driver, so Stop may safely
// halt and close it.
func TestNoRenderAfterStartReturns(t *testing.T) {
	provider := &fakeProvider{data: &sun.Data{
		SunriseMinutes: 527,
		SunsetMinutes:  962,
		FetchedAt:      time.Now(),
	}}
	driver := &fakeDriver{}

	mapping, err := clock.NewMapping(332)
	require.NoError(t, err)
	r := renderer.NewRenderer(renderer.RendererConfig{
		Provider: provider,
		Driver:   driver,
		Painter:  clock.NewPainter(mapping, []int{527}),
		Mapping:  mapping,
		Location: time.UTC,
		Interval: 5 * time.Millisecond,
		Enabled:  true,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Start(ctx) }()

	require.Eventually(t, func() bool {
		return driver.frameCount() >= 1
	}, time.Second, time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	rendered := driver.frameCount()
	r.Stop()
	require.True(t, driver.halted)
	require.True(t, driver.closed)

	time.Sleep(25 * time.Millisecond)
	assert.Equal(t, rendered, driver.frameCount(), "no frame may land after Stop")
}

func TestStopHaltsAndClosesDriver(t *testing.T) {
	driver := &fakeDriver{}
	r := newTestRenderer(t, &fakeProvider{err: errors.New("x")}, driver)

	r.Stop()
	assert.True(t, driver.halted)
	assert.True(t, driver.closed)
}
