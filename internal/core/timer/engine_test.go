package timer

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pomodoro/internal/core/model"
)

const (
	testTick    = 2 * time.Millisecond
	testTimeout = 2 * time.Second
)

// journal records callback activity in order.
type journal struct {
	entries chan string
}

func newJournal() *journal {
	return &journal{entries: make(chan string, 1024)}
}

func (j *journal) tick(remaining int) {
	j.entries <- fmt.Sprintf("tick:%d", remaining)
}

func (j *journal) end(title string) {
	j.entries <- "end:" + title
}

func (j *journal) next(t *testing.T) string {
	t.Helper()
	select {
	case entry := <-j.entries:
		return entry
	case <-time.After(testTimeout):
		t.Fatalf("timed out waiting for engine callback")
		return ""
	}
}

func (j *journal) expect(t *testing.T, want ...string) {
	t.Helper()
	for _, entry := range want {
		require.Equal(t, entry, j.next(t))
	}
}

func (j *journal) drain() {
	for {
		select {
		case <-j.entries:
		default:
			return
		}
	}
}

func (j *journal) requireQuiet(t *testing.T, window time.Duration) {
	t.Helper()
	select {
	case entry := <-j.entries:
		t.Fatalf("unexpected callback %q", entry)
	case <-time.After(window):
	}
}

func config(work, brk int) model.TimerConfig {
	return model.TimerConfig{
		Work:     time.Duration(work) * time.Second,
		Break:    time.Duration(brk) * time.Second,
		SoundRef: "chime.wav",
	}
}

func newTestEngine(t *testing.T, cfg model.TimerConfig, callbacks Callbacks) *Engine {
	t.Helper()
	engine, err := New(cfg, callbacks, Config{TickInterval: testTick})
	require.NoError(t, err)
	t.Cleanup(engine.Close)
	return engine
}

func TestNew_RejectsNonPositiveDurations(t *testing.T) {
	tests := []struct {
		name string
		cfg  model.TimerConfig
	}{
		{"zero work", model.TimerConfig{Work: 0, Break: time.Minute}},
		{"zero break", model.TimerConfig{Work: time.Minute, Break: 0}},
		{"negative work", model.TimerConfig{Work: -time.Minute, Break: time.Minute}},
		{"sub-second break", model.TimerConfig{Work: time.Minute, Break: 500 * time.Millisecond}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg, Callbacks{}, Config{})
			require.ErrorIs(t, err, ErrInvalidDuration)
		})
	}
}

func TestNew_StartsIdle(t *testing.T) {
	engine := newTestEngine(t, config(25*60, 5*60), Callbacks{})

	snapshot := engine.Snapshot()
	require.Equal(t, StateIdle, snapshot.State)
	require.Equal(t, ModeWork, snapshot.Mode)
	require.Zero(t, snapshot.Remaining)
	require.Zero(t, snapshot.Progress())
}

func TestStart_CountsDownWorkThenResetsToBreak(t *testing.T) {
	j := newJournal()
	var soundRef atomic.Value
	engine := newTestEngine(t, config(3, 2), Callbacks{
		OnTick: j.tick,
		OnIntervalEnd: func(title, message, ref string) <-chan struct{} {
			soundRef.Store(ref)
			j.end(title)
			return make(chan struct{})
		},
	})

	engine.Start()
	engine.Start()

	j.expect(t, "tick:3", "tick:2", "tick:1", "tick:2", "end:Break Time!")
	j.requireQuiet(t, 10*testTick)

	snapshot := engine.Snapshot()
	require.Equal(t, StateAwaitingDismissal, snapshot.State)
	require.Equal(t, ModeBreak, snapshot.Mode)
	require.Equal(t, 2, snapshot.Remaining)
	require.False(t, snapshot.State.Running())
	require.Equal(t, "chime.wav", soundRef.Load())
}

func TestStart_OneSecondIntervalsScenario(t *testing.T) {
	j := newJournal()
	dismissals := make(chan chan struct{}, 4)
	engine := newTestEngine(t, config(1, 1), Callbacks{
		OnTick: j.tick,
		OnIntervalEnd: func(title, message, ref string) <-chan struct{} {
			j.end(title)
			wait := make(chan struct{})
			dismissals <- wait
			return wait
		},
	})

	engine.Start()
	j.expect(t, "tick:1", "tick:1", "end:Break Time!")
	close(<-dismissals)

	j.expect(t, "tick:1", "tick:1", "end:Work Time!")
	require.Equal(t, ModeWork, engine.Snapshot().Mode)
}

func TestPause_TwiceResumesFromSameSecond(t *testing.T) {
	j := newJournal()
	var engine *Engine
	var paused atomic.Bool
	engine = newTestEngine(t, config(20, 5), Callbacks{
		OnTick: func(remaining int) {
			j.tick(remaining)
			if remaining == 10 && paused.CompareAndSwap(false, true) {
				engine.Pause()
			}
		},
	})

	engine.Start()
	for remaining := 20; remaining >= 10; remaining-- {
		j.expect(t, fmt.Sprintf("tick:%d", remaining))
	}
	require.True(t, engine.Wait(testTimeout))

	snapshot := engine.Snapshot()
	require.Equal(t, StatePaused, snapshot.State)
	require.True(t, snapshot.State.Running())
	require.Equal(t, 10, snapshot.Remaining)
	j.requireQuiet(t, 10*testTick)
	require.Equal(t, 10, engine.Snapshot().Remaining)

	engine.Pause()
	j.expect(t, "tick:10", "tick:9")
	require.Equal(t, StateActive, engine.Snapshot().State)
}

func TestPause_IgnoredWhenIdle(t *testing.T) {
	engine := newTestEngine(t, config(5, 5), Callbacks{})

	engine.Pause()

	require.Equal(t, StateIdle, engine.Snapshot().State)
}

func TestStop_FromEveryState(t *testing.T) {
	tests := []struct {
		name  string
		reach func(t *testing.T, engine *Engine, j *journal)
	}{
		{
			name:  "idle",
			reach: func(t *testing.T, engine *Engine, j *journal) {},
		},
		{
			name: "active",
			reach: func(t *testing.T, engine *Engine, j *journal) {
				engine.Start()
				j.expect(t, "tick:60")
			},
		},
		{
			name: "paused",
			reach: func(t *testing.T, engine *Engine, j *journal) {
				engine.Start()
				j.expect(t, "tick:60")
				engine.Pause()
				require.Equal(t, StatePaused, engine.Snapshot().State)
			},
		},
		{
			name: "awaiting dismissal",
			reach: func(t *testing.T, engine *Engine, j *journal) {
				engine.Start()
				for remaining := 60; remaining >= 1; remaining-- {
					j.expect(t, fmt.Sprintf("tick:%d", remaining))
				}
				j.expect(t, "tick:1", "end:Break Time!")
				require.Equal(t, StateAwaitingDismissal, engine.Snapshot().State)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := newJournal()
			engine := newTestEngine(t, config(60, 1), Callbacks{
				OnTick: j.tick,
				OnIntervalEnd: func(title, message, ref string) <-chan struct{} {
					j.end(title)
					return make(chan struct{})
				},
			})
			tt.reach(t, engine, j)

			engine.Stop()

			require.True(t, engine.Wait(testTimeout))
			snapshot := engine.Snapshot()
			require.Equal(t, StateIdle, snapshot.State)
			require.False(t, snapshot.State.Running())
			require.Zero(t, snapshot.Remaining)
			j.drain()
			j.requireQuiet(t, 10*testTick)

			engine.Stop()
			require.Equal(t, StateIdle, engine.Snapshot().State)
		})
	}
}

func TestStop_ImmediatelyAfterStart(t *testing.T) {
	engine := newTestEngine(t, config(5, 5), Callbacks{OnTick: func(int) {}})

	engine.Start()
	engine.Stop()

	require.True(t, engine.Wait(testTimeout))
	require.Equal(t, StateIdle, engine.Snapshot().State)
}

func TestAwaitingDismissal_HoldsUntilStopped(t *testing.T) {
	j := newJournal()
	engine := newTestEngine(t, config(1, 1), Callbacks{
		OnTick: j.tick,
		OnIntervalEnd: func(title, message, ref string) <-chan struct{} {
			j.end(title)
			return make(chan struct{})
		},
	})

	engine.Start()
	j.expect(t, "tick:1", "tick:1", "end:Break Time!")

	j.requireQuiet(t, 50*testTick)
	require.False(t, engine.Wait(20*testTick))
	require.Equal(t, StateAwaitingDismissal, engine.Snapshot().State)

	engine.Stop()
	require.True(t, engine.Wait(testTimeout))
	require.Equal(t, StateIdle, engine.Snapshot().State)
}

func TestDismiss_ResumesWithNextInterval(t *testing.T) {
	j := newJournal()
	engine := newTestEngine(t, config(1, 2), Callbacks{
		OnTick: j.tick,
		OnIntervalEnd: func(title, message, ref string) <-chan struct{} {
			j.end(title)
			return make(chan struct{})
		},
	})

	engine.Start()
	j.expect(t, "tick:1", "tick:2", "end:Break Time!")

	engine.Dismiss()

	j.expect(t, "tick:2", "tick:1")
	snapshot := engine.Snapshot()
	require.Equal(t, ModeBreak, snapshot.Mode)
	require.True(t, snapshot.State.Running())
}

func TestModes_AlternateWithConfiguredDurations(t *testing.T) {
	var mu sync.Mutex
	var lastTick int
	ends := make(chan [2]int, 16)
	var engine *Engine
	engine = newTestEngine(t, config(2, 1), Callbacks{
		OnTick: func(remaining int) {
			mu.Lock()
			lastTick = remaining
			mu.Unlock()
		},
		OnIntervalEnd: func(title, message, ref string) <-chan struct{} {
			mu.Lock()
			reset := lastTick
			mu.Unlock()
			mode := 0
			if title == "Break Time!" {
				mode = 1
			}
			ends <- [2]int{mode, reset}
			return nil
		},
	})

	engine.Start()
	previous := 0
	for i := 0; i < 6; i++ {
		var got [2]int
		select {
		case got = <-ends:
		case <-time.After(testTimeout):
			t.Fatalf("timed out waiting for interval %d", i)
		}
		require.NotEqual(t, previous, got[0], "interval %d repeated a mode", i)
		previous = got[0]
		if got[0] == 1 {
			require.Equal(t, 1, got[1], "break reset tick")
		} else {
			require.Equal(t, 2, got[1], "work reset tick")
		}
	}
	engine.Stop()
	require.True(t, engine.Wait(testTimeout))
}

func TestCallbackPanics_DoNotWedgeEngine(t *testing.T) {
	j := newJournal()
	engine := newTestEngine(t, config(3, 1), Callbacks{
		OnTick: func(remaining int) {
			j.tick(remaining)
			panic("render failed")
		},
		OnIntervalEnd: func(title, message, ref string) <-chan struct{} {
			j.end(title)
			panic("notifier failed")
		},
	})

	engine.Start()
	j.expect(t, "tick:3", "tick:2", "tick:1", "tick:1", "end:Break Time!", "tick:1")

	engine.Stop()
	require.True(t, engine.Wait(testTimeout))
	require.Equal(t, StateIdle, engine.Snapshot().State)
}

func TestSubscribe_ReceivesEventsAndClosesOnClose(t *testing.T) {
	engine, err := New(config(1, 1), Callbacks{
		OnIntervalEnd: func(string, string, string) <-chan struct{} {
			return make(chan struct{})
		},
	}, Config{TickInterval: testTick})
	require.NoError(t, err)
	events := engine.Subscribe(64)

	engine.Start()

	seen := map[EventType]bool{}
	deadline := time.After(testTimeout)
	for !seen[EventIntervalEnd] {
		select {
		case event := <-events:
			seen[event.Type] = true
			if event.Type == EventIntervalEnd {
				require.Equal(t, "Break Time!", event.Title)
				require.Equal(t, ModeBreak, event.Mode)
				require.Equal(t, StateAwaitingDismissal, event.State)
			}
		case <-deadline:
			t.Fatalf("timed out waiting for interval end event")
		}
	}
	require.True(t, seen[EventStateChange])
	require.True(t, seen[EventTick])

	engine.Close()
	for range events {
	}
	require.True(t, engine.Wait(testTimeout))

	engine.Start()
	require.Equal(t, StateIdle, engine.Snapshot().State)
}

func TestSnapshot_Progress(t *testing.T) {
	tests := []struct {
		name     string
		snapshot Snapshot
		want     float64
	}{
		{"idle", Snapshot{State: StateIdle, Total: 10}, 0},
		{"start", Snapshot{State: StateActive, Total: 10, Remaining: 10}, 0},
		{"half", Snapshot{State: StatePaused, Total: 10, Remaining: 5}, 0.5},
		{"clamped", Snapshot{State: StateActive, Total: 10, Remaining: 20}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.InDelta(t, tt.want, tt.snapshot.Progress(), 1e-9)
		})
	}
}

func TestMode_NextAndAnnouncement(t *testing.T) {
	require.Equal(t, ModeBreak, ModeWork.Next())
	require.Equal(t, ModeWork, ModeBreak.Next())

	title, message := ModeBreak.Announcement()
	require.Equal(t, "Break Time!", title)
	require.Equal(t, "It's time to take a break!", message)

	title, message = ModeWork.Announcement()
	require.Equal(t, "Work Time!", title)
	require.Equal(t, "Break is over! Back to work.", message)
}
