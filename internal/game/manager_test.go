package game

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/playmatatu/pinball/internal/config"
)

type recorder struct {
	mu          sync.Mutex
	events      []TableEvent
	checkpoints map[string]Snapshot
	started     []TableRecord
	inputs      []InputEvent
	ended       []string
}

func newRecorder() *recorder {
	return &recorder{checkpoints: make(map[string]Snapshot)}
}

func (r *recorder) PublishTableEvent(_ context.Context, ev TableEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) SaveCheckpoint(_ context.Context, id string, snap Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkpoints[id] = snap
	return nil
}

func (r *recorder) StartSession(_ context.Context, rec TableRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, rec)
	return nil
}

func (r *recorder) RecordInput(_ context.Context, _ string, ev InputEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inputs = append(r.inputs, ev)
	return nil
}

func (r *recorder) EndSession(_ context.Context, id string, _, _ int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ended = append(r.ended, id)
	return nil
}

func (r *recorder) eventTypes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var types []string
	for _, ev := range r.events {
		types = append(types, ev.Type)
	}
	return types
}

// manualManager never ticks on its own; tests drive tables with Step.
func manualManager(r *recorder, limit int) *TableManager {
	return NewTableManager(ManagerOptions{
		Tick:            time.Hour,
		CheckpointEvery: time.Hour,
		MaxTables:       limit,
		Checkpoints:     r,
		Events:          r,
		Journal:         r,
	})
}

func TestCreateAndCloseTable(t *testing.T) {
	r := newRecorder()
	m := manualManager(r, 0)
	seed := int64(77)

	tbl, err := m.CreateTable(&seed)
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Seed() != 77 || m.TableCount() != 1 {
		t.Errorf("seed=%d count=%d", tbl.Seed(), m.TableCount())
	}
	if len(r.started) != 1 || r.started[0].ID != tbl.ID || r.started[0].Layout != "neon" {
		t.Errorf("journal start = %+v", r.started)
	}
	if got, err := m.GetTable(tbl.ID); err != nil || got != tbl {
		t.Errorf("GetTable = %v, %v", got, err)
	}

	if err := m.CloseTable(tbl.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := m.GetTable(tbl.ID); !errors.Is(err, ErrTableNotFound) {
		t.Errorf("after close err = %v", err)
	}
	if err := m.CloseTable(tbl.ID); !errors.Is(err, ErrTableNotFound) {
		t.Errorf("double close err = %v", err)
	}
	if _, ok := r.checkpoints[tbl.ID]; !ok {
		t.Error("closing should write a final checkpoint")
	}
	if len(r.ended) != 1 {
		t.Errorf("journal end calls = %d", len(r.ended))
	}
	types := r.eventTypes()
	if len(types) != 1 || types[0] != EventTableClosed {
		t.Errorf("events = %v", types)
	}
}

func TestMaxTables(t *testing.T) {
	m := manualManager(newRecorder(), 1)
	if _, err := m.CreateTable(nil); err != nil {
		t.Fatal(err)
	}
	if _, err := m.CreateTable(nil); !errors.Is(err, ErrTooManyTables) {
		t.Errorf("err = %v, want ErrTooManyTables", err)
	}
	m.CloseAll()
	if m.TableCount() != 0 {
		t.Errorf("tables after CloseAll = %d", m.TableCount())
	}
}

func TestInputRecordsAndPublishesStart(t *testing.T) {
	r := newRecorder()
	m := manualManager(r, 0)
	tbl, _ := m.CreateTable(nil)
	defer m.CloseAll()

	tbl.Step(m)
	tbl.Step(m)
	if err := m.Input(tbl.ID, InputRestart, true); err != nil {
		t.Fatal(err)
	}
	if err := m.Input(tbl.ID, InputLeftFlipper, true); err != nil {
		t.Fatal(err)
	}
	if err := m.Input(tbl.ID, "tilt", true); err == nil {
		t.Error("unknown input should be rejected")
	}
	if err := m.Input("missing", InputLaunch, true); !errors.Is(err, ErrTableNotFound) {
		t.Errorf("missing table err = %v", err)
	}

	_, inputs, frame := tbl.History()
	if frame != 2 || len(inputs) != 2 {
		t.Fatalf("frame=%d inputs=%+v", frame, inputs)
	}
	if inputs[0] != (InputEvent{Frame: 2, Kind: InputRestart, Pressed: true}) {
		t.Errorf("first input = %+v", inputs[0])
	}
	if len(r.inputs) != 2 {
		t.Errorf("journaled inputs = %d", len(r.inputs))
	}
	if types := r.eventTypes(); len(types) != 1 || types[0] != EventGameStarted {
		t.Errorf("events = %v", types)
	}
	if snap := tbl.Snapshot(); snap.State != "PLAYING" {
		t.Errorf("state = %s", snap.State)
	}
}

func TestTickPublishesDrainEvents(t *testing.T) {
	r := newRecorder()
	m := manualManager(r, 0)
	var snaps []Snapshot
	m.opts.OnSnapshot = func(_ string, s Snapshot) { snaps = append(snaps, s) }
	tbl, _ := m.CreateTable(nil)
	defer m.CloseAll()

	m.Input(tbl.ID, InputRestart, true)
	tbl.mu.Lock()
	tbl.session.Lives = 1
	tbl.session.Ball.Position = NewVec2(200, TableHeight+60)
	tbl.mu.Unlock()

	tbl.Step(m)
	types := r.eventTypes()
	want := []string{EventGameStarted, EventLifeLost, EventGameOver}
	if len(types) != len(want) {
		t.Fatalf("events = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, types[i], want[i])
		}
	}
	if len(snaps) != 1 || snaps[0].State != "GAME_OVER" {
		t.Errorf("snapshots = %+v", snaps)
	}
}

func TestManagerReplayMatchesLiveTable(t *testing.T) {
	m := manualManager(newRecorder(), 0)
	seed := int64(5)
	tbl, _ := m.CreateTable(&seed)
	defer m.CloseAll()

	m.Input(tbl.ID, InputRestart, true)
	for i := 0; i < 300; i++ {
		switch i {
		case 10:
			m.Input(tbl.ID, InputLaunch, true)
		case 120:
			m.Input(tbl.ID, InputRightFlipper, true)
		case 140:
			m.Input(tbl.ID, InputRightFlipper, false)
		}
		tbl.Step(m)
	}

	live := tbl.Snapshot()
	replayed, err := m.Replay(tbl.ID, live.Frame)
	if err != nil {
		t.Fatal(err)
	}
	if replayed.Ball != live.Ball || replayed.Score != live.Score || replayed.Lives != live.Lives {
		t.Errorf("replay %+v/%d/%d, live %+v/%d/%d",
			replayed.Ball, replayed.Score, replayed.Lives, live.Ball, live.Score, live.Lives)
	}
	if _, err := m.Replay(tbl.ID, live.Frame+1); !errors.Is(err, ErrFrameOutOfRange) {
		t.Errorf("replay past the live frame: err = %v, want ErrFrameOutOfRange", err)
	}
}

func TestReapIdleTables(t *testing.T) {
	m := manualManager(newRecorder(), 0)
	stale, _ := m.CreateTable(nil)
	fresh, _ := m.CreateTable(nil)
	defer m.CloseAll()

	stale.mu.Lock()
	stale.lastActivity = time.Now().Add(-time.Hour)
	stale.mu.Unlock()

	if n := reapIdleTables(m, 10*time.Minute); n != 1 {
		t.Errorf("closed %d tables, want 1", n)
	}
	if _, err := m.GetTable(stale.ID); !errors.Is(err, ErrTableNotFound) {
		t.Error("stale table should be closed")
	}
	if _, err := m.GetTable(fresh.ID); err != nil {
		t.Error("fresh table should stay open")
	}
}

func TestStartIdleWorkerStopsWithContext(t *testing.T) {
	m := manualManager(newRecorder(), 0)
	ctx, cancel := context.WithCancel(context.Background())
	StartIdleWorker(ctx, m, &config.Config{IdleTableMinutes: 1, IdleWorkerPollSeconds: 1})
	cancel()
	StartIdleWorker(context.Background(), nil, nil)
}

func TestIdlePollInterval(t *testing.T) {
	tests := []struct {
		seconds int
		want    time.Duration
	}{
		{seconds: 5, want: 5 * time.Second},
		{seconds: 0, want: defaultIdlePoll},
		{seconds: -3, want: defaultIdlePoll},
	}
	for _, tt := range tests {
		if got := idlePollInterval(tt.seconds); got != tt.want {
			t.Errorf("idlePollInterval(%d) = %s, want %s", tt.seconds, got, tt.want)
		}
	}
}

func TestStartIdleWorkerZeroPoll(t *testing.T) {
	m := manualManager(newRecorder(), 0)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	StartIdleWorker(ctx, m, &config.Config{IdleTableMinutes: 10, IdleWorkerPollSeconds: 0})
	StartIdleWorker(ctx, m, &config.Config{IdleTableMinutes: 10, IdleWorkerPollSeconds: -1})
	// A bad interval would panic the worker goroutine and take the test binary with it.
	time.Sleep(20 * time.Millisecond)
}
