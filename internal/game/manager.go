package game

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrTableNotFound = errors.New("table not found")
	ErrTableClosed   = errors.New("table closed")
	ErrTooManyTables = errors.New("too many open tables")

	// ErrFrameOutOfRange is returned when a replay asks for a frame the
	// table never reached.
	ErrFrameOutOfRange = errors.New("frame out of range")
)

// Table event types published when a session changes state.
const (
	EventGameStarted = "game_started"
	EventLifeLost    = "life_lost"
	EventGameOver    = "game_over"
	EventTableClosed = "table_closed"
)

// TableEvent is a state transition of one live table.
type TableEvent struct {
	Type    string    `json:"type"`
	TableID string    `json:"table_id"`
	Frame   int       `json:"frame"`
	Score   int       `json:"score"`
	Lives   int       `json:"lives"`
	At      time.Time `json:"at"`
}

// TableRecord identifies a session for the journal.
type TableRecord struct {
	ID        string    `json:"id" db:"id"`
	Seed      int64     `json:"seed" db:"seed"`
	Layout    string    `json:"layout" db:"layout"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Checkpointer stores the latest snapshot of a table.
type Checkpointer interface {
	SaveCheckpoint(ctx context.Context, tableID string, snap Snapshot) error
}

// EventSink receives table events.
type EventSink interface {
	PublishTableEvent(ctx context.Context, ev TableEvent) error
}

// Journal records sessions and their inputs so they can be replayed.
type Journal interface {
	StartSession(ctx context.Context, rec TableRecord) error
	RecordInput(ctx context.Context, tableID string, ev InputEvent) error
	EndSession(ctx context.Context, tableID string, frame, score int) error
}

// ManagerOptions configures a TableManager. Nil collaborators are skipped.
type ManagerOptions struct {
	Layout          Layout
	Tick            time.Duration
	SnapshotEvery   int
	CheckpointEvery time.Duration
	MaxTables       int

	Checkpoints Checkpointer
	Events      EventSink
	Journal     Journal

	// OnSnapshot receives every SnapshotEvery-th rendered frame of a table.
	OnSnapshot func(tableID string, snap Snapshot)
}

// TableManager owns the live tables of a server. Each table runs its own
// frame loop; the manager only guards the table map.
type TableManager struct {
	opts   ManagerOptions
	tables map[string]*LiveTable
	mu     sync.RWMutex
}

// LiveTable is one session driven by a ticker. All access to the session
// goes through the table mutex, so inputs land between ticks.
type LiveTable struct {
	ID        string
	CreatedAt time.Time

	mu             sync.Mutex
	session        *Session
	inputs         []InputEvent
	lastActivity   time.Time
	lastCheckpoint time.Time
	closed         bool

	stop chan struct{}
	done chan struct{}
}

// NewTableManager creates a manager with defaults filled in.
func NewTableManager(opts ManagerOptions) *TableManager {
	if opts.Tick <= 0 {
		opts.Tick = TickInterval * time.Millisecond
	}
	if opts.SnapshotEvery <= 0 {
		opts.SnapshotEvery = 1
	}
	if opts.CheckpointEvery <= 0 {
		opts.CheckpointEvery = 5 * time.Second
	}
	if opts.Layout.Segments == nil {
		opts.Layout = DefaultLayout()
	}
	return &TableManager{
		opts:   opts,
		tables: make(map[string]*LiveTable),
	}
}

func (m *TableManager) Layout() Layout { return m.opts.Layout }

// CreateTable opens a new table and starts its frame loop. A nil seed picks
// one from the clock.
func (m *TableManager) CreateTable(seed *int64) (*LiveTable, error) {
	s := time.Now().UnixNano()
	if seed != nil {
		s = *seed
	}

	m.mu.Lock()
	if m.opts.MaxTables > 0 && len(m.tables) >= m.opts.MaxTables {
		m.mu.Unlock()
		return nil, ErrTooManyTables
	}
	now := time.Now()
	t := &LiveTable{
		ID:             uuid.NewString(),
		CreatedAt:      now,
		session:        NewSession(m.opts.Layout, s),
		lastActivity:   now,
		lastCheckpoint: now,
		stop:           make(chan struct{}),
		done:           make(chan struct{}),
	}
	m.tables[t.ID] = t
	m.mu.Unlock()

	if m.opts.Journal != nil {
		rec := TableRecord{ID: t.ID, Seed: s, Layout: m.opts.Layout.Name, CreatedAt: now}
		if err := m.opts.Journal.StartSession(context.Background(), rec); err != nil {
			log.Printf("[JOURNAL] Failed to start session for table %s: %v", t.ID, err)
		}
	}

	go t.run(m)
	log.Printf("[TABLE] Table %s created (seed=%d layout=%s)", t.ID, s, m.opts.Layout.Name)
	return t, nil
}

// GetTable returns a live table.
func (m *TableManager) GetTable(id string) (*LiveTable, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tables[id]
	if !ok {
		return nil, ErrTableNotFound
	}
	return t, nil
}

// TableCount returns the number of open tables.
func (m *TableManager) TableCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tables)
}

// Input applies an operator action to a table and records it.
func (m *TableManager) Input(id string, kind InputKind, pressed bool) error {
	t, err := m.GetTable(id)
	if err != nil {
		return err
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrTableClosed
	}
	ev := InputEvent{Frame: t.session.Frame, Kind: kind, Pressed: pressed}
	before := t.session.State
	if err := t.session.Apply(ev); err != nil {
		t.mu.Unlock()
		return err
	}
	t.inputs = append(t.inputs, ev)
	t.lastActivity = time.Now()
	var started *TableEvent
	if before != StatePlaying && t.session.State == StatePlaying {
		e := t.event(EventGameStarted)
		started = &e
	}
	t.mu.Unlock()

	if m.opts.Journal != nil {
		if err := m.opts.Journal.RecordInput(context.Background(), id, ev); err != nil {
			log.Printf("[JOURNAL] Failed to record input for table %s: %v", id, err)
		}
	}
	if started != nil {
		m.publish(*started)
	}
	return nil
}

// CloseTable stops a table's frame loop and removes it.
func (m *TableManager) CloseTable(id string) error {
	m.mu.Lock()
	t, ok := m.tables[id]
	if ok {
		delete(m.tables, id)
	}
	m.mu.Unlock()
	if !ok {
		return ErrTableNotFound
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrTableClosed
	}
	t.closed = true
	close(t.stop)
	ev := t.event(EventTableClosed)
	snap := t.session.Snapshot()
	t.mu.Unlock()
	<-t.done

	if m.opts.Checkpoints != nil {
		if err := m.opts.Checkpoints.SaveCheckpoint(context.Background(), id, snap); err != nil {
			log.Printf("[REDIS] Final checkpoint for table %s failed: %v", id, err)
		}
	}
	if m.opts.Journal != nil {
		if err := m.opts.Journal.EndSession(context.Background(), id, snap.Frame, snap.Score); err != nil {
			log.Printf("[JOURNAL] Failed to end session for table %s: %v", id, err)
		}
	}
	m.publish(ev)
	log.Printf("[TABLE] Table %s closed at frame %d (score=%d)", id, snap.Frame, snap.Score)
	return nil
}

// CloseAll closes every open table.
func (m *TableManager) CloseAll() {
	m.mu.RLock()
	ids := make([]string, 0, len(m.tables))
	for id := range m.tables {
		ids = append(ids, id)
	}
	m.mu.RUnlock()
	for _, id := range ids {
		if err := m.CloseTable(id); err != nil && !errors.Is(err, ErrTableNotFound) {
			log.Printf("[TABLE] Close %s: %v", id, err)
		}
	}
}

// IdleTables lists tables with no operator input since cutoff.
func (m *TableManager) IdleTables(cutoff time.Time) []string {
	m.mu.RLock()
	tables := make([]*LiveTable, 0, len(m.tables))
	for _, t := range m.tables {
		tables = append(tables, t)
	}
	m.mu.RUnlock()

	var idle []string
	for _, t := range tables {
		t.mu.Lock()
		if t.lastActivity.Before(cutoff) {
			idle = append(idle, t.ID)
		}
		t.mu.Unlock()
	}
	return idle
}

// Replay rebuilds a live table's session at the given frame from its seed
// and recorded inputs.
func (m *TableManager) Replay(id string, frame int) (Snapshot, error) {
	t, err := m.GetTable(id)
	if err != nil {
		return Snapshot{}, err
	}
	seed, inputs, current := t.History()
	if frame < 0 || frame > current {
		return Snapshot{}, fmt.Errorf("%w: %d outside [0, %d]", ErrFrameOutOfRange, frame, current)
	}
	return Replay(m.opts.Layout, seed, inputs, frame).Snapshot(), nil
}

func (m *TableManager) publish(ev TableEvent) {
	if m.opts.Events == nil {
		return
	}
	if err := m.opts.Events.PublishTableEvent(context.Background(), ev); err != nil {
		log.Printf("[TABLE] Publish %s for table %s failed: %v", ev.Type, ev.TableID, err)
	}
}

func (t *LiveTable) run(m *TableManager) {
	ticker := time.NewTicker(m.opts.Tick)
	defer ticker.Stop()
	defer close(t.done)

	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			t.tick(m)
		}
	}
}

func (t *LiveTable) tick(m *TableManager) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	res := t.session.AdvanceOneFrame()
	snap := t.session.RenderFrame()

	var events []TableEvent
	if res.LifeLost {
		events = append(events, t.event(EventLifeLost))
	}
	if res.GameOver {
		events = append(events, t.event(EventGameOver))
	}
	checkpoint := time.Since(t.lastCheckpoint) >= m.opts.CheckpointEvery
	if checkpoint {
		t.lastCheckpoint = time.Now()
	}
	t.mu.Unlock()

	if res.GameOver {
		log.Printf("[TABLE] Game over on table %s (score=%d frame=%d)", t.ID, snap.Score, snap.Frame)
	}
	for _, ev := range events {
		m.publish(ev)
	}
	if m.opts.OnSnapshot != nil && snap.Frame%m.opts.SnapshotEvery == 0 {
		m.opts.OnSnapshot(t.ID, snap)
	}
	if checkpoint && m.opts.Checkpoints != nil {
		if err := m.opts.Checkpoints.SaveCheckpoint(context.Background(), t.ID, snap); err != nil {
			log.Printf("[REDIS] Checkpoint for table %s failed: %v", t.ID, err)
		}
	}
}

// event builds a TableEvent from the current session. Caller holds t.mu.
func (t *LiveTable) event(kind string) TableEvent {
	return TableEvent{
		Type:    kind,
		TableID: t.ID,
		Frame:   t.session.Frame,
		Score:   t.session.Score,
		Lives:   t.session.Lives,
		At:      time.Now(),
	}
}

// Snapshot returns the table's current view without aging any timers.
func (t *LiveTable) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.session.Snapshot()
}

// Seed returns the session seed.
func (t *LiveTable) Seed() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.session.Seed
}

// History returns the seed, a copy of the recorded inputs and the current
// frame.
func (t *LiveTable) History() (int64, []InputEvent, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	inputs := make([]InputEvent, len(t.inputs))
	copy(inputs, t.inputs)
	return t.session.Seed, inputs, t.session.Frame
}

// Step advances the table by one frame outside of its ticker.
func (t *LiveTable) Step(m *TableManager) {
	t.tick(m)
}
