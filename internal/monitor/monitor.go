// Package monitor tracks the progress of background document tasks.
// Workers report state transitions; the monitor keeps the latest state
// per task with a bounded lifetime and fans it out to the owning
// user's notification group.
package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/paperbase/paperbase/internal/model"
	"github.com/paperbase/paperbase/internal/notif"
)

// DefaultPrefix namespaces monitor keys in a shared store.
const DefaultPrefix = "task-monitor"

// DefaultTTL is how long a record stays visible after its last update.
const DefaultTTL = time.Hour

// TaskDef declares a task the monitor accepts. Defaults fill kwargs
// fields a sparse update leaves empty.
type TaskDef struct {
	Name     string
	Defaults notif.Payload
}

// DefaultTasks are the document pipeline tasks monitored out of the
// box.
func DefaultTasks() []TaskDef {
	return []TaskDef{
		{Name: "ocr_document_task", Defaults: notif.Payload{Lang: model.DefaultLang}},
		{Name: "ocr_page_task", Defaults: notif.Payload{Lang: model.DefaultLang}},
	}
}

// Update is one state transition reported by a worker.
type Update struct {
	TaskName string        `json:"task_name"`
	State    notif.State   `json:"state"`
	Kwargs   notif.Payload `json:"kwargs"`
}

// Record is the stored view of a task's latest state.
type Record struct {
	TaskName  string        `json:"task_name"`
	State     notif.State   `json:"state"`
	Kwargs    notif.Payload `json:"kwargs"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// ChannelMessage is what subscribers of a notification group receive
// about a task.
type ChannelMessage struct {
	TaskName  string
	State     notif.State
	Kwargs    notif.Payload
	UpdatedAt time.Time
}

// Callback receives the message for a delivery group after a record
// is stored.
type Callback func(group string, msg ChannelMessage)

// Monitor accepts task updates, stores the latest record per task and
// hands each stored update to the callback for the user's group.
type Monitor struct {
	prefix   string
	store    Store
	ttl      time.Duration
	tasks    map[string]TaskDef
	callback Callback
	log      zerolog.Logger
}

// NewMonitor creates a monitor over the given record store. An empty
// prefix means DefaultPrefix. The default pipeline tasks are already
// registered.
func NewMonitor(prefix string, st Store, log zerolog.Logger) *Monitor {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	m := &Monitor{
		prefix: prefix,
		store:  st,
		ttl:    DefaultTTL,
		tasks:  make(map[string]TaskDef),
		log:    log,
	}
	for _, def := range DefaultTasks() {
		m.AddTask(def)
	}
	return m
}

// AddTask registers a task definition. Call before Observe starts.
func (m *Monitor) AddTask(def TaskDef) {
	m.tasks[def.Name] = def
}

// SetCallback installs the fan-out target for stored updates. Call
// before Observe starts.
func (m *Monitor) SetCallback(cb Callback) {
	m.callback = cb
}

// Observe records one task update. Updates for unregistered tasks are
// dropped. The kwargs gain the task's defaults for any field left
// empty, the record replaces the previous one under the task's key,
// and the callback receives the message for the user's group.
func (m *Monitor) Observe(ctx context.Context, up Update) error {
	def, ok := m.tasks[up.TaskName]
	if !ok {
		m.log.Debug().Str("task", up.TaskName).Msg("update for unregistered task dropped")
		return nil
	}
	if !notif.ValidStates[up.State] {
		return fmt.Errorf("unknown task state %q", up.State)
	}

	kwargs := mergeDefaults(up.Kwargs, def.Defaults)
	rec := Record{
		TaskName:  up.TaskName,
		State:     up.State,
		Kwargs:    kwargs,
		UpdatedAt: time.Now().UTC(),
	}
	if err := m.store.Set(ctx, m.key(up.TaskName, kwargs), rec, m.ttl); err != nil {
		return fmt.Errorf("store task record: %w", err)
	}
	m.log.Debug().
		Str("task", rec.TaskName).
		Str("state", string(rec.State)).
		Str("document_id", kwargs.DocumentID).
		Msg("task update recorded")

	if m.callback != nil && kwargs.UserID != "" {
		m.callback(notif.UserGroup(kwargs.UserID), ChannelMessage{
			TaskName:  rec.TaskName,
			State:     rec.State,
			Kwargs:    rec.Kwargs,
			UpdatedAt: rec.UpdatedAt,
		})
	}
	return nil
}

// Status looks up the latest record for a task run. pageNum zero means
// the task is document wide.
func (m *Monitor) Status(ctx context.Context, taskName, documentID string, pageNum int) (Record, bool, error) {
	key := m.key(taskName, notif.Payload{DocumentID: documentID, PageNum: pageNum})
	return m.store.Get(ctx, key)
}

func (m *Monitor) key(taskName string, kw notif.Payload) string {
	key := m.prefix + ":" + taskName + ":" + kw.DocumentID
	if kw.PageNum > 0 {
		key += fmt.Sprintf(":p%d", kw.PageNum)
	}
	return key
}

func mergeDefaults(kw, def notif.Payload) notif.Payload {
	if kw.DocumentID == "" {
		kw.DocumentID = def.DocumentID
	}
	if kw.UserID == "" {
		kw.UserID = def.UserID
	}
	if kw.PageNum == 0 {
		kw.PageNum = def.PageNum
	}
	if kw.Lang == "" {
		kw.Lang = def.Lang
	}
	if kw.Version == 0 {
		kw.Version = def.Version
	}
	if kw.Namespace == "" {
		kw.Namespace = def.Namespace
	}
	return kw
}

// RelayCallback adapts a relay into a monitor callback. Each stored
// update becomes an event pushed for the group's user. Push failures
// are logged and dropped so a stalled relay never blocks workers.
func RelayCallback(relay notif.Relay, log zerolog.Logger) Callback {
	return func(group string, msg ChannelMessage) {
		ev := notif.Event{Name: msg.TaskName, State: msg.State, Kwargs: msg.Kwargs}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := relay.Push(ctx, ev); err != nil {
			log.Warn().Err(err).Str("group", group).Msg("task event push failed")
		}
	}
}
