package tui

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/roster/internal/devstore"
	"github.com/kingrea/roster/internal/employee"
	"github.com/kingrea/roster/internal/store"
	"github.com/kingrea/roster/internal/validation"
)

// fakeStore serves the roster from an in-memory collection and records
// every call. fail makes the named operation return that error until cleared.
type fakeStore struct {
	mu    sync.Mutex
	mem   *devstore.Memory
	calls map[store.Op]int
	fail  map[store.Op]error
}

func newFakeStore(seed ...employee.Employee) *fakeStore {
	return &fakeStore{
		mem:   devstore.NewMemory(seed...),
		calls: map[store.Op]int{},
		fail:  map[store.Op]error{},
	}
}

func (s *fakeStore) failOn(op store.Op, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.fail, op)
		return
	}
	s.fail[op] = err
}

func (s *fakeStore) count(op store.Op) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *fakeStore) begin(ctx context.Context, op store.Op, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[op]++
	if err := ctx.Err(); err != nil {
		return &store.RequestError{Op: op, ID: id, Err: fmt.Errorf("%w: %w", store.ErrNetwork, err)}
	}
	if err := s.fail[op]; err != nil {
		return err
	}
	return nil
}

func (s *fakeStore) List(ctx context.Context) ([]employee.Employee, error) {
	if err := s.begin(ctx, store.OpList, ""); err != nil {
		return nil, err
	}
	return s.mem.List(), nil
}

func (s *fakeStore) Create(ctx context.Context, e employee.Employee) error {
	if err := s.begin(ctx, store.OpCreate, e.ID); err != nil {
		return err
	}
	if err := s.mem.Create(e); err != nil {
		return &store.RequestError{Op: store.OpCreate, ID: e.ID, StatusCode: http.StatusConflict, Err: store.ErrStatus}
	}
	return nil
}

func (s *fakeStore) Update(ctx context.Context, e employee.Employee) error {
	if err := s.begin(ctx, store.OpUpdate, e.ID); err != nil {
		return err
	}
	if err := s.mem.Replace(e.ID, e); err != nil {
		return &store.RequestError{Op: store.OpUpdate, ID: e.ID, StatusCode: http.StatusNotFound,
			Err: fmt.Errorf("%w: %w", store.ErrNotFound, store.ErrStatus)}
	}
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, id string) error {
	if err := s.begin(ctx, store.OpDelete, id); err != nil {
		return err
	}
	if err := s.mem.Delete(id); err != nil {
		return &store.RequestError{Op: store.OpDelete, ID: id, StatusCode: http.StatusNotFound,
			Err: fmt.Errorf("%w: %w", store.ErrNotFound, store.ErrStatus)}
	}
	return nil
}

func networkDown(op store.Op) error {
	return &store.RequestError{Op: op, Err: fmt.Errorf("%w: connection refused", store.ErrNetwork)}
}

// drain runs cmd and every command that follows from it, feeding each
// resulting message back into app. Spinner and cursor animation is skipped.
func drain(t *testing.T, app *App, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 200 {
			t.Fatalf("command loop did not settle")
		}
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		msg := next()
		switch m := msg.(type) {
		case nil:
			continue
		case tea.BatchMsg:
			queue = append(queue, m...)
			continue
		case tea.QuitMsg:
			return
		}
		if name := fmt.Sprintf("%T", msg); strings.HasPrefix(name, "spinner.") || strings.HasPrefix(name, "cursor.") {
			continue
		}
		_, follow := app.Update(msg)
		queue = append(queue, follow)
	}
}

// press sends one key and drains what it triggers.
func press(t *testing.T, app *App, keys ...string) {
	t.Helper()
	for _, k := range keys {
		_, cmd := app.Update(keyMsg(k))
		drain(t, app, cmd)
	}
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// startApp builds an app over st and applies the initial fetch.
func startApp(t *testing.T, st store.Store, opts ...AppOption) *App {
	t.Helper()
	app := NewApp(st, opts...)
	drain(t, app, app.Init())
	return app
}

func fieldIndex(field validation.Field) int {
	for idx, f := range validation.Fields {
		if f == field {
			return idx
		}
	}
	return -1
}

// typeInto replaces the text of one input by typing value into it.
func typeInto(t *testing.T, app *App, field validation.Field, value string) {
	t.Helper()
	f := app.form
	f.setFocus(fieldIndex(field))
	f.inputs[field].SetValue("")
	if value != "" {
		press(t, app, value)
	}
}

// fillForm types every text field and picks exactly the given skills.
func fillForm(t *testing.T, app *App, v validation.Values) {
	t.Helper()
	typeInto(t, app, validation.FieldName, v.Name)
	typeInto(t, app, validation.FieldEmail, v.Email)
	typeInto(t, app, validation.FieldTitle, v.Title)
	typeInto(t, app, validation.FieldAge, v.Age)
	typeInto(t, app, validation.FieldPhone, v.Phone)

	f := app.form
	for idx := range f.picked {
		f.picked[idx] = false
	}
	f.setFocus(fieldIndex(validation.FieldSkills))
	for _, tag := range v.Skills {
		f.skillCursor = employee.CatalogIndex(tag.Value)
		press(t, app, " ")
	}
}

func sampleValues() validation.Values {
	react, _ := employee.LookupTag("react")
	vite, _ := employee.LookupTag("vite")
	return validation.Values{
		Name:   "Mona Zaki",
		Email:  "mona@example.com",
		Title:  "Frontend Engineer",
		Age:    "33",
		Phone:  "01012345678",
		Skills: []employee.Tag{react, vite},
	}
}

func sampleEmployee(id string) employee.Employee {
	return sampleValues().Employee(id)
}

func fixedIDs(ids ...string) (employee.IDGenerator, *int) {
	calls := 0
	return func() string {
		id := ids[calls%len(ids)]
		calls++
		return id
	}, &calls
}
