// internal/tui/app.go
//
// This is the main TUI for roster. It uses bubbletea, which follows The Elm
// Architecture: Update handles a message and returns the next command, View
// renders the current state.
//
// App is the employee list controller. It owns the roster snapshot, the
// selected employee and which dialog (if any) is open. Every store call runs
// inside a tea.Cmd and comes back as a message, so Update never blocks.

package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/kingrea/roster/internal/employee"
	"github.com/kingrea/roster/internal/logging"
	"github.com/kingrea/roster/internal/store"
	"github.com/kingrea/roster/internal/validation"
)

// dialogKind is the single source of truth for which modal is open.
type dialogKind int

const (
	dialogNone   dialogKind = iota // roster table has focus
	dialogForm                     // create or edit form
	dialogDelete                   // delete confirmation
)

func (d dialogKind) String() string {
	switch d {
	case dialogForm:
		return "form"
	case dialogDelete:
		return "delete"
	default:
		return "none"
	}
}

const logPanelLines = 6

// rosterLoadedMsg carries the result of one fetch. Only the most recently
// issued fetch (seq) is applied.
type rosterLoadedMsg struct {
	seq    int
	roster []employee.Employee
	err    error
}

// employeeSavedMsg reports a create or update for one form session.
type employeeSavedMsg struct {
	session  int
	mode     formMode
	employee employee.Employee
	err      error
}

// employeeDeletedMsg reports a delete for one confirmation session.
type employeeDeletedMsg struct {
	session int
	id      string
	err     error
}

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithLogger sets the diagnostic logger.
func WithLogger(l *zap.Logger) AppOption {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithJournal shows the tail of j in the log panel.
func WithJournal(j *logging.Journal) AppOption {
	return func(a *App) {
		a.journal = j
	}
}

// WithIDGenerator overrides how new employee ids are produced.
func WithIDGenerator(gen employee.IDGenerator) AppOption {
	return func(a *App) {
		if gen != nil {
			a.newID = gen
		}
	}
}

// WithContext parents every request context on ctx.
func WithContext(ctx context.Context) AppOption {
	return func(a *App) {
		if ctx != nil {
			a.parent = ctx
		}
	}
}

type listKeyMap struct {
	Add     key.Binding
	Edit    key.Binding
	Delete  key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

func (k listKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Edit, k.Delete, k.Refresh, k.Quit}
}

func (k listKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var listKeys = listKeyMap{
	Add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add employee")),
	Edit:    key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e/enter", "edit")),
	Delete:  key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	store   store.Store
	logger  *zap.Logger
	journal *logging.Journal
	newID   employee.IDGenerator
	schema  validation.Schema

	parent context.Context
	ctx    context.Context
	cancel context.CancelFunc

	// roster is replaced wholesale by each successful fetch
	roster   []employee.Employee
	loaded   bool
	fetching bool
	fetchSeq int
	fetchErr error

	selected *employee.Employee
	dialog   dialogKind
	session  int
	form     *formModal
	confirm  *confirmModal

	table     table.Model
	help      help.Model
	statusMsg string

	// Window size (we get this from bubbletea)
	width  int
	height int
}

// NewApp creates a controller backed by st.
func NewApp(st store.Store, opts ...AppOption) *App {
	a := &App{
		store:  st,
		logger: zap.NewNop(),
		newID:  employee.NewUUID,
		schema: validation.EmployeeSchema(),
		parent: context.Background(),
		roster: []employee.Employee{},
		help:   help.New(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	a.ctx, a.cancel = context.WithCancel(a.parent)
	a.table = table.New(
		table.WithColumns(rosterColumns(100)),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	a.table.SetStyles(rosterTableStyles())
	return a
}

// Init fetches the roster once on start.
func (a *App) Init() tea.Cmd {
	a.statusMsg = "Loading employees..."
	return a.refresh()
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.table.SetColumns(rosterColumns(msg.Width))
		a.table.SetHeight(max(5, msg.Height-16))
		a.help.Width = msg.Width
		return a, nil

	case rosterLoadedMsg:
		a.applyRoster(msg)
		return a, nil

	case employeeSavedMsg:
		if a.dialog != dialogForm || a.form == nil || a.form.session != msg.session {
			a.logger.Info("discarding late save result",
				zap.Int("session", msg.session),
				zap.String("id", msg.employee.ID),
				zap.Error(msg.err))
			return a, nil
		}
		return a, a.form.handleSaved(msg)

	case employeeDeletedMsg:
		if a.dialog != dialogDelete || a.confirm == nil || a.confirm.session != msg.session {
			a.logger.Info("discarding late delete result",
				zap.Int("session", msg.session),
				zap.String("id", msg.id),
				zap.Error(msg.err))
			return a, nil
		}
		return a, a.confirm.handleDeleted(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a.quit()
		}
		switch a.dialog {
		case dialogForm:
			return a, a.form.Update(msg)
		case dialogDelete:
			return a, a.confirm.Update(msg)
		}
		return a.handleListKey(msg)
	}

	// spinner ticks and anything else belong to the open dialog
	switch a.dialog {
	case dialogForm:
		return a, a.form.Update(msg)
	case dialogDelete:
		return a, a.confirm.Update(msg)
	}
	return a, nil
}

func (a *App) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, listKeys.Quit):
		return a.quit()
	case key.Matches(msg, listKeys.Add):
		return a.openCreate()
	case key.Matches(msg, listKeys.Edit):
		if e, ok := a.highlighted(); ok {
			return a.openEdit(e)
		}
		a.statusMsg = "No employee selected"
		return a, nil
	case key.Matches(msg, listKeys.Delete):
		if e, ok := a.highlighted(); ok {
			return a.openDelete(e)
		}
		a.statusMsg = "No employee selected"
		return a, nil
	case key.Matches(msg, listKeys.Refresh):
		a.statusMsg = "Refreshing employees..."
		return a, a.refresh()
	}
	var cmd tea.Cmd
	a.table, cmd = a.table.Update(msg)
	return a, cmd
}

// refresh re-fetches the roster. The result replaces local state wholesale.
func (a *App) refresh() tea.Cmd {
	a.fetchSeq++
	a.fetching = true
	seq, ctx, st := a.fetchSeq, a.ctx, a.store
	return func() tea.Msg {
		roster, err := st.List(ctx)
		return rosterLoadedMsg{seq: seq, roster: roster, err: err}
	}
}

func (a *App) applyRoster(msg rosterLoadedMsg) {
	if msg.seq != a.fetchSeq {
		a.logger.Debug("discarding superseded roster fetch", zap.Int("seq", msg.seq), zap.Int("latest", a.fetchSeq))
		return
	}
	a.fetching = false
	if msg.err != nil {
		a.fetchErr = msg.err
		a.logger.Error("roster fetch failed", zap.Error(msg.err))
		a.statusMsg = fmt.Sprintf("Could not load employees: %v (r to retry)", msg.err)
		return
	}
	a.fetchErr = nil
	a.loaded = true
	if msg.roster == nil {
		msg.roster = []employee.Employee{}
	}
	a.roster = msg.roster
	a.table.SetRows(rosterRows(a.roster))
	if cursor := a.table.Cursor(); cursor >= len(a.roster) {
		a.table.SetCursor(max(0, len(a.roster)-1))
	}
	a.logger.Info("roster loaded", zap.Int("employees", len(a.roster)))
	if a.statusMsg == "" || strings.HasPrefix(a.statusMsg, "Loading") || strings.HasPrefix(a.statusMsg, "Refreshing") || strings.HasPrefix(a.statusMsg, "Could not load") {
		a.statusMsg = fmt.Sprintf("%d employee(s)", len(a.roster))
	}
}

// openCreate clears the selection and opens the form in create mode.
func (a *App) openCreate() (tea.Model, tea.Cmd) {
	a.selected = nil
	a.session++
	a.form = newFormModal(a, nil, a.session)
	a.dialog = dialogForm
	a.statusMsg = "Adding employee"
	a.logger.Debug("dialog opened", zap.String("dialog", "form"), zap.String("mode", "create"))
	return a, a.form.Init()
}

// openEdit selects e and opens the form in edit mode.
func (a *App) openEdit(e employee.Employee) (tea.Model, tea.Cmd) {
	selected := e.Clone()
	a.selected = &selected
	a.session++
	a.form = newFormModal(a, a.selected, a.session)
	a.dialog = dialogForm
	a.statusMsg = fmt.Sprintf("Editing %s", e.Name)
	a.logger.Debug("dialog opened", zap.String("dialog", "form"), zap.String("mode", "edit"), zap.String("id", e.ID))
	return a, a.form.Init()
}

// openDelete selects e and asks for confirmation.
func (a *App) openDelete(e employee.Employee) (tea.Model, tea.Cmd) {
	selected := e.Clone()
	a.selected = &selected
	a.session++
	a.confirm = newConfirmModal(a, selected, a.session)
	a.dialog = dialogDelete
	a.statusMsg = fmt.Sprintf("Delete %s?", e.Name)
	a.logger.Debug("dialog opened", zap.String("dialog", "delete"), zap.String("id", e.ID))
	return a, nil
}

// close dismisses whichever dialog is open and cancels its pending request.
// The selection is left as is.
func (a *App) close() {
	if a.form != nil {
		a.form.cancel()
	}
	if a.confirm != nil {
		a.confirm.cancel()
	}
	a.form = nil
	a.confirm = nil
	a.dialog = dialogNone
}

// writeSucceeded runs after a modal's write completed: refresh first, then
// close the dialog.
func (a *App) writeSucceeded(status string) tea.Cmd {
	a.statusMsg = status
	cmd := a.refresh()
	a.close()
	return cmd
}

func (a *App) quit() (tea.Model, tea.Cmd) {
	a.close()
	if a.cancel != nil {
		a.cancel()
	}
	a.logger.Info("session closed")
	return a, tea.Quit
}

func (a *App) highlighted() (employee.Employee, bool) {
	if len(a.roster) == 0 {
		return employee.Employee{}, false
	}
	idx := a.table.Cursor()
	if idx < 0 || idx >= len(a.roster) {
		return employee.Employee{}, false
	}
	return a.roster[idx], true
}

// View renders the current state to a string.
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 100
	}
	header := headerStyle.Render("⬡ ROSTER · Employee List")

	var main string
	switch a.dialog {
	case dialogForm:
		main = a.form.View()
	case dialogDelete:
		main = a.confirm.View()
	default:
		main = a.renderRoster()
	}
	if a.dialog != dialogNone {
		main = lipgloss.PlaceHorizontal(max(20, width-2), lipgloss.Center, main)
	}

	sections := []string{header, main}
	if panel := a.renderLogPanel(width); panel != "" {
		sections = append(sections, panel)
	}
	status := a.statusMsg
	if a.fetchErr != nil && a.dialog == dialogNone {
		status = errorStyle.Render(status)
	}
	sections = append(sections, statusStyle.Render(status))
	if a.dialog == dialogNone {
		sections = append(sections, a.help.View(listKeys))
	}
	return strings.Join(sections, "\n")
}

func (a *App) renderRoster() string {
	if len(a.roster) == 0 {
		if a.fetching && !a.loaded {
			return emptyStyle.Render("Loading...")
		}
		return emptyStyle.Render("No Data")
	}
	return boxStyle.Render(a.table.View())
}

func (a *App) renderLogPanel(width int) string {
	if a.journal == nil {
		return ""
	}
	lines, _ := a.journal.Tail(logPanelLines)
	if len(lines) == 0 {
		return ""
	}
	head := titleStyle.Render("LOG")
	body := hintStyle.Render(strings.Join(lines, "\n"))
	return boxStyle.Width(max(20, width-4)).Render(head + "\n" + body)
}

func rosterColumns(width int) []table.Column {
	avail := max(60, width-10)
	return []table.Column{
		{Title: "Full Name", Width: avail * 18 / 100},
		{Title: "Email", Width: avail * 22 / 100},
		{Title: "Title", Width: avail * 16 / 100},
		{Title: "Age", Width: 4},
		{Title: "Phone", Width: 16},
		{Title: "Skills", Width: max(10, avail*44/100-20)},
	}
}

func rosterRows(roster []employee.Employee) []table.Row {
	rows := make([]table.Row, 0, len(roster))
	for _, e := range roster {
		rows = append(rows, table.Row{e.Name, e.Email, e.Title, strconv.Itoa(e.Age), e.Phone, e.SkillLabels()})
	}
	return rows
}

func rosterTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#5B8DEF")).
		Bold(false)
	return styles
}
