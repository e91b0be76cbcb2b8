package tui

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/kingrea/roster/internal/employee"
	"github.com/kingrea/roster/internal/store"
	"github.com/kingrea/roster/internal/validation"
)

type formMode int

const (
	formCreate formMode = iota
	formEdit
)

func (m formMode) String() string {
	if m == formEdit {
		return "edit"
	}
	return "create"
}

// focusSubmit is the position after the last field.
const focusSubmit = -1

type inputSpec struct {
	field       validation.Field
	label       string
	placeholder string
	hint        string
	charLimit   int
}

var inputSpecs = map[validation.Field]inputSpec{
	validation.FieldName:  {validation.FieldName, "Full Name", "Abdallah Zaher", "This is your public display name.", 80},
	validation.FieldEmail: {validation.FieldEmail, "Email", "abdallahabusedo@gmail.com", "This is your email address.", 120},
	validation.FieldTitle: {validation.FieldTitle, "Title", "Software Engineer", "This is your job title.", 80},
	validation.FieldAge:   {validation.FieldAge, "Age", "25", "This is your age.", 3},
	validation.FieldPhone: {validation.FieldPhone, "Phone", "01111111111", "This is your phone number.", 20},
}

// formModal collects one employee's fields. A bound form edits that
// employee; an unbound form creates a new one.
type formModal struct {
	app     *App
	mode    formMode
	bound   *employee.Employee
	session int
	ctx     context.Context
	stop    context.CancelFunc

	inputs      map[validation.Field]*textinput.Model
	catalog     []employee.Tag
	picked      []bool
	// unknown holds stored tags outside the catalog; they block saving
	// until removed
	unknown     []employee.Tag
	skillCursor int
	focus       int
	touched     map[validation.Field]bool
	errs        validation.Errors

	submitting bool
	pendingID  string
	saveErr    error
	spinner    spinner.Model
}

func newFormModal(app *App, bound *employee.Employee, session int) *formModal {
	ctx, stop := context.WithCancel(app.ctx)
	f := &formModal{
		app:     app,
		bound:   bound,
		session: session,
		ctx:     ctx,
		stop:    stop,
		inputs:  map[validation.Field]*textinput.Model{},
		catalog: employee.Catalog(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	if bound != nil {
		f.mode = formEdit
	}
	for field, spec := range inputSpecs {
		input := textinput.New()
		input.Placeholder = spec.placeholder
		input.CharLimit = spec.charLimit
		input.Prompt = "› "
		input.Cursor.SetMode(cursor.CursorStatic)
		f.inputs[field] = &input
	}
	f.reset()
	if bound != nil {
		f.load(validation.FromEmployee(*bound))
	}
	return f
}

// Init focuses the first field.
func (f *formModal) Init() tea.Cmd {
	return f.setFocus(0)
}

// reset puts every field back to its empty default.
func (f *formModal) reset() {
	for _, input := range f.inputs {
		input.SetValue("")
	}
	f.picked = make([]bool, len(f.catalog))
	f.unknown = nil
	f.skillCursor = 0
	f.touched = map[validation.Field]bool{}
	f.errs = validation.Errors{}
	f.saveErr = nil
	f.pendingID = ""
}

// load pre-populates the fields verbatim, mapping skills onto catalog slots.
func (f *formModal) load(v validation.Values) {
	f.inputs[validation.FieldName].SetValue(v.Name)
	f.inputs[validation.FieldEmail].SetValue(v.Email)
	f.inputs[validation.FieldTitle].SetValue(v.Title)
	f.inputs[validation.FieldAge].SetValue(v.Age)
	f.inputs[validation.FieldPhone].SetValue(v.Phone)
	f.picked = make([]bool, len(f.catalog))
	f.unknown = nil
	for _, tag := range v.Skills {
		if idx := employee.CatalogIndex(tag.Value); idx >= 0 && employee.InCatalog(tag) {
			f.picked[idx] = true
			continue
		}
		f.unknown = append(f.unknown, tag)
	}
}

// values reads the current field state.
func (f *formModal) values() validation.Values {
	v := validation.Values{
		Name:  f.inputs[validation.FieldName].Value(),
		Email: f.inputs[validation.FieldEmail].Value(),
		Title: f.inputs[validation.FieldTitle].Value(),
		Age:   f.inputs[validation.FieldAge].Value(),
		Phone: f.inputs[validation.FieldPhone].Value(),
	}
	for idx, on := range f.picked {
		if on {
			v.Skills = append(v.Skills, f.catalog[idx])
		}
	}
	v.Skills = append(v.Skills, f.unknown...)
	return v
}

func (f *formModal) cancel() {
	if f.stop != nil {
		f.stop()
	}
}

// Update handles keys and spinner ticks for the form.
func (f *formModal) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !f.submitting {
			return nil
		}
		var cmd tea.Cmd
		f.spinner, cmd = f.spinner.Update(msg)
		return cmd
	case tea.KeyMsg:
		return f.handleKey(msg)
	}
	return nil
}

func (f *formModal) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		f.app.logger.Debug("form closed", zap.String("mode", f.mode.String()), zap.Bool("pending", f.submitting))
		f.app.statusMsg = "Cancelled"
		f.app.close()
		return nil
	case "ctrl+s":
		return f.submit()
	}
	if f.submitting {
		return nil
	}
	switch msg.String() {
	case "tab", "down":
		return f.setFocus(f.nextFocus(1))
	case "shift+tab", "up":
		return f.setFocus(f.nextFocus(-1))
	case "enter":
		if f.focus == focusSubmit {
			return f.submit()
		}
		return f.setFocus(f.nextFocus(1))
	}

	field := f.focusedField()
	if field == validation.FieldSkills {
		switch msg.String() {
		case "left", "h":
			if f.skillCursor > 0 {
				f.skillCursor--
			}
		case "right", "l":
			if f.skillCursor < f.chipCount()-1 {
				f.skillCursor++
			}
		case " ", "x":
			f.toggleSkill(f.skillCursor)
		}
		return nil
	}
	input, ok := f.inputs[field]
	if !ok {
		return nil
	}
	before := input.Value()
	updated, cmd := input.Update(msg)
	*input = updated
	if input.Value() != before {
		f.changed(field)
	}
	return cmd
}

// chipCount is the catalog plus any unknown tags shown after it.
func (f *formModal) chipCount() int {
	return len(f.catalog) + len(f.unknown)
}

// toggleSkill flips the catalog entry at idx. Positions past the catalog
// address unknown tags, which can only be removed.
func (f *formModal) toggleSkill(idx int) {
	switch {
	case idx >= 0 && idx < len(f.picked):
		f.picked[idx] = !f.picked[idx]
	case idx >= len(f.picked) && idx < f.chipCount():
		pos := idx - len(f.picked)
		f.unknown = append(f.unknown[:pos:pos], f.unknown[pos+1:]...)
		if f.skillCursor >= f.chipCount() {
			f.skillCursor = f.chipCount() - 1
		}
	default:
		return
	}
	f.changed(validation.FieldSkills)
}

// changed marks field touched and re-runs validation.
func (f *formModal) changed(field validation.Field) {
	f.touched[field] = true
	f.errs = f.app.schema.Validate(f.values())
}

func (f *formModal) focusedField() validation.Field {
	if f.focus < 0 || f.focus >= len(validation.Fields) {
		return ""
	}
	return validation.Fields[f.focus]
}

func (f *formModal) nextFocus(step int) int {
	// positions: 0..len(Fields)-1 then the submit button
	total := len(validation.Fields) + 1
	pos := f.focus
	if pos == focusSubmit {
		pos = total - 1
	}
	pos = (pos + step + total) % total
	if pos == total-1 {
		return focusSubmit
	}
	return pos
}

func (f *formModal) setFocus(pos int) tea.Cmd {
	f.focus = pos
	var cmd tea.Cmd
	for field, input := range f.inputs {
		if field == f.focusedField() {
			cmd = input.Focus()
			continue
		}
		input.Blur()
	}
	return cmd
}

// submit validates and, when every rule passes, issues the create or update.
// While a submission is pending further submits are ignored.
func (f *formModal) submit() tea.Cmd {
	if f.submitting {
		f.app.logger.Debug("submit ignored while a save is pending", zap.Int("session", f.session))
		return nil
	}
	values := f.values()
	for _, field := range validation.Fields {
		f.touched[field] = true
	}
	f.errs = f.app.schema.Validate(values)
	if !f.errs.OK() {
		f.saveErr = nil
		f.app.statusMsg = "Fix the highlighted fields"
		return nil
	}

	var record employee.Employee
	if f.bound != nil {
		record = values.Employee(f.bound.ID)
	} else {
		// one id per form session, so a retry after a failed create reuses it
		if f.pendingID == "" {
			f.pendingID = f.app.newID()
		}
		record = values.Employee(f.pendingID)
	}

	f.submitting = true
	f.saveErr = nil
	for _, input := range f.inputs {
		input.Blur()
	}
	ctx, st, session, mode := f.ctx, f.app.store, f.session, f.mode
	f.app.logger.Info("saving employee", zap.String("mode", mode.String()), zap.String("id", record.ID))
	save := func() tea.Msg {
		var err error
		if mode == formEdit {
			err = st.Update(ctx, record)
		} else {
			err = st.Create(ctx, record)
		}
		return employeeSavedMsg{session: session, mode: mode, employee: record, err: err}
	}
	return tea.Batch(save, f.spinner.Tick)
}

// handleSaved applies the result of this session's submission.
func (f *formModal) handleSaved(msg employeeSavedMsg) tea.Cmd {
	f.submitting = false
	if msg.err != nil {
		f.saveErr = msg.err
		f.app.logger.Error("save failed",
			zap.String("mode", msg.mode.String()),
			zap.String("id", msg.employee.ID),
			zap.Error(msg.err))
		var reqErr *store.RequestError
		if msg.mode == formCreate && errors.As(msg.err, &reqErr) && reqErr.StatusCode == http.StatusConflict {
			// the store already holds this id; the next attempt gets a fresh one
			f.pendingID = ""
		}
		f.app.statusMsg = "Save failed, your changes are kept. ctrl+s to retry, esc to cancel"
		return f.setFocus(f.focus)
	}
	f.app.logger.Info("employee saved", zap.String("mode", msg.mode.String()), zap.String("id", msg.employee.ID))
	status := fmt.Sprintf("Added %s", msg.employee.Name)
	if msg.mode == formEdit {
		status = fmt.Sprintf("Updated %s", msg.employee.Name)
	}
	f.reset()
	return f.app.writeSucceeded(status)
}

// View renders the form.
func (f *formModal) View() string {
	title := "Add Employee"
	desc := "Add new employee details"
	if f.bound != nil {
		title = fmt.Sprintf("Edit Employee - %s", f.bound.Name)
		desc = "Edit the employee details"
	}
	lines := []string{titleStyle.Render(title), hintStyle.Render(desc), ""}
	for idx, field := range validation.Fields {
		focused := idx == f.focus
		if field == validation.FieldSkills {
			lines = append(lines, f.renderSkills(focused)...)
			continue
		}
		lines = append(lines, f.renderInput(field, focused)...)
	}

	label := "Add Employee"
	if f.bound != nil {
		label = "Edit Employee"
	}
	button := buttonStyle.Render(label)
	switch {
	case f.submitting:
		button = disabledButtonStyle.Render(f.spinner.View() + " Saving…")
	case f.focus == focusSubmit:
		button = focusedButtonStyle.Render(label)
	}
	lines = append(lines, button)
	if f.saveErr != nil {
		lines = append(lines, "", errorStyle.Render(fmt.Sprintf("Save failed: %v", f.saveErr)))
	}
	lines = append(lines, "", hintStyle.Render("tab/↑↓ move · space toggle skill · ctrl+s save · esc cancel"))
	return modalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (f *formModal) renderInput(field validation.Field, focused bool) []string {
	spec := inputSpecs[field]
	label := labelStyle.Render(spec.label)
	if focused {
		label = focusedLabelStyle.Render(spec.label)
	}
	out := []string{label, f.inputs[field].View()}
	if msg := f.fieldError(field); msg != "" {
		out = append(out, errorStyle.Render(msg))
	} else {
		out = append(out, hintStyle.Render(spec.hint))
	}
	return append(out, "")
}

func (f *formModal) renderSkills(focused bool) []string {
	label := labelStyle.Render("Skills")
	if focused {
		label = focusedLabelStyle.Render("Skills")
	}
	chips := make([]string, 0, len(f.catalog))
	for idx, tag := range f.catalog {
		text := tag.Label
		if focused && idx == f.skillCursor {
			text = "[" + text + "]"
		}
		if f.picked[idx] {
			chips = append(chips, selectedTagStyle.Render(text))
		} else {
			chips = append(chips, tagStyle.Render(text))
		}
	}
	for idx, tag := range f.unknown {
		text := tag.Label + " ✕"
		if focused && len(f.catalog)+idx == f.skillCursor {
			text = "[" + text + "]"
		}
		chips = append(chips, unknownTagStyle.Render(text))
	}
	out := []string{label, wrapChips(chips, 56)}
	if msg := f.fieldError(validation.FieldSkills); msg != "" {
		out = append(out, errorStyle.Render(msg))
	} else {
		out = append(out, hintStyle.Render("Select frameworks you like..."))
	}
	return append(out, "")
}

func (f *formModal) fieldError(field validation.Field) string {
	if !f.touched[field] {
		return ""
	}
	return f.errs.Field(field)
}

func wrapChips(chips []string, width int) string {
	var rows []string
	var row []string
	used := 0
	for _, chip := range chips {
		w := lipgloss.Width(chip) + 1
		if used+w > width && len(row) > 0 {
			rows = append(rows, strings.Join(row, " "))
			row, used = nil, 0
		}
		row = append(row, chip)
		used += w
	}
	if len(row) > 0 {
		rows = append(rows, strings.Join(row, " "))
	}
	return strings.Join(rows, "\n")
}
