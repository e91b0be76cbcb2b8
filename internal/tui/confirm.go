package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/kingrea/roster/internal/employee"
)

// confirmModal gates an irreversible delete behind an explicit confirmation.
type confirmModal struct {
	app     *App
	target  employee.Employee
	session int
	ctx     context.Context
	stop    context.CancelFunc

	// inFlight disables both buttons for the duration of the request
	inFlight    bool
	focusCancel bool
	err         error
	spinner     spinner.Model
}

func newConfirmModal(app *App, target employee.Employee, session int) *confirmModal {
	ctx, stop := context.WithCancel(app.ctx)
	return &confirmModal{
		app:     app,
		target:  target,
		session: session,
		ctx:     ctx,
		stop:    stop,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

func (c *confirmModal) cancel() {
	if c.stop != nil {
		c.stop()
	}
}

// Update handles keys and spinner ticks for the confirmation.
func (c *confirmModal) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !c.inFlight {
			return nil
		}
		var cmd tea.Cmd
		c.spinner, cmd = c.spinner.Update(msg)
		return cmd
	case tea.KeyMsg:
		if c.inFlight {
			return nil
		}
		switch msg.String() {
		case "y", "Y":
			return c.confirm()
		case "n", "N", "esc":
			return c.dismiss()
		case "tab", "left", "right", "h", "l":
			c.focusCancel = !c.focusCancel
		case "enter":
			if c.focusCancel {
				return c.dismiss()
			}
			return c.confirm()
		}
	}
	return nil
}

// confirm issues the delete keyed by the selected employee's id.
func (c *confirmModal) confirm() tea.Cmd {
	if c.inFlight {
		return nil
	}
	c.inFlight = true
	c.err = nil
	ctx, st, session, id := c.ctx, c.app.store, c.session, c.target.ID
	c.app.logger.Info("deleting employee", zap.String("id", id))
	remove := func() tea.Msg {
		return employeeDeletedMsg{session: session, id: id, err: st.Delete(ctx, id)}
	}
	return tea.Batch(remove, c.spinner.Tick)
}

func (c *confirmModal) dismiss() tea.Cmd {
	if c.inFlight {
		return nil
	}
	c.app.statusMsg = "Delete cancelled"
	c.app.close()
	return nil
}

// handleDeleted clears the in-flight flag, then either refreshes and closes
// or keeps the modal open with the failure shown.
func (c *confirmModal) handleDeleted(msg employeeDeletedMsg) tea.Cmd {
	c.inFlight = false
	if msg.err != nil {
		c.err = msg.err
		c.app.logger.Error("delete failed", zap.String("id", msg.id), zap.Error(msg.err))
		c.app.statusMsg = "Delete failed. y to retry, n to cancel"
		return nil
	}
	c.app.logger.Info("employee deleted", zap.String("id", msg.id))
	return c.app.writeSucceeded(fmt.Sprintf("Deleted %s", c.target.Name))
}

// View renders the confirmation.
func (c *confirmModal) View() string {
	title := titleStyle.Render(fmt.Sprintf("Are you sure you want to delete %s?", c.target.Name))
	desc := hintStyle.Render("This action cannot be undone.")

	deleteLabel, cancelLabel := "Delete", "Cancel"
	var deleteBtn, cancelBtn string
	switch {
	case c.inFlight:
		deleteBtn = disabledButtonStyle.Render(c.spinner.View() + " Deleting...")
		cancelBtn = disabledButtonStyle.Render(cancelLabel)
	case c.focusCancel:
		deleteBtn = buttonStyle.Render(deleteLabel)
		cancelBtn = focusedButtonStyle.Render(cancelLabel)
	default:
		deleteBtn = dangerButtonStyle.Render(deleteLabel)
		cancelBtn = buttonStyle.Render(cancelLabel)
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Top, deleteBtn, "  ", cancelBtn)
	lines := []string{title, desc, "", buttons}
	if c.err != nil {
		lines = append(lines, "", errorStyle.Render(fmt.Sprintf("Delete failed: %v", c.err)))
	}
	lines = append(lines, "", hintStyle.Render("y delete · n/esc cancel"))
	return dangerModalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
