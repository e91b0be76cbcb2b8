package tui

import (
	"errors"
	"strings"
	"testing"

	"github.com/kingrea/roster/internal/employee"
	"github.com/kingrea/roster/internal/store"
	"github.com/kingrea/roster/internal/validation"
)

func TestEditFormIsPopulatedExactly(t *testing.T) {
	original := sampleEmployee("a1")
	original.Skills = []employee.Tag{{Label: "Vite", Value: "vite"}, {Label: "React", Value: "react"}}
	app := startApp(t, newFakeStore(original))

	press(t, app, "e")
	if app.dialog != dialogForm || app.form.mode != formEdit {
		t.Fatalf("expected edit form, dialog=%v", app.dialog)
	}
	v := app.form.values()
	if v.Name != original.Name || v.Email != original.Email || v.Title != original.Title ||
		v.Age != "33" || v.Phone != original.Phone {
		t.Fatalf("form fields do not match record: %+v", v)
	}
	if !v.Employee("a1").Equal(original) {
		t.Fatalf("skills not mapped onto the catalog: %+v", v.Skills)
	}
	if len(app.form.errs) != 0 || len(app.form.touched) != 0 {
		t.Fatalf("freshly opened form should show no errors")
	}
}

func TestAgeBoundariesBlockSubmitWithoutNetwork(t *testing.T) {
	cases := []struct {
		age     string
		wantErr string
	}{
		{"17", "Minimum age is 18"},
		{"66", "Maximum age is 65"},
		{"", "Age is required"},
		{"3a", "Age must be a whole number"},
		{"18", ""},
		{"65", ""},
	}
	for _, tc := range cases {
		t.Run("age="+tc.age, func(t *testing.T) {
			st := newFakeStore()
			app := startApp(t, st)
			press(t, app, "a")
			v := sampleValues()
			v.Age = tc.age
			fillForm(t, app, v)
			press(t, app, "ctrl+s")

			if tc.wantErr != "" {
				if st.count(store.OpCreate) != 0 {
					t.Fatalf("invalid age reached the store")
				}
				if got := app.form.errs.Field(validation.FieldAge); got != tc.wantErr {
					t.Fatalf("age error = %q, want %q", got, tc.wantErr)
				}
				if app.dialog != dialogForm {
					t.Fatalf("form should stay open")
				}
				return
			}
			if st.count(store.OpCreate) != 1 || app.dialog != dialogNone {
				t.Fatalf("valid age should save: creates=%d dialog=%v", st.count(store.OpCreate), app.dialog)
			}
		})
	}
}

func TestPhoneRules(t *testing.T) {
	cases := map[string]string{
		"0123456789":        "",
		"123456789":         "Invalid phone number",
		"12345678901234567": "Invalid phone number",
		"01234-56789":       "Invalid phone number",
		"":                  "Phone number is required",
	}
	for phone, want := range cases {
		st := newFakeStore()
		app := startApp(t, st)
		press(t, app, "a")
		v := sampleValues()
		v.Phone = phone
		fillForm(t, app, v)
		press(t, app, "ctrl+s")

		if want == "" {
			if st.count(store.OpCreate) != 1 {
				t.Fatalf("phone %q should be accepted", phone)
			}
			continue
		}
		if got := app.form.errs.Field(validation.FieldPhone); got != want {
			t.Fatalf("phone %q: error %q, want %q", phone, got, want)
		}
		if st.count(store.OpCreate) != 0 {
			t.Fatalf("phone %q reached the store", phone)
		}
	}
}

func TestEmptySkillsBlocksSubmit(t *testing.T) {
	st := newFakeStore()
	app := startApp(t, st)
	press(t, app, "a")
	v := sampleValues()
	v.Skills = nil
	fillForm(t, app, v)
	press(t, app, "ctrl+s")

	if st.count(store.OpCreate) != 0 {
		t.Fatalf("submit without skills reached the store")
	}
	errs := app.form.errs
	if len(errs) != 1 || errs.Field(validation.FieldSkills) != "At least one skill is required" {
		t.Fatalf("expected only the skills error, got %v", errs)
	}
	if !strings.Contains(app.View(), "At least one skill is required") {
		t.Fatalf("skills error not rendered")
	}
}

func TestErrorsAppearOnlyForTouchedFields(t *testing.T) {
	app := startApp(t, newFakeStore())
	press(t, app, "a")
	typeInto(t, app, validation.FieldEmail, "not-an-email")

	f := app.form
	if got := f.fieldError(validation.FieldEmail); got != "Invalid email address" {
		t.Fatalf("email error = %q", got)
	}
	if got := f.fieldError(validation.FieldName); got != "" {
		t.Fatalf("untouched name should not show an error, got %q", got)
	}
}

func TestSkillToggleWithKeys(t *testing.T) {
	app := startApp(t, newFakeStore())
	press(t, app, "a")
	f := app.form
	f.setFocus(fieldIndex(validation.FieldSkills))

	press(t, app, "right", " ", "right", "x", "left", " ")
	v := f.values()
	if len(v.Skills) != 1 || v.Skills[0] != f.catalog[2] {
		t.Fatalf("expected only the third catalog skill, got %+v", v.Skills)
	}
}

func TestFocusCyclesThroughSubmit(t *testing.T) {
	app := startApp(t, newFakeStore())
	press(t, app, "a")
	f := app.form
	for range validation.Fields {
		press(t, app, "tab")
	}
	if f.focus != focusSubmit {
		t.Fatalf("expected submit focus, got %d", f.focus)
	}
	press(t, app, "tab")
	if f.focus != 0 {
		t.Fatalf("focus should wrap to the first field, got %d", f.focus)
	}
	press(t, app, "shift+tab")
	if f.focus != focusSubmit {
		t.Fatalf("shift+tab should wrap back to submit, got %d", f.focus)
	}
}

func TestEnterOnSubmitButtonSaves(t *testing.T) {
	st := newFakeStore()
	app := startApp(t, st)
	press(t, app, "a")
	fillForm(t, app, sampleValues())
	app.form.setFocus(focusSubmit)
	press(t, app, "enter")
	if st.count(store.OpCreate) != 1 {
		t.Fatalf("enter on submit should create, got %d", st.count(store.OpCreate))
	}
}

func TestDoubleSubmitIssuesOneCreate(t *testing.T) {
	gen, calls := fixedIDs("once")
	st := newFakeStore()
	app := startApp(t, st, WithIDGenerator(gen))
	press(t, app, "a")
	fillForm(t, app, sampleValues())

	_, first := app.Update(keyMsg("ctrl+s"))
	_, second := app.Update(keyMsg("ctrl+s"))
	if !app.form.submitting {
		t.Fatalf("form should be submitting")
	}
	if second != nil {
		t.Fatalf("second submit should be ignored")
	}
	drain(t, app, first)
	drain(t, app, second)

	if st.count(store.OpCreate) != 1 || *calls != 1 {
		t.Fatalf("expected exactly one create, got %d creates and %d ids", st.count(store.OpCreate), *calls)
	}
	if st.mem.Len() != 1 {
		t.Fatalf("expected one stored record, got %d", st.mem.Len())
	}
}

func TestEditingAgeOnlyChangesAge(t *testing.T) {
	original := sampleEmployee("a1")
	st := newFakeStore(original, sampleEmployee("b2"))
	app := startApp(t, st)

	press(t, app, "e")
	typeInto(t, app, validation.FieldAge, "41")
	press(t, app, "ctrl+s")

	if st.count(store.OpUpdate) != 1 || st.count(store.OpCreate) != 0 {
		t.Fatalf("expected one update, got updates=%d creates=%d", st.count(store.OpUpdate), st.count(store.OpCreate))
	}
	stored, _ := st.mem.Get("a1")
	want := original.Clone()
	want.Age = 41
	if !stored.Equal(want) {
		t.Fatalf("update changed more than age: %+v", stored)
	}
	if other, _ := st.mem.Get("b2"); !other.Equal(sampleEmployee("b2")) {
		t.Fatalf("update touched another record: %+v", other)
	}
	got, _ := employee.Find(app.roster, "a1")
	if got.Age != 41 || app.statusMsg != "Updated Mona Zaki" {
		t.Fatalf("roster not refreshed after update: %+v status=%q", got, app.statusMsg)
	}
}

func TestSaveFailureKeepsInputAndRetriesWithSameID(t *testing.T) {
	gen, calls := fixedIDs("keep1", "other")
	st := newFakeStore()
	st.failOn(store.OpCreate, networkDown(store.OpCreate))
	app := startApp(t, st, WithIDGenerator(gen))

	press(t, app, "a")
	fillForm(t, app, sampleValues())
	press(t, app, "ctrl+s")

	f := app.form
	if app.dialog != dialogForm || f == nil {
		t.Fatalf("failed save must keep the form open")
	}
	if !errors.Is(f.saveErr, store.ErrNetwork) || f.submitting {
		t.Fatalf("expected recorded network error, got %v submitting=%v", f.saveErr, f.submitting)
	}
	if v := f.values(); !v.Employee("x").Equal(sampleValues().Employee("x")) {
		t.Fatalf("user input lost after failure: %+v", v)
	}
	if !strings.Contains(app.statusMsg, "retry") {
		t.Fatalf("status should offer a retry, got %q", app.statusMsg)
	}

	st.failOn(store.OpCreate, nil)
	press(t, app, "ctrl+s")
	if app.dialog != dialogNone {
		t.Fatalf("retry should succeed and close the form")
	}
	if *calls != 1 {
		t.Fatalf("retry should reuse the generated id, generated %d", *calls)
	}
	if _, ok := employee.Find(app.roster, "keep1"); !ok {
		t.Fatalf("retried record missing: %+v", app.roster)
	}
}

func TestConflictRegeneratesID(t *testing.T) {
	gen, _ := fixedIDs("taken", "fresh")
	st := newFakeStore(sampleEmployee("taken"))
	app := startApp(t, st, WithIDGenerator(gen))

	press(t, app, "a")
	v := sampleValues()
	v.Name = "Second Person"
	fillForm(t, app, v)
	press(t, app, "ctrl+s")
	if app.dialog != dialogForm || app.form.pendingID != "" {
		t.Fatalf("conflict should keep the form and drop the id, pending=%q", app.form.pendingID)
	}

	press(t, app, "ctrl+s")
	got, ok := employee.Find(app.roster, "fresh")
	if !ok || got.Name != "Second Person" {
		t.Fatalf("expected record under a fresh id, roster=%+v", app.roster)
	}
}

func TestClosingFormDiscardsLateResult(t *testing.T) {
	st := newFakeStore()
	app := startApp(t, st)
	press(t, app, "a")
	fillForm(t, app, sampleValues())

	_, pending := app.Update(keyMsg("ctrl+s"))
	seq := app.fetchSeq
	press(t, app, "esc")
	if app.dialog != dialogNone || app.statusMsg != "Cancelled" {
		t.Fatalf("esc should close the form, dialog=%v status=%q", app.dialog, app.statusMsg)
	}

	drain(t, app, pending)
	if app.fetchSeq != seq {
		t.Fatalf("late result should not trigger a refresh")
	}
	if st.mem.Len() != 0 {
		t.Fatalf("cancelled create still reached the collection")
	}
	if app.statusMsg != "Cancelled" {
		t.Fatalf("late result changed the status to %q", app.statusMsg)
	}
}

func TestLateResultDoesNotLeakIntoNextSession(t *testing.T) {
	st := newFakeStore()
	app := startApp(t, st)
	press(t, app, "a")
	fillForm(t, app, sampleValues())
	_, pending := app.Update(keyMsg("ctrl+s"))
	press(t, app, "esc", "a")

	next := app.form
	drain(t, app, pending)
	if app.form != next || app.dialog != dialogForm {
		t.Fatalf("new form session was disturbed by an old result")
	}
	if next.saveErr != nil || next.submitting {
		t.Fatalf("old result applied to new session")
	}
}

func TestEditKeepsSkillsOutsideCatalog(t *testing.T) {
	legacy := sampleEmployee("a1")
	legacy.Skills = append(legacy.Skills, employee.Tag{Label: "Cobol", Value: "cobol"})
	st := newFakeStore(legacy)
	app := startApp(t, st)

	press(t, app, "e")
	f := app.form
	if got := f.values().Employee("a1"); !got.Equal(legacy) {
		t.Fatalf("form dropped a stored skill: %+v", got.Skills)
	}
	if !strings.Contains(app.View(), "Cobol") {
		t.Fatalf("unknown skill not shown in the form")
	}

	typeInto(t, app, validation.FieldAge, "41")
	press(t, app, "ctrl+s")
	if st.count(store.OpUpdate) != 0 {
		t.Fatalf("save with an unknown skill reached the store")
	}
	if got := f.errs.Field(validation.FieldSkills); got != "Unknown skill selected" {
		t.Fatalf("skills error = %q", got)
	}
	if stored, _ := st.mem.Get("a1"); len(stored.Skills) != 3 {
		t.Fatalf("stored skills changed: %+v", stored.Skills)
	}

	// the unknown chip sits right after the catalog; space removes it
	f.setFocus(fieldIndex(validation.FieldSkills))
	f.skillCursor = len(f.catalog)
	press(t, app, " ")
	if len(f.unknown) != 0 || f.skillCursor != len(f.catalog)-1 {
		t.Fatalf("unknown chip not removed: unknown=%v cursor=%d", f.unknown, f.skillCursor)
	}
	press(t, app, "ctrl+s")

	stored, _ := st.mem.Get("a1")
	want := sampleEmployee("a1")
	want.Age = 41
	if st.count(store.OpUpdate) != 1 || !stored.Equal(want) {
		t.Fatalf("expected update without the removed skill, got %+v", stored)
	}
}
