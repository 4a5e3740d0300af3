package components

import (
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func TestMenu_SkipsDisabled(t *testing.T) {
	fired := ""
	action := func(name string) func() tea.Cmd {
		return func() tea.Cmd {
			fired = name
			return nil
		}
	}
	m := NewMenu([]MenuItem{
		{Label: "Lessons", Action: action("lessons"), Disabled: true},
		{Label: "Quiz", Action: action("quiz")},
		{Label: "Shop", Action: action("shop"), Disabled: true},
		{Label: "Stats", Action: action("stats")},
	})

	if m.Selected != 1 {
		t.Fatalf("Selected = %d, want first enabled item 1", m.Selected)
	}

	m, _ = m.Update(specialKey(tea.KeyDown))
	if m.Selected != 3 {
		t.Errorf("Selected after down = %d, want 3", m.Selected)
	}

	m, _ = m.Update(specialKey(tea.KeyEnter))
	if fired != "stats" {
		t.Errorf("fired %q, want stats", fired)
	}
}

func TestMenu_SetDisabledMovesCursor(t *testing.T) {
	m := NewMenu([]MenuItem{{Label: "Quiz"}, {Label: "Shop"}})
	m.SetDisabled(0, true)
	if m.Selected != 1 {
		t.Errorf("Selected = %d, want 1", m.Selected)
	}
}

func TestMultiChoice_NumberKeySubmits(t *testing.T) {
	mc := NewMultiChoice("She ___ a doctor.", []string{"am", "is", "are"})

	mc, _ = mc.Update(keyPress('2'))
	if !mc.Submitted || mc.ChosenIndex != 1 {
		t.Fatalf("Submitted=%v ChosenIndex=%d, want true/1", mc.Submitted, mc.ChosenIndex)
	}

	// Further keys are ignored once submitted.
	mc, _ = mc.Update(keyPress('3'))
	if mc.ChosenIndex != 1 {
		t.Errorf("ChosenIndex changed to %d after submit", mc.ChosenIndex)
	}
}

func TestMultiChoice_OutOfRangeNumber(t *testing.T) {
	mc := NewMultiChoice("q", []string{"a", "b"})
	mc, _ = mc.Update(keyPress('5'))
	if mc.Submitted {
		t.Error("out-of-range number should not submit")
	}
}

func TestMultiChoice_ArrowsAndEnter(t *testing.T) {
	mc := NewMultiChoice("q", []string{"a", "b", "c"})
	mc, _ = mc.Update(specialKey(tea.KeyDown))
	mc, _ = mc.Update(specialKey(tea.KeyDown))
	mc, _ = mc.Update(specialKey(tea.KeyDown))
	if mc.Selected != 2 {
		t.Errorf("Selected = %d, want clamp at 2", mc.Selected)
	}
	mc, _ = mc.Update(specialKey(tea.KeyEnter))
	if mc.ChosenIndex != 2 {
		t.Errorf("ChosenIndex = %d, want 2", mc.ChosenIndex)
	}
}

func TestMultiChoice_ResetReopens(t *testing.T) {
	mc := NewMultiChoice("q", []string{"a", "b"})
	mc, _ = mc.Update(specialKey(tea.KeyEnter))
	mc.Reveal(1)
	mc.Reset()
	if mc.Submitted || mc.ChosenIndex != -1 || mc.CorrectIndex != -1 {
		t.Errorf("Reset left %+v", mc)
	}
}

func TestMultiChoice_ViewLabels(t *testing.T) {
	mc := NewMultiChoice("q", []string{"am", "is"})
	view := mc.View()
	if !strings.Contains(view, "A)  am") || !strings.Contains(view, "B)  is") {
		t.Errorf("view missing option labels:\n%s", view)
	}
}

func TestTextInput_SubmitValidates(t *testing.T) {
	ti := NewTextInput("email", 0, func(s string) error {
		if !strings.Contains(s, "@") {
			return errors.New("enter an email address")
		}
		return nil
	})
	ti.Model.SetValue("  mina  ")

	v, err := ti.Submit()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if v != "mina" {
		t.Errorf("value = %q, want trimmed", v)
	}
	if !strings.Contains(ti.View(), "enter an email address") {
		t.Error("validation error should render")
	}

	ti.Model.SetValue("mina@example.com")
	if _, err := ti.Submit(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestProgressBar_Clamps(t *testing.T) {
	tests := []struct {
		pct     float64
		filled  int
		percent string
	}{
		{-1, 0, "0%"},
		{0, 0, "0%"},
		{0.5, 5, "50%"},
		{2, 10, "100%"},
	}
	for _, tt := range tests {
		// Width 15 leaves a 10-cell bar next to the 5-cell percent.
		v := NewProgressBar("", tt.pct, true, 15).View()
		if got := strings.Count(v, "━"); got != tt.filled {
			t.Errorf("pct %v: filled = %d, want %d", tt.pct, got, tt.filled)
		}
		if got := strings.Count(v, "━") + strings.Count(v, "─"); got != 10 {
			t.Errorf("pct %v: bar width = %d, want 10", tt.pct, got)
		}
		if !strings.Contains(v, tt.percent) {
			t.Errorf("pct %v: missing %q in %q", tt.pct, tt.percent, v)
		}
	}
}

func TestFraction(t *testing.T) {
	tests := []struct {
		done, total int
		want        float64
	}{
		{0, 0, 0},
		{1, 4, 0.25},
		{5, 4, 1},
		{-1, 4, 0},
	}
	for _, tt := range tests {
		if got := Fraction(tt.done, tt.total); got != tt.want {
			t.Errorf("Fraction(%d, %d) = %v, want %v", tt.done, tt.total, got, tt.want)
		}
	}
}
