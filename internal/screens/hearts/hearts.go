package hearts

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/levo/internal/api"
	"github.com/abhisek/levo/internal/app"
	"github.com/abhisek/levo/internal/fetch"
	"github.com/abhisek/levo/internal/hearts"
	"github.com/abhisek/levo/internal/screen"
	"github.com/abhisek/levo/internal/service"
	"github.com/abhisek/levo/internal/shop"
	"github.com/abhisek/levo/internal/ui/components"
	"github.com/abhisek/levo/internal/ui/layout"
	"github.com/abhisek/levo/internal/ui/theme"
)

const (
	itemAd = iota
	itemSingle
	itemFull
)

type refilledMsg struct {
	Method string
	Err    error
}

// HeartsScreen shows the heart ledger and offers refills.
type HeartsScreen struct {
	app    *app.App
	res    *fetch.Resource[hearts.Status]
	status *hearts.Status
	menu   components.Menu
	busy   bool
	notice string
	errMsg string
}

var _ screen.Screen = (*HeartsScreen)(nil)
var _ screen.KeyHintProvider = (*HeartsScreen)(nil)

// New creates a HeartsScreen.
func New(a *app.App) *HeartsScreen {
	h := &HeartsScreen{
		app: a,
		res: fetch.New(a.Services.Hearts.Get, fetch.Immediate()),
	}
	h.menu = components.NewMenu([]components.MenuItem{
		itemAd:     {Label: "WATCH AD  +1", Action: h.refill(service.RefillAd)},
		itemSingle: {Label: "BUY 1 HEART", Action: h.refill(service.RefillCoinSingle)},
		itemFull:   {Label: fmt.Sprintf("REFILL ALL  ● %d", fullRefillPrice()), Action: h.refill(service.RefillCoinFull)},
	})
	h.gate()
	return h
}

func fullRefillPrice() int {
	it, _ := shop.Lookup("heart_refill")
	return it.Price
}

func (h *HeartsScreen) Init() tea.Cmd {
	return screen.Load(h.res)
}

func (h *HeartsScreen) Title() string {
	return "Hearts"
}

func (h *HeartsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Refill"},
		{Key: "Esc", Description: "Back"},
	}
}

func (h *HeartsScreen) refill(method string) func() tea.Cmd {
	return func() tea.Cmd {
		if h.busy {
			return nil
		}
		h.busy = true
		h.notice, h.errMsg = "", ""
		a := h.app
		return func() tea.Msg {
			ctx := context.Background()
			err := a.Shop.RefillHearts(ctx, method)
			if err == nil && method != service.RefillAd {
				if cerr := a.RefreshCoins(ctx); cerr != nil {
					a.Logger.Warn("coin balance not refreshed", zap.Error(cerr))
				}
			}
			return refilledMsg{Method: method, Err: err}
		}
	}
}

func (h *HeartsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.Loaded[hearts.Status]:
		if msg.State.Err != "" {
			if !h.app.Authenticated() {
				return h, screen.SignOut
			}
			h.errMsg = msg.State.Err
			return h, nil
		}
		h.status = msg.State.Data
		h.app.Hearts.Apply(*msg.State.Data)
		h.gate()
		return h, nil

	case refilledMsg:
		h.busy = false
		if msg.Err != nil {
			if h.app.SessionLost(msg.Err) {
				return h, screen.SignOut
			}
			h.errMsg = api.Message(msg.Err)
			return h, nil
		}
		h.notice = "Hearts refilled!"
		h.gate()
		return h, nil
	}

	if h.busy {
		return h, nil
	}
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

// gate disables refills that cannot help.
func (h *HeartsScreen) gate() {
	st := h.app.Hearts.State()
	full := st.Premium || st.Current >= st.Max
	h.menu.SetDisabled(itemAd, full)
	h.menu.SetDisabled(itemSingle, full)
	h.menu.SetDisabled(itemFull, full || h.app.Progress.State().Coins < fullRefillPrice())
}

// Row renders one glyph per heart slot.
func Row(st hearts.State) string {
	if st.Premium {
		return theme.HeartStyle.Render("♥ ∞")
	}
	var cells []string
	for i := range st.Max {
		if i < st.Current {
			cells = append(cells, theme.HeartStyle.Render("♥"))
		} else {
			cells = append(cells, theme.HeartEmpty.Render("♡"))
		}
	}
	return strings.Join(cells, " ")
}

func (h *HeartsScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	st := h.app.Hearts.State()
	dim := lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).Foreground(theme.TextDim)

	var lines []string
	lines = append(lines, Row(st))
	lines = append(lines, layout.HeartsLabel(st.Current, st.Max, st.Premium))

	switch {
	case st.Premium:
		lines = append(lines, "Premium: hearts never run out")
	case st.Current >= st.Max:
		lines = append(lines, "Your hearts are full")
	case st.NextRefill != nil:
		lines = append(lines, "Next heart in "+*st.NextRefill)
	}
	if h.status != nil && h.status.TimeUntilFullRefill != "" && !st.Premium && st.Current < st.Max {
		lines = append(lines, "Full in "+h.status.TimeUntilFullRefill)
	}

	sections := []string{
		theme.Title.Width(cw).Render("Hearts"),
		components.Card(strings.Join(lines, "\n"), cw),
		dim.Render(fmt.Sprintf("Coins: %d", h.app.Progress.State().Coins)),
		h.menu.ButtonView(cw),
	}

	switch {
	case h.busy:
		sections = append(sections, dim.Render("Refilling..."))
	case h.errMsg != "":
		sections = append(sections, lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).
			Foreground(theme.Error).Render(h.errMsg))
	case h.notice != "":
		sections = append(sections, lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).
			Foreground(theme.Success).Render(h.notice))
	}

	return components.Frame(strings.Join(sections, "\n\n"), width, height)
}
