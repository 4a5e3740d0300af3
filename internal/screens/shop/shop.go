package shop

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/levo/internal/api"
	"github.com/abhisek/levo/internal/app"
	"github.com/abhisek/levo/internal/screen"
	"github.com/abhisek/levo/internal/service"
	"github.com/abhisek/levo/internal/shop"
	"github.com/abhisek/levo/internal/ui/components"
	"github.com/abhisek/levo/internal/ui/layout"
	"github.com/abhisek/levo/internal/ui/theme"
)

type boughtMsg struct {
	Item shop.Item
	Err  error
}

type coinsMsg struct{}

type earnedMsg struct {
	Before int
	Err    error
}

// ShopScreen sells catalog items for coins.
type ShopScreen struct {
	app    *app.App
	cursor int
	busy   bool
	notice string
	errMsg string
}

var _ screen.Screen = (*ShopScreen)(nil)
var _ screen.KeyHintProvider = (*ShopScreen)(nil)

// New creates a ShopScreen.
func New(a *app.App) *ShopScreen {
	return &ShopScreen{app: a}
}

func (s *ShopScreen) Init() tea.Cmd {
	a := s.app
	return func() tea.Msg {
		if err := a.RefreshCoins(context.Background()); err != nil {
			a.Logger.Debug("coin balance not refreshed", zap.Error(err))
		}
		return coinsMsg{}
	}
}

func (s *ShopScreen) Title() string {
	return "Shop"
}

func (s *ShopScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Buy"},
		{Key: "D", Description: "Daily coins"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ShopScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case coinsMsg:
		return s, nil

	case boughtMsg:
		s.busy = false
		if msg.Err != nil {
			if s.app.SessionLost(msg.Err) {
				return s, screen.SignOut
			}
			if errors.Is(msg.Err, shop.ErrInsufficientCoins) {
				s.errMsg = fmt.Sprintf("You need %d coins for %s.", msg.Item.Price, msg.Item.Name)
			} else {
				s.errMsg = api.Message(msg.Err)
			}
			return s, nil
		}
		s.notice = fmt.Sprintf("Bought %s!", msg.Item.Name)
		return s, nil

	case earnedMsg:
		s.busy = false
		if msg.Err != nil {
			if s.app.SessionLost(msg.Err) {
				return s, screen.SignOut
			}
			s.errMsg = api.Message(msg.Err)
			return s, nil
		}
		gained := s.app.Progress.State().Coins - msg.Before
		s.notice = fmt.Sprintf("Daily reward claimed: +%d coins", max(gained, 0))
		return s, nil

	case tea.KeyMsg:
		if s.busy {
			return s, nil
		}
		switch msg.String() {
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(shop.Catalog)-1 {
				s.cursor++
			}
		case "enter":
			return s, s.buy(shop.Catalog[s.cursor])
		case "d", "D":
			return s, s.claimDaily()
		}
		s.notice, s.errMsg = "", ""
	}
	return s, nil
}

func (s *ShopScreen) buy(it shop.Item) tea.Cmd {
	s.busy = true
	s.notice, s.errMsg = "", ""
	a := s.app
	return func() tea.Msg {
		ctx := context.Background()
		if err := a.Shop.Spend(ctx, it.ID, 1); err != nil {
			return boughtMsg{Item: it, Err: err}
		}
		resync(ctx, a, it.ID)
		return boughtMsg{Item: it}
	}
}

// resync pulls the server state an item changes.
func resync(ctx context.Context, a *app.App, item string) {
	switch item {
	case "heart_refill":
		env, err := a.Services.Hearts.Get(ctx)
		if err != nil {
			a.Logger.Warn("hearts not refreshed after purchase", zap.Error(err))
			return
		}
		a.Hearts.Apply(env.Data)
	case "streak_shield":
		env, err := a.Services.Streak.Get(ctx)
		if err != nil {
			a.Logger.Warn("streak not refreshed after purchase", zap.Error(err))
			return
		}
		a.Streak.Set(env.Data)
	}
}

func (s *ShopScreen) claimDaily() tea.Cmd {
	s.busy = true
	s.notice, s.errMsg = "", ""
	a := s.app
	before := a.Progress.State().Coins
	return func() tea.Msg {
		return earnedMsg{Before: before, Err: a.Shop.Earn(context.Background(), service.EarnDailyCheck)}
	}
}

func (s *ShopScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	coins := s.app.Progress.State().Coins

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).Render(
		theme.CoinStyle.Render(fmt.Sprintf("● %d coins", coins))))
	b.WriteString("\n\n")

	for i, it := range shop.Catalog {
		name := fmt.Sprintf("%s %s", it.Emoji, it.Name)
		price := theme.CoinStyle.Render(fmt.Sprintf("● %d", it.Price))
		if it.Price > coins {
			price = theme.Disabled.Render(fmt.Sprintf("● %d", it.Price))
		}
		pad := max(cw-4-lipgloss.Width(name)-lipgloss.Width(price), 1)
		top := name + strings.Repeat(" ", pad) + price

		style := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Width(cw - 2).
			Padding(0, 1)
		if i == s.cursor {
			style = style.BorderForeground(theme.Primary)
		}
		b.WriteString(style.Render(top + "\n" + theme.Hint.Render(it.Desc)))
		b.WriteString("\n")
	}

	switch {
	case s.busy:
		b.WriteString(theme.Hint.Render("Working..."))
	case s.errMsg != "":
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Render(s.errMsg))
	case s.notice != "":
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Success).Render(s.notice))
	}

	return lipgloss.PlaceHorizontal(width, lipgloss.Center, b.String())
}
