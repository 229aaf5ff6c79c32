package ui

import (
	"fmt"
	"strings"

	"github.com/salvarecuero/tap-cat/internal/game"
	"github.com/salvarecuero/tap-cat/internal/session"
)

// Status renders the session summary shown by `status` and after every
// mutating command.
func Status(v session.View) string {
	stage := v.StageKey
	if v.AtMaxStage {
		stage = Gold.Render(stage + " " + IconStar + " fully evolved")
	}

	lines := []string{
		Heading(IconCat, v.Character.Name),
		LabelValue("Pets", v.Pets),
		LabelValue("Lifetime", v.TotalPets),
		LabelValue("Per tap", formatMultiplier(v.PerClick)),
		LabelValue("Per second", v.PerSecondLabel),
		LabelValue("Stage", stage),
		LabelValue("Sprite", Muted.Render(v.Sprite)),
	}
	return Panel.Render(strings.Join(lines, "\n"))
}

// Shop renders the boost list with ownership and affordability markers.
func Shop(v session.View) string {
	var b strings.Builder
	b.WriteString(H2.Render(IconShop+" Shop") + "\n")
	for _, item := range v.Shop {
		var mark string
		switch {
		case item.Owned:
			mark = Good.Render("owned")
		case item.Affordable:
			mark = Warn.Render("buy")
		default:
			mark = Muted.Render(fmt.Sprintf("need %d", item.Boost.Price))
		}
		fmt.Fprintf(&b, "- %s %s %s %s\n",
			Key.Render(item.Boost.ID),
			item.Boost.Title,
			Muted.Render(fmt.Sprintf("(%d, %s)", item.Boost.Price, describeBoost(item.Boost))),
			mark,
		)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Characters lists the catalog's characters, marking the active one.
func Characters(c *game.Catalog, activeID string) string {
	var b strings.Builder
	b.WriteString(H2.Render(IconPaw+" Characters") + "\n")
	for _, ch := range c.Characters {
		line := fmt.Sprintf("- %s %s", Key.Render(ch.ID), ch.Name)
		if ch.ID == activeID {
			line += " " + Good.Render("active")
		}
		if ch.ID == c.DefaultID {
			line += " " + Muted.Render("(default)")
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// DidYouMean renders suggestions for an unknown id, or "" when there are
// none.
func DidYouMean(suggestions []string) string {
	if len(suggestions) == 0 {
		return ""
	}
	return Muted.Render("did you mean: " + strings.Join(suggestions, ", ") + "?")
}

func describeBoost(b game.Boost) string {
	switch b.Kind {
	case game.KindClickMultiplier:
		return "tap " + formatMultiplier(b.Value)
	case game.KindAutoClick:
		return fmt.Sprintf("+%g every %dms", b.Value, b.IntervalMs)
	default:
		return string(b.Kind)
	}
}

func formatMultiplier(v float64) string {
	return fmt.Sprintf("x%g", v)
}
