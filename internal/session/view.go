package session

import "github.com/salvarecuero/tap-cat/internal/game"

// View is everything a presentation layer needs to draw the session.
type View struct {
	SessionID      string         `json:"session_id"`
	State          game.State     `json:"state"`
	Pets           int64          `json:"pets"`
	TotalPets      int64          `json:"total_pets"`
	Character      game.Character `json:"character"`
	PerClick       float64        `json:"per_click"`
	PerSecond      float64        `json:"per_second"`
	PerSecondLabel string         `json:"per_second_label"`
	StageKey       string         `json:"stage_key"`
	Sprite         string         `json:"sprite"`
	AtMaxStage     bool           `json:"at_max_stage"`
	Shop           []ShopItem     `json:"shop"`
}

// ShopItem is one boost as listed in the shop.
type ShopItem struct {
	Boost      game.Boost `json:"boost"`
	Owned      bool       `json:"owned"`
	Affordable bool       `json:"affordable"`
}

// viewLocked derives the view. s.mu must be held.
func (s *Store) viewLocked() View {
	st := s.state.Clone()
	c := s.catalog
	ch := c.ActiveCharacter(st)
	stage := game.ActiveStageKey(ch, st.TotalPets)
	pps := game.PerSecondYield(c.Boosts, st.OwnedBoosts)

	shop := make([]ShopItem, 0, len(c.Boosts))
	for _, b := range c.Boosts {
		shop = append(shop, ShopItem{
			Boost:      b,
			Owned:      st.Owns(b.ID),
			Affordable: game.CanPurchase(st, b),
		})
	}

	return View{
		SessionID:      s.id,
		State:          st,
		Pets:           game.WholePets(st.Pets),
		TotalPets:      game.WholePets(st.TotalPets),
		Character:      ch,
		PerClick:       game.PerClickYield(c.Boosts, st.OwnedBoosts),
		PerSecond:      pps,
		PerSecondLabel: game.FormatRate(pps),
		StageKey:       stage,
		Sprite:         game.SpriteForKey(ch, stage),
		AtMaxStage:     game.IsAtMaxStage(ch, st.TotalPets),
		Shop:           shop,
	}
}
