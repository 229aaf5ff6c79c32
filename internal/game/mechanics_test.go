package game

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testCharacter(stages ...Stage) Character {
	return Character{
		ID:   "orange-tabby",
		Name: "Orange Tabby",
		Theme: Theme{
			BgTop:        "#FCE9C8",
			BgBottom:     "#F3C98B",
			Accent:       "#C0652B",
			PatternClass: "pattern-paws",
		},
		Anim: Anim{TapScale: 0.94, TapWiggleDeg: 4},
		Sprites: Sprites{
			Images: map[string]string{
				"idle":     "/cats/orange/idle.png",
				"happy":    "/cats/orange/happy.png",
				"ecstatic": "/cats/orange/ecstatic.png",
				"blank":    "  ",
			},
			Stages: slices.Clone(stages),
		},
	}
}

var threeStages = []Stage{
	{MinPets: 0, Key: "idle"},
	{MinPets: 100, Key: "happy"},
	{MinPets: 1000, Key: "ecstatic"},
}

func TestActiveStageKey(t *testing.T) {
	ch := testCharacter(threeStages...)

	cases := []struct {
		total float64
		want  string
	}{
		{0, "idle"},
		{50, "idle"},
		{99.9, "idle"},
		{150, "happy"},
		{1000, "ecstatic"},
		{999999, "ecstatic"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ActiveStageKey(ch, tc.total), "totalPets=%v", tc.total)
	}
	assert.True(t, IsAtMaxStage(ch, 999999))
	assert.False(t, IsAtMaxStage(ch, 150))
}

func TestActiveStageKeyIgnoresDeclarationOrder(t *testing.T) {
	ordered := testCharacter(threeStages...)
	shuffled := testCharacter(threeStages[2], threeStages[0], threeStages[1])
	reversed := testCharacter(threeStages[2], threeStages[1], threeStages[0])

	for _, total := range []float64{0, 50, 100, 500, 1000, 5000} {
		want := ActiveStageKey(ordered, total)
		assert.Equal(t, want, ActiveStageKey(shuffled, total))
		assert.Equal(t, want, ActiveStageKey(reversed, total))
	}
	assert.Equal(t, "ecstatic", MaxStageKey(shuffled))
}

func TestActiveStageKeyTiesAreDeterministic(t *testing.T) {
	a := testCharacter(Stage{MinPets: 0, Key: "idle"}, Stage{MinPets: 10, Key: "happy"}, Stage{MinPets: 10, Key: "ecstatic"})
	b := testCharacter(Stage{MinPets: 10, Key: "ecstatic"}, Stage{MinPets: 10, Key: "happy"}, Stage{MinPets: 0, Key: "idle"})

	assert.Equal(t, ActiveStageKey(a, 10), ActiveStageKey(b, 10))
	assert.Equal(t, MaxStageKey(a), MaxStageKey(b))
}

func TestActiveStageKeyFallsBackToLowestStage(t *testing.T) {
	ch := testCharacter(Stage{MinPets: 5, Key: "happy"}, Stage{MinPets: 50, Key: "ecstatic"})
	assert.Equal(t, "happy", ActiveStageKey(ch, 0))

	assert.Equal(t, IdleKey, ActiveStageKey(testCharacter(), 10))
	assert.Equal(t, IdleKey, MaxStageKey(testCharacter()))
}

func TestSpriteForKey(t *testing.T) {
	ch := testCharacter(append(threeStages, Stage{MinPets: 5000, Key: "blank"})...)

	assert.Equal(t, "/cats/orange/happy.png", SpriteForKey(ch, "happy"))
	assert.Equal(t, "/cats/orange/idle.png", SpriteForKey(ch, "happy2"), "undeclared key")
	assert.Equal(t, "/cats/orange/idle.png", SpriteForKey(ch, "blank"), "blank reference")

	noHappyStage := testCharacter(Stage{MinPets: 0, Key: "idle"})
	assert.Equal(t, "/cats/orange/idle.png", SpriteForKey(noHappyStage, "happy"), "image exists but stage is not declared")
}
