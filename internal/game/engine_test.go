package game_test

import (
	"testing"

	"ronin-novel/internal/game"
	"ronin-novel/internal/story"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newEngine(t *testing.T, opts ...game.Option) *game.Engine {
	t.Helper()
	g, err := story.Default()
	require.NoError(t, err)
	return game.NewEngine(g, opts...)
}

// play применяет цепочку выборов и падает, если какой-то из них не сдвинул сессию.
func play(t *testing.T, e *game.Engine, s game.Session, choices ...string) game.Session {
	t.Helper()
	for _, c := range choices {
		before := len(s.History())
		next, err := e.Transition(s, c)
		require.NoError(t, err)
		require.Equal(t, before+1, len(next.History()), "choice %q did not move the session", c)
		s = next
	}
	return s
}

func assertCanonicalStart(t *testing.T, s game.Session) {
	t.Helper()
	assert.Equal(t, "start", s.CurrentSceneID())
	assert.Equal(t, "start", s.DisplayedSceneID())
	assert.Equal(t, []string{"start"}, s.History())
	assert.Empty(t, s.Inventory())
	assert.False(t, s.Ended())
}

func TestEngine_Start(t *testing.T) {
	e := newEngine(t)
	s := e.Start()

	assertCanonicalStart(t, s)
	scene, ok := e.CurrentScene(s)
	require.True(t, ok)
	assert.Equal(t, "The Ronin's Path", scene.Title)
}

func TestEngine_TransitionValidChoice(t *testing.T) {
	e := newEngine(t)
	s := e.Start()

	next, err := e.Transition(s, "forest")
	require.NoError(t, err)

	assert.Equal(t, "forest_path", next.CurrentSceneID())
	assert.Equal(t, []string{"start", "forest_path"}, next.History())
	assert.Equal(t, []string{"Takeda Armor Fragment"}, next.Inventory(), "items are granted on scene entry")
	assert.False(t, next.Ended())

	// Исходная сессия не изменилась.
	assertCanonicalStart(t, s)
}

func TestEngine_TransitionUnknownChoiceIsNoop(t *testing.T) {
	e := newEngine(t)
	s := play(t, e, e.Start(), "village")

	testCases := []string{"forest", "", "use_artifact", "does_not_exist"}
	for _, choiceID := range testCases {
		t.Run(choiceID, func(t *testing.T) {
			next, err := e.Transition(s, choiceID)
			require.NoError(t, err)
			assert.Equal(t, s.CurrentSceneID(), next.CurrentSceneID())
			assert.Equal(t, s.Inventory(), next.Inventory())
			assert.Len(t, next.History(), len(s.History()))
			assert.Equal(t, s.Ended(), next.Ended())
		})
	}
}

func TestEngine_TransitionUnknownChoiceStrict(t *testing.T) {
	e := newEngine(t, game.WithStrict(true))
	s := e.Start()

	next, err := e.Transition(s, "investigate") // принадлежит village_entrance, а не start
	assert.ErrorIs(t, err, game.ErrUnknownChoice)
	assert.Equal(t, s.Snapshot(), next.Snapshot())
	assert.True(t, e.Strict())
}

func TestEngine_VillageInvestigation(t *testing.T) {
	e := newEngine(t)
	s := play(t, e, e.Start(), "village")
	require.Equal(t, "village_entrance", s.CurrentSceneID())
	require.Equal(t, []string{"Mysterious Tanto"}, s.Inventory())

	next, err := e.Transition(s, "investigate")
	require.NoError(t, err)

	assert.Equal(t, "village_investigation", next.CurrentSceneID())
	assert.Equal(t, []string{"start", "village_entrance", "village_investigation"}, next.History())
	// village_investigation сама выдает Mountain Map, но Tanto уже был получен на входе в деревню.
	assert.Equal(t, []string{"Mysterious Tanto", "Mountain Map"}, next.Inventory())
}

func TestEngine_PurificationEnding(t *testing.T) {
	e := newEngine(t)
	s := play(t, e, e.Start(), "forest", "follow_sounds", "approach_monks", "offer_help")
	require.Equal(t, "accept_quest", s.CurrentSceneID())
	require.True(t, s.HasItem("Blessed Blade"))

	// В сюжете нет ребра accept_quest -> final_battle, поэтому переносим сессию через снимок.
	snap := s.Snapshot()
	snap.CurrentSceneID = "final_battle"
	snap.History = append(snap.History, "final_battle")
	s = e.Restore(snap)
	require.False(t, s.Ended())

	s = play(t, e, s, "use_artifact")
	assert.Equal(t, "purification_ending", s.CurrentSceneID())
	assert.True(t, s.Ended())

	scene, ok := e.CurrentScene(s)
	require.True(t, ok)
	assert.True(t, scene.IsEnding)
}

func TestEngine_EndedIsStickyUntilReset(t *testing.T) {
	e := newEngine(t)
	s := e.Restore(game.Snapshot{CurrentSceneID: "final_battle"})
	s = play(t, e, s, "combined_approach", "restart")

	assert.Equal(t, "start", s.CurrentSceneID())
	assert.True(t, s.Ended())
	assert.Equal(t, []string{"final_battle", "true_ending", "start"}, s.History())

	assertCanonicalStart(t, e.Reset(s))
}

func TestEngine_DanglingTargetPermissive(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	e := newEngine(t, game.WithLogger(zap.New(core)))
	s := play(t, e, e.Start(), "village", "investigate", "read_scroll")

	assert.Equal(t, "scroll_revelation", s.CurrentSceneID())
	assert.Equal(t, "village_investigation", s.DisplayedSceneID())
	assert.Equal(t, []string{"start", "village_entrance", "village_investigation", "scroll_revelation"}, s.History())
	_, ok := e.CurrentScene(s)
	assert.False(t, ok)
	displayed, ok := e.DisplayedScene(s)
	require.True(t, ok)
	assert.Equal(t, "village_investigation", displayed.ID)
	assert.Equal(t, 1, logs.FilterMessage("Choice targets an undefined scene, keeping the displayed scene").Len())

	v := e.View(s)
	assert.Equal(t, "scroll_revelation", v.SceneID)
	assert.True(t, v.Dangling)
	require.NotNil(t, v.Scene)
	assert.Equal(t, "village_investigation", v.Scene.ID)

	// Выборы показанной сцены остаются доступными.
	next, err := e.Transition(s, "follow_blood")
	require.NoError(t, err)
	assert.Equal(t, "village_outskirts", next.CurrentSceneID())
	assert.Len(t, next.History(), 5)

	// Выбор, которого нет на показанной сцене, по-прежнему no-op.
	same, err := e.Transition(s, "restart")
	require.NoError(t, err)
	assert.Equal(t, s.Snapshot(), same.Snapshot())
}

func TestEngine_DanglingTargetKeepsSiblingChoices(t *testing.T) {
	e := newEngine(t)
	s := play(t, e, e.Start(), "forest", "avoid_sounds")
	require.Equal(t, "bandit_encounter", s.CurrentSceneID())
	require.Equal(t, "forest_path", s.DisplayedSceneID())

	s = play(t, e, s, "follow_sounds")
	assert.Equal(t, "shrine_clearing", s.CurrentSceneID())
	assert.Equal(t, "shrine_clearing", s.DisplayedSceneID())
	assert.Equal(t, []string{"start", "forest_path", "bandit_encounter", "shrine_clearing"}, s.History())
	assert.False(t, e.View(s).Dangling)
	assert.True(t, s.HasItem("Jade Magatama"), "entering a resolved scene after a dangling one still grants items")

	// Показанная сцена переживает сохранение и восстановление.
	dangling := play(t, e, e.Start(), "forest", "avoid_sounds")
	restored := e.Restore(dangling.Snapshot())
	assert.Equal(t, "forest_path", restored.DisplayedSceneID())
	point, err := e.Explore(restored, "broken_armor")
	require.NoError(t, err)
	assert.Equal(t, "Takeda Armor Fragment", point.ItemFound)
}

func TestEngine_DanglingTargetStrict(t *testing.T) {
	e := newEngine(t, game.WithStrict(true))
	s := play(t, e, e.Start(), "village", "investigate")

	next, err := e.Transition(s, "read_scroll")
	assert.ErrorIs(t, err, game.ErrDanglingScene)
	assert.Equal(t, "village_investigation", next.CurrentSceneID())
	assert.Len(t, next.History(), 3)
}

func TestEngine_CollectItemIsIdempotent(t *testing.T) {
	e := newEngine(t)
	s := e.Start()

	once := e.CollectItem(s, "Jade Magatama")
	twice := e.CollectItem(once, "Jade Magatama")
	assert.Equal(t, []string{"Jade Magatama"}, once.Inventory())
	assert.Equal(t, once.Inventory(), twice.Inventory())
	assert.Empty(t, s.Inventory())

	withEmpty := e.CollectItem(twice, "")
	assert.Len(t, withEmpty.Inventory(), 1)

	ordered := e.CollectItem(e.CollectItem(twice, "Blessed Blade"), "Jade Magatama")
	assert.Equal(t, []string{"Jade Magatama", "Blessed Blade"}, ordered.Inventory())
}

func TestEngine_ResetFromAnyState(t *testing.T) {
	e := newEngine(t)
	deep := play(t, e, e.Start(), "forest", "follow_sounds", "approach_monks", "offer_help")
	deep = e.CollectItem(deep, "Extra")
	require.Greater(t, len(deep.History()), 1)
	require.NotEmpty(t, deep.Inventory())

	assertCanonicalStart(t, e.Reset(deep))
	assertCanonicalStart(t, e.Reset(e.Start()))
	assertCanonicalStart(t, e.Reset(game.Session{}))
}

func TestEngine_Explore(t *testing.T) {
	e := newEngine(t)
	s := play(t, e, e.Start(), "village")

	point, err := e.Explore(s, "broken_cart")
	require.NoError(t, err)
	assert.Equal(t, "Mysterious Tanto", point.ItemFound)
	assert.Equal(t, "Inspect the broken cart", point.Tooltip)

	_, err = e.Explore(s, "sakura")
	assert.ErrorIs(t, err, game.ErrExplorationPointNotFound)

	dangling := e.Restore(game.Snapshot{CurrentSceneID: "village_center"})
	_, err = e.Explore(dangling, "anything")
	assert.ErrorIs(t, err, game.ErrExplorationPointNotFound)
}

func TestEngine_RestoreNormalizes(t *testing.T) {
	e := newEngine(t)

	assertCanonicalStart(t, e.Restore(game.Snapshot{}))

	s := e.Restore(game.Snapshot{
		CurrentSceneID: "teahouse",
		Inventory:      []string{"Mysterious Tanto", "Mysterious Tanto", ""},
	})
	assert.Equal(t, []string{"teahouse"}, s.History())
	assert.Equal(t, []string{"Mysterious Tanto"}, s.Inventory())

	// Без показанной сцены в снимке берется последняя разрешимая из истории.
	s = e.Restore(game.Snapshot{CurrentSceneID: "hidden_cellar", History: []string{"start", "village_entrance", "teahouse", "hidden_cellar"}})
	assert.Equal(t, "hidden_cellar", s.CurrentSceneID())
	assert.Equal(t, "teahouse", s.DisplayedSceneID())
	s = e.Restore(game.Snapshot{CurrentSceneID: "village_center"})
	assert.Equal(t, "start", s.DisplayedSceneID())

	// Restore не выдает предметы повторно.
	s = e.Restore(game.Snapshot{CurrentSceneID: "village_entrance", History: []string{"start", "village_entrance"}})
	assert.Empty(t, s.Inventory())
}

func TestEngine_SnapshotIsIndependent(t *testing.T) {
	e := newEngine(t)
	s := play(t, e, e.Start(), "village")

	snap := s.Snapshot()
	snap.History[0] = "mutated"
	snap.Inventory[0] = "mutated"

	assert.Equal(t, []string{"start", "village_entrance"}, s.History())
	assert.Equal(t, []string{"Mysterious Tanto"}, s.Inventory())
}

func TestEngine_View(t *testing.T) {
	e := newEngine(t)
	s := play(t, e, e.Start(), "village")

	v := e.View(s)
	require.NotNil(t, v.Scene)
	assert.Equal(t, "village_entrance", v.SceneID)
	assert.Equal(t, "Village of Shadows", v.Scene.Title)
	assert.Equal(t, []game.ChoiceView{
		{ID: "investigate", Text: "Investigate the signs of struggle"},
		{ID: "teahouse", Text: "Head to the teahouse at the center of the village"},
		{ID: "leave_village", Text: "This feels dangerous - leave immediately"},
	}, v.Scene.Choices)
	require.Len(t, v.Scene.ExplorationPoints, 2)
	assert.Equal(t, game.PointView{ID: "broken_cart", X: 65, Y: 55, Tooltip: "Inspect the broken cart"}, v.Scene.ExplorationPoints[1])
	assert.Equal(t, []string{"Mysterious Tanto"}, v.Inventory)
	assert.False(t, v.Ended)
}

func TestEngine_SceneView(t *testing.T) {
	e := newEngine(t)

	sv, ok := e.SceneView("final_battle")
	require.True(t, ok)
	assert.Equal(t, "final_battle", sv.ID)
	assert.NotEmpty(t, sv.Choices)

	_, ok = e.SceneView("bandit_encounter")
	assert.False(t, ok)
}
