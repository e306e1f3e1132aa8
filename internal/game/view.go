package game

// View — данные только для чтения, которые отдаются слою представления.
type View struct {
	SceneID   string     `json:"scene_id"`
	Scene     *SceneView `json:"scene"`    // показанная сцена; nil только если в графе нет даже стартовой
	Dangling  bool       `json:"dangling"` // SceneID не разрешается, показана предыдущая сцена
	Inventory []string   `json:"inventory"`
	History   []string   `json:"history"`
	Ended     bool       `json:"ended"`
}

// SceneView — представление сцены для клиента.
type SceneView struct {
	ID                string       `json:"id"`
	Title             string       `json:"title"`
	Description       string       `json:"description"`
	BackgroundImage   string       `json:"background_image"`
	Animation         string       `json:"animation,omitempty"`
	Choices           []ChoiceView `json:"choices"`
	ExplorationPoints []PointView  `json:"exploration_points"`
	IsEnding          bool         `json:"is_ending"`
}

// ChoiceView — вариант выбора без цели перехода.
type ChoiceView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// PointView — точка исследования без описания и предмета: их отдает Explore.
type PointView struct {
	ID      string  `json:"id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Tooltip string  `json:"tooltip"`
}

// View строит представление сессии.
func (e *Engine) View(s Session) View {
	v := View{
		SceneID:   s.current,
		Inventory: s.Inventory(),
		History:   s.History(),
		Ended:     s.ended,
	}
	if _, ok := e.graph.Lookup(s.current); !ok {
		v.Dangling = true
	}
	if sv, ok := e.SceneView(s.displayed); ok {
		v.Scene = sv
	}
	return v
}

// SceneView строит представление сцены по ID. false для неизвестных ID.
func (e *Engine) SceneView(id string) (*SceneView, bool) {
	scene, ok := e.graph.Lookup(id)
	if !ok {
		return nil, false
	}

	sv := &SceneView{
		ID:                scene.ID,
		Title:             scene.Title,
		Description:       scene.Description,
		BackgroundImage:   scene.BackgroundImage,
		Animation:         scene.Animation,
		Choices:           make([]ChoiceView, 0, len(scene.Choices)),
		ExplorationPoints: make([]PointView, 0, len(scene.ExplorationPoints)),
		IsEnding:          scene.IsEnding,
	}
	for _, c := range scene.Choices {
		sv.Choices = append(sv.Choices, ChoiceView{ID: c.ID, Text: c.Text})
	}
	for _, p := range scene.ExplorationPoints {
		sv.ExplorationPoints = append(sv.ExplorationPoints, PointView{
			ID:      p.ID,
			X:       p.Position.X(),
			Y:       p.Position.Y(),
			Tooltip: p.Tooltip,
		})
	}
	return sv, true
}
