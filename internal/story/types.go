package story

// Position задает координаты точки исследования в процентах от контейнера: [x, y].
type Position [2]float64

// X возвращает горизонтальную координату (0..100).
func (p Position) X() float64 { return p[0] }

// Y возвращает вертикальную координату (0..100).
func (p Position) Y() float64 { return p[1] }

// Choice — помеченное ребро графа: ведет из сцены-владельца в сцену NextSceneID.
type Choice struct {
	ID          string `json:"id" validate:"required"`
	Text        string `json:"text" validate:"required"`
	NextSceneID string `json:"next_scene_id" validate:"required"`
}

// ExplorationPoint — интерактивная деталь сцены. Может выдавать предмет (ItemFound).
type ExplorationPoint struct {
	ID          string   `json:"id" validate:"required"`
	Position    Position `json:"position" validate:"dive,min=0,max=100"`
	Tooltip     string   `json:"tooltip" validate:"required"`
	Description string   `json:"description" validate:"required"`
	ItemFound   string   `json:"item_found,omitempty"`
}

// HasItem сообщает, выдает ли точка предмет.
func (p ExplorationPoint) HasItem() bool {
	return p.ItemFound != ""
}

// Scene — узел повествования. Сцены неизменяемы после загрузки графа:
// срезы Choices и ExplorationPoints разделяются между всеми сессиями, их нельзя модифицировать.
type Scene struct {
	ID                string             `json:"id" validate:"required"`
	Title             string             `json:"title" validate:"required"`
	Description       string             `json:"description" validate:"required"`
	BackgroundImage   string             `json:"background_image" validate:"required"`
	Animation         string             `json:"animation,omitempty"` // Тег анимации для клиента (sakura-falling, forest-mist, ...)
	Choices           []Choice           `json:"choices" validate:"dive"`
	ExplorationPoints []ExplorationPoint `json:"exploration_points,omitempty" validate:"dive"`
	IsEnding          bool               `json:"is_ending,omitempty"`
}

// Choice ищет выбор по ID среди выборов этой сцены.
func (s Scene) Choice(id string) (Choice, bool) {
	for _, c := range s.Choices {
		if c.ID == id {
			return c, true
		}
	}
	return Choice{}, false
}

// ExplorationPoint ищет точку исследования по ID.
func (s Scene) ExplorationPoint(id string) (ExplorationPoint, bool) {
	for _, p := range s.ExplorationPoints {
		if p.ID == id {
			return p, true
		}
	}
	return ExplorationPoint{}, false
}

// Items возвращает предметы, которые выдают точки исследования сцены, в порядке объявления.
func (s Scene) Items() []string {
	var items []string
	for _, p := range s.ExplorationPoints {
		if p.HasItem() {
			items = append(items, p.ItemFound)
		}
	}
	return items
}
