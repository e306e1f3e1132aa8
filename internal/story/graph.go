// Package story содержит неизменяемый граф сюжета: сцены, выборы и точки исследования.
// Граф загружается один раз при старте и разделяется всеми игровыми сессиями только на чтение.
package story

// StartSceneID — идентификатор стартовой сцены по умолчанию.
const StartSceneID = "start"

// Graph — отображение ID сцены -> Scene с сохранением порядка объявления.
type Graph struct {
	start    string
	scenes   map[string]Scene
	declared []Scene // Все сцены как в источнике, включая дубликаты (нужно для Validate)
}

// NewGraph строит граф из списка сцен. Пустой start заменяется на StartSceneID.
// При повторяющихся ID в Lookup побеждает первая сцена, дубликаты видны только в Validate.
func NewGraph(start string, scenes []Scene) *Graph {
	if start == "" {
		start = StartSceneID
	}
	g := &Graph{
		start:    start,
		scenes:   make(map[string]Scene, len(scenes)),
		declared: append([]Scene(nil), scenes...),
	}
	for _, s := range scenes {
		if _, exists := g.scenes[s.ID]; exists {
			continue
		}
		g.scenes[s.ID] = s
	}
	return g
}

// Start возвращает ID стартовой сцены.
func (g *Graph) Start() string {
	return g.start
}

// Lookup разрешает ID сцены. Для неизвестного ID возвращает false, ошибки нет.
func (g *Graph) Lookup(id string) (Scene, bool) {
	s, ok := g.scenes[id]
	return s, ok
}

// Len возвращает число уникальных сцен.
func (g *Graph) Len() int {
	return len(g.scenes)
}

// Scenes возвращает уникальные сцены в порядке объявления.
func (g *Graph) Scenes() []Scene {
	seen := make(map[string]struct{}, len(g.scenes))
	out := make([]Scene, 0, len(g.scenes))
	for _, s := range g.declared {
		if _, ok := seen[s.ID]; ok {
			continue
		}
		seen[s.ID] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Reachable возвращает ID сцен, достижимых из стартовой по разрешимым выборам (обход в ширину).
// Висячие цели в результат не попадают.
func (g *Graph) Reachable() []string {
	if _, ok := g.scenes[g.start]; !ok {
		return nil
	}
	visited := map[string]bool{g.start: true}
	queue := []string{g.start}
	var order []string
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		for _, c := range g.scenes[id].Choices {
			if visited[c.NextSceneID] {
				continue
			}
			if _, ok := g.scenes[c.NextSceneID]; !ok {
				continue
			}
			visited[c.NextSceneID] = true
			queue = append(queue, c.NextSceneID)
		}
	}
	return order
}

// Items возвращает все предметы, которые можно получить в истории, без повторов.
func (g *Graph) Items() []string {
	seen := make(map[string]struct{})
	var items []string
	for _, s := range g.Scenes() {
		for _, item := range s.Items() {
			if _, ok := seen[item]; ok {
				continue
			}
			seen[item] = struct{}{}
			items = append(items, item)
		}
	}
	return items
}
