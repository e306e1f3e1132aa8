// Package game реализует конечный автомат игровой сессии поверх неизменяемого графа сюжета.
//
// Session — значение, принадлежащее одному прохождению. Все операции Engine принимают
// сессию и возвращают новую, исходная при этом не меняется.
package game

// Session — состояние одного прохождения.
type Session struct {
	current   string
	displayed string // последняя сцена, которая разрешилась в графе
	history   []string
	inventory []string
	ended     bool
}

// Snapshot — экспортируемая форма Session для хранения и восстановления.
type Snapshot struct {
	CurrentSceneID   string   `json:"current_scene_id"`
	DisplayedSceneID string   `json:"displayed_scene_id"`
	History          []string `json:"history"`
	Inventory        []string `json:"inventory"`
	Ended            bool     `json:"ended"`
}

// CurrentSceneID возвращает ID текущей сцены (может не разрешаться в графе).
func (s Session) CurrentSceneID() string {
	return s.current
}

// DisplayedSceneID возвращает ID сцены, которая показывается игроку и чьи выборы доступны.
// Совпадает с CurrentSceneID, пока переходы не уходят в несуществующую сцену.
func (s Session) DisplayedSceneID() string {
	return s.displayed
}

// History возвращает копию истории посещенных сцен.
func (s Session) History() []string {
	return append([]string(nil), s.history...)
}

// Inventory возвращает копию инвентаря в порядке получения.
func (s Session) Inventory() []string {
	return append([]string{}, s.inventory...)
}

// Ended сообщает, была ли достигнута концовка.
func (s Session) Ended() bool {
	return s.ended
}

// HasItem проверяет наличие предмета в инвентаре.
func (s Session) HasItem(item string) bool {
	for _, it := range s.inventory {
		if it == item {
			return true
		}
	}
	return false
}

// Snapshot возвращает независимую копию состояния.
func (s Session) Snapshot() Snapshot {
	return Snapshot{
		CurrentSceneID:   s.current,
		DisplayedSceneID: s.displayed,
		History:          s.History(),
		Inventory:        s.Inventory(),
		Ended:            s.ended,
	}
}

func (s Session) clone() Session {
	return Session{
		current:   s.current,
		displayed: s.displayed,
		history:   s.History(),
		inventory: s.Inventory(),
		ended:     s.ended,
	}
}

// withItem добавляет предмет, если его еще нет. Мутирует s, вызывается только на клонах.
func (s *Session) withItem(item string) {
	if item == "" || s.HasItem(item) {
		return
	}
	s.inventory = append(s.inventory, item)
}
