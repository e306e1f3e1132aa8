package story

import (
	"errors"
	"fmt"
	"strings"
)

// ErrStructuralIntegrity — граф содержит висячие ссылки или дубликаты ID.
var ErrStructuralIntegrity = errors.New("story graph structural integrity violated")

// ViolationKind классифицирует нарушения целостности графа.
type ViolationKind string

const (
	ViolationMissingStart    ViolationKind = "missing_start"
	ViolationDuplicateScene  ViolationKind = "duplicate_scene"
	ViolationDuplicateChoice ViolationKind = "duplicate_choice"
	ViolationDuplicatePoint  ViolationKind = "duplicate_exploration_point"
	ViolationDanglingTarget  ViolationKind = "dangling_target"
)

// Violation описывает одно нарушение.
type Violation struct {
	Kind    ViolationKind
	SceneID string
	Ref     string // ID выбора или точки исследования
	Target  string // Только для dangling_target
}

func (v Violation) String() string {
	switch v.Kind {
	case ViolationMissingStart:
		return fmt.Sprintf("start scene %q is not defined", v.SceneID)
	case ViolationDuplicateScene:
		return fmt.Sprintf("scene %q is defined more than once", v.SceneID)
	case ViolationDuplicateChoice:
		return fmt.Sprintf("scene %q: choice %q is defined more than once", v.SceneID, v.Ref)
	case ViolationDuplicatePoint:
		return fmt.Sprintf("scene %q: exploration point %q is defined more than once", v.SceneID, v.Ref)
	case ViolationDanglingTarget:
		return fmt.Sprintf("scene %q: choice %q targets unknown scene %q", v.SceneID, v.Ref, v.Target)
	default:
		return fmt.Sprintf("scene %q: %s", v.SceneID, v.Kind)
	}
}

// IntegrityError собирает все нарушения, найденные Validate.
type IntegrityError struct {
	Violations []Violation
}

func (e *IntegrityError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.String())
	}
	return fmt.Sprintf("%s: %d violation(s): %s", ErrStructuralIntegrity, len(e.Violations), strings.Join(parts, "; "))
}

func (e *IntegrityError) Unwrap() error {
	return ErrStructuralIntegrity
}

// Violations проверяет граф и возвращает все найденные нарушения в порядке объявления сцен.
func (g *Graph) Violations() []Violation {
	var out []Violation
	if _, ok := g.scenes[g.start]; !ok {
		out = append(out, Violation{Kind: ViolationMissingStart, SceneID: g.start})
	}

	seenScenes := make(map[string]bool, len(g.declared))
	for _, s := range g.declared {
		if seenScenes[s.ID] {
			out = append(out, Violation{Kind: ViolationDuplicateScene, SceneID: s.ID})
			continue
		}
		seenScenes[s.ID] = true

		seenChoices := make(map[string]bool, len(s.Choices))
		for _, c := range s.Choices {
			if seenChoices[c.ID] {
				out = append(out, Violation{Kind: ViolationDuplicateChoice, SceneID: s.ID, Ref: c.ID})
			}
			seenChoices[c.ID] = true
			if _, ok := g.scenes[c.NextSceneID]; !ok {
				out = append(out, Violation{Kind: ViolationDanglingTarget, SceneID: s.ID, Ref: c.ID, Target: c.NextSceneID})
			}
		}

		seenPoints := make(map[string]bool, len(s.ExplorationPoints))
		for _, p := range s.ExplorationPoints {
			if seenPoints[p.ID] {
				out = append(out, Violation{Kind: ViolationDuplicatePoint, SceneID: s.ID, Ref: p.ID})
			}
			seenPoints[p.ID] = true
		}
	}
	return out
}

// Validate возвращает *IntegrityError (errors.Is(err, ErrStructuralIntegrity)), если граф нецелостный.
func (g *Graph) Validate() error {
	violations := g.Violations()
	if len(violations) == 0 {
		return nil
	}
	return &IntegrityError{Violations: violations}
}
