package story

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
)

//go:embed data/feudal_japan.json
var feudalJapanJSON []byte

// document — формат файла с историей.
type document struct {
	Start  string  `json:"start"`
	Scenes []Scene `json:"scenes" validate:"required,min=1,dive"`
}

type loadOptions struct {
	validateOnLoad bool
}

// LoadOption настраивает загрузку графа.
type LoadOption func(*loadOptions)

// WithIntegrityCheck включает проверку целостности (Validate) при загрузке:
// висячие ссылки и дубликаты ID становятся ошибкой загрузки.
func WithIntegrityCheck(enabled bool) LoadOption {
	return func(o *loadOptions) {
		o.validateOnLoad = enabled
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load читает граф из JSON. Неизвестные поля считаются ошибкой.
func Load(r io.Reader, opts ...LoadOption) (*Graph, error) {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode story document: %w", err)
	}
	if err := validate.Struct(doc); err != nil {
		return nil, fmt.Errorf("invalid story document: %w", err)
	}

	g := NewGraph(doc.Start, doc.Scenes)
	if o.validateOnLoad {
		if err := g.Validate(); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// LoadFile читает граф из файла.
func LoadFile(path string, opts ...LoadOption) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open story file %s: %w", path, err)
	}
	defer f.Close()
	return Load(f, opts...)
}

// Default загружает встроенную историю "The Ronin's Path".
func Default(opts ...LoadOption) (*Graph, error) {
	return Load(bytes.NewReader(feudalJapanJSON), opts...)
}
