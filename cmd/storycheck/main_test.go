package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRun(t *testing.T) {
	log := zap.NewNop()

	assert.Equal(t, 1, run("", log), "shipped story has dangling targets")
	assert.Equal(t, 2, run(filepath.Join(t.TempDir(), "missing.json"), log))

	clean := filepath.Join(t.TempDir(), "clean.json")
	doc := `{"scenes": [{"id": "start", "title": "t", "description": "d", "background_image": "b",
		"choices": [{"id": "again", "text": "again", "next_scene_id": "start"}]}]}`
	require.NoError(t, os.WriteFile(clean, []byte(doc), 0o600))
	assert.Equal(t, 0, run(clean, log))
}
