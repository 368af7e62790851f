package ingestion

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadata_ToJSON(t *testing.T) {
	metadata := &Metadata{
		Source:    "resume.html",
		Format:    FormatHTML,
		Timestamp: "2024-01-01T00:00:00Z",
		Hash:      "abcd1234",
		Length:    42,
	}

	jsonBytes, err := metadata.ToJSON()
	require.NoError(t, err)

	var unmarshaled Metadata
	require.NoError(t, json.Unmarshal(jsonBytes, &unmarshaled))
	assert.Equal(t, *metadata, unmarshaled)
}

func TestContentHash(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"empty", "", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{"hello", "hello", "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ContentHash(tt.content))
		})
	}
}

func TestNewMetadata(t *testing.T) {
	metadata := NewMetadata("resume text", "cv.txt")

	assert.Equal(t, "cv.txt", metadata.Source)
	assert.Equal(t, FormatText, metadata.Format)
	assert.Equal(t, ContentHash("resume text"), metadata.Hash)
	assert.Equal(t, len("resume text"), metadata.Length)

	_, err := time.Parse(time.RFC3339, metadata.Timestamp)
	assert.NoError(t, err)
}
