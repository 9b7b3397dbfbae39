package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalAudioStore(t *testing.T) {
	s, err := NewLocalAudioStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.Open(ctx, "1.mp3")
	assert.ErrorIs(t, err, ErrAudioNotFound)

	body := "ID3 fake audio"
	require.NoError(t, s.Save(ctx, AudioFileName("1", ".MP3"), strings.NewReader(body), int64(len(body)), "audio/mpeg"))

	f, err := s.Open(ctx, "1.mp3")
	require.NoError(t, err)
	defer f.Close()

	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, body, string(data))
	assert.Equal(t, int64(len(body)), f.Size)
}

func TestAudioNamesCannotEscapeDirectory(t *testing.T) {
	s, err := NewLocalAudioStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Open(context.Background(), "../tracks.json")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrAudioNotFound)
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, "audio/mpeg", ContentTypeFor("1.mp3"))
	assert.Equal(t, "audio/flac", ContentTypeFor("1.FLAC"))
	assert.Equal(t, "application/octet-stream", ContentTypeFor("1.txt"))
	assert.Equal(t, "1.5 KB", FormatSize(1536))
}
