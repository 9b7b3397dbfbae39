package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrAudioNotFound is returned when no audio file exists under a name.
var ErrAudioNotFound = errors.New("audio file not found")

// AudioFile is an open audio object ready to be served.
type AudioFile struct {
	io.ReadSeekCloser
	Name    string
	Size    int64
	ModTime time.Time
}

// AudioStore keeps uploaded audio files named "<trackID>.<ext>".
type AudioStore interface {
	Open(ctx context.Context, name string) (*AudioFile, error)
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) error
}

// AudioFileName builds the stored file name for a track.
func AudioFileName(trackID, ext string) string {
	return trackID + "." + strings.TrimPrefix(strings.ToLower(ext), ".")
}

// ContentTypeFor returns the MIME type for an audio file name.
func ContentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".flac":
		return "audio/flac"
	case ".aac":
		return "audio/aac"
	case ".ogg":
		return "audio/ogg"
	default:
		return "application/octet-stream"
	}
}

func checkName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("invalid audio file name %q", name)
	}
	return nil
}

// LocalAudioStore stores audio files in a directory.
type LocalAudioStore struct {
	dir string
}

// NewLocalAudioStore creates the directory if needed.
func NewLocalAudioStore(dir string) (*LocalAudioStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create audio directory %s: %w", dir, err)
	}
	return &LocalAudioStore{dir: dir}, nil
}

func (s *LocalAudioStore) Open(ctx context.Context, name string) (*AudioFile, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrAudioNotFound
		}
		return nil, fmt.Errorf("failed to open audio file %s: %w", name, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat audio file %s: %w", name, err)
	}
	return &AudioFile{ReadSeekCloser: f, Name: name, Size: info.Size(), ModTime: info.ModTime()}, nil
}

func (s *LocalAudioStore) Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) error {
	if err := checkName(name); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, name+".*.part")
	if err != nil {
		return fmt.Errorf("failed to create audio file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to save audio file %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to save audio file %s: %w", name, err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to save audio file %s: %w", name, err)
	}
	return nil
}
