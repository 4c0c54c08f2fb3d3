package live

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// MarkerStore persiste o marcador "última atualização" entre reinícios do viewer
type MarkerStore interface {
	Load() (time.Time, bool, error)
	Save(t time.Time) error
}

type markerFile struct {
	UpdatedAt time.Time `json:"updatedAt"`
}

// FileMarkerStore grava o marcador num arquivo JSON local
type FileMarkerStore struct {
	path string
}

func NewFileMarkerStore(path string) *FileMarkerStore {
	return &FileMarkerStore{path: path}
}

// Load retorna ok=false quando o arquivo ainda não existe
func (f *FileMarkerStore) Load() (time.Time, bool, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read marker: %w", err)
	}
	var m markerFile
	if err := json.Unmarshal(raw, &m); err != nil {
		return time.Time{}, false, fmt.Errorf("decode marker %s: %w", f.path, err)
	}
	return m.UpdatedAt, !m.UpdatedAt.IsZero(), nil
}

// Save escreve num arquivo temporário e renomeia, para nunca deixar o marcador pela metade
func (f *FileMarkerStore) Save(t time.Time) error {
	raw, err := json.Marshal(markerFile{UpdatedAt: t})
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".marker-*")
	if err != nil {
		return fmt.Errorf("create temp marker: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write marker: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close marker: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("rename marker: %w", err)
	}
	return nil
}
