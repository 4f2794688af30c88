package journey

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Storage - место, где хранится состояние клиента. Save должен быть атомарным:
// после сбоя Load возвращает последнее успешно сохраненное состояние.
type Storage interface {
	// Load возвращает ErrNoState, если ничего не сохранено
	Load() (*State, error)
	Save(state *State) error
	Clear() error
}

// envelope - формат записи на диске
type envelope struct {
	Version int       `json:"version"`
	SavedAt time.Time `json:"savedAt"`
	State   *State    `json:"state"`
}

func encode(state *State) ([]byte, error) {
	return json.MarshalIndent(envelope{
		Version: StateVersion,
		SavedAt: time.Now().UTC(),
		State:   state,
	}, "", "  ")
}

func decode(data []byte) (*State, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	if env.Version > StateVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.Version)
	}
	if env.State == nil {
		return NewState(), nil
	}
	if env.State.PlaceMode.State == "" {
		env.State.PlaceMode.State = PlaceIdle
	}
	return env.State, nil
}

// FileStorage - JSON файл на диске. Запись идет во временный файл с последующим rename,
// предыдущая версия остается в <path>.bak.
type FileStorage struct {
	path   string
	logger *zap.Logger
}

// NewFileStorage создает хранилище в файле path
func NewFileStorage(path string, logger *zap.Logger) *FileStorage {
	return &FileStorage{path: path, logger: logger}
}

func (s *FileStorage) backupPath() string {
	return s.path + ".bak"
}

func (s *FileStorage) Load() (*State, error) {
	state, err := s.loadFile(s.path)
	if err == nil {
		return state, nil
	}

	// Сбой между двумя rename или поврежденный файл: берем предыдущую версию
	backup, backupErr := s.loadFile(s.backupPath())
	if backupErr == nil {
		s.logger.Warn("Journey state restored from backup",
			zap.String("path", s.path),
			zap.Error(err))
		return backup, nil
	}

	if errors.Is(err, ErrNoState) && errors.Is(backupErr, ErrNoState) {
		return nil, ErrNoState
	}
	return nil, err
}

func (s *FileStorage) loadFile(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoState
	}
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	return decode(data)
}

func (s *FileStorage) Save(state *State) error {
	data, err := encode(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp state: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write state: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close state: %w", err)
	}

	if err := os.Rename(s.path, s.backupPath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("backup state: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace state: %w", err)
	}
	return nil
}

func (s *FileStorage) Clear() error {
	for _, path := range []string{s.path, s.backupPath()} {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove state: %w", err)
		}
	}
	return nil
}

// MemoryStorage - хранилище в памяти, сериализует состояние так же, как FileStorage
type MemoryStorage struct {
	mu    sync.Mutex
	data  []byte
	saves int
	fail  error
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (s *MemoryStorage) Load() (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return nil, ErrNoState
	}
	return decode(s.data)
}

func (s *MemoryStorage) Save(state *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	data, err := encode(state)
	if err != nil {
		return err
	}
	s.data = data
	s.saves++
	return nil
}

func (s *MemoryStorage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = nil
	return nil
}

// Saves - число успешных сохранений
func (s *MemoryStorage) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// FailWith заставляет следующие Save возвращать err (nil снимает)
func (s *MemoryStorage) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}
