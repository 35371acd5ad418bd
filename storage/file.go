package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/Vayras/admin-frontend-sub001/logger"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FileStore keeps all keys in one JSON file. Every FileStore value is a
// context; other processes using the same path are told about changes
// through file system notifications.
type FileStore struct {
	path   string
	origin string
	logger *logger.CtxZapLogger

	mu     sync.Mutex
	subs   map[uint64]*fileSub
	nextID uint64
}

// fileSub remembers the contents its subscriber has already been told about.
type fileSub struct {
	known map[string]string
}

// NewFileStore creates a context over the file at path. The file and its
// directory are created on first write.
func NewFileStore(path string, log *logger.CtxZapLogger) (*FileStore, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, ErrConfigInvalid.Wrap(err)
	}
	if log == nil {
		log = logger.GetLogger("storage")
	}
	return &FileStore{
		path:   abs,
		origin: uuid.NewString(),
		logger: log,
		subs:   make(map[uint64]*fileSub),
	}, nil
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Origin() string {
	return s.origin
}

func (s *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := data[key]
	return v, ok, nil
}

func (s *FileStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}
	data[key] = value
	if err := s.write(data); err != nil {
		return err
	}
	for _, sub := range s.subs {
		sub.known[key] = value
	}
	return nil
}

func (s *FileStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := data[key]; !ok {
		return nil
	}
	delete(data, key)
	if err := s.write(data); err != nil {
		return err
	}
	for _, sub := range s.subs {
		delete(sub.known, key)
	}
	return nil
}

// load reads the file; a missing or empty file is an empty store. s.mu must be held.
func (s *FileStore) load() (map[string]string, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, ErrRead.Wrap(err)
	}
	data := map[string]string{}
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, ErrDecode.Wrap(err)
	}
	return data, nil
}

// write replaces the file atomically through a temp file in the same directory.
func (s *FileStore) write(data map[string]string) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return ErrWrite.Wrap(err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return ErrWrite.Wrap(err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+"-*")
	if err != nil {
		return ErrWrite.Wrap(err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return ErrWrite.Wrap(err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return ErrWrite.Wrap(err)
	}
	if err := tmp.Close(); err != nil {
		return ErrWrite.Wrap(err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return ErrWrite.Wrap(err)
	}
	return nil
}

// Subscribe watches the file's directory. Changes already in the file when
// Subscribe is called are not reported. The unsubscribe function must not be
// called from handler.
func (s *FileStore) Subscribe(handler Handler) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return nil, ErrSubscribe.Wrap(err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, ErrSubscribe.Wrap(err)
	}
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		_ = watcher.Close()
		return nil, ErrSubscribe.Wrap(err)
	}

	s.mu.Lock()
	baseline, err := s.load()
	if err != nil {
		s.mu.Unlock()
		_ = watcher.Close()
		return nil, err
	}
	s.nextID++
	id := s.nextID
	sub := &fileSub{known: baseline}
	s.subs[id] = sub
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != s.path {
					continue
				}
				for _, change := range s.diff(sub) {
					handler(ctx, change)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.WarnCtx(ctx, "storage file watch error", zap.String("path", s.path), zap.Error(err))
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			cancel()
			_ = watcher.Close()
			wg.Wait()
		})
	}, nil
}

// diff reloads the file and returns what changed since sub last looked.
func (s *FileStore) diff(sub *fileSub) []Change {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		// a half-written file from a non-atomic writer; the next event will retry
		s.logger.Debug("skip unreadable storage file", zap.String("path", s.path), zap.Error(err))
		return nil
	}

	var changes []Change
	for k, v := range data {
		if old, ok := sub.known[k]; !ok || old != v {
			changes = append(changes, Change{Key: k, Value: strPtr(v)})
		}
	}
	for k := range sub.known {
		if _, ok := data[k]; !ok {
			changes = append(changes, Change{Key: k})
		}
	}
	sub.known = data
	return changes
}
