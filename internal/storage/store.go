package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/AnnaJiju/WeatherSpeak/internal/audio"
	"github.com/google/uuid"
)

// URLPrefix is where the output directory is mounted over HTTP.
const URLPrefix = "responses"

// Store owns the response output directory and the optional object mirror.
// Files are written once under unique names and never removed by the store
// except when a write failed half-way.
type Store struct {
	dir    string
	mirror ObjectClient
	now    func() time.Time
}

func NewStore(dir string, mirror ObjectClient) *Store {
	return &Store{dir: dir, mirror: mirror, now: time.Now}
}

func (s *Store) Dir() string { return s.dir }

// EnsureDir creates the output directory if absent.
func (s *Store) EnsureDir() (created bool, err error) {
	if _, err := os.Stat(s.dir); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat responses dir: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return false, fmt.Errorf("create responses dir: %w", err)
	}
	return true, nil
}

// UniqueName returns prefix_<random hex>.ext.
func UniqueName(prefix, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%s_%s.%s", prefix, id, ext)
}

// NewOutput reserves a fresh response file name and returns its disk path.
func (s *Store) NewOutput(ext string) (name, diskPath string) {
	name = UniqueName("response", ext)
	return name, filepath.Join(s.dir, name)
}

// PublicPath is the relative path clients use to fetch name.
func (s *Store) PublicPath(name string) string {
	return path.Join(URLPrefix, name)
}

func (s *Store) Remove(diskPath string) error {
	if err := os.Remove(diskPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *Store) MirrorEnabled() bool { return s.mirror != nil }

// Mirror copies a finished response to object storage. It returns an empty
// URL when no mirror is configured.
func (s *Store) Mirror(ctx context.Context, diskPath string) (string, error) {
	if s.mirror == nil {
		return "", nil
	}

	f, err := os.Open(diskPath)
	if err != nil {
		return "", fmt.Errorf("open response: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat response: %w", err)
	}

	name := filepath.Base(diskPath)
	key := path.Join(URLPrefix, s.now().Format("2006-01-02"), name)

	return s.mirror.PutObject(ctx, key, f, info.Size(), audio.ContentType(name))
}
