// Package yamlfile provides a catalog repository backed by a single YAML file.
package yamlfile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/prowheel/wheellab/log"
	"github.com/prowheel/wheellab/pkg/catalog"
	"github.com/prowheel/wheellab/pkg/model"
	"github.com/prowheel/wheellab/pkg/repository/api"
)

const (
	// FormatVersion is written into new catalog files.
	FormatVersion = "v1.1.0"
	// MinFormatVersion is the oldest file format which can be read.
	MinFormatVersion = "v1.0.0"
)

var ErrUnsupportedVersion = errors.New("unsupported catalog file version")

type (
	Option func(*Store)

	// Store keeps the parsed file in memory. Every save rewrites the file.
	Store struct {
		path string
		log  *log.Logger
		mu   sync.RWMutex
		data catalog.Catalog
	}

	catalogFile struct {
		Version         string `yaml:"version"`
		catalog.Catalog `yaml:",inline"`
	}
)

var _ api.CatalogRepository = (*Store)(nil)

func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		s.log = l
	}
}

// NewCatalogRepository reads the catalog at path.
// A missing file is treated as an empty catalog, it is created on first save.
func NewCatalogRepository(path string, opts ...Option) (*Store, error) {
	ret := &Store{
		path: path,
		log:  log.Default().Named("yamlfile"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if err := ret.Reload(); err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *Store) Path() string {
	return s.path
}

// Reload re-reads the file. On error the previous content is kept.
func (s *Store) Reload() error {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.log.Info("catalog file does not exist, starting empty",
			log.String("file", s.path))
		s.mu.Lock()
		s.data = catalog.Catalog{}
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		return err
	}
	parsed, err := Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", s.path, err)
	}
	s.mu.Lock()
	s.data = *parsed
	s.mu.Unlock()
	s.log.Debug("catalog file loaded",
		log.String("file", s.path),
		log.Int("entries", parsed.Size()))
	return nil
}

// Parse decodes catalog file content and checks its format version.
func Parse(raw []byte) (*catalog.Catalog, error) {
	var f catalogFile
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := CheckVersion(f.Version); err != nil {
		return nil, err
	}
	return &f.Catalog, nil
}

// CheckVersion accepts versions with the same major version as
// FormatVersion which are not older than MinFormatVersion.
// The leading "v" may be omitted.
func CheckVersion(version string) error {
	v := strings.TrimSpace(version)
	if v != "" && !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return fmt.Errorf("version %q: %w", version, ErrUnsupportedVersion)
	}
	if semver.Major(v) != semver.Major(FormatVersion) ||
		semver.Compare(v, MinFormatVersion) < 0 {
		return fmt.Errorf("version %s (supported %s..%s): %w",
			v, MinFormatVersion, semver.Major(FormatVersion), ErrUnsupportedVersion)
	}
	return nil
}

func (s *Store) ListRims(ctx context.Context) ([]model.RimSpec, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.data.Rims), nil
}

func (s *Store) ListHubs(ctx context.Context) ([]model.HubSpec, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.data.Hubs), nil
}

func (s *Store) ListSpokes(ctx context.Context) ([]model.SpokeSpec, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.data.Spokes), nil
}

func (s *Store) ListNipples(ctx context.Context) ([]model.NippleSpec, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.data.Nipples), nil
}

func (s *Store) SaveRim(ctx context.Context, rim *model.RimSpec) error {
	return s.modify(func(c *catalog.Catalog) {
		c.Rims = model.ReplaceByLabel(c.Rims, *rim)
	})
}

func (s *Store) SaveHub(ctx context.Context, hub *model.HubSpec) error {
	return s.modify(func(c *catalog.Catalog) {
		c.Hubs = model.ReplaceByLabel(c.Hubs, *hub)
	})
}

func (s *Store) SaveSpoke(ctx context.Context, spoke *model.SpokeSpec) error {
	return s.modify(func(c *catalog.Catalog) {
		c.Spokes = model.ReplaceByLabel(c.Spokes, *spoke)
	})
}

func (s *Store) SaveNipple(ctx context.Context, nipple *model.NippleSpec) error {
	return s.modify(func(c *catalog.Catalog) {
		c.Nipples = model.ReplaceByLabel(c.Nipples, *nipple)
	})
}

// modify applies fn to a copy of the data and writes the result.
// The in-memory data is only replaced if the write succeeded.
func (s *Store) modify(fn func(c *catalog.Catalog)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	work := catalog.Catalog{
		Rims:    slices.Clone(s.data.Rims),
		Hubs:    slices.Clone(s.data.Hubs),
		Spokes:  slices.Clone(s.data.Spokes),
		Nipples: slices.Clone(s.data.Nipples),
	}
	fn(&work)
	if err := writeFile(s.path, &work); err != nil {
		return err
	}
	s.data = work
	return nil
}

// writeFile replaces the file via rename so readers never see partial content.
func writeFile(path string, c *catalog.Catalog) error {
	raw, err := yaml.Marshal(&catalogFile{Version: FormatVersion, Catalog: *c})
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".catalog-*.yml")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
