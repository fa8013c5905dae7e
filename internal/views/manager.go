package views

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/rebeliceyang/omnipg/internal/export"
	"github.com/rebeliceyang/omnipg/internal/models"
)

// Manager manages saved views
type Manager struct {
	path  string
	views []models.SavedView
	now   func() time.Time
}

// NewManager creates a manager backed by the YAML file at path
func NewManager(path string) (*Manager, error) {
	m := &Manager{
		path:  path,
		views: []models.SavedView{},
		now:   time.Now,
	}

	if _, err := os.Stat(path); err == nil {
		if err := m.Load(); err != nil {
			return nil, errors.Wrap(err, "failed to load views")
		}
	}

	return m, nil
}

// Load loads views from the YAML file
func (m *Manager) Load() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return errors.Wrap(err, "failed to read views file")
	}

	if err := yaml.Unmarshal(data, &m.views); err != nil {
		return errors.Wrap(err, "failed to parse views")
	}

	return nil
}

// Save writes views to the YAML file
func (m *Manager) Save() error {
	data, err := yaml.Marshal(m.views)
	if err != nil {
		return errors.Wrap(err, "failed to marshal views")
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}

	return errors.Wrap(os.WriteFile(m.path, data, 0o644), "failed to write views file")
}

// Add saves a new view of source. Names are unique per source,
// case-insensitively.
func (m *Manager) Add(name, description, source string, params []string) (*models.SavedView, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("view name cannot be empty")
	}
	if len(params) == 0 {
		return nil, errors.New("view has nothing to save")
	}
	if _, ok := m.Find(source, name); ok {
		return nil, errors.Errorf("a view named '%s' already exists for %s", name, source)
	}

	now := m.now()
	view := models.SavedView{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(description),
		Source:      source,
		Params:      append([]string(nil), params...),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	m.views = append(m.views, view)

	if err := m.Save(); err != nil {
		return nil, errors.Wrap(err, "failed to save view")
	}

	return &view, nil
}

// Put saves params under name, replacing the params of an existing view
// with the same name
func (m *Manager) Put(name, source string, params []string) (*models.SavedView, error) {
	existing, ok := m.Find(source, name)
	if !ok {
		return m.Add(name, "", source, params)
	}
	if err := m.Update(existing.ID, existing.Name, existing.Description, params); err != nil {
		return nil, err
	}
	return m.Get(existing.ID)
}

// Update changes an existing view
func (m *Manager) Update(id, name, description string, params []string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("view name cannot be empty")
	}

	idx := m.index(id)
	if idx < 0 {
		return errors.Errorf("view with ID '%s' was not found", id)
	}

	if other, ok := m.Find(m.views[idx].Source, name); ok && other.ID != id {
		return errors.Errorf("a view named '%s' already exists for %s", name, other.Source)
	}

	m.views[idx].Name = name
	m.views[idx].Description = strings.TrimSpace(description)
	m.views[idx].Params = append([]string(nil), params...)
	m.views[idx].UpdatedAt = m.now()

	return errors.Wrap(m.Save(), "failed to save view")
}

// Delete deletes a view by ID
func (m *Manager) Delete(id string) error {
	idx := m.index(id)
	if idx < 0 {
		return errors.Errorf("view with ID '%s' was not found", id)
	}
	m.views = append(m.views[:idx], m.views[idx+1:]...)
	return errors.Wrap(m.Save(), "failed to save views after deletion")
}

// Get returns a view by ID
func (m *Manager) Get(id string) (*models.SavedView, error) {
	idx := m.index(id)
	if idx < 0 {
		return nil, errors.Errorf("view with ID '%s' was not found", id)
	}
	view := m.views[idx]
	return &view, nil
}

// Find returns the view of source with the given name
func (m *Manager) Find(source, name string) (models.SavedView, bool) {
	for _, v := range m.views {
		if v.Source == source && strings.EqualFold(v.Name, strings.TrimSpace(name)) {
			return v, true
		}
	}
	return models.SavedView{}, false
}

// GetAll returns all views
func (m *Manager) GetAll() []models.SavedView {
	return m.views
}

// ForSource returns the views of one source, most used first
func (m *Manager) ForSource(source string) []models.SavedView {
	var out []models.SavedView
	for _, v := range m.views {
		if v.Source == source {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UsageCount > out[j].UsageCount
	})
	return out
}

// Search searches views by name or description
func (m *Manager) Search(query string) []models.SavedView {
	if query == "" {
		return m.views
	}

	query = strings.ToLower(query)
	var results []models.SavedView
	for _, v := range m.views {
		if strings.Contains(strings.ToLower(v.Name), query) ||
			strings.Contains(strings.ToLower(v.Description), query) {
			results = append(results, v)
		}
	}
	return results
}

// RecordUsage updates usage statistics for a view
func (m *Manager) RecordUsage(id string) error {
	idx := m.index(id)
	if idx < 0 {
		return errors.Errorf("view with ID '%s' was not found", id)
	}
	m.views[idx].UsageCount++
	m.views[idx].LastUsed = m.now()
	return errors.Wrap(m.Save(), "failed to save usage statistics")
}

// Export writes all views to path as CSV, or JSON for a .json path
func (m *Manager) Export(path string) error {
	if len(m.views) == 0 {
		return errors.New("no views to export")
	}
	return errors.Wrap(export.Views(m.views, path), "failed to export views")
}

func (m *Manager) index(id string) int {
	for i, v := range m.views {
		if v.ID == id {
			return i
		}
	}
	return -1
}
