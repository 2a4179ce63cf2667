package survey

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fieldfolio/fieldfolio/binding"
)

// Contributor names one person who worked on the survey.
type Contributor struct {
	Name  string `yaml:"name"`
	Role  string `yaml:"role,omitempty"`
	Email string `yaml:"email,omitempty"`
}

// Metadata is the report front matter: everything the title and team
// pages show, plus the document info embedded in the PDF.
type Metadata struct {
	Title         string        `yaml:"title"`
	Description   string        `yaml:"description,omitempty"`
	Logo          string        `yaml:"logo,omitempty"`
	ClientName    string        `yaml:"clientName,omitempty"`
	ClientContact string        `yaml:"clientContact,omitempty"`
	ClientAddress string        `yaml:"clientAddress,omitempty"`
	ProjectID     string        `yaml:"projectId,omitempty"`
	ReportDate    string        `yaml:"reportDate,omitempty"`
	ReportStatus  string        `yaml:"reportStatus,omitempty"`
	Contributors  []Contributor `yaml:"contributors,omitempty"`
}

// Date parses ReportDate (2006-01-02). A missing or malformed date
// falls back to today so the filename stays well formed.
func (m *Metadata) Date() time.Time {
	if t, err := time.Parse("2006-01-02", m.ReportDate); err == nil {
		return t
	}
	return time.Now()
}

// LoadMetadata reads the report front matter from a YAML file. When
// data is non-nil, ${path} placeholders in string fields are
// interpolated against it.
func LoadMetadata(path string, data any) (*Metadata, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	var m Metadata
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse metadata %s: %w", path, err)
	}
	if data != nil {
		m.interpolate(data)
	}
	return &m, nil
}

func (m *Metadata) interpolate(data any) {
	fields := []*string{
		&m.Title, &m.Description, &m.Logo,
		&m.ClientName, &m.ClientContact, &m.ClientAddress,
		&m.ProjectID, &m.ReportDate, &m.ReportStatus,
	}
	for _, f := range fields {
		*f = binding.Interpolate(*f, data)
	}
	for i := range m.Contributors {
		c := &m.Contributors[i]
		c.Name = binding.Interpolate(c.Name, data)
		c.Role = binding.Interpolate(c.Role, data)
		c.Email = binding.Interpolate(c.Email, data)
	}
}
