package builder

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dgallion1/guidexml/internal/doctree"
)

// Project describes a guide build, normally read from guidexml.yaml.
type Project struct {
	Title       string             `yaml:"title"`
	Version     string             `yaml:"version"`
	MasterDoc   string             `yaml:"master_doc"`
	SourceDir   string             `yaml:"source_dir"`
	StaticPaths []string           `yaml:"static_paths"`
	Chapters    []doctree.TocEntry `yaml:"chapters"`
	Tags        map[string]string  `yaml:"tags"`
	Output      string             `yaml:"output"`
}

const (
	DefaultMasterDoc = "index"
	DefaultOutput    = "guidexml.xml"
)

// LoadProject reads a project file. A relative source_dir is resolved
// against the directory holding the file.
func LoadProject(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read project: %w", err)
	}

	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse project %s: %w", path, err)
	}
	p.applyDefaults()
	if !filepath.IsAbs(p.SourceDir) {
		p.SourceDir = filepath.Join(filepath.Dir(path), p.SourceDir)
	}
	return &p, nil
}

func (p *Project) applyDefaults() {
	if p.MasterDoc == "" {
		p.MasterDoc = DefaultMasterDoc
	}
	if p.SourceDir == "" {
		p.SourceDir = "."
	}
	if p.Output == "" {
		p.Output = DefaultOutput
	}
}
