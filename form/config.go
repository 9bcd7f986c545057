package form

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/drone/envsubst"
	"github.com/marqusG/FormProcessor/upload"
	"gopkg.in/yaml.v3"
	"maps"
)

// Config drives how the columns of each managed table are rendered and
// processed. Values may reference environment variables with ${NAME}.
type Config struct {
	// SiteURL is the URL prefix under which stored files are reachable
	SiteURL string `yaml:"site_url"`
	// RootTargetDir is prepended to the column directory of stored files
	RootTargetDir string `yaml:"root_target_dir"`
	MaxFileSize   int64  `yaml:"max_file_size"`

	Tables map[string]*TableConfig `yaml:"tables"`
}

type TableConfig struct {
	Uploads       map[string]*UploadConfig `yaml:"uploads"`
	Selects       []string                 `yaml:"selects"`
	Lists         map[string][]string      `yaml:"lists"`
	Radios        map[string][]string      `yaml:"radios"`
	IgnoredInputs []string                 `yaml:"ignored_inputs"`
	HiddenInputs  []string                 `yaml:"hidden_inputs"`
}

type UploadConfig struct {
	Extensions []string `yaml:"extensions"`
	Image      bool     `yaml:"image"`
}

func DefaultConfig() *Config {
	return &Config{
		SiteURL:     "/files/",
		MaxFileSize: upload.DefaultMaxFileSize,
		Tables:      map[string]*TableConfig{},
	}
}

func LoadConfig(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	config, err := ParseConfig(content)
	if err != nil {
		return nil, fmt.Errorf("config file %q: %w", path, err)
	}
	return config, nil
}

func ParseConfig(content []byte) (*Config, error) {
	expanded, err := envsubst.Eval(string(content), os.Getenv)
	if err != nil {
		return nil, fmt.Errorf("variables expansion failed: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal([]byte(expanded), config); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	if config.MaxFileSize <= 0 {
		config.MaxFileSize = upload.DefaultMaxFileSize
	}
	if config.Tables == nil {
		config.Tables = map[string]*TableConfig{}
	}

	for name, table := range config.Tables {
		if table == nil {
			config.Tables[name] = &TableConfig{}
			continue
		}

		for column, uploadConfig := range table.Uploads {
			if uploadConfig == nil {
				table.Uploads[column] = &UploadConfig{}
				continue
			}
			for i, ext := range uploadConfig.Extensions {
				uploadConfig.Extensions[i] = strings.ToLower(strings.TrimPrefix(ext, "."))
			}
		}
	}

	return config, nil
}

func (c *Config) HasTable(name string) bool {
	_, found := c.Tables[name]
	return found
}

// TableNames returns the configured tables sorted by name.
func (c *Config) TableNames() []string {
	return slices.Sorted(maps.Keys(c.Tables))
}

// Table returns the configuration of a table, a table without a section gets
// an empty configuration.
func (c *Config) Table(name string) *TableConfig {
	if table, found := c.Tables[name]; found {
		return table
	}
	return &TableConfig{}
}

// FileURL is the URL a stored file is displayed from.
func (c *Config) FileURL(column, name string) string {
	return strings.TrimRight(c.SiteURL, "/") + "/" + column + "/" + name
}

// AddTables gives an empty section to each table not configured yet, such
// tables are rendered from their structure alone.
func (c *Config) AddTables(names ...string) {
	for _, name := range names {
		if _, found := c.Tables[name]; !found {
			c.Tables[name] = &TableConfig{}
		}
	}
}

// IsUploadColumn reports whether column is an upload column of any
// configured table.
func (c *Config) IsUploadColumn(column string) bool {
	for _, table := range c.Tables {
		if table.IsUpload(column) {
			return true
		}
	}
	return false
}

// UploadColumns returns the upload columns sorted by name.
func (t *TableConfig) UploadColumns() []string {
	return slices.Sorted(maps.Keys(t.Uploads))
}

func (t *TableConfig) IsUpload(column string) bool {
	_, found := t.Uploads[column]
	return found
}

// UploadRules returns the validation rules of an upload column.
func (t *TableConfig) UploadRules(column string, maxSize int64) (upload.Rules, bool) {
	uploadConfig, found := t.Uploads[column]
	if !found {
		return upload.Rules{}, false
	}

	return upload.Rules{
		Extensions: uploadConfig.Extensions,
		Image:      uploadConfig.Image,
		MaxSize:    maxSize,
	}, true
}

func (t *TableConfig) IsSelect(column string) bool {
	return contains(t.Selects, column)
}

func (t *TableConfig) IsIgnored(column string) bool {
	return contains(t.IgnoredInputs, column)
}

func (t *TableConfig) IsHidden(column string) bool {
	return contains(t.HiddenInputs, column)
}

func (t *TableConfig) IsRadio(column string) bool {
	_, found := t.Radios[column]
	return found
}

func contains(values []string, value string) bool {
	for _, candidate := range values {
		if candidate == value {
			return true
		}
	}
	return false
}
