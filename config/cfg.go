package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"pagemaker/common"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	SanitizerConfig struct {
		Target          common.TargetArea `yaml:"target" validate:"oneof=pc mobile"`
		MaxPasses       int               `yaml:"max_passes" validate:"min=1,max=16"`
		MinSpacerHeight int               `yaml:"min_spacer_height" validate:"gte=0"`
	}

	SplitterConfig struct {
		MergeConsecutiveBr    bool `yaml:"merge_consecutive_br"`
		TableAtomic           bool `yaml:"table_atomic"`
		WhitespaceGapNewlines int  `yaml:"whitespace_gap_newlines" validate:"gte=0"`
		Summaries             bool `yaml:"summaries"`
	}

	ExportConfig struct {
		IncludeStyles      bool   `yaml:"include_styles"`
		Minify             bool   `yaml:"minify"`
		Title              string `yaml:"title" validate:"required"`
		Description        string `yaml:"description"`
		Language           string `yaml:"language" validate:"required,bcp47_language_tag"`
		FullDocument       bool   `yaml:"full_document"`
		MobileMode         bool   `yaml:"mobile_mode"`
		OutputNameTemplate string `yaml:"output_name_template"`
		FileNameSlug       bool   `yaml:"file_name_slug"`
	}

	EditorConfig struct {
		LinkTarget common.LinkTarget `yaml:"link_target" validate:"oneof=_top _blank _self _parent"`
		Overlay    bool              `yaml:"overlay"`
		Language   string            `yaml:"language" validate:"required,bcp47_language_tag"`
	}

	ServerConfig struct {
		Listen        string `yaml:"listen" validate:"required,hostname_port"`
		Database      string `yaml:"database" sanitize:"path_clean,assure_dir_exists_for_file" validate:"required,filepath"`
		ImagesDir     string `yaml:"images_dir" validate:"required"`
		ImagesURL     string `yaml:"images_url" validate:"required,startswith=/"`
		MaxUploadSize int64  `yaml:"max_upload_size" validate:"gt=0"`
	}

	Config struct {
		Version   int             `yaml:"version" validate:"eq=1"`
		Sanitizer SanitizerConfig `yaml:"sanitizer"`
		Splitter  SplitterConfig  `yaml:"splitter"`
		Export    ExportConfig    `yaml:"export"`
		Editor    EditorConfig    `yaml:"editor"`
		Server    ServerConfig    `yaml:"server"`
		Logging   LoggingConfig   `yaml:"logging"`
		Reporting ReporterConfig  `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field name above, alternative is to use struct
	// field name and reflection which I want to avoid for now
	OutputNameTemplateFieldName TemplateFieldName = "output_name_template"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(OutputNameTemplateFieldName)),
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		// sanitize and validate what has been loaded
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
