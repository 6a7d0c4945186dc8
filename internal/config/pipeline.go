package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/trebuchet-org/sling/internal/domain/models"
	"github.com/trebuchet-org/sling/pkg/create2"
	"gopkg.in/yaml.v3"
)

// PipelineFile is the YAML form of a pipeline
type PipelineFile struct {
	Name     string     `yaml:"name"`
	Salt     string     `yaml:"salt,omitempty"`
	GasLimit uint64     `yaml:"gas_limit,omitempty"`
	Steps    []StepFile `yaml:"steps"`
}

// StepFile is one entry of steps:
type StepFile struct {
	Name     string    `yaml:"name"`
	Artifact string    `yaml:"artifact,omitempty"`
	Salt     *string   `yaml:"salt,omitempty"`
	GasLimit *uint64   `yaml:"gas_limit,omitempty"`
	Args     []ArgNode `yaml:"args,omitempty"`
}

// ArgNode is a constructor argument. Scalars are literals; a
// mapping with one of the keys step, deployment or addressbook is a reference.
//
//	- step: EIP4337Manager
//	- deployment: EntryPoint
//	- addressbook: safe_proxy_factory@1.3.0
//	- addressbook: {family: safe_singleton, version: latest}
//	- "0x5FF137D4b0FDCD49DcA30c7CF57E578a026d2789"
type ArgNode struct {
	Ref models.AddressRef
}

// UnmarshalYAML implements yaml.Unmarshaler
func (a *ArgNode) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		a.Ref = models.Literal(literalValue(node))
		return nil
	case yaml.MappingNode:
		return a.decodeRef(node)
	default:
		return fmt.Errorf("line %d: unsupported argument", node.Line)
	}
}

func (a *ArgNode) decodeRef(node *yaml.Node) error {
	if len(node.Content) != 2 {
		return fmt.Errorf("line %d: argument reference must have exactly one of step, deployment, addressbook", node.Line)
	}
	key, value := node.Content[0].Value, node.Content[1]

	switch key {
	case "step":
		if value.Kind != yaml.ScalarNode || value.Value == "" {
			return fmt.Errorf("line %d: step reference needs a step name", value.Line)
		}
		a.Ref = models.FromStep(value.Value)
	case "deployment":
		if value.Kind != yaml.ScalarNode || value.Value == "" {
			return fmt.Errorf("line %d: deployment reference needs a contract name", value.Line)
		}
		a.Ref = models.FromDeployment(value.Value)
	case "addressbook":
		family, version, err := addressBookRef(value)
		if err != nil {
			return err
		}
		a.Ref = models.FromAddressBook(family, version)
	default:
		return fmt.Errorf("line %d: unknown argument reference %q", node.Line, key)
	}
	return nil
}

func addressBookRef(node *yaml.Node) (string, string, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		family, version, _ := strings.Cut(node.Value, "@")
		if family == "" {
			return "", "", fmt.Errorf("line %d: addressbook reference needs a family", node.Line)
		}
		return family, version, nil
	case yaml.MappingNode:
		var ref struct {
			Family  string `yaml:"family"`
			Version string `yaml:"version"`
		}
		if err := node.Decode(&ref); err != nil {
			return "", "", err
		}
		if ref.Family == "" {
			return "", "", fmt.Errorf("line %d: addressbook reference needs a family", node.Line)
		}
		return ref.Family, ref.Version, nil
	default:
		return "", "", fmt.Errorf("line %d: invalid addressbook reference", node.Line)
	}
}

// literalValue keeps numbers as their source text so large integers survive
// until they are coerced to the constructor type
func literalValue(node *yaml.Node) any {
	if node.ShortTag() == "!!bool" {
		return strings.EqualFold(node.Value, "true")
	}
	return node.Value
}

// PipelineLoader reads pipeline YAML files relative to the project root
type PipelineLoader struct {
	projectRoot string
}

// NewPipelineLoader creates a new pipeline loader
func NewPipelineLoader(projectRoot string) *PipelineLoader {
	return &PipelineLoader{projectRoot: projectRoot}
}

// LoadPipeline implements usecase.PipelineLoader
func (l *PipelineLoader) LoadPipeline(ctx context.Context, path string) (*models.Pipeline, error) {
	if !filepath.IsAbs(path) {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			path = filepath.Join(l.projectRoot, path)
		}
	}
	return LoadPipeline(path)
}

// LoadPipeline parses a pipeline file
func LoadPipeline(path string) (*models.Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pipeline file: %w", err)
	}
	return ParsePipeline(data, path)
}

// ParsePipeline converts YAML into a pipeline. name is used when the file
// does not declare one.
func ParsePipeline(data []byte, name string) (*models.Pipeline, error) {
	var file PipelineFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse pipeline YAML: %w", err)
	}

	if file.Name == "" {
		file.Name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	}
	if len(file.Steps) == 0 {
		return nil, fmt.Errorf("pipeline %s has no steps", file.Name)
	}

	salt := create2.SaltFromString(file.Salt)

	pipeline := &models.Pipeline{
		Name:  file.Name,
		Steps: make([]*models.DeploymentStep, 0, len(file.Steps)),
	}

	for _, s := range file.Steps {
		step := &models.DeploymentStep{
			Name:     s.Name,
			Artifact: s.Artifact,
			Args:     make([]models.AddressRef, 0, len(s.Args)),
			Salt:     salt,
			GasLimit: file.GasLimit,
		}
		if step.Artifact == "" {
			step.Artifact = s.Name
		}
		if s.Salt != nil {
			step.Salt = create2.SaltFromString(*s.Salt)
		}
		if s.GasLimit != nil {
			step.GasLimit = *s.GasLimit
		}
		for _, arg := range s.Args {
			step.Args = append(step.Args, arg.Ref)
		}
		pipeline.Steps = append(pipeline.Steps, step)
	}

	return pipeline, nil
}
