package questionnaire

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

type flowFile struct {
	Name      string     `yaml:"name"`
	Start     string     `yaml:"start"`
	Questions []Question `yaml:"questions"`
}

// LoadFlow reads and parses a questionnaire bank file. The result still has
// to pass Check against a registry before an engine will traverse it.
func LoadFlow(path string) (*Flow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read questionnaire bank: %w", err)
	}
	return ParseFlow(data)
}

// ParseFlow builds a flow from raw YAML bank content.
func ParseFlow(data []byte) (*Flow, error) {
	var file flowFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal questionnaire bank: %w", err)
	}
	return NewFlow(file.Name, file.Start, file.Questions)
}

// DumpFlow renders a flow back into bank file YAML. Round-trips with
// ParseFlow.
func DumpFlow(f *Flow) ([]byte, error) {
	return yaml.Marshal(flowFile{
		Name:      f.Name,
		Start:     f.StartQuestionID,
		Questions: f.Questions,
	})
}

// Provider hands out the current engine and lets the bank watcher swap in a
// re-parsed flow atomically. Readers always see a fully constructed engine;
// in-flight sessions simply keep the pointer they grabbed.
type Provider struct {
	mu     sync.RWMutex
	engine *Engine
}

func NewProvider(e *Engine) *Provider {
	return &Provider{engine: e}
}

func (p *Provider) Engine() *Engine {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.engine
}

func (p *Provider) Swap(e *Engine) {
	p.mu.Lock()
	p.engine = e
	p.mu.Unlock()
}
