// Package alertrule loads the per-event-kind delivery rules: which alert
// type label and channels an event fans out with, whether it stays in test
// mode, and an optional JSON schema its payload must satisfy before the
// router dispatches it. The file hot-reloads so alert routing can change
// without a restart.
package alertrule

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"swingflow/internal/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Rule describes delivery for one event kind.
type Rule struct {
	AlertType    string                 `yaml:"alert_type"`
	Channels     []string               `yaml:"channels"`
	TestUserOnly bool                   `yaml:"test_user_only"`
	Schema       map[string]interface{} `yaml:"schema"`

	schemaCompiled *jsonschema.Schema
}

// FileConfig maps the rules file root.
type FileConfig struct {
	Rules map[string]Rule `yaml:"rules"`
}

// Snapshot is an immutable view of the loaded rules.
type Snapshot struct {
	Version  int64
	LoadedAt time.Time
	Rules    map[string]Rule
}

// ChangeListener fires after a successful reload.
type ChangeListener func(Snapshot)

// Registry manages the alert delivery rules.
type Registry struct {
	path string
	v    *viper.Viper

	mu        sync.RWMutex
	snapshot  Snapshot
	listeners []ChangeListener
}

// NewRegistry reads the rules file and watches it for updates.
func NewRegistry(path string) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("alert rule registry requires path")
	}
	v := viper.New()
	v.SetConfigFile(path)
	r := &Registry{path: path, v: v}
	if err := r.reload(); err != nil {
		return nil, err
	}
	v.OnConfigChange(func(evt fsnotify.Event) {
		if err := r.reload(); err != nil {
			logger.Errorf("alert rule reload failed: %v", err)
			return
		}
		r.notifyListeners()
	})
	v.WatchConfig()
	return r, nil
}

// reload parses the rules file directly with yaml. Viper only watches the
// file: its settings store lowercases nested map keys, which would mangle
// the camelCase property names inside schema blocks and leave their
// constraints matching nothing.
func (r *Registry) reload() error {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("read alert rules failed: %w", err)
	}
	var fc FileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse alert rules failed: %w", err)
	}
	rules := make(map[string]Rule, len(fc.Rules))
	for kind, rule := range fc.Rules {
		kind = strings.TrimSpace(kind)
		if kind == "" {
			continue
		}
		if len(rule.Schema) > 0 {
			compiled, err := compileSchema(kind, rule.Schema)
			if err != nil {
				return fmt.Errorf("rule %s: %w", kind, err)
			}
			rule.schemaCompiled = compiled
		}
		rules[kind] = rule
	}
	r.mu.Lock()
	r.snapshot = Snapshot{
		Version:  r.snapshot.Version + 1,
		LoadedAt: time.Now(),
		Rules:    rules,
	}
	r.mu.Unlock()
	logger.Infof("alert rules loaded: %d kind(s) from %s", len(rules), r.path)
	return nil
}

func compileSchema(kind string, raw map[string]interface{}) (*jsonschema.Schema, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	url := "inline://" + kind + ".schema.json"
	if err := compiler.AddResource(url, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	compiled, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return compiled, nil
}

// Snapshot returns the current rule set.
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot
}

// Rule returns the rule for the given event kind.
func (r *Registry) Rule(kind string) (Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.snapshot.Rules[strings.TrimSpace(kind)]
	return rule, ok
}

// ValidatePayload checks an event's data section against the kind's
// schema. Kinds without a schema always pass.
func (r *Registry) ValidatePayload(kind string, data []byte) error {
	rule, ok := r.Rule(kind)
	if !ok || rule.schemaCompiled == nil {
		return nil
	}
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("event data is not valid JSON: %w", err)
	}
	if err := rule.schemaCompiled.Validate(doc); err != nil {
		return fmt.Errorf("event data rejected by %s schema: %w", kind, err)
	}
	return nil
}

// OnChange registers a reload listener.
func (r *Registry) OnChange(fn ChangeListener) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

func (r *Registry) notifyListeners() {
	r.mu.RLock()
	listeners := make([]ChangeListener, len(r.listeners))
	copy(listeners, r.listeners)
	snap := r.snapshot
	r.mu.RUnlock()
	for _, fn := range listeners {
		fn(snap)
	}
}

// DefaultRule is the fallback when no rules file is configured or the kind
// is absent: the historical alert type labels, email+sms, test mode on.
func DefaultRule(kind string) Rule {
	rule := Rule{Channels: []string{"email", "sms"}, TestUserOnly: true}
	switch kind {
	case "entry-hit":
		rule.AlertType = "entry target"
	case "profit-hit":
		rule.AlertType = "profit target"
	case "stop-out":
		rule.AlertType = "stop price"
	case "stop-warning":
		rule.AlertType = "stop warning"
	default:
		rule.AlertType = "entry target"
	}
	return rule
}
