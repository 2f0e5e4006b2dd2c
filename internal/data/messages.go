package data

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// MessagesTable holds operator-editable message templates keyed by name.
// Placeholders use {name} syntax and are substituted by Format.
type MessagesTable struct {
	msgs map[string]string
}

// Get returns the template for a key, or the key itself when missing so
// display code always has text.
func (t *MessagesTable) Get(key string) string {
	if m, ok := t.msgs[key]; ok {
		return m
	}
	return key
}

// Format renders a template with {placeholder} substitution.
func (t *MessagesTable) Format(key string, args map[string]string) string {
	out := t.Get(key)
	for k, v := range args {
		out = strings.ReplaceAll(out, "{"+k+"}", v)
	}
	return out
}

// Count returns the number of messages loaded.
func (t *MessagesTable) Count() int {
	return len(t.msgs)
}

type messagesFile struct {
	Messages map[string]string `yaml:"messages"`
}

// LoadMessagesTable loads message templates from a YAML file.
func LoadMessagesTable(path string) (*MessagesTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read messages: %w", err)
	}
	var f messagesFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse messages: %w", err)
	}
	if f.Messages == nil {
		f.Messages = make(map[string]string)
	}
	return &MessagesTable{msgs: f.Messages}, nil
}
