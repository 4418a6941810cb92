package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Well-known preference keys. Anything else in the preferences mapping is
// a custom key and is passed to the planner verbatim.
const (
	PrefWakeUp    = "wake_up"
	PrefSleep     = "sleep"
	PrefBreakfast = "breakfast"
	PrefLunch     = "lunch"
	PrefDinner    = "dinner"
)

// Pref is one named preference.
type Pref struct {
	Key   string
	Value string
}

// Preferences is the user's free-form lifestyle preference bag: an
// optional bio plus named time-window entries. Entry order in the file is
// preserved so the prompt stays byte-stable across runs.
type Preferences struct {
	Bio   string
	Items []Pref
}

// DefaultPreferences returns the starter preference set written by
// `morrow config init`.
func DefaultPreferences() Preferences {
	return Preferences{
		Items: []Pref{
			{PrefWakeUp, "around 7:30"},
			{PrefSleep, "in bed by 23:00"},
			{PrefBreakfast, "half an hour after waking up"},
			{PrefLunch, "between 12:00 and 13:00"},
			{PrefDinner, "between 18:30 and 19:30"},
		},
	}
}

// Get returns the value for key, or "" when absent.
func (p Preferences) Get(key string) string {
	for _, it := range p.Items {
		if it.Key == key {
			return it.Value
		}
	}
	return ""
}

// Set replaces the value for key, appending when absent.
func (p *Preferences) Set(key, value string) {
	for i := range p.Items {
		if p.Items[i].Key == key {
			p.Items[i].Value = value
			return
		}
	}
	p.Items = append(p.Items, Pref{key, value})
}

// UnmarshalYAML decodes the preferences mapping keeping file order. The
// "bio" key is split out; every other scalar becomes an entry.
func (p *Preferences) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("preferences must be a mapping, got %v", node.Kind)
	}
	p.Bio = ""
	p.Items = nil
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		var value string
		if err := node.Content[i+1].Decode(&value); err != nil {
			return fmt.Errorf("preference %q: %w", key, err)
		}
		if key == "bio" {
			p.Bio = value
			continue
		}
		p.Items = append(p.Items, Pref{key, value})
	}
	return nil
}

// MarshalYAML encodes bio first, then the entries in order.
func (p Preferences) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key, value string) {
		k := &yaml.Node{Kind: yaml.ScalarNode, Value: key}
		v := &yaml.Node{Kind: yaml.ScalarNode, Value: value}
		if key == "bio" {
			v.Style = yaml.LiteralStyle
		}
		node.Content = append(node.Content, k, v)
	}
	if p.Bio != "" {
		add("bio", p.Bio)
	}
	for _, it := range p.Items {
		add(it.Key, it.Value)
	}
	return node, nil
}
