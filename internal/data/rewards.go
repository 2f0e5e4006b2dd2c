package data

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Reward defines the commands granted to the clan finishing at one
// position. Valid only when Position > 0 and Commands is non-empty.
type Reward struct {
	Position int      `yaml:"position"`
	Commands []string `yaml:"commands"`
}

// RewardTable holds reward definitions indexed by position. Loaded from
// static configuration; never mutated at runtime.
type RewardTable struct {
	byPosition map[int]*Reward
	skipped    int
}

// Get returns the reward for a 1-based position, or nil.
func (t *RewardTable) Get(position int) *Reward {
	return t.byPosition[position]
}

// All returns rewards ordered by position.
func (t *RewardTable) All() []*Reward {
	out := make([]*Reward, 0, len(t.byPosition))
	for _, r := range t.byPosition {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

// Count returns the number of valid rewards loaded.
func (t *RewardTable) Count() int {
	return len(t.byPosition)
}

// Skipped returns how many entries failed validation during load.
func (t *RewardTable) Skipped() int {
	return t.skipped
}

type rewardsFile struct {
	Rewards []Reward `yaml:"rewards"`
}

// LoadRewardTable loads reward definitions from a YAML file. Entries with
// a non-positive position or no commands are skipped, not fatal.
func LoadRewardTable(path string) (*RewardTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rewards: %w", err)
	}
	var f rewardsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse rewards: %w", err)
	}

	t := &RewardTable{byPosition: make(map[int]*Reward, len(f.Rewards))}
	for i := range f.Rewards {
		r := &f.Rewards[i]
		if r.Position <= 0 || len(r.Commands) == 0 {
			t.skipped++
			continue
		}
		t.byPosition[r.Position] = r
	}
	return t, nil
}
