package seed

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Preset describes a hand-written data set, usually loaded from YAML:
//
//	name: demo
//	comments_per_post: 3
//	approved_ratio: 0.5
//	users:
//	  - username: alice
//	    staff: true
//	    bio: Runs the place.
//	    posts: 2
type Preset struct {
	Name            string       `yaml:"name"`
	CommentsPerPost int          `yaml:"comments_per_post"`
	ApprovedRatio   float64      `yaml:"approved_ratio"`
	DraftRatio      float64      `yaml:"draft_ratio"`
	Users           []PresetUser `yaml:"users"`
}

type PresetUser struct {
	Username string `yaml:"username"`
	Staff    bool   `yaml:"staff"`
	Bio      string `yaml:"bio"`
	Posts    int    `yaml:"posts"`
}

// LoadPreset decodes and checks a preset.
func LoadPreset(r io.Reader) (*Preset, error) {
	var p Preset
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode preset: %w", err)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Preset) validate() error {
	if len(p.Users) == 0 {
		return errors.New("preset has no users")
	}
	if p.ApprovedRatio < 0 || p.ApprovedRatio > 1 {
		return fmt.Errorf("approved_ratio %v out of range", p.ApprovedRatio)
	}
	if p.DraftRatio < 0 || p.DraftRatio > 1 {
		return fmt.Errorf("draft_ratio %v out of range", p.DraftRatio)
	}
	seen := make(map[string]bool, len(p.Users))
	for _, u := range p.Users {
		if u.Username == "" {
			return errors.New("preset user without username")
		}
		if seen[u.Username] {
			return fmt.Errorf("duplicate preset user %q", u.Username)
		}
		seen[u.Username] = true
		if u.Posts < 0 {
			return fmt.Errorf("user %q has negative posts", u.Username)
		}
	}
	return nil
}

// Demo is the built-in preset used when no file is given.
const Demo = `name: demo
comments_per_post: 3
approved_ratio: 0.6
draft_ratio: 0.2
users:
  - username: editor
    staff: true
    bio: Keeps the comment section friendly.
    posts: 1
  - username: alice
    bio: Writes about gardens and slow mornings.
    posts: 4
  - username: bob
    bio: Cycling, coffee and the occasional recipe.
    posts: 3
`
