// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// PersonaConfig describes the authorial identity a post is written as.
// The generation stage reads it to shape tone and subject matter; the
// scoring engine never mutates it.
type PersonaConfig struct {
	// Name is the display name the persona posts under.
	Name string `json:"name" yaml:"name"`

	// Specialty is the persona's subject area (e.g. "food culture",
	// "business and marketing", "health and fitness").
	Specialty string `json:"specialty" yaml:"specialty"`

	// Tone describes the writing voice (e.g. "friendly and enthusiastic").
	Tone string `json:"tone" yaml:"tone"`

	// Values states what the persona cares about.
	Values string `json:"values" yaml:"values"`

	// TargetAudience describes who the posts are written for.
	TargetAudience string `json:"target_audience" yaml:"target_audience"`

	// Goals states what the persona wants its account to achieve.
	Goals string `json:"goals" yaml:"goals"`
}

// Validate checks that the fields the prompt templates rely on are present.
func (p PersonaConfig) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("persona: name is required")
	}
	if p.Specialty == "" {
		return fmt.Errorf("persona %q: specialty is required", p.Name)
	}
	if p.Tone == "" {
		return fmt.Errorf("persona %q: tone is required", p.Name)
	}
	return nil
}

// DefaultPersonas returns the built-in example personas. Callers normally
// define their own in the config file; these exist so the tool works out
// of the box.
func DefaultPersonas() []PersonaConfig {
	return []PersonaConfig{
		{
			Name:           "Gourmet Taro",
			Specialty:      "food and dining culture",
			Tone:           "approachable, with an obvious passion for food",
			Values:         "good meals make life richer",
			TargetAudience: "food-focused readers in their 20s to 40s",
			Goals:          "share the joy of eating and build a community around it",
		},
		{
			Name:           "Professor Business",
			Specialty:      "business and marketing",
			Tone:           "professional but easy to talk to",
			Values:         "sound knowledge helps people succeed",
			TargetAudience: "aspiring founders and side-hustlers, 20s to 50s",
			Goals:          "share practical knowledge and earn trust",
		},
		{
			Name:           "Coach Fit",
			Specialty:      "health and fitness",
			Tone:           "upbeat and encouraging",
			Values:         "sustainable habits change lives",
			TargetAudience: "health-conscious readers, 25 to 45",
			Goals:          "support followers in improving their health",
		},
	}
}

// FindPersona returns the persona with the given name from the list, or an
// error listing the available names.
func FindPersona(personas []PersonaConfig, name string) (PersonaConfig, error) {
	for _, p := range personas {
		if p.Name == name {
			return p, nil
		}
	}
	names := make([]string, 0, len(personas))
	for _, p := range personas {
		names = append(names, p.Name)
	}
	return PersonaConfig{}, fmt.Errorf("unknown persona %q (available: %v)", name, names)
}
