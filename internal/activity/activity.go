// Package activity models a configured tutoring scenario and its shareable link form.
package activity

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Config identifies one tutoring activity. It is immutable for the lifetime
// of a session and decides which stored session (if any) may be restored.
type Config struct {
	AgeGroup        string `json:"age_group"`
	Topic           string `json:"topic"`
	LearningOutcome string `json:"learning_outcome"`
}

var ErrInvalidConfig = errors.New("invalid activity config")

// Validate rejects configs with any blank field.
func (c Config) Validate() error {
	if strings.TrimSpace(c.AgeGroup) == "" {
		return fmt.Errorf("%w: age group is required", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Topic) == "" {
		return fmt.Errorf("%w: topic is required", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.LearningOutcome) == "" {
		return fmt.Errorf("%w: learning outcome is required", ErrInvalidConfig)
	}
	return nil
}

// Equal reports exact field equality. Restoring a stored session requires it.
func (c Config) Equal(other Config) bool {
	return c.AgeGroup == other.AgeGroup &&
		c.Topic == other.Topic &&
		c.LearningOutcome == other.LearningOutcome
}

// Outcomes splits the learning-outcome text into individual outcome
// statements. Outcomes are newline-delimited, with commas accepted as a
// fallback for single-line input.
func (c Config) Outcomes() []string {
	raw := strings.TrimSpace(c.LearningOutcome)
	if raw == "" {
		return nil
	}
	sep := "\n"
	if !strings.Contains(raw, "\n") {
		sep = ","
	}
	parts := strings.Split(raw, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(p), "-*• \t"))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ShareLink builds the shareable chat URL a teacher hands to students.
func (c Config) ShareLink(baseURL string) (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	u.Path = "/chat"
	q := url.Values{}
	q.Set("age", c.AgeGroup)
	q.Set("topic", c.Topic)
	q.Set("outcome", c.LearningOutcome)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// FromQuery reconstructs a Config from share-link query parameters.
func FromQuery(q url.Values) (Config, error) {
	cfg := Config{
		AgeGroup:        q.Get("age"),
		Topic:           q.Get("topic"),
		LearningOutcome: q.Get("outcome"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
