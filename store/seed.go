// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/danielhkuo/pollbooth/models"
)

type samplePoll struct {
	title    string
	question string
	active   bool
	endIn    time.Duration
	choices  []string
	votes    []int
}

const day = 24 * time.Hour

var samplePolls = []samplePoll{
	{
		title:    "What's your favorite programming language?",
		question: "Which programming language do you enjoy working with the most?",
		active:   true,
		endIn:    7 * day,
		choices:  []string{"Python", "JavaScript", "Java", "C++", "Other"},
	},
	{
		title:    "Best framework for web development?",
		question: "Which web framework do you prefer for building modern web applications?",
		active:   true,
		endIn:    5 * day,
		choices:  []string{"Django", "Flask", "React", "Vue.js", "Angular"},
	},
	{
		title:    "Preferred development environment?",
		question: "What's your go-to development environment or IDE?",
		active:   true,
		endIn:    10 * day,
		choices:  []string{"VS Code", "PyCharm", "Sublime Text", "Vim/Neovim", "Other"},
	},
	{
		title:    "Favorite database system?",
		question: "Which database system do you prefer for your projects?",
		active:   false,
		endIn:    -5 * day,
		choices:  []string{"PostgreSQL", "MySQL", "SQLite", "MongoDB", "Other"},
		votes:    []int{45, 30, 15, 25, 10},
	},
}

// SeedSamplePolls replaces all data with a fixed set of sample polls: three
// open polls and one closed poll with votes. Each poll is created a
// millisecond after the previous one so list order is deterministic.
func (s *Store) SeedSamplePolls(ctx context.Context, now time.Time) ([]models.Poll, error) {
	if err := s.Reset(ctx); err != nil {
		return nil, err
	}

	created := make([]models.Poll, 0, len(samplePolls))
	for i, sp := range samplePolls {
		end := now.Add(sp.endIn)
		p, choices, err := s.CreatePoll(ctx, models.Poll{
			Title:     sp.title,
			Question:  sp.question,
			IsActive:  sp.active,
			EndDate:   &end,
			CreatedAt: now.Add(time.Duration(i) * time.Millisecond),
		}, sp.choices)
		if err != nil {
			return nil, errors.Wrapf(err, "seed poll %q", sp.title)
		}

		for j, v := range sp.votes {
			c := choices[j]
			c.Votes = v
			if err := s.UpdateChoice(ctx, c); err != nil {
				return nil, errors.Wrapf(err, "seed votes for %q", c.ChoiceText)
			}
		}

		created = append(created, p)
	}

	return created, nil
}
