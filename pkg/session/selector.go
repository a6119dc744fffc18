package session

import (
	"context"
	"errors"
	"strings"

	"github.com/c-bata/go-prompt"

	"github.com/younsl/jj/internal/errs"
	"github.com/younsl/jj/internal/models"
)

// ErrAborted is returned when the user leaves the selection without choosing
var ErrAborted = errors.New("selection aborted")

// Selector picks one instance type out of a rendered table
type Selector interface {
	Select(ctx context.Context, types []models.TableType) (string, error)
}

// FixedSelector always picks Type, which must be listed in the table
type FixedSelector struct {
	Type string
}

// Select implements Selector
func (s FixedSelector) Select(_ context.Context, types []models.TableType) (string, error) {
	for _, t := range types {
		if t.InstanceType == s.Type {
			return s.Type, nil
		}
	}
	return "", errs.Errorf(errs.KindConfig, "session.FixedSelector", "instance type %q is not listed in the table", s.Type)
}

// PromptSelector asks on the terminal, completing against whole table lines
type PromptSelector struct {
	Prefix        string
	MaxSuggestion uint16
}

// Select implements Selector. Table order is kept since the table is already sorted.
func (s PromptSelector) Select(ctx context.Context, types []models.TableType) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	prefix := s.Prefix
	if prefix == "" {
		prefix = "instance type> "
	}
	maxSuggestion := s.MaxSuggestion
	if maxSuggestion == 0 {
		maxSuggestion = 15
	}

	input := prompt.Input(prefix,
		func(d prompt.Document) []prompt.Suggest {
			return matchTypes(types, d.TextBeforeCursor())
		},
		prompt.OptionTitle("jj"),
		prompt.OptionMaxSuggestion(maxSuggestion),
		prompt.OptionSuggestionBGColor(prompt.DarkGray),
		prompt.OptionSuggestionTextColor(prompt.White),
		prompt.OptionSelectedSuggestionBGColor(prompt.Blue),
		prompt.OptionSelectedSuggestionTextColor(prompt.White),
	)

	return resolveSelection(types, input)
}

// matchTypes keeps table rows whose line contains every word of query, case-insensitively
func matchTypes(types []models.TableType, query string) []prompt.Suggest {
	words := strings.Fields(strings.ToLower(query))

	var res []prompt.Suggest
	for _, t := range types {
		line := strings.ToLower(t.Line)
		matched := true
		for _, w := range words {
			if !strings.Contains(line, w) {
				matched = false
				break
			}
		}
		if matched {
			res = append(res, prompt.Suggest{
				Text:        t.InstanceType,
				Description: strings.TrimSpace(strings.TrimPrefix(t.Line, t.InstanceType)),
			})
		}
	}
	return res
}

// resolveSelection maps what was typed onto a table entry: an exact
// instance type first, otherwise the only row the input matches.
func resolveSelection(types []models.TableType, input string) (string, error) {
	const op = "session.resolveSelection"

	input = strings.TrimSpace(input)
	if input == "" {
		return "", ErrAborted
	}

	for _, t := range types {
		if t.InstanceType == input {
			return input, nil
		}
	}

	matches := matchTypes(types, input)
	switch len(matches) {
	case 1:
		return matches[0].Text, nil
	case 0:
		return "", errs.Errorf(errs.KindConfig, op, "no instance type matches %q", input)
	default:
		return "", errs.Errorf(errs.KindConfig, op, "%q matches %d instance types, be more specific", input, len(matches))
	}
}
