package booking

import (
	"fmt"
	"strings"

	"booking-widget/internal/calendly"
)

// Question kinds as declared by the scheduling API. "text" and "string"
// are the same input on the wire.
const (
	QuestionText         = "text"
	QuestionString       = "string"
	QuestionPhoneNumber  = "phone_number"
	QuestionSingleSelect = "single_select"
	QuestionMultiSelect  = "multi_select"
)

// otherSentinel is the wire value clients send when the invitee picked the
// "Other" choice. It never enters an Answer's choice set; it only flips
// the Other flag, with the supplement tracked separately.
const otherSentinel = "other"

// Input describes the widget control for one custom question. It is the
// server-side contract the embedding page renders from.
type Input struct {
	Key          string   `json:"key"`
	Label        string   `json:"label"`
	Kind         string   `json:"kind"`
	Required     bool     `json:"required"`
	Choices      []string `json:"choices,omitempty"`
	IncludeOther bool     `json:"include_other,omitempty"`
	OtherKey     string   `json:"other_key,omitempty"`
}

// QuestionKey derives the form-state key for the question at the given
// declared position index.
func QuestionKey(index int) string {
	return fmt.Sprintf("question_%d", index)
}

// InputFor maps a custom question to its widget input. Disabled questions
// and unknown kinds produce no input.
func InputFor(q calendly.CustomQuestion, index int) *Input {
	if !q.Enabled {
		return nil
	}
	key := QuestionKey(index)
	in := &Input{
		Key:      key,
		Label:    q.Name,
		Required: q.Required,
	}
	switch q.Type {
	case QuestionText, QuestionString:
		in.Kind = QuestionText
	case QuestionPhoneNumber:
		in.Kind = QuestionPhoneNumber
	case QuestionSingleSelect, QuestionMultiSelect:
		in.Kind = q.Type
		in.Choices = q.AnswerChoices
		in.IncludeOther = q.IncludeOther
		if q.IncludeOther {
			in.OtherKey = key + "_other"
		}
	default:
		return nil
	}
	return in
}

// Answer is the normalized form-state value for one question. Scalar kinds
// use Text, multi-select uses Options. The "other" choice is held out of
// both: Other records the selection and OtherText the supplement.
type Answer struct {
	Text      string   `json:"text,omitempty"`
	Options   []string `json:"options,omitempty"`
	Other     bool     `json:"other,omitempty"`
	OtherText string   `json:"other_text,omitempty"`
}

// Empty reports whether the invitee has provided nothing yet. The
// supplement alone does not count; selecting "other" does.
func (a Answer) Empty() bool {
	return a.Text == "" && len(a.Options) == 0 && !a.Other
}

// NormalizeScalar builds the answer for a free-text, phone or
// single-select question from its wire value.
func NormalizeScalar(value string, prev Answer) Answer {
	next := Answer{OtherText: prev.OtherText}
	if value == otherSentinel {
		next.Other = true
		return next
	}
	next.Text = value
	return next
}

// NormalizeList builds the answer for a multi-select question from its
// wire value, filtering the sentinel into the Other flag.
func NormalizeList(values []string, prev Answer) Answer {
	next := Answer{OtherText: prev.OtherText}
	for _, v := range values {
		if v == otherSentinel {
			next.Other = true
			continue
		}
		if v != "" {
			next.Options = append(next.Options, v)
		}
	}
	return next
}

// Render flattens the answer into the single string the scheduling API
// expects: list answers joined with ", " and the supplement substituted
// for the "other" selection.
func (a Answer) Render() string {
	if len(a.Options) > 0 || a.Other {
		parts := append([]string(nil), a.Options...)
		if a.Other {
			parts = append(parts, a.OtherText)
		}
		return strings.Join(parts, ", ")
	}
	return a.Text
}
