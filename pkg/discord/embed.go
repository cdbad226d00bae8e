package discord

import (
	"fmt"
	"strings"
	"time"

	"github.com/leetforum/leetforum/pkg/problem"
)

// Embed is the subset of the Discord embed object the bot sends.
type Embed struct {
	Title       string       `json:"title,omitempty"`
	URL         string       `json:"url,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

// EmbedField is one name/value pair inside an embed.
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// EmbedFooter is the embed footer line.
type EmbedFooter struct {
	Text string `json:"text"`
}

// ProblemEmbed renders a problem and its tags as a Discord embed, accent
// colored by difficulty. Unknown difficulty codes degrade to "Unknown"
// and blue rather than failing a display path.
func ProblemEmbed(wt problem.WithTags) Embed {
	tags := strings.Join(wt.TagNames(), ", ")
	if tags == "" {
		tags = "None"
	}

	return Embed{
		Title:       fmt.Sprintf("%d. %s", wt.Problem.ProblemID, wt.Problem.Title),
		URL:         wt.Problem.URL,
		Description: wt.Problem.Description,
		Color:       problem.DisplayColor(wt.Problem.Difficulty),
		Fields: []EmbedField{
			{Name: "Difficulty", Value: problem.DisplayLabel(wt.Problem.Difficulty), Inline: true},
			{Name: "Tags", Value: tags, Inline: true},
		},
		Footer:    &EmbedFooter{Text: "LeetForum"},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
