// Package discord is a minimal REST client for the pieces of the Discord
// API the bot needs: forum threads, forum tags, slash-command
// registration, and interaction responses.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/leetforum/leetforum/pkg/problem"
)

const defaultBaseURL = "https://discord.com/api/v10"

// ChannelTypeForum is the channel type that hosts threads.
const ChannelTypeForum = 15

// APIError reports a non-success Discord API response.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("discord API status %d: %s", e.Status, e.Body)
}

// Client calls the Discord REST API with bot-token auth.
type Client struct {
	client  *http.Client
	baseURL string
	token   string
}

// New creates a client for the given bot token.
func New(token string) *Client {
	return NewWithBaseURL(token, defaultBaseURL)
}

// NewWithBaseURL creates a client against a custom API base. Used by tests.
func NewWithBaseURL(token, baseURL string) *Client {
	return &Client{
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: baseURL,
		token:   token,
	}
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal %s %s payload: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create %s %s request: %w", method, path, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bot "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &APIError{Status: resp.StatusCode, Body: string(data)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s %s response: %w", method, path, err)
		}
	}
	return nil
}

// ForumTag is a category label available on a forum channel.
type ForumTag struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Channel is the subset of the Discord channel object the bot reads.
type Channel struct {
	ID            string     `json:"id"`
	Type          int        `json:"type"`
	GuildID       string     `json:"guild_id"`
	Name          string     `json:"name"`
	AvailableTags []ForumTag `json:"available_tags"`
}

// GetChannel fetches a channel by id.
func (c *Client) GetChannel(ctx context.Context, channelID string) (*Channel, error) {
	var ch Channel
	if err := c.do(ctx, http.MethodGet, "/channels/"+channelID, nil, &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

// forumLabels are the category labels every problem forum carries.
func forumLabels(daily bool) []string {
	kind := "Problem"
	if daily {
		kind = "Daily"
	}
	return []string{"LeetCode", kind, "Easy", "Medium", "Hard"}
}

// EnsureForumTags creates any missing labels on the forum channel and
// returns the full name-to-id mapping afterwards.
func (c *Client) EnsureForumTags(ctx context.Context, ch *Channel, names []string) (map[string]string, error) {
	have := make(map[string]string, len(ch.AvailableTags))
	for _, t := range ch.AvailableTags {
		have[t.Name] = t.ID
	}

	var missing []string
	for _, name := range names {
		if _, ok := have[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return have, nil
	}

	tags := append([]ForumTag(nil), ch.AvailableTags...)
	for _, name := range missing {
		tags = append(tags, ForumTag{Name: name})
	}

	var updated Channel
	payload := map[string]any{"available_tags": tags}
	if err := c.do(ctx, http.MethodPatch, "/channels/"+ch.ID, payload, &updated); err != nil {
		return nil, fmt.Errorf("create forum tags on %s: %w", ch.ID, err)
	}

	result := make(map[string]string, len(updated.AvailableTags))
	for _, t := range updated.AvailableTags {
		result[t.Name] = t.ID
	}
	ch.AvailableTags = updated.AvailableTags
	return result, nil
}

type threadMessage struct {
	Content string  `json:"content"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

type createThreadRequest struct {
	Name        string        `json:"name"`
	AppliedTags []string      `json:"applied_tags,omitempty"`
	Message     threadMessage `json:"message"`
}

type createThreadResponse struct {
	ID string `json:"id"`
}

// CreateProblemThread creates a forum thread for the problem: title
// "N. Title", the problem URL as content, the metadata embed, and the
// matching category labels (created first when missing). Returns the new
// thread's handle. Fails when channelID is not a forum channel.
func (c *Client) CreateProblemThread(ctx context.Context, channelID string, wt problem.WithTags, daily bool) (string, error) {
	ch, err := c.GetChannel(ctx, channelID)
	if err != nil {
		return "", err
	}
	if ch.Type != ChannelTypeForum {
		return "", fmt.Errorf("channel %s is not a forum channel", channelID)
	}

	tagIDs, err := c.EnsureForumTags(ctx, ch, forumLabels(daily))
	if err != nil {
		return "", err
	}

	kind := "Problem"
	if daily {
		kind = "Daily"
	}
	var applied []string
	for _, name := range []string{"LeetCode", kind, problem.DisplayLabel(wt.Problem.Difficulty)} {
		if id, ok := tagIDs[name]; ok {
			applied = append(applied, id)
		}
	}

	req := createThreadRequest{
		Name:        fmt.Sprintf("%d. %s", wt.Problem.ProblemID, wt.Problem.Title),
		AppliedTags: applied,
		Message: threadMessage{
			Content: wt.Problem.URL + "\n",
			Embeds:  []Embed{ProblemEmbed(wt)},
		},
	}

	var resp createThreadResponse
	if err := c.do(ctx, http.MethodPost, "/channels/"+channelID+"/threads", req, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// Command describes a slash command for registration.
type Command struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Options     []CommandOption `json:"options,omitempty"`
}

// CommandOption is a single slash-command argument.
type CommandOption struct {
	Type        int    `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required,omitempty"`
}

// Command option types used by the bot.
const (
	OptionInteger = 4
	OptionChannel = 7
)

// RegisterCommands bulk-overwrites the application's slash commands,
// guild-scoped when guildID is non-empty.
func (c *Client) RegisterCommands(ctx context.Context, appID, guildID string, cmds []Command) error {
	path := "/applications/" + appID + "/commands"
	if guildID != "" {
		path = "/applications/" + appID + "/guilds/" + guildID + "/commands"
	}
	return c.do(ctx, http.MethodPut, path, cmds, nil)
}

// RespondToInteraction posts the callback for an interaction.
func (c *Client) RespondToInteraction(ctx context.Context, id, token string, resp InteractionResponse) error {
	return c.do(ctx, http.MethodPost, "/interactions/"+id+"/"+token+"/callback", resp, nil)
}

// EditOriginalResponse replaces the deferred response of an interaction.
func (c *Client) EditOriginalResponse(ctx context.Context, appID, token string, data ResponseData) error {
	return c.do(ctx, http.MethodPatch, "/webhooks/"+appID+"/"+token+"/messages/@original", data, nil)
}
