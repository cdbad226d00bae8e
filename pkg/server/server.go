// Package server hosts the bot's HTTP surface: a health endpoint and the
// Discord interactions webhook that delivers slash commands.
package server

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/leetforum/leetforum/pkg/cache"
	"github.com/leetforum/leetforum/pkg/discord"
	"github.com/leetforum/leetforum/pkg/leetcode"
	"github.com/leetforum/leetforum/pkg/problem"
	"github.com/leetforum/leetforum/pkg/thread"
)

// followupTimeout bounds the async work behind a deferred interaction
// response. Interaction tokens stay valid for 15 minutes.
const followupTimeout = 10 * time.Minute

// Server provides the HTTP API.
type Server struct {
	cache      *cache.Cache
	reconciler *thread.Reconciler
	lc         *leetcode.Client
	dc         *discord.Client
	publicKey  ed25519.PublicKey
	port       int
}

// New creates the HTTP server.
func New(c *cache.Cache, r *thread.Reconciler, lc *leetcode.Client, dc *discord.Client, publicKey ed25519.PublicKey, port int) *Server {
	if port == 0 {
		port = 8080
	}
	return &Server{
		cache:      c,
		reconciler: r,
		lc:         lc,
		dc:         dc,
		publicKey:  publicKey,
		port:       port,
	}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/interactions", s.handleInteractions)

	addr := fmt.Sprintf(":%d", s.port)
	fmt.Printf("leetforum server listening on %s\n", addr)
	return http.ListenAndServe(addr, mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"cached_problems": s.cache.Len(),
	})
}

func (s *Server) handleInteractions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "read body"})
		return
	}

	if !discord.VerifySignature(s.publicKey,
		r.Header.Get("X-Signature-Ed25519"),
		r.Header.Get("X-Signature-Timestamp"),
		body) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid request signature"})
		return
	}

	var ia discord.Interaction
	if err := json.Unmarshal(body, &ia); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "decode interaction"})
		return
	}

	switch ia.Type {
	case discord.InteractionPing:
		writeJSON(w, http.StatusOK, discord.InteractionResponse{Type: discord.ResponsePong})
	case discord.InteractionApplicationCommand:
		s.dispatchCommand(w, &ia)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unsupported interaction type"})
	}
}

func (s *Server) dispatchCommand(w http.ResponseWriter, ia *discord.Interaction) {
	if ia.Data == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing command data"})
		return
	}

	switch ia.Data.Name {
	case "ping":
		respond(w, "Pong!")
	case "set_forum_channel":
		s.cmdSetForumChannel(w, ia)
	case "problem":
		s.cmdProblem(w, ia)
	case "desc":
		s.cmdDesc(w, ia)
	case "daily":
		s.cmdDaily(w, ia)
	case "refresh":
		s.cmdRefresh(w, ia)
	case "leetcode_health":
		s.deferred(w, ia, func(ctx context.Context) discord.ResponseData {
			if err := s.lc.HealthCheck(ctx); err != nil {
				return discord.ResponseData{Content: fmt.Sprintf("LeetCode API is down: %v", err)}
			}
			return discord.ResponseData{Content: "LeetCode API is healthy."}
		})
	default:
		respond(w, fmt.Sprintf("Unknown command: %s", ia.Data.Name))
	}
}

func (s *Server) cmdSetForumChannel(w http.ResponseWriter, ia *discord.Interaction) {
	if !ia.Member.HasAdmin() {
		respond(w, "You need the administrator permission to set the forum channel.")
		return
	}
	channelID, ok := ia.Data.StringOption("channel")
	if !ok {
		channelID = ia.ChannelID
	}

	s.deferred(w, ia, func(ctx context.Context) discord.ResponseData {
		ch, err := s.dc.GetChannel(ctx, channelID)
		if err != nil {
			return discord.ResponseData{Content: fmt.Sprintf("Could not look up that channel: %v", err)}
		}
		if ch.Type != discord.ChannelTypeForum {
			return discord.ResponseData{Content: "Please pick a forum channel."}
		}
		if err := s.reconciler.SetForumChannel(ctx, ia.GuildID, channelID); err != nil {
			return discord.ResponseData{Content: fmt.Sprintf("Failed to set the forum channel: %v", err)}
		}
		return discord.ResponseData{Content: fmt.Sprintf("Problem threads will be created in <#%s>.", channelID)}
	})
}

func (s *Server) cmdProblem(w http.ResponseWriter, ia *discord.Interaction) {
	id, ok := ia.Data.IntOption("id")
	if !ok {
		respond(w, "Please provide a problem id.")
		return
	}

	s.deferred(w, ia, func(ctx context.Context) discord.ResponseData {
		res, err := s.reconciler.EnsureThread(ctx, id, ia.GuildID)
		if err != nil {
			return errorResponse(err, id)
		}
		if res.Created {
			return discord.ResponseData{Content: fmt.Sprintf("Created thread for problem %d: <#%s>", id, res.ThreadID)}
		}
		return discord.ResponseData{Content: fmt.Sprintf("Thread for problem %d already exists: <#%s>", id, res.ThreadID)}
	})
}

func (s *Server) cmdDesc(w http.ResponseWriter, ia *discord.Interaction) {
	id, ok := ia.Data.IntOption("id")
	if !ok {
		respond(w, "Please provide a problem id.")
		return
	}

	s.deferred(w, ia, func(ctx context.Context) discord.ResponseData {
		wt, err := s.cache.Get(ctx, id)
		if err != nil {
			return errorResponse(err, id)
		}
		return discord.ResponseData{Embeds: []discord.Embed{discord.ProblemEmbed(wt)}}
	})
}

func (s *Server) cmdDaily(w http.ResponseWriter, ia *discord.Interaction) {
	s.deferred(w, ia, func(ctx context.Context) discord.ResponseData {
		wt, err := s.cache.GetDaily(ctx)
		if err != nil {
			return errorResponse(err, 0)
		}
		res, err := s.reconciler.EnsureDailyThread(ctx, wt.Problem.ProblemID, ia.GuildID)
		if err != nil {
			return errorResponse(err, wt.Problem.ProblemID)
		}
		if res.Created {
			return discord.ResponseData{Content: fmt.Sprintf("Today's problem: <#%s>", res.ThreadID)}
		}
		return discord.ResponseData{Content: fmt.Sprintf("Today's problem already has a thread: <#%s>", res.ThreadID)}
	})
}

func (s *Server) cmdRefresh(w http.ResponseWriter, ia *discord.Interaction) {
	if !ia.Member.HasAdmin() {
		respond(w, "You need the administrator permission to refresh the cache.")
		return
	}

	s.deferred(w, ia, func(ctx context.Context) discord.ResponseData {
		if err := s.cache.RefreshAll(ctx); err != nil {
			return discord.ResponseData{Content: fmt.Sprintf("Cache refresh failed: %v", err)}
		}
		return discord.ResponseData{Content: fmt.Sprintf("Problem cache refreshed (%d problems).", s.cache.Len())}
	})
}

// deferred acknowledges the interaction immediately and finishes the work
// in the background, editing the original response when done.
func (s *Server) deferred(w http.ResponseWriter, ia *discord.Interaction, fn func(ctx context.Context) discord.ResponseData) {
	writeJSON(w, http.StatusOK, discord.InteractionResponse{Type: discord.ResponseDeferredMessage})

	appID, token := ia.ApplicationID, ia.Token
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), followupTimeout)
		defer cancel()

		data := fn(ctx)
		if err := s.dc.EditOriginalResponse(ctx, appID, token, data); err != nil {
			fmt.Fprintf(os.Stderr, "interaction followup error: %v\n", err)
		}
	}()
}

// errorResponse maps core errors to user-facing messages.
func errorResponse(err error, id int) discord.ResponseData {
	var fe *leetcode.FetchError
	switch {
	case errors.Is(err, problem.ErrNotFound):
		return discord.ResponseData{Content: fmt.Sprintf("Problem with ID %d not found.", id)}
	case errors.Is(err, thread.ErrNoForumChannel):
		return discord.ResponseData{Content: "No forum channel is configured for this server. Use /set_forum_channel first."}
	case errors.As(err, &fe):
		return discord.ResponseData{Content: fmt.Sprintf("LeetCode API error: %v", fe)}
	}
	return discord.ResponseData{Content: fmt.Sprintf("Something went wrong: %v", err)}
}

func respond(w http.ResponseWriter, content string) {
	writeJSON(w, http.StatusOK, discord.InteractionResponse{
		Type: discord.ResponseChannelMessage,
		Data: &discord.ResponseData{Content: content},
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Commands returns the slash commands the bot registers.
func Commands() []discord.Command {
	return []discord.Command{
		{Name: "ping", Description: "Check that the bot is alive"},
		{Name: "problem", Description: "Create or find the discussion thread for a problem",
			Options: []discord.CommandOption{
				{Type: discord.OptionInteger, Name: "id", Description: "The LeetCode problem id", Required: true},
			}},
		{Name: "desc", Description: "Show a problem's description",
			Options: []discord.CommandOption{
				{Type: discord.OptionInteger, Name: "id", Description: "The LeetCode problem id", Required: true},
			}},
		{Name: "daily", Description: "Get today's LeetCode problem"},
		{Name: "refresh", Description: "Refresh the problem cache (admin)"},
		{Name: "leetcode_health", Description: "Check LeetCode API status"},
		{Name: "set_forum_channel", Description: "Set the forum channel for problem threads (admin)",
			Options: []discord.CommandOption{
				{Type: discord.OptionChannel, Name: "channel", Description: "The forum channel to use"},
			}},
	}
}
