package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/leetforum/leetforum/internal/config"
	"github.com/leetforum/leetforum/internal/scheduler"
	"github.com/leetforum/leetforum/internal/store"
	"github.com/leetforum/leetforum/pkg/cache"
	"github.com/leetforum/leetforum/pkg/discord"
	"github.com/leetforum/leetforum/pkg/leetcode"
	"github.com/leetforum/leetforum/pkg/problem"
	"github.com/leetforum/leetforum/pkg/server"
	"github.com/leetforum/leetforum/pkg/thread"
)

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func openStore(cfg *config.Config) (*store.SQLiteStore, error) {
	db, err := store.New(cfg.Database.Path, cfg.DebugEnabled())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return db, nil
}

func runServe(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Discord.PublicKey == "" {
		return errors.New("discord public key is required to receive interactions (set DISCORD_PUBLIC_KEY)")
	}
	publicKey, err := discord.ParsePublicKey(cfg.Discord.PublicKey)
	if err != nil {
		return fmt.Errorf("parse public key: %w", err)
	}

	if port == 0 {
		port = cfg.Server.Port
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	lc := leetcode.New()
	problems := cache.New(db, lc)
	if err := problems.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize problem cache: %w", err)
	}

	dc := discord.New(cfg.Discord.Token)
	reconciler := thread.New(db, problems, dc)
	if err := reconciler.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize reconciler: %w", err)
	}

	sched := scheduler.New(db, problems, reconciler,
		cfg.Schedule.ParseRefreshInterval(),
		cfg.Schedule.ParseDailyInterval(),
	)
	go func() {
		if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
			fmt.Fprintf(os.Stderr, "scheduler error: %v\n", err)
		}
	}()

	go func() {
		<-ctx.Done()
		fmt.Fprintln(os.Stderr, "\nshutting down...")
	}()

	srv := server.New(problems, reconciler, lc, dc, publicKey, port)
	return srv.ListenAndServe()
}

func runRefresh() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	problems := cache.New(db, leetcode.New())
	if err := problems.RefreshAll(context.Background()); err != nil {
		return err
	}

	fmt.Printf("refreshed %d problems\n", problems.Len())
	return nil
}

func runProblem(arg string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	lc := leetcode.New()

	// A non-numeric argument is a URL slug; those always go upstream.
	id, convErr := strconv.Atoi(strings.TrimSpace(arg))
	var wt problem.WithTags
	if convErr != nil {
		wt, err = lc.FetchBySlug(ctx, arg)
		if err == nil {
			err = db.SaveProblem(ctx, &wt.Problem, wt.Tags)
		}
	} else {
		stored, gerr := db.GetProblem(ctx, id)
		switch {
		case gerr == nil:
			var tags []problem.Tag
			tags, err = db.ListProblemTags(ctx, stored.ID)
			wt = problem.WithTags{Problem: *stored, Tags: tags}
		case errors.Is(gerr, problem.ErrNotFound):
			wt, err = lc.FetchByID(ctx, id)
			if err == nil {
				err = db.SaveProblem(ctx, &wt.Problem, wt.Tags)
			}
		default:
			err = gerr
		}
	}
	if errors.Is(err, problem.ErrNotFound) {
		fmt.Printf("problem %s not found\n", arg)
		return nil
	}
	if err != nil {
		return err
	}

	return printProblem(wt)
}

func runDaily() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	problems := cache.New(db, leetcode.New())
	wt, err := problems.GetDaily(context.Background())
	if err != nil {
		return err
	}

	return printProblem(wt)
}

func runRegister() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Discord.ApplicationID == "" {
		return errors.New("discord application id is required (set DISCORD_APPLICATION_ID)")
	}

	dc := discord.New(cfg.Discord.Token)
	cmds := server.Commands()
	if err := dc.RegisterCommands(context.Background(), cfg.Discord.ApplicationID, cfg.Discord.GuildID, cmds); err != nil {
		return fmt.Errorf("register commands: %w", err)
	}

	scope := "globally"
	if cfg.Discord.GuildID != "" {
		scope = "for guild " + cfg.Discord.GuildID
	}
	fmt.Printf("registered %d commands %s\n", len(cmds), scope)
	return nil
}

func runHealth() error {
	if err := leetcode.New().HealthCheck(context.Background()); err != nil {
		fmt.Printf("LeetCode API is down: %v\n", err)
		return nil
	}
	fmt.Println("LeetCode API is healthy.")
	return nil
}

func printProblem(wt problem.WithTags) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\t%d\n", wt.Problem.ProblemID)
	fmt.Fprintf(w, "Title\t%s\n", wt.Problem.Title)
	fmt.Fprintf(w, "Difficulty\t%s\n", problem.DisplayLabel(wt.Problem.Difficulty))
	fmt.Fprintf(w, "URL\t%s\n", wt.Problem.URL)
	fmt.Fprintf(w, "Tags\t%s\n", strings.Join(wt.TagNames(), ", "))
	if err := w.Flush(); err != nil {
		return err
	}
	if wt.Problem.Description != "" {
		fmt.Printf("\n%s\n", wt.Problem.Description)
	}
	return nil
}
