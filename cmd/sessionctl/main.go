package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"prepmate/internal/config"
	"prepmate/internal/store"
)

// sessionctl is a small operator tool for inspecting stored prep sessions.
//
//	sessionctl -list [-limit 20]
//	sessionctl -get <session-id>
func main() {
	list := flag.Bool("list", false, "list recent sessions")
	limit := flag.Int("limit", 20, "maximum sessions to list")
	get := flag.String("get", "", "print a single session by id")
	flag.Parse()

	if !*list && *get == "" {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg := config.Load()
	if cfg.DBURL == "" {
		fail("DB_URL is required")
	}
	st, err := store.NewPostgres(cfg.DBURL)
	if err != nil {
		fail("failed to connect to Postgres: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	switch {
	case *get != "":
		id, err := uuid.Parse(*get)
		if err != nil {
			fail("invalid session id %q", *get)
		}
		sess, err := st.GetSession(ctx, id)
		if err != nil {
			fail("failed to load session: %v", err)
		}
		printJSON(sess)
	case *list:
		sessions, err := st.ListSessions(ctx, *limit)
		if err != nil {
			fail("failed to list sessions: %v", err)
		}
		fmt.Printf("found %d session(s)\n", len(sessions))
		printJSON(sessions)
	}
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fail("failed to encode: %v", err)
	}
	fmt.Println(string(data))
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
