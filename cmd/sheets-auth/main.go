// Command sheets-auth runs the OAuth consent flow once and stores the token
// used by wedplan-worker when no service account is configured.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"golang.org/x/oauth2"
	goauth "golang.org/x/oauth2/google"
	gsheet "google.golang.org/api/sheets/v4"

	"wedplan/internal/cli"
	"wedplan/internal/config"
	applog "wedplan/internal/log"
	sheetsgoogle "wedplan/internal/sheets/google"
)

func main() {
	port := flag.String("port", "8085", "local port for the OAuth redirect")
	timeout := flag.Duration("timeout", 5*time.Minute, "how long to wait for consent")
	flag.Parse()

	cli.LoadEnvFile()
	cfg := config.Load()
	logger := cli.SetupLogger(cfg).WithComponent("sheets-auth")

	if cfg.GoogleOAuthClientFile == "" {
		logger.Error("GOOGLE_OAUTH_CLIENT_FILE is required")
		os.Exit(1)
	}
	tokenFile := cfg.GoogleOAuthTokenFile
	if tokenFile == "" {
		tokenFile = "token.json"
	}

	clientJSON, err := os.ReadFile(cfg.GoogleOAuthClientFile)
	if err != nil {
		logger.Error("Failed to read OAuth client file", applog.FieldError, err)
		os.Exit(1)
	}
	oauthCfg, err := goauth.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		logger.Error("Invalid OAuth client file", applog.FieldError, err)
		os.Exit(1)
	}
	// The redirect URI must be listed on the OAuth client.
	oauthCfg.RedirectURL = "http://localhost:" + *port + "/callback"

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	tok, err := authorize(ctx, oauthCfg, net.JoinHostPort("localhost", *port))
	if err != nil {
		logger.Error("Authorization failed", applog.FieldError, err)
		os.Exit(1)
	}
	if err := sheetsgoogle.SaveToken(tokenFile, tok); err != nil {
		logger.Error("Failed to save token", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Token saved", "path", tokenFile)
}

// authorize prints the consent URL, waits for the callback on addr and
// exchanges the code for a token.
func authorize(ctx context.Context, oauthCfg *oauth2.Config, addr string) (*oauth2.Token, error) {
	state := fmt.Sprintf("wedplan-%d", time.Now().UnixNano())
	codes := make(chan string, 1)
	failures := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("error") != "":
			http.Error(w, "OAuth error: "+q.Get("error"), http.StatusBadRequest)
			failures <- fmt.Errorf("consent denied: %s", q.Get("error"))
		case q.Get("state") != state:
			http.Error(w, "state mismatch", http.StatusBadRequest)
		default:
			fmt.Fprintln(w, "You may close this window and return to the terminal.")
			codes <- q.Get("code")
		}
	})
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			failures <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	fmt.Printf("Open this URL to authorize:\n%s\n", oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOffline))

	select {
	case code := <-codes:
		tok, err := oauthCfg.Exchange(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("token exchange: %w", err)
		}
		return tok, nil
	case err := <-failures:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
