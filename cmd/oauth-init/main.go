// Command oauth-init performs the one-time browser authorization that
// produces the OAuth token the worker uses to reach Google Sheets. Run it
// locally, open the printed URL, and point GOOGLE_OAUTH_TOKEN_FILE at the
// saved token.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/sheets/v4"

	"qayd/internal/config"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	clientBytes, err := loadClientCredentials(cfg)
	if err != nil {
		log.Fatalf("oauth-init: %v", err)
	}

	oauthCfg, err := google.ConfigFromJSON(clientBytes, sheets.SpreadsheetsScope)
	if err != nil {
		log.Fatalf("oauth-init: parse client credentials: %v", err)
	}

	// The OAuth client must list this redirect URI as authorized.
	redirectPort := os.Getenv("OAUTH_REDIRECT_PORT")
	if redirectPort == "" {
		redirectPort = "8085"
	}
	oauthCfg.RedirectURL = "http://localhost:" + redirectPort + "/callback"

	code, err := waitForAuthCode(oauthCfg, redirectPort)
	if err != nil {
		log.Fatalf("oauth-init: %v", err)
	}

	tok, err := oauthCfg.Exchange(context.Background(), code)
	if err != nil {
		log.Fatalf("oauth-init: token exchange: %v", err)
	}

	outFile := cfg.GoogleOAuthTokenFile
	if outFile == "" {
		outFile = "token.json"
	}
	if err := saveToken(outFile, tok); err != nil {
		log.Fatalf("oauth-init: %v", err)
	}
	fmt.Printf("Saved token to %s\n", outFile)
}

func loadClientCredentials(cfg *config.Config) ([]byte, error) {
	switch {
	case cfg.GoogleOAuthClientJSON != "":
		return []byte(cfg.GoogleOAuthClientJSON), nil
	case cfg.GoogleOAuthClientFile != "":
		b, err := os.ReadFile(cfg.GoogleOAuthClientFile)
		if err != nil {
			return nil, fmt.Errorf("read client file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("set GOOGLE_OAUTH_CLIENT_JSON or GOOGLE_OAUTH_CLIENT_FILE")
	}
}

// waitForAuthCode serves the callback endpoint, prints the authorization
// URL, and blocks until Google redirects back with a code.
func waitForAuthCode(cfg *oauth2.Config, port string) (string, error) {
	codeCh := make(chan string, 1)

	mux := http.NewServeMux()
	srv := &http.Server{Addr: ":" + port, Handler: mux}
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		if errStr := r.URL.Query().Get("error"); errStr != "" {
			http.Error(w, "OAuth error: "+errStr, http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, "Authorization complete. You may close this window.")
		codeCh <- r.URL.Query().Get("code")
		go func() { time.Sleep(500 * time.Millisecond); _ = srv.Close() }()
	})
	go func() { _ = srv.ListenAndServe() }()

	fmt.Printf("Open this URL to authorize:\n%s\n", cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline))

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	select {
	case code := <-codeCh:
		return code, nil
	case <-time.After(5 * time.Minute):
		return "", errors.New("authorization timed out")
	case <-interrupt:
		return "", errors.New("interrupted")
	}
}

func saveToken(path string, tok *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open token file: %w", err)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(tok); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}
