package keywords

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// DefaultCallbackAddr is where the installed-app flow listens for the redirect.
const DefaultCallbackAddr = "localhost:8080"

// ErrAuthDenied is returned when the consent screen reports an error.
var ErrAuthDenied = errors.New("authorization denied")

// AuthFlow mints a refresh token through the installed-app consent flow.
type AuthFlow struct {
	ClientID     string
	ClientSecret string
	// Addr is the local callback listener address, default DefaultCallbackAddr.
	Addr string
	// Out receives the consent URL to open in a browser.
	Out io.Writer
	// TokenURL and AuthURL override Google's endpoints in tests.
	TokenURL string
	AuthURL  string
	Logger   *slog.Logger
}

type callbackResult struct {
	code string
	err  error
}

// callbackHandler accepts the OAuth redirect, checks state and delivers the
// code (or error) on results.
func callbackHandler(state string, results chan<- callbackResult) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var res callbackResult
		switch {
		case q.Get("error") != "":
			res.err = fmt.Errorf("%w: %s", ErrAuthDenied, q.Get("error"))
		case q.Get("state") != state:
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		case q.Get("code") == "":
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		default:
			res.code = q.Get("code")
		}

		if res.err != nil {
			fmt.Fprintf(w, "Authorization failed: %s. You can close this window.", html.EscapeString(q.Get("error")))
		} else {
			fmt.Fprint(w, "Authorization complete. You can close this window.")
		}

		select {
		case results <- res:
		default:
		}
	})
}

// Run prints the consent URL, waits for the redirect and exchanges the code.
// The returned token carries the refresh token to store in google-ads.yaml.
func (f *AuthFlow) Run(ctx context.Context) (*oauth2.Token, error) {
	addr := f.Addr
	if addr == "" {
		addr = DefaultCallbackAddr
	}
	logger := f.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen for oauth callback: %w", err)
	}

	cfg := OAuthConfig(f.ClientID, f.ClientSecret, "http://"+ln.Addr().String()+"/")
	if f.AuthURL != "" {
		cfg.Endpoint.AuthURL = f.AuthURL
	}
	if f.TokenURL != "" {
		cfg.Endpoint.TokenURL = f.TokenURL
	}

	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()
	results := make(chan callbackResult, 1)

	srv := &http.Server{
		Handler:           callbackHandler(state, results),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("oauth callback server stopped", "err", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	authURL := cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.S256ChallengeOption(verifier),
	)
	if f.Out != nil {
		fmt.Fprintf(f.Out, "Open this URL in your browser to authorize Google Ads access:\n\n%s\n\n", authURL)
	}
	logger.Info("waiting for oauth callback", "addr", ln.Addr().String())

	var res callbackResult
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-results:
	}
	if res.err != nil {
		return nil, res.err
	}

	tok, err := cfg.Exchange(ctx, res.code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	if tok.RefreshToken == "" {
		return nil, errors.New("token response carried no refresh token")
	}
	return tok, nil
}
