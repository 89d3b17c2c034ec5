// Meetnotes server summarizes meeting transcripts and emails the summaries,
// over an HTTP API and the Model Context Protocol.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hal9000y/meetnotes/internal/api"
	"github.com/hal9000y/meetnotes/internal/auth"
	"github.com/hal9000y/meetnotes/internal/config"
	"github.com/hal9000y/meetnotes/internal/dispatch"
	"github.com/hal9000y/meetnotes/internal/gservice"
	"github.com/hal9000y/meetnotes/internal/summarize"
	"github.com/hal9000y/meetnotes/internal/tool"
)

func main() {
	httpAddr := flag.String("http-addr", "localhost:8080", "HTTP SERVER listen addr")
	oauthTokenFile := flag.String("oauth-token-file", "./data/meetnotes-token.json", "Path to cache google oauth token for the gmail sender, empty to avoid storing")
	oauthURLParam := flag.String("oauth-url", "", "OAuth URL")
	envFileParam := flag.String("env-file", "", "Path to env file")
	enableStdio := flag.Bool("stdio", false, "Enable stdio transport for MCP (disables stdout logging)")
	logFile := flag.String("log-file", "", "Path to log file (only used with stdio transport, otherwise logs to stdout)")

	flag.Parse()

	persistLogs := setupLogger(enableStdio, logFile)
	defer persistLogs()

	cfg, err := config.Load(*envFileParam)
	if err != nil {
		panic(fmt.Errorf("config.Load failed: %w", err))
	}

	ln := mustListen(httpAddr)

	mux := http.NewServeMux()

	transport, cleanup := mustCreateTransport(cfg, mux, ln.Addr().String(), *oauthURLParam, *oauthTokenFile)
	defer cleanup()

	gemini := gservice.NewGemini(gservice.GeminiOptions{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		BaseURL: cfg.GeminiBaseURL,
	})
	summarizer := summarize.NewClient(gemini)
	sender := dispatch.NewClient(transport, cfg.FromEmail)

	log.Printf("Using model %s, email provider %s", gemini.Model(), transport.Name())

	api.NewHandler(summarizer, sender).Register(mux)

	mcpSrv := tool.NewServer(summarizer, sender)
	mux.Handle("/mcp", mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server { return mcpSrv }, nil))

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)

	signal.Notify(shutdown, syscall.SIGTERM, syscall.SIGINT)

	stopHTTP, errHTTPCh := serveHTTP(srv, ln)
	defer stopHTTP()

	var errStdioCh <-chan error
	if *enableStdio {
		var stopStdio func()
		stopStdio, errStdioCh = serveStdio(mcpSrv)
		defer stopStdio()
	}

	select {
	case err := <-errHTTPCh:
		log.Println("Error http server", err)
	case err := <-errStdioCh:
		log.Println("Error stdio", err)
	case <-shutdown:
		log.Println("Shutdown signal received")
	}
}

type transport interface {
	Name() string
	Deliver(ctx context.Context, msg dispatch.Message) error
}

// mustCreateTransport picks the email transport. The gmail one also mounts
// the sender's OAuth flow on mux.
func mustCreateTransport(cfg config.Config, mux *http.ServeMux, lnAddr, oauthURL, tokenFile string) (transport, func()) {
	switch cfg.EmailProvider {
	case config.EmailProviderDev:
		return dispatch.NewDevTransport(cfg.DevMailDir), func() {}
	case config.EmailProviderGmail:
	default:
		return dispatch.NewPostmarkTransport(cfg.PostmarkServerToken, cfg.PostmarkAccountToken), func() {}
	}

	if oauthURL == "" {
		oauthURL = fmt.Sprintf("http://%s/oauth", lnAddr)
	}
	oauthCfg := auth.NewConfig(cfg.OAuthClientID, cfg.OAuthClientSecret, oauthURL)

	tok, err := auth.NewToken(oauthCfg, tokenFile)
	if err != nil {
		panic(fmt.Errorf("auth.NewToken failed: %w", err))
	}

	mux.Handle("/oauth", auth.NewHTTPHandler(tok))

	if _, err := tok.OAuthToken(); errors.Is(err, auth.ErrTokenNotSet) && cfg.OAuthClientID != "" {
		openBrowser(oauthURL)
	}

	return dispatch.NewGmailTransport(gservice.NewGmail(oauthCfg, tok)), func() {
		log.Println("Persisting token if exists")
		if err := tok.Persist(); err != nil {
			log.Println(fmt.Errorf("tok.Persist failed: %w", err))
		}
	}
}

func serveStdio(srv *mcp.Server) (func(), <-chan error) {
	errStdioCh := make(chan error, 1)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		defer close(errStdioCh)
		log.Println("Starting stdio transport")

		if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil {
			err = fmt.Errorf("srv.Run failed: %w", err)
			errStdioCh <- err
		}
	}()

	return func() {
		cancel()

		<-errStdioCh
		log.Println("Stdio transport stopped")
	}, errStdioCh
}

func serveHTTP(srv *http.Server, ln net.Listener) (func(), <-chan error) {
	errHTTPCh := make(chan error, 1)
	go func() {
		defer close(errHTTPCh)

		log.Println("Starting http server on", ln.Addr().String())

		err := srv.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			err = fmt.Errorf("srv.Serve failed: %w", err)
			log.Println(err)
			errHTTPCh <- err
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Println(fmt.Errorf("srv.Shutdown failed: %w", err))
		}

		<-errHTTPCh
		log.Println("HTTP server stopped")
	}, errHTTPCh
}

func mustListen(httpAddr *string) net.Listener {
	if httpAddr == nil {
		panic("-http-addr must be provided")
	}

	ln, err := net.Listen("tcp", *httpAddr)
	if err != nil {
		panic(fmt.Errorf("net.Listen failed: %w", err))
	}

	return ln
}

func setupLogger(enableStdio *bool, logFile *string) func() {
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			panic(fmt.Errorf("failed to open log file: %w", err))
		}
		log.SetOutput(f)

		return func() {
			if err := f.Close(); err != nil {
				log.Println(fmt.Errorf("f.Close failed: %w", err))
			}
		}
	}

	if *enableStdio {
		log.SetOutput(io.Discard)
	} else {
		log.SetOutput(os.Stdout)
	}

	return func() {}
}

func openBrowser(url string) {
	url = fmt.Sprintf("%s?redirect=1", url)
	var err error
	switch runtime.GOOS {
	case "linux":
		err = exec.Command("xdg-open", url).Start()
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		err = exec.Command("open", url).Start()
	default:
		err = fmt.Errorf("unsupported platform")
	}

	if err != nil {
		log.Printf("Could not open browser automatically: %v; please copy and open link in the browser: %s\n", err, url)
	}
}
