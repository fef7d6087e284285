// ABOUTME: Mints HS256 bearer tokens for the HTTP transport
// ABOUTME: Uses http.jwt_secret from the loaded config

package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/2389/msu-mcp/internal/auth"
	"github.com/2389/msu-mcp/internal/config"
)

// defaultTokenTTL is 30 days.
const defaultTokenTTL = 30 * 24 * time.Hour

// parseTokenArgs supports both "--flag value" and "--flag=value" forms.
func parseTokenArgs(args []string) (subject string, ttl time.Duration, err error) {
	ttl = defaultTokenTTL
	rawTTL := ""

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--sub":
			if i+1 >= len(args) {
				return "", 0, fmt.Errorf("--sub requires a value")
			}
			subject = args[i+1]
			i++
		case strings.HasPrefix(arg, "--sub="):
			subject = strings.TrimPrefix(arg, "--sub=")
		case arg == "--ttl":
			if i+1 >= len(args) {
				return "", 0, fmt.Errorf("--ttl requires a value")
			}
			rawTTL = args[i+1]
			i++
		case strings.HasPrefix(arg, "--ttl="):
			rawTTL = strings.TrimPrefix(arg, "--ttl=")
		case strings.HasPrefix(arg, "-"):
			return "", 0, fmt.Errorf("unknown flag: %s", arg)
		default:
			return "", 0, fmt.Errorf("unexpected argument: %s", arg)
		}
	}

	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", 0, fmt.Errorf("--sub flag is required")
	}

	if rawTTL != "" {
		ttl, err = time.ParseDuration(rawTTL)
		if err != nil {
			return "", 0, fmt.Errorf("parsing --ttl %q: %w", rawTTL, err)
		}
		if ttl <= 0 {
			return "", 0, fmt.Errorf("--ttl must be positive")
		}
	}

	return subject, ttl, nil
}

func runToken(args []string, out io.Writer) error {
	subject, ttl, err := parseTokenArgs(args)
	if err != nil {
		return err
	}

	cfg, path, err := config.LoadDefault()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.HTTP.JWTSecret == "" {
		return fmt.Errorf("http.jwt_secret is not configured (config %q, or set MSU_JWT_SECRET)", path)
	}

	return mintToken(out, []byte(cfg.HTTP.JWTSecret), subject, ttl)
}

func mintToken(out io.Writer, secret []byte, subject string, ttl time.Duration) error {
	verifier, err := auth.NewJWTVerifier(secret)
	if err != nil {
		return fmt.Errorf("creating JWT verifier: %w", err)
	}

	token, err := verifier.Generate(subject, ttl)
	if err != nil {
		return fmt.Errorf("generating token: %w", err)
	}

	expiresAt := time.Now().Add(ttl).UTC()
	gray := color.New(color.FgHiBlack)
	gray.Fprintf(out, "# subject %s, expires %s\n", subject, expiresAt.Format("Jan 02, 2006"))
	fmt.Fprintln(out, token)
	return nil
}
