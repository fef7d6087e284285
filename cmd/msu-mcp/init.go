// ABOUTME: Interactive config file writer for msu-mcp init
// ABOUTME: Prompts for merchant credentials and transport settings

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/2389/msu-mcp/internal/config"
)

func runInit(in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)

	fmt.Fprintln(out, "msu-mcp configuration setup")
	fmt.Fprintln(out, "===========================")
	fmt.Fprintln(out)

	outputFile := prompt(reader, out, "Config file path", config.DefaultPath())
	if outputFile == "" {
		return fmt.Errorf("config file path is required")
	}

	if _, err := os.Stat(outputFile); err == nil {
		if !yes(prompt(reader, out, "File exists. Overwrite?", "no")) {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	cfg := config.Default()

	fmt.Fprintln(out, "\n--- MSU Gateway ---")
	cfg.Gateway.URL = prompt(reader, out, "API URL", cfg.Gateway.URL)
	timeout := prompt(reader, out, "Request timeout", cfg.Gateway.Timeout.String())
	d, err := time.ParseDuration(timeout)
	if err != nil {
		return fmt.Errorf("parsing timeout %q: %w", timeout, err)
	}
	cfg.Gateway.Timeout = d

	fmt.Fprintln(out, "\n--- Merchant Credentials ---")
	fmt.Fprintln(out, "Leave empty to supply them via MSU_MERCHANT, MSU_MERCHANT_USER, MSU_MERCHANT_PASSWORD.")
	cfg.Merchant.Merchant = prompt(reader, out, "Merchant", "")
	cfg.Merchant.User = prompt(reader, out, "Merchant user", "")
	cfg.Merchant.Password = prompt(reader, out, "Merchant password", "")

	fmt.Fprintln(out, "\n--- HTTP Transport ---")
	cfg.HTTP.Addr = prompt(reader, out, "Listen address", cfg.HTTP.Addr)
	cfg.HTTP.RequireAuth = yes(prompt(reader, out, "Require bearer tokens?", "no"))
	if cfg.HTTP.RequireAuth {
		cfg.HTTP.JWTSecret = "${MSU_JWT_SECRET}"
		fmt.Fprintln(out, "jwt_secret will be read from MSU_JWT_SECRET.")
	}

	fmt.Fprintln(out, "\n--- NATS Transport ---")
	cfg.NATS.URL = prompt(reader, out, "NATS URL", cfg.NATS.URL)
	cfg.NATS.Subject = prompt(reader, out, "Subject", cfg.NATS.Subject)

	fmt.Fprintln(out, "\n--- Logging ---")
	cfg.Logging.Level = prompt(reader, out, "Log level (debug/info/warn/error)", cfg.Logging.Level)
	cfg.Logging.Format = prompt(reader, out, "Log format (text/json)", cfg.Logging.Format)

	if err := cfg.Save(outputFile); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nConfig written to %s\n", outputFile)
	fmt.Fprintln(out, "\nTo start the server:")
	fmt.Fprintln(out, "  msu-mcp serve")

	return nil
}

func yes(s string) bool {
	s = strings.ToLower(s)
	return s == "yes" || s == "y"
}

func prompt(reader *bufio.Reader, out io.Writer, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Fprintf(out, "%s [%s]: ", question, defaultVal)
	} else {
		fmt.Fprintf(out, "%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		// On EOF or error, return default
		fmt.Fprintln(out)
		return defaultVal
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultVal
	}
	return input
}
