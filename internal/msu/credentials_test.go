// ABOUTME: Tests for merchant credentials
// ABOUTME: Ensures secrets never appear in formatted or logged output

package msu

import (
	"bytes"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCredentials_Validate(t *testing.T) {
	assert.NoError(t, testCreds.Validate())
	assert.Error(t, Credentials{User: "u", Password: "p"}.Validate())
	assert.Error(t, Credentials{Merchant: "m", Password: "p"}.Validate())
	assert.Error(t, Credentials{Merchant: "m", User: "u"}.Validate())
}

func TestCredentials_NeverPrinted(t *testing.T) {
	outputs := []string{
		fmt.Sprint(testCreds),
		fmt.Sprintf("%v", testCreds),
		fmt.Sprintf("%+v", testCreds),
		fmt.Sprintf("%#v", testCreds),
		fmt.Sprintf("%s", testCreds),
	}
	for _, out := range outputs {
		assert.NotContains(t, out, "s3cret")
		assert.NotContains(t, out, "api-user")
		assert.NotContains(t, out, "m-1")
	}
}

func TestCredentials_NeverLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	logger.Info("starting", "credentials", testCreds)

	assert.NotContains(t, buf.String(), "s3cret")
	assert.NotContains(t, buf.String(), "api-user")
	assert.Contains(t, buf.String(), `"password_set":true`)
}
