package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/jobmargin/internal/auth"
)

func writeEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRunPrintsVerifiableToken(t *testing.T) {
	path := writeEnv(t, "JWT_SECRET=dev-secret\nJWT_ISSUER=dev\nSEED_OWNER_ID=demo-owner\n")

	var out bytes.Buffer
	require.NoError(t, run([]string{"-env-file", path, "-ttl", "1h"}, &out))

	owner, err := auth.NewBearer("dev-secret", "dev").Validate(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "demo-owner", owner)

	out.Reset()
	require.NoError(t, run([]string{"-env-file", path, "-owner", "someone"}, &out))
	owner, err = auth.NewBearer("dev-secret", "dev").Validate(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "someone", owner)
}

func TestRunRejects(t *testing.T) {
	cases := map[string]struct {
		env  string
		args []string
	}{
		"no secret":    {env: "SEED_OWNER_ID=demo-owner\n"},
		"no owner":     {env: "JWT_SECRET=s\n"},
		"production":   {env: "APP_ENV=production\nJWT_SECRET=s\nSEED_OWNER_ID=x\n"},
		"negative ttl": {env: "JWT_SECRET=s\nSEED_OWNER_ID=x\n", args: []string{"-ttl", (-time.Minute).String()}},
		"bad flag":     {env: "JWT_SECRET=s\n", args: []string{"-nope"}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeEnv(t, tc.env)
			var out bytes.Buffer
			err := run(append([]string{"-env-file", path}, tc.args...), &out)
			assert.Error(t, err)
			assert.Empty(t, out.String())
		})
	}
}
