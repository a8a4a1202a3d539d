// issue-token mints an operator token pair for the admin API.
//
//	issue-token --operator ana --workspace 123456789012345678 --role manager
//
// The signing settings default to the JWT_* variables the bot reads.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"chatbot-platform/internal/auth"
	"chatbot-platform/internal/config"
	"chatbot-platform/internal/rbac"

	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Getenv, time.Now()); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer, getenv func(string) string, now time.Time) error {
	var (
		id      auth.Identity
		authCfg config.AuthConfig
		envTTLs = envDurations(getenv)
		flagSet = pflag.NewFlagSet("issue-token", pflag.ContinueOnError)
	)
	flagSet.StringVar(&id.OperatorID, "operator", "", "operator id recorded in the token")
	flagSet.StringVar(&id.WorkspaceID, "workspace", "", "workspace (guild) id the token is scoped to")
	flagSet.StringVar(&id.Role, "role", rbac.RoleManager, "operator role: owner, manager, viewer or super_admin")
	flagSet.StringVar(&authCfg.JWTSecret, "secret", getenv("JWT_SECRET"), "signing secret")
	flagSet.StringVar(&authCfg.JWTIssuer, "issuer", getenv("JWT_ISSUER"), "token issuer")
	flagSet.StringVar(&authCfg.JWTAudience, "audience", getenv("JWT_AUDIENCE"), "token audience")
	flagSet.DurationVar(&authCfg.AccessTokenTTL, "access-ttl", envTTLs[0], "access token lifetime")
	flagSet.DurationVar(&authCfg.RefreshTokenTTL, "refresh-ttl", envTTLs[1], "refresh token lifetime")
	flagSet.SetOutput(out)

	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if id.OperatorID == "" || id.WorkspaceID == "" {
		return errors.New("--operator and --workspace are required")
	}
	if !rbac.IsKnown(id.Role) {
		return fmt.Errorf("unknown role %q", id.Role)
	}

	m, err := auth.NewManager(authCfg)
	if err != nil {
		return err
	}
	pair, err := m.IssuePair(now, id)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(pair)
}

// envDurations reads JWT_ACCESS_TTL and JWT_REFRESH_TTL, falling back to
// the bot's defaults.
func envDurations(getenv func(string) string) [2]time.Duration {
	out := [2]time.Duration{15 * time.Minute, 30 * 24 * time.Hour}
	for i, key := range []string{"JWT_ACCESS_TTL", "JWT_REFRESH_TTL"} {
		if d, err := time.ParseDuration(getenv(key)); err == nil && d > 0 {
			out[i] = d
		}
	}
	return out
}
