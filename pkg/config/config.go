// Package config loads the notifier settings from an optional YAML file,
// the repository git configuration, and the environment, in that order of
// precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// gitConfigSection is the section the hook settings live under in the
// repository git configuration.
const gitConfigSection = "hooks.slack."

// envPrefix is the prefix for environment variable overrides.
const envPrefix = "GIT_SLACK_"

// ErrMissingSettings is returned when required settings are absent.
var ErrMissingSettings = errors.New("missing required settings")

// GitConfigReader reads keys from the repository git configuration.
type GitConfigReader interface {
	Config(key string) string
	BoolConfig(key string) bool
}

// Config is the configuration for the notifier.
type Config struct {
	// Token is the Slack incoming webhook token.
	Token string `env:"TOKEN" yaml:"token"`

	// OrgName is the Slack organization subdomain.
	OrgName string `env:"ORG_NAME" yaml:"org_name"`

	// Channel is the channel notifications are posted to.
	Channel string `env:"CHANNEL" yaml:"channel"`

	// TagChannel, if set, receives annotated tag notifications instead of
	// Channel.
	TagChannel string `env:"TAG_CHANNEL" yaml:"tag_channel"`

	// Username is the name the webhook posts under.
	Username string `env:"USERNAME" yaml:"username"`

	// IconURL is the avatar for the webhook user. Takes precedence over
	// IconEmoji.
	IconURL string `env:"ICON_URL" yaml:"icon_url"`

	// IconEmoji is the emoji avatar for the webhook user. Ignored when
	// IconURL is set.
	IconEmoji string `env:"ICON_EMOJI" yaml:"icon_emoji"`

	// ReposRoot is the directory all served repositories live under. Used
	// together with ChangesetURLPattern to build commit links.
	ReposRoot string `env:"REPOS_ROOT" yaml:"repos_root"`

	// ChangesetURLPattern is a URL template for commit links, with
	// %repo_path% and %rev_hash% placeholders.
	ChangesetURLPattern string `env:"CHANGESET_URL_PATTERN" yaml:"changeset_url_pattern"`

	// Prefix is the repository prefix in message text. Defaults to the
	// repository name.
	Prefix string `env:"PREFIX" yaml:"prefix"`

	// Debug prints the webhook request instead of sending it.
	Debug bool `env:"DEBUG" yaml:"debug"`
}

// Default returns the default Config.
func Default() *Config {
	return &Config{}
}

// ParseFile overlays the config with values from a YAML file.
func (c *Config) ParseFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}

	defer f.Close() // nolint: errcheck
	if err := yaml.NewDecoder(f).Decode(c); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}

	return nil
}

// ParseGitConfig overlays the config with values from the repository git
// configuration. repoName is the final fallback for the message prefix.
func (c *Config) ParseGitConfig(g GitConfigReader, repoName string) {
	overlay := func(dst *string, key string) {
		if v := g.Config(gitConfigSection + key); v != "" {
			*dst = v
		}
	}

	overlay(&c.Token, "token")
	overlay(&c.OrgName, "org-name")
	overlay(&c.Channel, "channel")
	overlay(&c.TagChannel, "tag-channel")
	overlay(&c.Username, "username")
	overlay(&c.IconURL, "icon-url")
	overlay(&c.IconEmoji, "icon-emoji")
	overlay(&c.ReposRoot, "repos-root")
	overlay(&c.ChangesetURLPattern, "changeset-url-pattern")
	if g.BoolConfig(gitConfigSection + "debug") {
		c.Debug = true
	}

	// The prefix falls back through the legacy irc and email hook keys
	// before settling on the repository name.
	overlay(&c.Prefix, "prefix")
	if c.Prefix == "" {
		for _, key := range []string{"hooks.irc.prefix", "hooks.emailprefix"} {
			if v := g.Config(key); v != "" {
				c.Prefix = v
				break
			}
		}
	}
	if c.Prefix == "" {
		c.Prefix = repoName
	}
}

// ParseEnv overlays the config with GIT_SLACK_* environment variables.
func (c *Config) ParseEnv() error {
	if err := env.ParseWithOptions(c, env.Options{
		Prefix: envPrefix,
	}); err != nil {
		return fmt.Errorf("parse environment variables: %w", err)
	}

	return nil
}

// Validate ensures the required settings are present.
func (c *Config) Validate() error {
	var missing []string
	if c.Token == "" {
		missing = append(missing, "token")
	}
	if c.OrgName == "" {
		missing = append(missing, "org-name")
	}
	if c.Channel == "" {
		missing = append(missing, "channel")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingSettings, strings.Join(missing, ", "))
	}

	return nil
}

// WebhookURL builds the incoming webhook endpoint from the organization
// name and token.
func (c *Config) WebhookURL() string {
	q := url.Values{"token": []string{c.Token}}
	return fmt.Sprintf("https://%s.slack.com/services/hooks/incoming-webhook?%s", c.OrgName, q.Encode())
}

// SettingsReference is the settings help block printed alongside usage when
// required configuration is missing.
const SettingsReference = `Settings are read from the repository git configuration (section
"hooks.slack"), overridable with GIT_SLACK_* environment variables:

  hooks.slack.token                  GIT_SLACK_TOKEN                  (required) webhook token
  hooks.slack.org-name               GIT_SLACK_ORG_NAME               (required) Slack organization
  hooks.slack.channel                GIT_SLACK_CHANNEL                (required) channel to post to
  hooks.slack.tag-channel            GIT_SLACK_TAG_CHANNEL            channel for annotated tags
  hooks.slack.username               GIT_SLACK_USERNAME               webhook username
  hooks.slack.icon-url               GIT_SLACK_ICON_URL               webhook icon URL
  hooks.slack.icon-emoji             GIT_SLACK_ICON_EMOJI             webhook icon emoji
  hooks.slack.repos-root             GIT_SLACK_REPOS_ROOT             root directory of served repositories
  hooks.slack.changeset-url-pattern  GIT_SLACK_CHANGESET_URL_PATTERN  commit link template (%repo_path%, %rev_hash%)
  hooks.slack.prefix                 GIT_SLACK_PREFIX                 message prefix, defaults to the repository name
  hooks.slack.debug                  GIT_SLACK_DEBUG                  print the request instead of sending it`
