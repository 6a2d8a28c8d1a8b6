// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

// Package config is the ambient configuration layer: a typed Provider
// backed by github.com/ory/x/configx (koanf) rather than a bag of
// environment lookups scattered through the handlers.
package config

import (
	"context"
	"net/url"
	"time"

	"github.com/ory/x/configx"
	"github.com/pkg/errors"
)

// Provider exposes every server-wide flag and secret the flow controller
// and its collaborators need, through a ctx-scoped accessor shape (e.g.
// SelfPublicURL(ctx)) so that future multi-tenant configuration overrides
// have somewhere to hook in.
type Provider interface {
	EnableLocalLogin(ctx context.Context) bool
	EnableLoginHint(ctx context.Context) bool
	EnableSignOutPrompt(ctx context.Context) bool

	// RememberMeDuration is the explicit expiry set on the primary cookie
	// when rememberMe == true.
	RememberMeDuration(ctx context.Context) time.Duration

	// DefaultPersistent is the server default persistence applied when
	// rememberMe is null (persistent iff the server default is persistent).
	DefaultPersistent(ctx context.Context) bool

	SelfPublicURL(ctx context.Context) *url.URL
	SiteName(ctx context.Context) string

	CookieHashKey(ctx context.Context) []byte
	CookieBlockKey(ctx context.Context) []byte
	CookieSecure(ctx context.Context) bool
}

// KoanfProvider is the production Provider: a thin typed facade over
// *configx.Provider, the same koanf-backed configuration library the
// teacher repo's driver/config package builds on.
type KoanfProvider struct {
	p *configx.Provider
}

func NewKoanfProvider(ctx context.Context, configFiles ...string) (*KoanfProvider, error) {
	var opts []configx.OptionModifier
	if len(configFiles) > 0 {
		opts = append(opts, configx.WithConfigFiles(configFiles...))
	}
	p, err := configx.New(ctx, []byte(schema), opts...)
	if err != nil {
		return nil, errors.Wrap(err, "loading configuration")
	}
	return &KoanfProvider{p: p}, nil
}

func (k *KoanfProvider) boolOr(key string, fallback bool) bool {
	if !k.p.Exists(key) {
		return fallback
	}
	return k.p.Bool(key)
}

func (k *KoanfProvider) stringOr(key, fallback string) string {
	if v := k.p.String(key); v != "" {
		return v
	}
	return fallback
}

func (k *KoanfProvider) EnableLocalLogin(ctx context.Context) bool {
	return k.boolOr("selfservice.flows.login.enable_local", true)
}

func (k *KoanfProvider) EnableLoginHint(ctx context.Context) bool {
	return k.boolOr("selfservice.flows.login.enable_login_hint", true)
}

func (k *KoanfProvider) EnableSignOutPrompt(ctx context.Context) bool {
	return k.boolOr("selfservice.flows.logout.enable_prompt", true)
}

func (k *KoanfProvider) RememberMeDuration(ctx context.Context) time.Duration {
	if d := k.p.Duration("selfservice.flows.login.remember_me_duration"); d > 0 {
		return d
	}
	return 30 * 24 * time.Hour
}

func (k *KoanfProvider) DefaultPersistent(ctx context.Context) bool {
	return k.boolOr("selfservice.flows.login.default_persistent", false)
}

func (k *KoanfProvider) SelfPublicURL(ctx context.Context) *url.URL {
	raw := k.stringOr("serve.public.base_url", "http://127.0.0.1:4433/")
	u, err := url.Parse(raw)
	if err != nil {
		return &url.URL{Scheme: "http", Host: "127.0.0.1:4433"}
	}
	return u
}

func (k *KoanfProvider) SiteName(ctx context.Context) string {
	return k.stringOr("serve.public.site_name", "Ory")
}

func (k *KoanfProvider) CookieHashKey(ctx context.Context) []byte {
	return []byte(k.p.String("secrets.cookie_hash"))
}

func (k *KoanfProvider) CookieBlockKey(ctx context.Context) []byte {
	v := k.p.String("secrets.cookie_block")
	if v == "" {
		return nil
	}
	return []byte(v)
}

func (k *KoanfProvider) CookieSecure(ctx context.Context) bool {
	return k.boolOr("serve.public.tls.enabled", true)
}

// schema is a minimal JSON schema accepted by configx's validator; real
// deployments supply a fuller one alongside their config files.
const schema = `{
  "$id": "https://ory.sh/idsrv-login/config.schema.json",
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": true
}`
