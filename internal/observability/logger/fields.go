package logger

import (
	"time"

	"go.uber.org/zap"
)

// Standard fields - HTTP

func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func Method(v string) zap.Field    { return zap.String("method", v) }
func Path(v string) zap.Field      { return zap.String("path", v) }
func Status(v int) zap.Field       { return zap.Int("status", v) }

func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }

// Standard fields - domain

// Subject is the provider-issued stable identifier for the end user.
func Subject(v string) zap.Field { return zap.String("subject", v) }

// ContactID is the local customer contact identifier.
func ContactID(v string) zap.Field { return zap.String("contact_id", v) }

// Branch names the resolution branch that matched (link, subject, fuzzy, new).
func Branch(v string) zap.Field { return zap.String("branch", v) }

// Email logs an email address. Use with care in prod.
func Email(v string) zap.Field { return zap.String("email", v) }

// Standard fields - system

func Component(v string) zap.Field { return zap.String("component", v) }
func Op(v string) zap.Field        { return zap.String("op", v) }
func Layer(v string) zap.Field     { return zap.String("layer", v) }
func Err(err error) zap.Field      { return zap.Error(err) }

// Generic fields

func Count(v int) zap.Field           { return zap.Int("count", v) }
func String(key, v string) zap.Field  { return zap.String(key, v) }
func Int(key string, v int) zap.Field { return zap.Int(key, v) }
func Bool(key string, v bool) zap.Field {
	return zap.Bool(key, v)
}
func Any(key string, v any) zap.Field { return zap.Any(key, v) }
