package store

import (
	"strings"

	"entgo.io/ent/dialect"
)

// Table names.
const (
	tableKV            = "kv"
	tableProfiles      = "profiles"
	tablePayments      = "payments"
	tableLLMEvents     = "llm_events"
	tableRevokedTokens = "revoked_tokens"
)

// Natural keys are the primary keys so upserts have a single conflict
// target. Timestamps are stored as unix milliseconds so both drivers scan them the
// same way.
var commonSchema = []string{
	`CREATE TABLE IF NOT EXISTS kv (
		namespace TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		updated_at BIGINT NOT NULL,
		PRIMARY KEY (namespace, key)
	)`,
	`CREATE TABLE IF NOT EXISTS profiles (
		user_id TEXT PRIMARY KEY,
		id TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		avatar_url TEXT NOT NULL DEFAULT '',
		exam_type TEXT NOT NULL DEFAULT 'SSC CGL',
		subscription_status TEXT NOT NULL DEFAULT 'free',
		subscription_expires_at BIGINT NOT NULL DEFAULT 0,
		streak_count INTEGER NOT NULL DEFAULT 0,
		streak_last_date TEXT NOT NULL DEFAULT '',
		created_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS payments (
		razorpay_order_id TEXT PRIMARY KEY,
		id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		razorpay_payment_id TEXT NOT NULL DEFAULT '',
		amount INTEGER NOT NULL,
		currency TEXT NOT NULL DEFAULT 'INR',
		status TEXT NOT NULL,
		created_at BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS payments_user_id ON payments (user_id)`,
	`CREATE TABLE IF NOT EXISTS revoked_tokens (
		jti TEXT PRIMARY KEY,
		expires_at BIGINT NOT NULL
	)`,
}

var llmEventsSQLite = `CREATE TABLE IF NOT EXISTS llm_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at BIGINT NOT NULL,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		purpose TEXT NOT NULL,
		input_tokens INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		latency_ms BIGINT NOT NULL DEFAULT 0,
		success BOOLEAN NOT NULL,
		error_message TEXT NOT NULL DEFAULT '',
		request_body TEXT NOT NULL DEFAULT '',
		response_body TEXT NOT NULL DEFAULT ''
	)`

var llmEventsPostgres = `CREATE TABLE IF NOT EXISTS llm_events (
		id BIGSERIAL PRIMARY KEY,
		created_at BIGINT NOT NULL,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		purpose TEXT NOT NULL,
		input_tokens INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		latency_ms BIGINT NOT NULL DEFAULT 0,
		success BOOLEAN NOT NULL,
		error_message TEXT NOT NULL DEFAULT '',
		request_body TEXT NOT NULL DEFAULT '',
		response_body TEXT NOT NULL DEFAULT ''
	)`

func schemaFor(d string) []string {
	stmts := append([]string(nil), commonSchema...)
	if d == dialect.Postgres {
		stmts = append(stmts, llmEventsPostgres)
	} else {
		stmts = append(stmts, llmEventsSQLite)
	}
	return append(stmts, `CREATE INDEX IF NOT EXISTS llm_events_purpose ON llm_events (purpose)`)
}

func firstLine(stmt string) string {
	line, _, _ := strings.Cut(stmt, "\n")
	return strings.TrimSpace(line)
}
