// Package migrations embeds the SQL schema of the platform server (Postgres)
// and of the POS agent (SQLite).
package migrations

import "embed"

// FS holds server/*.sql and agent/*.sql
//
//go:embed server/*.sql agent/*.sql
var FS embed.FS

// Source directories inside FS
const (
	ServerDir = "server"
	AgentDir  = "agent"
)
