package postgres

// connErrorStrings are the lowercase substrings used to recognize a
// Postgres error as connectivity-related rather than operational (a
// constraint violation, a syntax error).
var connErrorStrings = []string{
	"connection refused",
	"connection reset",
	"connection timed out",
	"no such host",
	"network is unreachable",
	"too many connections",
	"server closed the connection",
	"broken pipe",
}
