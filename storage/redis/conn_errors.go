package redis

// connErrorStrings are the lowercase substrings used to recognize a
// Redis error as connectivity-related rather than operational (a
// missing script, a type mismatch). Operators can override the set via
// Config.ConnErrorStrings.
var connErrorStrings = []string{
	"connection refused",
	"connection timeout",
	"connection reset",
	"network is unreachable",
	"no such host",
	"timeout",
	"i/o timeout",
	"broken pipe",
	"connection pool exhausted",
}
