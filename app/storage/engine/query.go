package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// DBCmd is an identifier of a query, each table defines its own set
type DBCmd int

// Query is a text of the same command for each dialect.
// Queries use ? placeholders, Pick converts them for postgres.
type Query struct {
	Sqlite   string
	Postgres string
}

// QueryMap maps commands to per-dialect queries
type QueryMap struct {
	queries map[DBCmd]Query
}

// NewQueryMap makes an empty QueryMap
func NewQueryMap() *QueryMap {
	return &QueryMap{queries: map[DBCmd]Query{}}
}

// Add sets dialect-specific queries for the command
func (q *QueryMap) Add(cmd DBCmd, query Query) *QueryMap {
	q.queries[cmd] = query
	return q
}

// AddSame sets one query for all dialects
func (q *QueryMap) AddSame(cmd DBCmd, query string) *QueryMap {
	return q.Add(cmd, Query{Sqlite: query, Postgres: query})
}

// Pick returns the query of the command for the engine type, ready to execute.
// A command without a query for the dialect is an error.
func (q *QueryMap) Pick(dbType Type, cmd DBCmd) (string, error) {
	query, ok := q.queries[cmd]
	if !ok {
		return "", fmt.Errorf("unsupported command %d", cmd)
	}

	var res string
	switch dbType {
	case Sqlite:
		res = query.Sqlite
	case Postgres:
		res = postgresPlaceholders(query.Postgres)
	default:
		return "", fmt.Errorf("unsupported database type %q", dbType)
	}
	if strings.TrimSpace(res) == "" {
		return "", fmt.Errorf("command %d has no %s query", cmd, dbType)
	}
	return res, nil
}

// postgresPlaceholders converts ? placeholders to $1, $2... Question marks inside
// single-quoted literals are kept.
func postgresPlaceholders(q string) string {
	var sb strings.Builder
	sb.Grow(len(q) + 8)
	n, quoted := 0, false
	for _, ch := range q {
		switch {
		case ch == '\'':
			quoted = !quoted
		case ch == '?' && !quoted:
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(ch)
	}
	return sb.String()
}
