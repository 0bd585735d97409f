package store

import (
	"context"
	"reflect"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
)

// MockConn implements driver.Conn for the calls the sink makes
type MockConn struct {
	driver.Conn
	Execs   []string
	Batch   *MockBatch
	Queries []string
	Rows    [][]any
}

func (m *MockConn) Exec(ctx context.Context, query string, args ...any) error {
	m.Execs = append(m.Execs, query)
	return nil
}

func (m *MockConn) PrepareBatch(ctx context.Context, query string, opts ...driver.PrepareBatchOption) (driver.Batch, error) {
	m.Batch = &MockBatch{Query: query}
	return m.Batch, nil
}

func (m *MockConn) Query(ctx context.Context, query string, args ...any) (driver.Rows, error) {
	m.Queries = append(m.Queries, query)
	return &MockRows{rows: m.Rows}, nil
}

// MockBatch records appended rows
type MockBatch struct {
	driver.Batch
	Query    string
	Appended [][]any
	Sent     bool
	Aborted  bool
}

func (b *MockBatch) Append(v ...any) error {
	b.Appended = append(b.Appended, v)
	return nil
}

func (b *MockBatch) Send() error {
	b.Sent = true
	return nil
}

func (b *MockBatch) Abort() error {
	b.Aborted = true
	return nil
}

// MockRows serves canned rows to both the ClickHouse and pgx scanners
type MockRows struct {
	driver.Rows
	rows [][]any
	idx  int
}

func (m *MockRows) Next() bool {
	m.idx++
	return m.idx <= len(m.rows)
}

func (m *MockRows) Scan(dest ...any) error {
	for i, v := range m.rows[m.idx-1] {
		assign(dest[i], v)
	}
	return nil
}

func (m *MockRows) Close() error { return nil }
func (m *MockRows) Err() error   { return nil }

func assign(dest any, val any) {
	reflect.ValueOf(dest).Elem().Set(reflect.ValueOf(val))
}

// MockPgPool records Exec calls and serves canned rows
type MockPgPool struct {
	Execs [][]any
	Rows  [][]any
}

func (m *MockPgPool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	m.Execs = append(m.Execs, append([]any{sql}, args...))
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (m *MockPgPool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return &mockPgRows{rows: m.Rows}, nil
}

func (m *MockPgPool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

type mockPgRows struct {
	pgx.Rows
	rows [][]any
	idx  int
}

func (m *mockPgRows) Next() bool {
	m.idx++
	return m.idx <= len(m.rows)
}

func (m *mockPgRows) Scan(dest ...any) error {
	for i, v := range m.rows[m.idx-1] {
		assign(dest[i], v)
	}
	return nil
}

func (m *mockPgRows) Close()     {}
func (m *mockPgRows) Err() error { return nil }

// MockRedis is an in-memory RedisClient
type MockRedis struct {
	Data map[string]string
	TTLs map[string]time.Duration
}

func NewMockRedis() *MockRedis {
	return &MockRedis{Data: map[string]string{}, TTLs: map[string]time.Duration{}}
}

func (m *MockRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := m.Data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *MockRedis) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		m.Data[key] = string(v)
	case string:
		m.Data[key] = v
	}
	m.TTLs[key] = expiration
	return redis.NewStatusResult("OK", nil)
}
