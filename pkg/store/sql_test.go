package store

import (
	"strings"
	"testing"
)

func TestHashKeyIsStableAndFixedWidth(t *testing.T) {
	a := hashKey("user.settings")
	b := hashKey("user.settings")
	if a != b {
		t.Errorf("hash not stable: %q vs %q", a, b)
	}
	if len(a) != 16 {
		t.Errorf("expected 16 hex chars, got %d in %q", len(a), a)
	}
	if hashKey("other") == a {
		t.Error("distinct keys should not collide in a trivial case")
	}
	if hashKey("") == "" {
		t.Error("empty key must still hash")
	}
}

func TestSQLPlaceholders(t *testing.T) {
	pg := NewSQL(nil)
	if got := pg.placeholder(2); got != "$2" {
		t.Errorf("postgres placeholder = %q", got)
	}
	my := NewSQL(nil, WithDialect(DialectMySQL))
	if got := my.placeholder(2); got != "?" {
		t.Errorf("mysql placeholder = %q", got)
	}
	lite := NewSQL(nil, WithDialect(DialectSQLite))
	if got := lite.placeholder(1); got != "?" {
		t.Errorf("sqlite placeholder = %q", got)
	}
}

func TestSQLUpsertQueries(t *testing.T) {
	cases := []struct {
		name    string
		dialect Dialect
		want    string
	}{
		{"postgres", DialectPostgreSQL, "ON CONFLICT (id) DO UPDATE"},
		{"mysql", DialectMySQL, "ON DUPLICATE KEY UPDATE"},
		{"sqlite", DialectSQLite, "INSERT OR REPLACE"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := NewSQL(nil, WithDialect(tc.dialect))
			q := st.upsertQuery()
			if !strings.Contains(q, tc.want) {
				t.Errorf("upsert query missing %q:\n%s", tc.want, q)
			}
			if !strings.Contains(q, "filament_values") {
				t.Errorf("upsert query missing default table name:\n%s", q)
			}
		})
	}
}

func TestSQLTableNameOption(t *testing.T) {
	st := NewSQL(nil, WithTableName("app_state"))
	if !strings.Contains(st.upsertQuery(), "app_state") {
		t.Error("custom table name not applied")
	}
}
