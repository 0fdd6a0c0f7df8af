package utils

import (
	"testing"
	"time"
)

func TestPostgresPoolConfig_Defaults(t *testing.T) {
	out := PostgresPoolConfig{}.withDefaults()

	if out.MaxOpenConns != 25 || out.MaxIdleConns != 25 {
		t.Fatalf("unexpected pool sizes: %+v", out)
	}
	if out.ConnMaxLifetime != 30*time.Minute || out.ConnMaxIdleTime != 5*time.Minute {
		t.Fatalf("unexpected lifetimes: %+v", out)
	}
	if out.PingTimeout != 5*time.Second {
		t.Fatalf("unexpected ping timeout: %v", out.PingTimeout)
	}
}

func TestPostgresPoolConfig_KeepsExplicitValues(t *testing.T) {
	in := PostgresPoolConfig{MaxOpenConns: 5, PingTimeout: time.Second}
	out := in.withDefaults()

	if out.MaxOpenConns != 5 {
		t.Fatalf("explicit MaxOpenConns overwritten: %d", out.MaxOpenConns)
	}
	if out.PingTimeout != time.Second {
		t.Fatalf("explicit PingTimeout overwritten: %v", out.PingTimeout)
	}
	if out.MaxIdleConns != 25 {
		t.Fatalf("missing default for MaxIdleConns: %d", out.MaxIdleConns)
	}
}
