package utils

import (
	"context"
	"net"
	"testing"
	"time"
)

func TestExtractFromDBURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"with port", "postgresql://user:pw@db:6543/cst", "db:6543"},
		{"default port", "postgresql://user:pw@db/cst", "db:5432"},
		{"no postgres", "sqlite://cst.db", ""},
		{"postgres scheme", "postgres://user@db/cst", "db:5432"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractFromDBURL(tt.url); got != tt.want {
				t.Errorf("ExtractFromDBURL() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractFromNatsURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"with port", "nats://localhost:4223", "localhost:4223"},
		{"default port", "nats://nats", "nats:4222"},
		{"credentials", "nats://user:pw@nats:4222", "nats:4222"},
		{"server list", "nats://a:1,nats://b:2", "a:1"},
		{"tls", "tls://secure", "secure:4222"},
		{"invalid", "http://nats", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractFromNatsURL(tt.url); got != tt.want {
				t.Errorf("ExtractFromNatsURL() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWaitForTCP(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	if err := WaitForTCP(context.Background(), l.Addr().String(), time.Second); err != nil {
		t.Errorf("WaitForTCP() error = %v", err)
	}

	addr := l.Addr().String()
	l.Close()
	if err := WaitForTCP(context.Background(), addr, 300*time.Millisecond); err == nil {
		t.Error("WaitForTCP() expected error on closed port")
	}
}
