//go:build integration

package postgres

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-subscription-tracker/internal/config"
)

// Set TEST_DATABASE_URL to run against an existing database instead of a
// throwaway container. The schema is applied either way.
const envTestDatabaseURL = "TEST_DATABASE_URL"

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	ctx := context.Background()

	url := os.Getenv(envTestDatabaseURL)
	containerID := ""
	if url == "" {
		var err error
		containerID, url, err = startPostgres()
		if err != nil {
			log.Fatalf("could not start postgres container: %v. Is Docker running?", err)
		}
	}

	pool, err := connectWithRetry(ctx, url, 15)
	if err != nil {
		stopPostgres(containerID)
		log.Fatalf("unable to connect to test database: %v", err)
	}
	testPool = pool

	if err := applySchema(ctx, pool); err != nil {
		pool.Close()
		stopPostgres(containerID)
		log.Fatalf("could not apply schema: %v", err)
	}

	code := m.Run()

	testPool.Close()
	stopPostgres(containerID)
	os.Exit(code)
}

// startPostgres runs a disposable postgres:14 on a random host port.
func startPostgres() (id, url string, err error) {
	const user, password, db = "tracker", "tracker", "tracker_test"
	run := exec.Command("docker", "run", "-d", "--rm", "-p", "127.0.0.1::5432",
		"-e", "POSTGRES_DB="+db,
		"-e", "POSTGRES_USER="+user,
		"-e", "POSTGRES_PASSWORD="+password,
		"postgres:14",
	)
	var out bytes.Buffer
	run.Stdout = &out
	if err := run.Run(); err != nil {
		return "", "", err
	}
	id = strings.TrimSpace(out.String())

	out.Reset()
	port := exec.Command("docker", "port", id, "5432/tcp")
	port.Stdout = &out
	if err := port.Run(); err != nil {
		stopPostgres(id)
		return "", "", fmt.Errorf("docker port: %w", err)
	}
	// "127.0.0.1:49153", possibly followed by an IPv6 line
	hostPort := strings.TrimSpace(strings.SplitN(out.String(), "\n", 2)[0])
	return id, fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable", user, password, hostPort, db), nil
}

func stopPostgres(id string) {
	if id == "" {
		return
	}
	if err := exec.Command("docker", "stop", id).Run(); err != nil {
		log.Printf("could not stop postgres container %s: %v", id, err)
	}
}

func connectWithRetry(ctx context.Context, url string, attempts int) (*pgxpool.Pool, error) {
	cfg := &config.DatabaseConfig{URL: url, MaxConns: 4}
	var err error
	for i := 0; i < attempts; i++ {
		var pool *pgxpool.Pool
		if pool, err = NewPgxPool(ctx, cfg); err == nil {
			return pool, nil
		}
		log.Printf("waiting for database (attempt %d/%d): %v", i+1, attempts, err)
		time.Sleep(2 * time.Second)
	}
	return nil, err
}

func applySchema(ctx context.Context, pool *pgxpool.Pool) error {
	root, err := findProjectRoot()
	if err != nil {
		return err
	}
	schema, err := os.ReadFile(filepath.Join(root, "deploy", "postgres", "init.sql"))
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, string(schema))
	return err
}

// findProjectRoot walks up to the directory holding go.mod.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("go.mod not found above the test directory")
		}
		dir = parent
	}
}

func cleanup(t *testing.T) {
	t.Helper()
	_, err := testPool.Exec(context.Background(),
		`TRUNCATE users, user_settings, subscriptions RESTART IDENTITY CASCADE`)
	if err != nil {
		t.Fatalf("Failed to clean up database: %v", err)
	}
}
