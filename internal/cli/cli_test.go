// internal/cli/cli_test.go
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
	"go.uber.org/zap/zaptest"

	"github.com/tamzrod/luxtronik-replicator/internal/config"
	"github.com/tamzrod/luxtronik-replicator/internal/luxtest"
	"github.com/tamzrod/luxtronik-replicator/internal/luxtronik"
	"github.com/tamzrod/luxtronik-replicator/internal/registry"
)

// execute runs one command line against srv and returns stdout.
func execute(t *testing.T, srv *luxtest.Server, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LUXTRONIK_WRITE_GRACE_MS", "-1")

	if srv != nil {
		args = append(args,
			"--host", srv.Host(),
			"--port", strconv.Itoa(srv.Port()),
			"--timeout", "2s",
		)
	}
	args = append(args, "--log-level", "error")

	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&errOut)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := root.ExecuteContext(ctx)
	return out.String(), err
}

func TestGet(t *testing.T) {
	srv := luxtest.New(t)

	out, err := execute(t, srv, "get", "--raw", "ID_Einst_BWS_akt", "calculations.10")
	if err != nil {
		t.Fatalf("get err=%v", err)
	}
	if out != "450\n215\n" {
		t.Fatalf("out %q", out)
	}

	out, err = execute(t, srv, "get", "P0002_DHW_TARGET_TEMPERATURE")
	if err != nil {
		t.Fatalf("get err=%v", err)
	}
	if !strings.HasPrefix(out, "ID_Einst_BWS_akt = 45") {
		t.Fatalf("out %q", out)
	}

	if _, err := execute(t, srv, "get", "NoSuchField"); !errors.Is(err, registry.ErrUnknownName) {
		t.Fatalf("unknown field err=%v", err)
	}
}

func TestGet_RequiresHost(t *testing.T) {
	t.Setenv("LUXTRONIK_HOST", "")

	_, err := execute(t, nil, "get", "2")
	if err == nil || !strings.Contains(err.Error(), "controller.host") {
		t.Fatalf("err=%v", err)
	}
}

func TestSet(t *testing.T) {
	srv := luxtest.New(t)

	out, err := execute(t, srv, "set", "2", "480")
	if err != nil {
		t.Fatalf("set err=%v", err)
	}
	if srv.Parameter(2) != 480 || !strings.HasPrefix(out, "ID_Einst_BWS_akt = 48") {
		t.Fatalf("controller=%d out=%q", srv.Parameter(2), out)
	}

	if _, err := execute(t, srv, "set", "--scaled", "ID_Einst_BWS_akt", "52.5"); err != nil {
		t.Fatalf("scaled set err=%v", err)
	}
	if srv.Parameter(2) != 525 {
		t.Fatalf("scaled value not encoded: %d", srv.Parameter(2))
	}

	if _, err := execute(t, srv, "set", "--safe", "2", "9999"); !errors.Is(err, registry.ErrOutOfRange) {
		t.Fatalf("safe set err=%v", err)
	}
	if _, err := execute(t, srv, "set", "2", "warm"); err == nil {
		t.Fatalf("non-numeric value accepted")
	}
	if srv.Parameter(2) != 525 {
		t.Fatalf("rejected set reached the controller: %d", srv.Parameter(2))
	}
}

func TestRead_Plain(t *testing.T) {
	srv := luxtest.New(t)

	out, err := execute(t, srv, "read", "--section", "parameters")
	if err != nil {
		t.Fatalf("read err=%v", err)
	}
	if !strings.Contains(out, "parameters.2\tID_Einst_BWS_akt\t45") {
		t.Fatalf("missing dhw target in:\n%s", out)
	}
	if strings.Contains(out, "calculations.") {
		t.Fatalf("section filter ignored")
	}

	if _, err := execute(t, srv, "read", "--section", "bogus"); err == nil {
		t.Fatalf("unknown section accepted")
	}
}

func TestDump(t *testing.T) {
	srv := luxtest.New(t)

	out, err := execute(t, srv, "dump", "--format", "json")
	if err != nil {
		t.Fatalf("dump err=%v", err)
	}
	var doc luxtronik.Document
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(doc.Parameters) != 1200 || doc.Parameters[2] != 450 || len(doc.Visibilities) != 40 {
		t.Fatalf("doc params=%d vis=%d", len(doc.Parameters), len(doc.Visibilities))
	}

	out, err = execute(t, srv, "dump", "--format", "yaml")
	if err != nil {
		t.Fatalf("yaml dump err=%v", err)
	}
	if !strings.Contains(out, "parameters:") || !strings.Contains(out, "seq:") {
		t.Fatalf("yaml dump:\n%.200s", out)
	}

	path := filepath.Join(t.TempDir(), "dump.cbor")
	if _, err := execute(t, srv, "dump", "--format", "cbor", "--out", path); err != nil {
		t.Fatalf("cbor dump err=%v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var cdoc luxtronik.Document
	if err := cbor.Unmarshal(b, &cdoc); err != nil {
		t.Fatalf("cbor: %v", err)
	}
	if cdoc.Calculations[10] != 215 {
		t.Fatalf("cbor calculations[10]=%d", cdoc.Calculations[10])
	}

	if _, err := execute(t, srv, "dump", "--format", "xml"); err == nil {
		t.Fatalf("unknown format accepted")
	}
}

func TestDiscover_NoAnswer(t *testing.T) {
	_, err := execute(t, nil, "discover", "--broadcast", "127.0.0.1", "--udp-port", "9", "--wait", "50ms")
	if err == nil || !strings.Contains(err.Error(), "no controller answered") {
		t.Fatalf("err=%v", err)
	}
}

func TestRunService_StartsAndStops(t *testing.T) {
	srv := luxtest.New(t)

	cfg := &config.Config{}
	cfg.Controller.Host = srv.Host()
	cfg.Controller.Port = srv.Port()
	cfg.Controller.WriteGraceMs = -1
	cfg.HTTP.Listen = "127.0.0.1:0"
	cfg.EVUStore.Path = filepath.Join(t.TempDir(), "evu.db")
	if err := config.Validate(cfg); err != nil {
		t.Fatalf("Validate err=%v", err)
	}
	config.Normalize(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	if err := runService(ctx, cfg, zaptest.NewLogger(t)); err != nil {
		t.Fatalf("runService err=%v", err)
	}
	if srv.Accepts() < 1 {
		t.Fatalf("controller never contacted")
	}
	if _, err := os.Stat(cfg.EVUStore.Path); err != nil {
		t.Fatalf("evu store not created: %v", err)
	}
}
