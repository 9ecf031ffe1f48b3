package server

import (
	"bufio"
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hullworks/slipway/internal/protocol"
)

func TestContextWithDisconnect(t *testing.T) {
	client, srv := net.Pipe()
	defer srv.Close()

	ctx, cancel := contextWithDisconnect(context.Background(), bufio.NewReader(srv))
	defer cancel()

	select {
	case <-ctx.Done():
		t.Fatal("context cancelled before disconnect")
	case <-time.After(10 * time.Millisecond):
	}

	client.Close()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled after disconnect")
	}
}

func TestRespondWritesEnvelope(t *testing.T) {
	s := &Server{}
	client, srv := net.Pipe()
	defer client.Close()
	defer srv.Close()

	go s.respond(srv, protocol.CmdOK, &protocol.StatusResult{Running: true, Pid: 42})

	line, err := bufio.NewReader(client).ReadBytes('\n')
	if err != nil {
		t.Fatalf("read response: %v", err)
	}

	env, payload, err := protocol.Decode(line)
	if err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if env.Command != protocol.CmdOK {
		t.Fatalf("command = %q, want %q", env.Command, protocol.CmdOK)
	}

	result, err := protocol.DecodePayload[protocol.StatusResult](payload)
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if !result.Running || result.Pid != 42 {
		t.Fatalf("unexpected payload: %+v", result)
	}
}

func TestDispatchUnknownCommand(t *testing.T) {
	s := &Server{}
	client, srv := net.Pipe()
	defer client.Close()
	defer srv.Close()

	go s.dispatch(context.Background(), srv, protocol.Command("frobnicate"), nil)

	line, err := bufio.NewReader(client).ReadBytes('\n')
	if err != nil {
		t.Fatalf("read response: %v", err)
	}

	env, payload, err := protocol.Decode(line)
	if err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if env.Command != protocol.CmdError {
		t.Fatalf("command = %q, want %q", env.Command, protocol.CmdError)
	}

	result, err := protocol.DecodePayload[protocol.ErrorResult](payload)
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if result.Message == "" {
		t.Fatal("error result has empty message")
	}
}

func TestResourceName(t *testing.T) {
	if got := resourceName("/srv/projects/node"); got != "node" {
		t.Fatalf("resourceName = %q, want node", got)
	}
	if got := resourceName("."); got == "" {
		t.Fatal("resourceName of the working directory is empty")
	}
}

func TestListenCreatesRestrictedSocket(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "slipway.sock")

	listener, err := listen(socketPath)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer listener.Close()

	info, err := os.Stat(socketPath)
	if err != nil {
		t.Fatalf("stat socket: %v", err)
	}
	if perm := info.Mode().Perm(); perm != socketMode {
		t.Fatalf("socket mode = %o, want %o", perm, socketMode)
	}
}

func TestListenRemovesStaleSocket(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "slipway.sock")

	first, err := listen(socketPath)
	if err != nil {
		t.Fatalf("first listen: %v", err)
	}
	first.Close()

	// A crashed daemon leaves the socket file behind.
	if err := os.WriteFile(socketPath, nil, 0660); err != nil {
		t.Fatal(err)
	}

	second, err := listen(socketPath)
	if err != nil {
		t.Fatalf("second listen: %v", err)
	}
	second.Close()
}
