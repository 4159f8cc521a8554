//go:build linux

package executor

import (
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/kiln/pkg/config"
	"github.com/cuemby/kiln/pkg/runtime"
	"github.com/cuemby/kiln/pkg/sandbox"
	"github.com/cuemby/kiln/pkg/types"
)

// newJailedExecutor builds an executor over a synthetic package tree with
// bubblewrap enabled, skipping when the host cannot jail
func newJailedExecutor(t *testing.T) (*Executor, string) {
	t.Helper()
	if !sandbox.Probe().Working {
		t.Skip("bubblewrap not functional on this host")
	}
	for _, dir := range []string{"/usr", "/lib", "/lib64", "/bin"} {
		if _, err := os.Stat(dir); err != nil {
			t.Skipf("host lacks %s, jail binds would fail", dir)
		}
	}

	root := t.TempDir()
	binDir := filepath.Join(root, "python", "3.10.1", "bin")
	require.NoError(t, os.MkdirAll(binDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(binDir, "python3"), []byte(fakeRuntime), 0755))

	cfg := config.Default()
	cfg.PackagesDir = root

	return New(cfg, runtime.NewRegistry(root), sandbox.NewBuilder(cfg)), root
}

func TestJailedExecute(t *testing.T) {
	e, _ := newJailedExecutor(t)

	res := e.Execute(request(types.File{Name: "main.py", Content: "echo jailed; pwd"}))
	require.Equal(t, types.ClassificationOK, res.Classification)
	assert.Equal(t, 0, res.Run.Code)
	// The workspace is mapped to the fixed interior path
	assert.Equal(t, "jailed\n/app\n", res.Run.Stdout)
}

func TestJailedPackageRootReadOnly(t *testing.T) {
	e, root := newJailedExecutor(t)

	script := "touch " + root + "/escape 2>/dev/null && echo wrote || echo denied"
	res := e.Execute(request(types.File{Name: "main.py", Content: script}))
	require.Equal(t, types.ClassificationOK, res.Classification)
	assert.Equal(t, "denied\n", res.Run.Stdout)

	_, err := os.Stat(filepath.Join(root, "escape"))
	assert.True(t, os.IsNotExist(err), "package root must not be writable from the jail")
}

func TestJailedWorkspaceWritable(t *testing.T) {
	e, _ := newJailedExecutor(t)

	res := e.Execute(request(types.File{Name: "main.py", Content: "echo data > out.txt && cat out.txt"}))
	require.Equal(t, types.ClassificationOK, res.Classification)
	assert.Equal(t, "data\n", res.Run.Stdout)
}

func TestJailedHostHomeInvisible(t *testing.T) {
	e, _ := newJailedExecutor(t)

	res := e.Execute(request(types.File{Name: "main.py", Content: "ls /root 2>/dev/null || echo hidden"}))
	require.Equal(t, types.ClassificationOK, res.Classification)
	assert.Equal(t, "hidden\n", res.Run.Stdout)
}

// connectScript dials the host listener with bash's /dev/tcp, printing
// connected or blocked
func connectScript(t *testing.T, addr string) string {
	t.Helper()
	if _, err := os.Stat("/bin/bash"); err != nil {
		t.Skip("/bin/bash required for the /dev/tcp client")
	}
	host, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	return "bash -c 'exec 3<>/dev/tcp/" + host + "/" + port +
		"' 2>/dev/null && echo connected || echo blocked"
}

func TestJailedNoInternetBlocksOutboundTCP(t *testing.T) {
	e, _ := newJailedExecutor(t)

	// A live listener on the host loopback; reachable unless the jail
	// unshares the network namespace
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	off := false
	req := request(types.File{Name: "main.py", Content: connectScript(t, ln.Addr().String())})
	req.Internet = &off

	res := e.Execute(req)
	require.Equal(t, types.ClassificationOK, res.Classification)
	assert.Equal(t, "blocked\n", res.Run.Stdout)
}

func TestJailedInternetAllowsOutboundTCP(t *testing.T) {
	e, _ := newJailedExecutor(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	on := true
	req := request(types.File{Name: "main.py", Content: connectScript(t, ln.Addr().String())})
	req.Internet = &on

	res := e.Execute(req)
	require.Equal(t, types.ClassificationOK, res.Classification)
	assert.Equal(t, "connected\n", res.Run.Stdout)
}
