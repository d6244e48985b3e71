package devserver

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/recera/ruitl/internal/build"
)

const buttonSource = `
component Button {
    props { text: String, variant: String = "primary" }
}
ruitl Button() {
    <button class={"btn-" + variant}>{text}</button>
}
`

const cardSource = `
component Card {
    props { title: String }
}
ruitl Card() {
    <div class="card">@Button(text: title)</div>
}
`

func setup(t *testing.T) (Options, string) {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "templates")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	write(t, filepath.Join(dir, "Button.ruitl"), buttonSource)
	write(t, filepath.Join(dir, "Card.ruitl"), cardSource)
	write(t, filepath.Join(root, "preview.yaml"), "Button:\n  text: Sample\nCard:\n  title: Welcome\n")

	return Options{
		TemplateDir: dir,
		OutDir:      filepath.Join(root, "generated"),
		PreviewData: filepath.Join(root, "preview.yaml"),
	}, dir
}

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, string(body)
}

func TestServer_Pages(t *testing.T) {
	opts, _ := setup(t)
	s := New(opts)
	if err := s.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	code, body := get(t, ts.URL+"/")
	if code != http.StatusOK {
		t.Fatalf("GET / = %d", code)
	}
	for _, want := range []string{`<a href="/preview/Button">Button</a>`, `<a href="/preview/Card">Card</a>`, SocketPath, "<!DOCTYPE html>"} {
		if !strings.Contains(body, want) {
			t.Errorf("index missing %q:\n%s", want, body)
		}
	}

	tests := []struct {
		path string
		code int
		want string
	}{
		{"/preview/Button", http.StatusOK, `<button class="btn-primary">Sample</button>`},
		{"/preview/Button?variant=danger&text=Go&unknown=1", http.StatusOK, `<button class="btn-danger">Go</button>`},
		{"/preview/Card", http.StatusOK, `<div class="card"><button class="btn-primary">Welcome</button></div>`},
		{"/preview/Missing", http.StatusNotFound, "Unknown component Missing"},
		{"/nowhere", http.StatusNotFound, "Not found"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			code, body := get(t, ts.URL+tt.path)
			if code != tt.code {
				t.Errorf("status = %d, want %d", code, tt.code)
			}
			if !strings.Contains(body, tt.want) {
				t.Errorf("body missing %q:\n%s", tt.want, body)
			}
		})
	}
}

func TestServer_ReloadError(t *testing.T) {
	opts, dir := setup(t)
	s := New(opts)
	if err := s.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}

	write(t, filepath.Join(dir, "Broken.ruitl"), "component Broken {")
	if err := s.Reload(context.Background()); err == nil {
		t.Fatal("Reload() expected error")
	}
	if s.Err() == nil {
		t.Error("Err() = nil after failed reload")
	}

	// previous previews stay up with the error shown
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()
	code, body := get(t, ts.URL+"/preview/Button")
	if code != http.StatusOK || !strings.Contains(body, `<pre class="ruitl-error">`) {
		t.Errorf("GET /preview/Button = %d\n%s", code, body)
	}
}

func TestServer_RenderError(t *testing.T) {
	opts, _ := setup(t)
	write(t, opts.PreviewData, "Card:\n  title: Welcome\n")
	s := New(opts)
	if err := s.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	// Button has no sample text
	code, body := get(t, ts.URL+"/preview/Button")
	if code != http.StatusInternalServerError || !strings.Contains(body, "Render failed") {
		t.Errorf("GET /preview/Button = %d\n%s", code, body)
	}
}

func TestServer_Generate(t *testing.T) {
	opts, _ := setup(t)
	opts.Generate = true
	s := New(opts)
	if err := s.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"button.ruitl.go", "card.ruitl.go", build.IndexFile} {
		if _, err := os.Stat(filepath.Join(opts.OutDir, name)); err != nil {
			t.Errorf("missing generated file %s: %v", name, err)
		}
	}
}

func dial(t *testing.T, base string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(base, "http") + SocketPath
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return msg
}

// readUntil skips messages until one of type typ arrives
func readUntil(t *testing.T, conn *websocket.Conn, typ string) Message {
	t.Helper()
	for {
		if msg := readMessage(t, conn); msg.Type == typ {
			return msg
		}
	}
}

func TestHub(t *testing.T) {
	opts, _ := setup(t)
	s := New(opts)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn := dial(t, ts.URL)
	defer conn.Close()

	if err := conn.WriteJSON(Message{Type: MsgHello}); err != nil {
		t.Fatal(err)
	}
	ack := readMessage(t, conn)
	if ack.Type != MsgAck || ack.ID == "" {
		t.Fatalf("got %+v, want ACK with id", ack)
	}
	if n := s.Hub().Clients(); n != 1 {
		t.Errorf("Clients() = %d, want 1", n)
	}

	if err := s.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}
	if msg := readMessage(t, conn); msg.Type != MsgReload {
		t.Errorf("got %+v, want RELOAD", msg)
	}
}

func TestHub_ReplaysLastError(t *testing.T) {
	h := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ts := httptest.NewServer(h)
	defer ts.Close()

	h.Broadcast(Message{Type: MsgError, Error: "bad template"})

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if msg := readMessage(t, conn); msg.Type != MsgError || msg.Error != "bad template" {
		t.Errorf("got %+v, want replayed error", msg)
	}
}

func TestServer_WatchRebuilds(t *testing.T) {
	opts, dir := setup(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	s := New(opts)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()
	defer func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	}()

	base := "http://" + ln.Addr().String()
	var conn *websocket.Conn
	deadline := time.Now().Add(5 * time.Second)
	for {
		c, _, err := websocket.DefaultDialer.Dial("ws://"+ln.Addr().String()+SocketPath, nil)
		if err == nil {
			conn = c
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server did not start: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}
	defer conn.Close()

	write(t, filepath.Join(dir, "Button.ruitl"), strings.Replace(buttonSource, "<button", "<button data-v=\"2\"", 1))
	readUntil(t, conn, MsgReload)

	_, body := get(t, base+"/preview/Button")
	if !strings.Contains(body, `data-v="2"`) {
		t.Errorf("preview not refreshed:\n%s", body)
	}

	write(t, filepath.Join(dir, "Button.ruitl"), "component Button {")
	if msg := readUntil(t, conn, MsgError); msg.Error == "" {
		t.Errorf("got %+v, want error text", msg)
	}
}
