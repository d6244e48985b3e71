// Package devserver serves live previews of templates and recompiles them
// as they change.
package devserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/recera/ruitl/internal/build"
	"github.com/recera/ruitl/internal/cache"
	"github.com/recera/ruitl/internal/sampledata"
	"github.com/recera/ruitl/pkg/html"
	"github.com/recera/ruitl/pkg/server"
	"github.com/recera/ruitl/pkg/template"
)

// SocketPath is where browsers connect for reload notifications
const SocketPath = "/__ruitl/ws"

// Options configure a dev server
type Options struct {
	Addr        string
	TemplateDir string
	OutDir      string
	Package     string
	Parallel    int

	// PreviewData is an optional YAML file of sample props
	PreviewData string

	// Generate writes Go sources on every change in addition to
	// refreshing previews
	Generate bool

	Cache  *cache.Cache
	Logger *slog.Logger
}

// Server is a development server
type Server struct {
	opts    Options
	logger  *slog.Logger
	builder *build.Builder
	router  *server.Router
	hub     *Hub
	mux     *http.ServeMux

	mu        sync.RWMutex
	previewer *template.Previewer
	samples   sampledata.Set
	lastErr   error

	watcher *fsnotify.Watcher
}

// New creates a server. Call Reload before serving to load templates.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{
		opts:   opts,
		logger: logger,
		builder: build.New(build.Options{
			TemplateDir: opts.TemplateDir,
			OutDir:      opts.OutDir,
			Package:     opts.Package,
			Parallel:    opts.Parallel,
			Cache:       opts.Cache,
			Logger:      logger,
		}),
		hub:     NewHub(logger),
		samples: sampledata.Set{},
	}

	s.router = server.NewRouter()
	s.router.SetLogger(logger)
	s.router.AddRoute("/", s.handleIndex)
	s.router.AddRoute("/preview/[name]", s.handlePreview)
	s.router.SetNotFound(s.handleNotFound)
	s.router.SetErrorPage(s.handleErrorPage)

	s.mux = http.NewServeMux()
	s.mux.Handle(SocketPath, s.hub)
	s.mux.Handle("/", s.router)
	return s
}

// Handler returns the HTTP handler of the server
func (s *Server) Handler() http.Handler { return s.mux }

// Hub returns the reload hub
func (s *Server) Hub() *Hub { return s.hub }

// Err returns the error of the last reload, if any
func (s *Server) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Reload re-reads templates and sample data. On success browsers are
// told to reload; on failure the previous previews stay up and the error
// is pushed to browsers.
func (s *Server) Reload(ctx context.Context) error {
	err := s.reload(ctx)

	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("reload failed", "error", err)
		s.hub.Broadcast(Message{Type: MsgError, Error: err.Error()})
		return err
	}
	s.hub.Broadcast(Message{Type: MsgReload})
	return nil
}

func (s *Server) reload(ctx context.Context) error {
	files, err := build.Discover(s.opts.TemplateDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("%w in %s", build.ErrNoTemplates, s.opts.TemplateDir)
	}

	pv, err := s.builder.Previewer(ctx, files)
	if err != nil {
		return err
	}
	samples, err := sampledata.Load(s.opts.PreviewData)
	if err != nil {
		return err
	}

	if s.opts.Generate {
		res, err := s.builder.BuildFiles(ctx, files)
		if err != nil {
			return err
		}
		if err := res.Err(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.previewer = pv
	s.samples = samples
	s.mu.Unlock()
	return nil
}

// ListenAndServe serves until ctx is canceled, rebuilding on changes
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if err := s.Watch(); err != nil {
		ln.Close()
		return err
	}
	defer s.watcher.Close()

	// a failing first build is reported in the browser
	s.Reload(ctx)

	go s.watchFiles(ctx)

	srv := &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("dev server started", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	s.logger.Info("dev server stopped")
	return nil
}

func (s *Server) state() (*template.Previewer, sampledata.Set, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.previewer, s.samples, s.lastErr
}

func (s *Server) handleIndex(ctx server.Ctx) (html.Node, error) {
	pv, _, lastErr := s.state()

	list := html.Elem("ul").Class("ruitl-components")
	if pv != nil {
		for _, name := range pv.Components() {
			list = list.Children(html.Elem("li").Children(
				html.Elem("a").Attr("href", "/preview/"+name).Children(html.Text(name)),
			))
		}
	}

	body := html.Elem("body").Children(
		html.Elem("h1").Children(html.Text("Components")),
		errorBanner(lastErr),
		list,
	)
	return page("ruitl components", body), nil
}

func (s *Server) handlePreview(ctx server.Ctx) (html.Node, error) {
	name := ctx.Param("name")
	pv, samples, lastErr := s.state()
	if pv == nil {
		if lastErr != nil {
			return html.Empty(), lastErr
		}
		return html.Empty(), errors.New("templates are not loaded")
	}
	declared, ok := pv.Props(name)
	if !ok {
		ctx.Status(http.StatusNotFound)
		return page("Not found", html.Elem("body").Children(
			html.Elem("h1").Children(html.Text("Unknown component "+name)),
		)), nil
	}

	props := samples.Props(name)
	// query parameters override sample props
	query := ctx.Request().URL.Query()
	for _, p := range declared {
		if query.Has(p.Name) {
			props[p.Name] = query.Get(p.Name)
		}
	}

	out, err := pv.Render(name, props, ctx.Component())
	if err != nil {
		return html.Empty(), err
	}

	body := html.Elem("body").Children(
		html.Elem("nav").Children(
			html.Elem("a").Attr("href", "/").Children(html.Text("All components")),
		),
		errorBanner(lastErr),
		html.Elem("main").Attr("id", "preview").Children(out),
	)
	return page(name, body), nil
}

func (s *Server) handleNotFound(ctx server.Ctx) (html.Node, error) {
	return page("Not found", html.Elem("body").Children(
		html.Elem("h1").Children(html.Text("Not found")),
		html.Elem("p").Children(html.Text(ctx.Path())),
	)), nil
}

func (s *Server) handleErrorPage(ctx server.Ctx) (html.Node, error) {
	msg, _ := ctx.Component().Value("error")
	text, _ := msg.(string)
	return page("Error", html.Elem("body").Children(
		html.Elem("h1").Children(html.Text("Render failed")),
		html.Elem("pre").Class("ruitl-error").Children(html.Text(text)),
	)), nil
}

func errorBanner(err error) html.Node {
	if err == nil {
		return html.Empty()
	}
	return html.Elem("pre").Class("ruitl-error").Children(html.Text(err.Error()))
}

// page wraps body in a document that reconnects to the reload socket
func page(title string, body html.Node) html.Node {
	doc := html.Elem("html").Attr("lang", "en").Children(
		html.Elem("head").Children(
			html.SelfClosing("meta").Attr("charset", "utf-8"),
			html.Elem("title").Children(html.Text(title)),
			html.Elem("style").Children(html.Raw(devStyles)),
		),
		body,
	)
	return html.Fragment(html.Raw("<!DOCTYPE html>"), server.InjectScript(doc, reloadScript))
}

const devStyles = `body{font-family:system-ui,sans-serif;margin:2rem}` +
	`.ruitl-error{background:#fee;color:#900;padding:1rem;white-space:pre-wrap}`

const reloadScript = `(function(){
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  function connect(){
    var ws = new WebSocket(proto + location.host + "` + SocketPath + `");
    ws.onopen = function(){ ws.send(JSON.stringify({type: "HELLO"})); };
    ws.onmessage = function(ev){
      var msg = JSON.parse(ev.data);
      if (msg.type === "RELOAD") { location.reload(); }
      if (msg.type === "ERROR") {
        var el = document.getElementById("ruitl-overlay");
        if (!el) {
          el = document.createElement("pre");
          el.id = "ruitl-overlay";
          el.className = "ruitl-error";
          document.body.prepend(el);
        }
        el.textContent = msg.error;
      }
    };
    ws.onclose = function(){ setTimeout(connect, 1000); };
  }
  connect();
})();`
