package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"scene-editor/internal/agent"
	"scene-editor/internal/commands"
	"scene-editor/internal/editor"
	"scene-editor/internal/editorconfig"
	"scene-editor/internal/env"
	"scene-editor/internal/fonts"
	"scene-editor/internal/graphics"
	"scene-editor/internal/hud"
	"scene-editor/internal/llm"
	"scene-editor/internal/logger"
	"scene-editor/internal/primitives"
	"scene-editor/internal/scene"
	"scene-editor/internal/scenefile"
	"scene-editor/internal/terminal"
	"scene-editor/internal/ui"
	"scene-editor/internal/viewport"
)

func run(ctx context.Context, opts options) error {
	if err := env.Load(".env"); err != nil {
		return err
	}
	lines := logger.New()
	log := logger.Slog(lines, logger.ParseLevel(opts.logLevel))

	prefs, err := editorconfig.Load(opts.configPath)
	if err != nil {
		log.Warn("editor config ignored", "err", err)
	}
	if opts.scenePath != "" {
		prefs.SceneFile = opts.scenePath
	}
	savePrefs := func() {
		if err := editorconfig.Save(opts.configPath, prefs); err != nil {
			log.Warn("save editor config", "err", err)
		}
	}

	graph := scene.NewWithLimit(prefs.MaxTraversalNodes)
	prims := primitives.NewRegistry()
	vp := viewport.New(graph, prims, log.With("component", "viewport"))
	vp.GridVisible = prefs.GridVisible
	session := editor.NewSession(graph, editor.Options{
		Config:  prefs.EditorConfig(),
		Surface: vp,
		Logger:  log,
	})

	store := scenefile.NewStore(prefs.SceneFile, graph, log.With("component", "scenefile"))
	defer store.Close()
	if _, err := store.Load(); err != nil {
		log.Error("scene file not loaded", "err", err)
	}
	watcher, err := scenefile.NewWatcher(prefs.SceneFile, scenefile.DefaultDebounce, func() {
		session.Post(func() {
			st, changed, err := store.Reload()
			switch {
			case err != nil:
				log.Warn("scene reload", "err", err)
			case changed:
				lines.Log("scene reloaded: " + st.String())
			}
		})
	}, log.With("component", "watcher"))
	if err != nil {
		log.Warn("scene file not watched", "err", err)
	} else {
		watcher.Start(ctx)
		defer watcher.Stop()
	}

	if opts.metricsAddr != "" {
		shutdown := serveMetrics(opts.metricsAddr, log)
		defer shutdown()
	}

	overlay := hud.New(func(id scene.NodeID) string {
		if n, ok := graph.Lookup(id); ok {
			return n.Name
		}
		return ""
	})
	overlay.ShowFPS = prefs.ShowFPS
	overlay.ShowMemAlloc = prefs.ShowMemAlloc
	toolbar := ui.NewToolbar(session)
	inspector := ui.NewInspector()
	session.Subscribe(overlay.OnChange)
	session.Subscribe(toolbar.OnChange)

	engine := ui.New()
	sheet, err := ui.ParseCSS(ui.DefaultCSS)
	if err != nil {
		return err
	}
	engine.SetStylesheet(sheet)

	reg := commands.NewRegistry()
	term := terminal.New(lines, reg)
	term.GetViewContext = vp.Describe

	library := fonts.NewLibrary()
	loadFont := func(name string) error {
		path, err := library.Find(name)
		if err != nil {
			return err
		}
		if err := engine.LoadFont(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		term.SetFont(engine.Font())
		overlay.SetFont(engine.Font())
		return nil
	}

	commands.RegisterEditor(reg, commands.Host{
		Session: session,
		Out:     lines.Log,
		Save:    store.Save,
		SetGrid: func(on bool) {
			vp.GridVisible = on
			prefs.GridVisible = on
			savePrefs()
		},
		SetFPS: func(on bool) {
			overlay.ShowFPS = on
			prefs.ShowFPS = on
			savePrefs()
		},
		SetModel: func(model string) {
			prefs.AIModel = model
			savePrefs()
		},
		SetFont: func(name string) error {
			if err := loadFont(name); err != nil {
				return err
			}
			prefs.UIFont = name
			savePrefs()
			return nil
		},
	})
	lines.Log("press ` for the terminal; \"cmd help\" lists commands")
	if client := newLLMClient(llm.Provider(prefs.AIProvider), log); client != nil {
		ag := agent.New(client, func() string { return prefs.AIModel }, log.With("component", "agent"))
		agent.RegisterSceneHandlers(ag, session, reg)
		term.OnNaturalLanguage = func(line, viewContext string) {
			lines.Log("thinking...")
			ag.Submit(ctx, session, line, viewContext, func(summary string, err error) {
				if summary != "" {
					lines.Log(summary)
				}
				if err != nil {
					lines.Log("error: " + err.Error())
				}
			})
		}
	}

	in := viewport.NewInput(vp, session.Input(), engine)
	in.KeyboardBlocked = term.IsOpen

	fontPending := prefs.UIFont != ""
	update := func() bool {
		if ctx.Err() != nil {
			return false
		}
		if fontPending {
			// Fonts need the GL context, which exists from the first frame on.
			fontPending = false
			if err := loadFont(prefs.UIFont); err != nil {
				log.Warn("ui font", "font", prefs.UIFont, "err", err)
			}
		}
		term.Update()
		w, h := int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())
		vp.SetSize(w, h)

		nodes := toolbar.AppendNodes(nil)
		primary := session.CurrentPrimary()
		var sel ui.Selection
		if primary != nil {
			sel = ui.Inspect(graph, primary, session.CurrentSelectionCount())
		}
		engine.SetNodes(inspector.AppendNodes(nodes, primary != nil, sel))
		engine.Layout(w, h)

		in.Poll()
		now := time.Now()
		session.Tick(now)
		if err := store.Flush(now); err != nil {
			log.Warn("scene save", "err", err)
		}
		return !session.Closed()
	}
	draw := func() {
		vp.Draw()
		engine.Draw()
		overlay.Draw()
		term.Draw()
	}
	teardown := func() {
		if store.Dirty() {
			if err := store.Save(); err != nil {
				log.Error("scene save on exit", "err", err)
			}
		}
		session.Close()
		engine.UnloadFont()
		prims.Unload()
	}

	cfg := graphics.DefaultConfig()
	cfg.Fullscreen = opts.fullscreen
	graphics.Run(cfg, update, draw, teardown)
	return nil
}

// newLLMClient returns the configured provider, followed by a local Ollama server when
// OLLAMA_BASE_URL is set. It returns nil when no provider can be built, which leaves
// natural-language edits off.
func newLLMClient(provider llm.Provider, log *slog.Logger) llm.Client {
	var clients []llm.Client
	primary, err := llm.FromEnv(provider)
	if err != nil {
		log.Info("LLM provider unavailable", "provider", provider, "err", err)
	} else {
		clients = append(clients, primary)
	}
	if provider != llm.ProviderOllama && os.Getenv("OLLAMA_BASE_URL") != "" {
		if local, err := llm.FromEnv(llm.ProviderOllama); err == nil {
			clients = append(clients, local)
		}
	}
	if len(clients) == 0 {
		return nil
	}
	return llm.NewFallback(clients...)
}

func serveMetrics(addr string, log *slog.Logger) (shutdown func()) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn("metrics server", "addr", addr, "err", err)
		}
	}()
	log.Info("serving metrics", "addr", addr)
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
