package routes

import (
	"encoding/json"
	"html/template"
	"net/http"

	scs "github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	appmw "github.com/briangreenhill/coinpulse/internal/http/middleware"
	"github.com/briangreenhill/coinpulse/internal/table"
	"github.com/briangreenhill/coinpulse/views"
)

// MoversAnchor is where the movers section sits on the home page
const MoversAnchor = "top-gainers-losers"

type Server struct {
	Router   *chi.Mux
	Sess     *scs.SessionManager
	Tmpl     *template.Template
	Overview *views.Overview
	Movers   *views.Movers
	Failures *views.FailureLog
}

type ServerOptions struct {
	Sess     *scs.SessionManager
	Tmpl     *template.Template
	Overview *views.Overview
	Movers   *views.Movers
	Failures *views.FailureLog

	// Debug mounts /debug/failures; off unless DEBUG_ENDPOINTS is set
	Debug bool
}

func New(opts ServerOptions) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	s := &Server{
		Router:   r,
		Sess:     opts.Sess,
		Tmpl:     opts.Tmpl,
		Overview: opts.Overview,
		Movers:   opts.Movers,
		Failures: opts.Failures,
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("ok")); err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("write health check response")
		}
	})
	r.Handle("/metrics", promhttp.Handler())
	if opts.Debug {
		r.Get("/debug/failures", s.handleFailures)
	}

	r.Group(func(pr chi.Router) {
		pr.Use(appmw.SessionTab(s.Sess))
		pr.Get("/", s.handleHome)
		pr.Get("/coins/{id}", s.handleCoin)
		pr.Post("/movers/tab", s.handleSelectTab)
	})

	return s
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.Tmpl.ExecuteTemplate(w, name, data); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("template", name).Msg("render template failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

type tabButton struct {
	Value  string
	Title  string
	Active bool
}

type moversSection struct {
	Heading string
	Tabs    []tabButton
	Table   *table.Table // nil renders the fallback
}

type homePage struct {
	Title  string
	Coin   *views.CoinSummary // nil renders the fallback
	Movers moversSection
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tab := appmw.TabFrom(ctx)

	var (
		coin   views.Result[views.CoinSummary]
		movers views.Result[views.MoverLists]
	)
	// adapters never fail, so the group only waits
	var g errgroup.Group
	g.Go(func() error {
		coin = s.Overview.Load(ctx)
		return nil
	})
	g.Go(func() error {
		movers = s.Movers.Load(ctx)
		return nil
	})
	_ = g.Wait()

	page := homePage{Title: "Overview", Movers: newMoversSection(movers, tab)}
	if c, ok := coin.Get(); ok {
		page.Coin = &c
	}
	s.render(w, r, "home", page)
}

func newMoversSection(res views.Result[views.MoverLists], tab views.Tab) moversSection {
	section := moversSection{Heading: tab.Title()}
	for _, t := range []views.Tab{views.TabGainers, views.TabLosers} {
		section.Tabs = append(section.Tabs, tabButton{Value: t.String(), Title: t.Title(), Active: t == tab})
	}
	if lists, ok := res.Get(); ok {
		tbl := views.MoverTable(lists, tab)
		section.Table = &tbl
	}
	return section
}

func (s *Server) handleCoin(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	page := homePage{Title: id}
	if c, ok := s.Overview.LoadCoin(r.Context(), id).Get(); ok {
		page.Title = c.DisplayName
		page.Coin = &c
	}
	s.render(w, r, "coin", page)
}

func (s *Server) handleSelectTab(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	tab, err := views.ParseTab(r.Form.Get("tab"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	toggle := views.NewToggle(appmw.TabFrom(r.Context()))
	if toggle.Select(tab) {
		s.Sess.Put(r.Context(), appmw.SessionTabKey, toggle.Active().String())
	}
	http.Redirect(w, r, "/#"+MoversAnchor, http.StatusSeeOther)
}

func (s *Server) handleFailures(w http.ResponseWriter, r *http.Request) {
	failures := s.Failures.Recent()
	if failures == nil {
		failures = []views.Failure{}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(failures); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("encode failures")
	}
}
