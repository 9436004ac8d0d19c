// Package webapi provides a web API for sentiment scoring.
package webapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/didip/tollbooth/v8"
	"github.com/didip/tollbooth/v8/limiter"
	cache "github.com/go-pkgz/expirable-cache/v3"
	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/routegroup"

	"github.com/umputun/sentibayes/app/model"
	"github.com/umputun/sentibayes/app/storage"
	"github.com/umputun/sentibayes/lib/sentiment"
)

//go:generate moq --out mocks/model_provider.go --pkg mocks --with-resets --skip-ensure . ModelProvider
//go:generate moq --out mocks/scores_store.go --pkg mocks --with-resets --skip-ensure . ScoresStore

const (
	defaultHistoryLimit = 100
	maxHistoryLimit     = 1000
)

// Server is a web API server.
type Server struct {
	Config
	results cache.Cache[string, scoreResult]
}

// Config defines server parameters
type Config struct {
	Version     string        // version to show in /ping
	ListenAddr  string        // listen address
	Model       ModelProvider // current model
	Scores      ScoresStore   // history storage, optional
	ScoreLogger ScoreLogger   // score log, optional
	NeutralBand float64       // scores within ±band are neutral
	AuthPasswd  string        // basic auth password for user "sentibayes"
	CacheSize   int           // max number of cached results, 0 for default
	CacheTTL    time.Duration // ttl of cached results, 0 for default
	RateLimit   float64       // max requests per second per client, 0 for default
	Dbg         bool          // debug mode
}

// ModelProvider gives access to the current model and reloads it.
// Current returns the classifier with the info of the same load.
type ModelProvider interface {
	Current() (*sentiment.Classifier, model.Info, error)
	Info() (model.Info, error)
	Reload(ctx context.Context) error
}

// ScoresStore keeps classification history
type ScoresStore interface {
	Add(ctx context.Context, entry storage.ScoreInfo) error
	Read(ctx context.Context, limit int) ([]storage.ScoreInfo, error)
	Stats(ctx context.Context) (storage.ScoresStats, error)
}

// ScoreLogger is a sink for classification results
type ScoreLogger interface {
	Save(entry storage.ScoreInfo)
}

// ScoreLoggerFunc is a function adapter for ScoreLogger
type ScoreLoggerFunc func(entry storage.ScoreInfo)

// Save calls the function
func (f ScoreLoggerFunc) Save(entry storage.ScoreInfo) { f(entry) }

type textRequest struct {
	Text string `json:"text"`
}

type scoreResult struct {
	Score    float64            `json:"score"`
	Polarity sentiment.Polarity `json:"polarity"`
	Keywords []string           `json:"keywords"`
}

// NewServer creates a new web API server.
func NewServer(config Config) *Server {
	if config.CacheSize <= 0 {
		config.CacheSize = 1000
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = 10 * time.Minute
	}
	if config.RateLimit <= 0 {
		config.RateLimit = 50
	}
	return &Server{
		Config:  config,
		results: cache.NewCache[string, scoreResult]().WithMaxKeys(config.CacheSize).WithTTL(config.CacheTTL),
	}
}

// Run starts server and accepts requests scoring texts.
func (s *Server) Run(ctx context.Context) error {
	router := routegroup.New(http.NewServeMux())
	router.Use(rest.Recoverer(lgr.Default()))
	router.Use(rest.AppInfo("sentibayes", "umputun", s.Version), rest.Ping)
	router.Use(s.rateLimiter())
	router.Use(rest.SizeLimit(1024 * 1024)) // 1M max request size

	if s.AuthPasswd != "" {
		log.Printf("[INFO] basic auth enabled for webapi server")
	} else {
		log.Printf("[WARN] basic auth disabled, access to webapi is not protected")
	}

	router = s.routes(router) // setup routes

	srv := &http.Server{Addr: s.ListenAddr, Handler: router, ReadTimeout: 5 * time.Second, WriteTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Printf("[WARN] failed to shutdown webapi server: %v", err)
		} else {
			log.Printf("[INFO] webapi server stopped")
		}
	}()

	log.Printf("[INFO] start webapi server on %s", s.ListenAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to run server: %w", err)
	}
	return nil
}

func (s *Server) routes(router *routegroup.Bundle) *routegroup.Bundle {
	// auth api routes
	router.Group().Route(func(authAPI *routegroup.Bundle) {
		authAPI.Use(s.authMiddleware(rest.BasicAuthWithUserPasswd("sentibayes", s.AuthPasswd)))
		authAPI.HandleFunc("POST /classify", s.classifyHandler) // score a text
		authAPI.HandleFunc("POST /keywords", s.keywordsHandler) // tokenize a text
		authAPI.HandleFunc("POST /explain", s.explainHandler)   // per-keyword contributions
		authAPI.HandleFunc("GET /model", s.modelInfoHandler)    // current model info
		authAPI.HandleFunc("PUT /model", s.reloadModelHandler)  // reload model from the source

		if s.Scores != nil {
			authAPI.HandleFunc("GET /history", s.historyHandler) // recent results
			authAPI.HandleFunc("GET /stats", s.statsHandler)     // results per polarity
		}
	})
	return router
}

// classifyHandler handles POST /classify request.
// it gets text from request body and returns score, polarity and keywords.
// results are cached per model and text.
func (s *Server) classifyHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeText(w, r)
	if !ok {
		return
	}
	c, info, ok := s.classifier(w)
	if !ok {
		return
	}

	key := strconv.FormatInt(info.Loaded.UnixNano(), 10) + ":" + req.Text
	res, found := s.results.Get(key)
	if !found {
		score := c.Classify(req.Text)
		res = scoreResult{Score: score, Polarity: sentiment.PolarityOf(score, s.NeutralBand), Keywords: sentiment.Keywords(req.Text)}
		s.results.Set(key, res, s.CacheTTL)
	}
	if s.Dbg {
		log.Printf("[DEBUG] classify %q: %.4f (%s), cached: %v", req.Text, res.Score, res.Polarity, found)
	}

	entry := storage.ScoreInfo{Text: req.Text, Score: res.Score, Polarity: res.Polarity, Timestamp: time.Now()}
	if s.ScoreLogger != nil {
		s.ScoreLogger.Save(entry)
	}
	if s.Scores != nil {
		if err := s.Scores.Add(r.Context(), entry); err != nil {
			log.Printf("[WARN] can't store score: %v", err)
		}
	}
	rest.RenderJSON(w, res)
}

// keywordsHandler handles POST /keywords request, doesn't need a model
func (s *Server) keywordsHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeText(w, r)
	if !ok {
		return
	}
	rest.RenderJSON(w, rest.JSON{"keywords": sentiment.Keywords(req.Text)})
}

// explainHandler handles POST /explain request.
// it returns score and contributions of known keywords, strongest first.
func (s *Server) explainHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeText(w, r)
	if !ok {
		return
	}
	c, _, ok := s.classifier(w)
	if !ok {
		return
	}
	score := c.Classify(req.Text)
	rest.RenderJSON(w, rest.JSON{
		"score":         score,
		"polarity":      sentiment.PolarityOf(score, s.NeutralBand),
		"contributions": c.Explain(req.Text),
	})
}

// modelInfoHandler handles GET /model request
func (s *Server) modelInfoHandler(w http.ResponseWriter, _ *http.Request) {
	info, err := s.Model.Info()
	if err != nil {
		w.WriteHeader(modelErrStatus(err))
		rest.RenderJSON(w, rest.JSON{"error": "can't get model info", "details": err.Error(), "source": info.Source})
		return
	}
	rest.RenderJSON(w, info)
}

// reloadModelHandler handles PUT /model request.
// on failure the previous model stays in use.
func (s *Server) reloadModelHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.Model.Reload(r.Context()); err != nil {
		log.Printf("[WARN] can't reload model: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		rest.RenderJSON(w, rest.JSON{"error": "can't reload model", "details": err.Error()})
		return
	}
	info, err := s.Model.Info()
	if err != nil {
		w.WriteHeader(modelErrStatus(err))
		rest.RenderJSON(w, rest.JSON{"error": "can't get model info", "details": err.Error()})
		return
	}
	rest.RenderJSON(w, info)
}

// historyHandler handles GET /history?limit=N request, newest results first
func (s *Server) historyHandler(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil || l <= 0 {
			w.WriteHeader(http.StatusBadRequest)
			rest.RenderJSON(w, rest.JSON{"error": "invalid limit", "details": fmt.Sprintf("limit %q is not a positive number", v)})
			return
		}
		limit = min(l, maxHistoryLimit)
	}

	scores, err := s.Scores.Read(r.Context(), limit)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		rest.RenderJSON(w, rest.JSON{"error": "can't read history", "details": err.Error()})
		return
	}
	rest.RenderJSON(w, rest.JSON{"scores": scores, "count": len(scores)})
}

// statsHandler handles GET /stats request
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := s.Scores.Stats(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		rest.RenderJSON(w, rest.JSON{"error": "can't get stats", "details": err.Error()})
		return
	}
	rest.RenderJSON(w, stats)
}

// decodeText decodes text request, renders error and returns false on failure
func (s *Server) decodeText(w http.ResponseWriter, r *http.Request) (textRequest, bool) {
	req := textRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		rest.RenderJSON(w, rest.JSON{"error": "can't decode request", "details": err.Error()})
		log.Printf("[WARN] can't decode request: %v", err)
		return textRequest{}, false
	}
	return req, true
}

// classifier returns the current classifier with its info, renders error and returns false if not available
func (s *Server) classifier(w http.ResponseWriter) (*sentiment.Classifier, model.Info, bool) {
	c, info, err := s.Model.Current()
	if err != nil {
		w.WriteHeader(modelErrStatus(err))
		rest.RenderJSON(w, rest.JSON{"error": "model not available", "details": err.Error()})
		return nil, model.Info{}, false
	}
	return c, info, true
}

func (s *Server) rateLimiter() func(http.Handler) http.Handler {
	lmt := tollbooth.NewLimiter(s.RateLimit, nil)
	lmt.SetIPLookup(limiter.IPLookup{Name: "RemoteAddr"})
	lmt.SetMessage(`{"error": "too many requests"}`)
	lmt.SetMessageContentType("application/json; charset=utf-8")
	return func(next http.Handler) http.Handler {
		return tollbooth.LimitHandler(lmt, next)
	}
}

func (s *Server) authMiddleware(mw func(next http.Handler) http.Handler) func(next http.Handler) http.Handler {
	if s.AuthPasswd == "" {
		return func(next http.Handler) http.Handler {
			return next
		}
	}
	return func(next http.Handler) http.Handler {
		return mw(next)
	}
}

// modelErrStatus maps model errors to http status, not loaded model is a temporary condition
func modelErrStatus(err error) int {
	if errors.Is(err, model.ErrNotLoaded) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
