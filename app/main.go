package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/fileutils"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/umputun/sentibayes/app/model"
	"github.com/umputun/sentibayes/app/storage"
	"github.com/umputun/sentibayes/app/storage/engine"
	"github.com/umputun/sentibayes/app/webapi"
	"github.com/umputun/sentibayes/lib/sentiment"
)

type options struct {
	Model struct {
		File       string        `long:"file" env:"FILE" description:"model file"`
		URL        string        `long:"url" env:"URL" description:"model url"`
		Attempts   int           `long:"attempts" env:"ATTEMPTS" default:"3" description:"model download attempts"`
		Delay      time.Duration `long:"delay" env:"DELAY" default:"1s" description:"delay between download attempts"`
		Timeout    time.Duration `long:"timeout" env:"TIMEOUT" default:"30s" description:"http client timeout for model download"`
		WatchDelay time.Duration `long:"watch-delay" env:"WATCH_DELAY" default:"5s" description:"reload delay after model file change, 0 to disable"`
	} `group:"model" namespace:"model" env-namespace:"MODEL"`

	Text        string  `long:"text" env:"TEXT" description:"text to score, one-shot mode"`
	Eval        string  `long:"eval" env:"EVAL" description:"labeled csv corpus (sentiment140 format) to evaluate the model"`
	NeutralBand float64 `long:"neutral" env:"NEUTRAL" default:"0.5" description:"scores within ±neutral are neutral"`

	Export struct {
		Input  string `long:"input" env:"INPUT" description:"json file with negative and positive tables"`
		Output string `long:"output" env:"OUTPUT" default:"model.gz" description:"model file to write"`
	} `group:"export" namespace:"export" env-namespace:"EXPORT"`

	DataBase   string `long:"db" env:"DB" description:"database for classification history, sqlite file or postgres url"`
	InstanceID string `long:"instance-id" env:"INSTANCE_ID" default:"sentibayes" description:"instance id, separates history in a shared database"`
	MaxHistory int    `long:"max-history" env:"MAX_HISTORY" default:"10000" description:"max number of kept results, 0 keeps all"`

	Server struct {
		Enabled    bool          `long:"enabled" env:"ENABLED" description:"enable web server"`
		ListenAddr string        `long:"listen" env:"LISTEN" default:":8080" description:"listen address"`
		AuthPasswd string        `long:"auth" env:"AUTH" default:"" description:"basic auth password for user 'sentibayes'"`
		RateLimit  float64       `long:"rate-limit" env:"RATE_LIMIT" default:"50" description:"max requests per second per client"`
		CacheTTL   time.Duration `long:"cache-ttl" env:"CACHE_TTL" default:"10m" description:"ttl of cached results"`
	} `group:"server" namespace:"server" env-namespace:"SERVER"`

	Logger struct {
		Enabled    bool   `long:"enabled" env:"ENABLED" description:"enable score rotated logs"`
		FileName   string `long:"file" env:"FILE"  default:"sentibayes.log" description:"location of score log"`
		MaxSize    string `long:"max-size" env:"MAX_SIZE" default:"100M" description:"maximum size before it gets rotated"`
		MaxBackups int    `long:"max-backups" env:"MAX_BACKUPS" default:"10" description:"maximum number of old log files to retain"`
	} `group:"logger" namespace:"logger" env-namespace:"LOGGER"`

	Dbg bool `long:"dbg" env:"DEBUG" description:"debug mode"`
}

var revision = "local"

func main() {
	fmt.Printf("sentibayes %s\n", revision)
	var opts options
	p := flags.NewParser(&opts, flags.PrintErrors|flags.PassDoubleDash|flags.HelpFlag)
	if _, err := p.Parse(); err != nil {
		if err.(*flags.Error).Type != flags.ErrHelp {
			log.Printf("[ERROR] cli error: %v", err)
		}
		os.Exit(2)
	}

	setupLog(opts.Dbg, opts.Server.AuthPasswd)
	log.Printf("[DEBUG] options: %+v", opts)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		// catch signal and invoke graceful termination
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		log.Printf("[WARN] interrupt signal")
		cancel()
	}()

	if err := execute(ctx, opts, os.Stdout); err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}
}

// execute runs the mode selected by options: export, one-shot text, evaluation or server.
// results of one-shot modes are printed to out.
func execute(ctx context.Context, opts options, out io.Writer) error {
	if opts.Export.Input != "" {
		return exportModel(opts.Export.Input, opts.Export.Output)
	}

	loader, source, err := makeLoader(opts)
	if err != nil {
		return err
	}

	switch {
	case opts.Text != "":
		return scoreText(ctx, loader, opts.Text, opts.NeutralBand, out)
	case opts.Eval != "":
		return evalCorpus(ctx, loader, opts.Eval, opts.NeutralBand, out)
	case opts.Server.Enabled:
		return runServer(ctx, opts, loader, source)
	}
	return errors.New("nothing to do, set one of --text, --eval, --server.enabled or --export.input")
}

// makeLoader makes model loader for file or url source
func makeLoader(opts options) (loader sentiment.Loader, source string, err error) {
	switch {
	case opts.Model.File != "" && opts.Model.URL != "":
		return sentiment.Loader{}, "", errors.New("only one of --model.file and --model.url allowed")
	case opts.Model.File != "":
		return sentiment.Loader{Fetcher: model.FileFetcher{Path: opts.Model.File}}, opts.Model.File, nil
	case opts.Model.URL != "":
		fetcher := model.HTTPFetcher{
			URL:      opts.Model.URL,
			Client:   &http.Client{Timeout: opts.Model.Timeout},
			Attempts: opts.Model.Attempts,
			Delay:    opts.Model.Delay,
		}
		log.Printf("[DEBUG] model fetcher: %s, attempts: %d, delay: %v", fetcher, fetcher.Attempts, fetcher.Delay)
		return sentiment.Loader{Fetcher: fetcher}, opts.Model.URL, nil
	}
	return sentiment.Loader{}, "", errors.New("model source not set, use --model.file or --model.url")
}

func scoreText(ctx context.Context, loader sentiment.Loader, text string, band float64, out io.Writer) error {
	c, err := loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("can't load model, %w", err)
	}
	score := c.Classify(text)
	fmt.Fprintf(out, "score: %.4f, polarity: %s\n", score, sentiment.PolarityOf(score, band))
	for _, contrib := range c.Explain(text) {
		fmt.Fprintf(out, "  %-20s %+.4f\n", contrib.Keyword, contrib.Weight)
	}
	return nil
}

func evalCorpus(ctx context.Context, loader sentiment.Loader, file string, band float64, out io.Writer) error {
	fh, err := os.Open(file) //nolint:gosec // file name from cli
	if err != nil {
		return fmt.Errorf("can't open corpus, %w", err)
	}
	defer fh.Close()

	samples, err := sentiment.ReadSamples(fh)
	if err != nil {
		return fmt.Errorf("can't read corpus %s, %w", file, err)
	}
	log.Printf("[INFO] loaded %d samples from %s", len(samples), file)

	c, err := loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("can't load model, %w", err)
	}

	st := time.Now()
	res, err := sentiment.Evaluate(ctx, c, samples, band)
	if err != nil {
		return fmt.Errorf("can't evaluate model, %w", err)
	}
	log.Printf("[DEBUG] evaluated in %v", time.Since(st).Round(time.Millisecond))

	fmt.Fprintf(out, "correct: %s\n", res)
	for _, expected := range []sentiment.Polarity{sentiment.Negative, sentiment.Neutral, sentiment.Positive} {
		predicted := res.Confusion[expected]
		if len(predicted) == 0 {
			continue
		}
		fmt.Fprintf(out, "  %-8s -> negative: %d, neutral: %d, positive: %d\n", expected,
			predicted[sentiment.Negative], predicted[sentiment.Neutral], predicted[sentiment.Positive])
	}
	return nil
}

// exportModel makes model file from json tables {"negative": {...}, "positive": {...}}.
// The model is written to a temp file and renamed, so readers never see a partial model.
func exportModel(input, output string) error {
	if !fileutils.IsFile(input) {
		return fmt.Errorf("tables file %q not found", input)
	}
	data, err := os.ReadFile(input) //nolint:gosec // file name from cli
	if err != nil {
		return fmt.Errorf("can't read tables, %w", err)
	}
	tables := struct {
		Negative sentiment.Table `json:"negative"`
		Positive sentiment.Table `json:"positive"`
	}{}
	if err = json.Unmarshal(data, &tables); err != nil {
		return fmt.Errorf("can't decode tables from %s, %w", input, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(output), filepath.Base(output)+".*.tmp")
	if err != nil {
		return fmt.Errorf("can't make temp file, %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint

	if err = sentiment.WriteModel(tmp, tables.Negative, tables.Positive); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("can't write model, %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("can't close model file, %w", err)
	}
	if err = os.Rename(tmp.Name(), output); err != nil {
		return fmt.Errorf("can't save model to %s, %w", output, err)
	}
	log.Printf("[INFO] model with %d keywords saved to %s", len(tables.Negative), output)
	return nil
}

func runServer(ctx context.Context, opts options, loader sentiment.Loader, source string) error {
	holder := model.NewHolder(loader, source)
	if err := holder.Reload(ctx); err != nil {
		return fmt.Errorf("can't load model, %w", err)
	}

	if opts.Model.File != "" && opts.Model.WatchDelay > 0 {
		go func() {
			reload := func() error { return holder.Reload(ctx) }
			if err := model.Watch(ctx, opts.Model.WatchDelay, reload, opts.Model.File); err != nil {
				log.Printf("[WARN] can't watch model file, %v", err)
			}
		}()
	}

	// make score logger
	loggerWr, err := makeScoreLogWriter(opts)
	if err != nil {
		return fmt.Errorf("can't make score log writer, %w", err)
	}
	defer loggerWr.Close()

	srvCfg := webapi.Config{
		Version:     revision,
		ListenAddr:  opts.Server.ListenAddr,
		Model:       holder,
		ScoreLogger: makeScoreLogger(loggerWr),
		NeutralBand: opts.NeutralBand,
		AuthPasswd:  opts.Server.AuthPasswd,
		CacheTTL:    opts.Server.CacheTTL,
		RateLimit:   opts.Server.RateLimit,
		Dbg:         opts.Dbg,
	}

	if opts.DataBase != "" {
		db, err := engine.New(ctx, opts.DataBase, opts.InstanceID)
		if err != nil {
			return fmt.Errorf("can't make database engine, %w", err)
		}
		defer db.Close()
		scores, err := storage.NewScores(ctx, db, opts.MaxHistory)
		if err != nil {
			return fmt.Errorf("can't make scores storage, %w", err)
		}
		srvCfg.Scores = scores
	}

	srv := webapi.NewServer(srvCfg)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("web server failed, %w", err)
	}
	return nil
}

// makeScoreLogger creates score logger to keep classification results
// it writes json lines to the provided writer
func makeScoreLogger(wr io.Writer) webapi.ScoreLogger {
	return webapi.ScoreLoggerFunc(func(entry storage.ScoreInfo) {
		text := strings.ReplaceAll(entry.Text, "\n", " ")
		text = strings.TrimSpace(text)
		log.Printf("[DEBUG] scored %.4f (%s): %s", entry.Score, entry.Polarity, text)
		m := struct {
			TimeStamp string             `json:"ts"`
			Text      string             `json:"text"`
			Score     float64            `json:"score"`
			Polarity  sentiment.Polarity `json:"polarity"`
		}{
			TimeStamp: entry.Timestamp.In(time.Local).Format(time.RFC3339),
			Text:      text,
			Score:     math.Round(entry.Score*10000) / 10000,
			Polarity:  entry.Polarity,
		}
		line, err := json.Marshal(&m)
		if err != nil {
			log.Printf("[WARN] can't marshal json, %v", err)
			return
		}
		if _, err := wr.Write(append(line, '\n')); err != nil {
			log.Printf("[WARN] can't write to log, %v", err)
		}
	})
}

// makeScoreLogWriter creates score log writer to keep classification results
// it parses options and makes lumberjack logger with rotation
func makeScoreLogWriter(opts options) (accessLog io.WriteCloser, err error) {
	if !opts.Logger.Enabled {
		return nopWriteCloser{io.Discard}, nil
	}

	maxSize, perr := sizeParse(opts.Logger.MaxSize)
	if perr != nil {
		return nil, fmt.Errorf("can't parse logger MaxSize: %w", perr)
	}

	maxSize /= 1048576

	log.Printf("[INFO] logger enabled for %s, max size %dM", opts.Logger.FileName, maxSize)
	return &lumberjack.Logger{
		Filename:   opts.Logger.FileName,
		MaxSize:    int(maxSize), // in MB
		MaxBackups: opts.Logger.MaxBackups,
		Compress:   true,
		LocalTime:  true,
	}, nil
}

// sizeParse parses size with optional k/m/g/t suffix, in any case
func sizeParse(inp string) (uint64, error) {
	if inp == "" {
		return 0, errors.New("empty value")
	}
	for i, sfx := range []string{"k", "m", "g", "t"} {
		if strings.HasSuffix(inp, strings.ToUpper(sfx)) || strings.HasSuffix(inp, strings.ToLower(sfx)) {
			val, err := strconv.Atoi(inp[:len(inp)-1])
			if err != nil {
				return 0, fmt.Errorf("can't parse %s: %w", inp, err)
			}
			return uint64(float64(val) * math.Pow(float64(1024), float64(i+1))), nil
		}
	}
	return strconv.ParseUint(inp, 10, 64)
}

type nopWriteCloser struct{ io.Writer }

func (n nopWriteCloser) Close() error { return nil }

func setupLog(dbg bool, secrets ...string) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))

	secrets = nonEmpty(secrets)
	if len(secrets) > 0 {
		logOpts = append(logOpts, lgr.Secret(secrets...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}

// nonEmpty returns unique non-empty strings, sorted
func nonEmpty(inp []string) []string {
	uniq := map[string]struct{}{}
	for _, s := range inp {
		if s != "" {
			uniq[s] = struct{}{}
		}
	}
	res := make([]string, 0, len(uniq))
	for s := range uniq {
		res = append(res, s)
	}
	sort.Strings(res)
	return res
}
