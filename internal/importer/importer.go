package importer

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/matsen/bibsync/internal/bibtex"
	"github.com/matsen/bibsync/internal/reference"
	"github.com/matsen/bibsync/internal/venue"
)

// Recorder receives one observation per imported entry.
type Recorder interface {
	Observe(outcome string, elapsed time.Duration)
}

// Options configures an Importer.
type Options struct {
	AllowProxyVenues   bool // Use a transient venue when the registry has no match
	RequireKnownAuthor bool // Fail entries whose authors are all unknown to the registry
	Workers            int  // Parallelism of ImportAll; 0 means GOMAXPROCS

	// Serials, when set, numbers each imported publication. It is called
	// from several goroutines by ImportAll.
	Serials func() int64

	Logger  *zap.Logger // Defaults to a no-op logger
	Metrics Recorder    // Optional
}

// Importer turns raw entries into typed publications. Registry and person
// lookups are read-only; an Importer never writes.
type Importer struct {
	resolver *venue.Resolver
	people   PersonResolver
	opts     Options
	log      *zap.Logger
}

// New creates an importer.
func New(resolver *venue.Resolver, people PersonResolver, opts Options) *Importer {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	return &Importer{resolver: resolver, people: people, opts: opts, log: log}
}

// Import classifies, extracts and assembles one entry. On failure no
// publication is returned. Field problems are all reported together;
// venue and author problems are reported once the fields are sound.
func (imp *Importer) Import(e *bibtex.Entry) (reference.Publication, error) {
	kind, err := Classify(e.Key, e.Type)
	if err != nil {
		return nil, err
	}
	pub, err := reference.New(kind)
	if err != nil {
		return nil, err
	}

	a := &assembler{imp: imp, entry: e, x: NewExtractor(e)}
	a.header(pub.Head(), kind)
	if err := pub.Accept(a); err != nil {
		return nil, err
	}
	if err := a.x.Err(); err != nil {
		return nil, err
	}
	if a.venueErr != nil {
		return nil, a.venueErr
	}

	h := pub.Head()
	if len(h.Authors) == 0 {
		return nil, &NoAuthorError{Key: e.Key}
	}
	if imp.opts.RequireKnownAuthor && !anyKnown(h.Authors) {
		return nil, &NoAuthorError{Key: e.Key, RequireKnown: true}
	}
	if imp.opts.Serials != nil {
		h.Serial = imp.opts.Serials()
	}
	return pub, nil
}

func anyKnown(people []reference.Person) bool {
	for _, p := range people {
		if p.Known() {
			return true
		}
	}
	return false
}

// Result is the outcome of importing one entry.
type Result struct {
	Key         string
	Publication reference.Publication // nil when Err is set
	Err         error
}

// ImportAll imports entries in parallel and returns one result per entry,
// in input order. A failing entry does not stop the others. When ctx is
// canceled, entries not yet started get ctx's error and ImportAll returns
// it as well.
func (imp *Importer) ImportAll(ctx context.Context, entries []*bibtex.Entry) ([]Result, error) {
	batch := uuid.NewString()
	log := imp.log.With(zap.String("batch", batch))
	log.Info("import started", zap.Int("entries", len(entries)), zap.Int("workers", imp.opts.Workers))

	results := make([]Result, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(imp.opts.Workers)

	start := time.Now()
	for i, e := range entries {
		i, e := i, e
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = Result{Key: e.Key, Err: err}
				return err
			}
			results[i] = imp.importOne(log, e)
			return nil
		})
	}
	err := g.Wait()

	var failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	log.Info("import finished",
		zap.Int("imported", len(entries)-failed),
		zap.Int("failed", failed),
		zap.Duration("elapsed", time.Since(start)),
	)
	return results, err
}

func (imp *Importer) importOne(log *zap.Logger, e *bibtex.Entry) Result {
	start := time.Now()
	pub, err := imp.Import(e)
	elapsed := time.Since(start)

	outcome := KindOf(err)
	if imp.opts.Metrics != nil {
		imp.opts.Metrics.Observe(outcome, elapsed)
	}
	if err != nil {
		log.Warn("entry rejected",
			zap.String("key", e.Key),
			zap.String("outcome", outcome),
			zap.Error(err),
		)
	} else {
		log.Debug("entry imported",
			zap.String("key", e.Key),
			zap.String("kind", string(pub.Kind())),
			zap.Duration("elapsed", elapsed),
		)
	}
	return Result{Key: e.Key, Publication: pub, Err: err}
}

// SerialCounter returns a goroutine-safe serial generator that yields
// start+1, start+2, ...
func SerialCounter(start int64) func() int64 {
	var n atomic.Int64
	n.Store(start)
	return func() int64 { return n.Add(1) }
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
