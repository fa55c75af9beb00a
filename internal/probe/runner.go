// Package probe drives repeated generation rounds across careers and collects
// the produced issues for duplication analysis.
package probe

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/agenthands/issuedup/internal/config"
	"github.com/agenthands/issuedup/internal/core/model"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Source produces one round of issues. *generation.Generator satisfies it.
type Source interface {
	Generate(ctx context.Context, career string, values []string, previous []string) ([]string, error)
}

// Result is the outcome of one simulated counseling session.
type Result struct {
	TestID    int        `json:"test_id"`
	Career    string     `json:"career"`
	Values    []string   `json:"values"`
	Rounds    [][]string `json:"rounds"`
	Err       error      `json:"-"`
	Error     string     `json:"error,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// Issues flattens the result's rounds.
func (r Result) Issues() []string {
	var all []string
	for _, round := range r.Rounds {
		all = append(all, round...)
	}
	return all
}

type Runner struct {
	Source      Source
	Careers     []string
	ValueSets   [][]string
	Rounds      int
	Concurrency int

	mu   sync.Mutex
	rand *rand.Rand
}

func NewRunner(source Source, cfg config.ProbeConfig) *Runner {
	return &Runner{
		Source:      source,
		Careers:     cfg.Careers,
		ValueSets:   cfg.ValueSets,
		Rounds:      cfg.Rounds,
		Concurrency: cfg.Concurrency,
		rand:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WithSeed makes career and value selection reproducible.
func (r *Runner) WithSeed(seed int64) *Runner {
	r.rand = rand.New(rand.NewSource(seed))
	return r
}

// Run simulates tests sessions. A failing session is recorded in its Result
// and never stops the others; only an invalid setup or a cancelled context
// fails the run.
func (r *Runner) Run(ctx context.Context, tests int) ([]Result, error) {
	if r.Source == nil {
		return nil, errors.New("probe runner has no source")
	}
	if len(r.Careers) == 0 {
		return nil, errors.New("probe runner has no careers")
	}
	if tests < 0 {
		return nil, errors.New("probe runner needs a non-negative test count")
	}
	rounds := r.Rounds
	if rounds <= 0 {
		rounds = 1
	}

	results := make([]Result, tests)
	var g errgroup.Group
	if r.Concurrency > 0 {
		g.SetLimit(r.Concurrency)
	}

	for i := 0; i < tests; i++ {
		i := i
		career, values := r.pick()
		results[i] = Result{TestID: i + 1, Career: career, Values: values}

		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			r.runSession(ctx, &results[i], rounds)
			return nil
		})
	}

	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return results, fmt.Errorf("probe run interrupted: %w", err)
	}
	return results, nil
}

func (r *Runner) runSession(ctx context.Context, res *Result, rounds int) {
	res.Timestamp = time.Now().UTC()
	var previous []string

	for round := 1; round <= rounds; round++ {
		issues, err := r.Source.Generate(ctx, res.Career, res.Values, previous)
		if err != nil {
			res.Err = fmt.Errorf("round %d: %w", round, err)
			res.Error = res.Err.Error()
			log.Warn().Err(err).Int("test_id", res.TestID).Str("career", res.Career).Int("round", round).Msg("Session failed")
			return
		}
		res.Rounds = append(res.Rounds, issues)
		previous = append(previous, issues...)

		log.Debug().Int("test_id", res.TestID).Int("round", round).Int("issues", len(issues)).Msg("Round complete")
	}
}

func (r *Runner) pick() (string, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rand == nil {
		r.rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	career := r.Careers[r.rand.Intn(len(r.Careers))]
	var values []string
	if len(r.ValueSets) > 0 {
		values = r.ValueSets[r.rand.Intn(len(r.ValueSets))]
	}
	return career, values
}

// Items flattens successful results in test order. The category is the
// career and the batch is the 1-based round number.
func Items(results []Result) []model.TextItem {
	var items []model.TextItem
	for _, res := range results {
		if res.Err != nil {
			continue
		}
		for round, issues := range res.Rounds {
			for _, issue := range issues {
				items = append(items, model.TextItem{
					Text:     issue,
					Category: res.Career,
					Batch:    round + 1,
				})
			}
		}
	}
	return items
}

// Failed counts results that carry an error.
func Failed(results []Result) int {
	n := 0
	for _, res := range results {
		if res.Err != nil {
			n++
		}
	}
	return n
}
