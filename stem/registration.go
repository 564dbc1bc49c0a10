package stem

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"
)

// Default tolerance constants, overridable via RegistrationConfig.
const (
	DefaultDiameterErrorTol = 0.015
	DefaultLinearityTol     = 0.975
)

// RegistrationConfig carries the tolerance constants and operational
// knobs for a registration run. These are configuration fields, not
// compile-time globals, so multiple runs (e.g. across a batch of scan
// pairs) can use different tolerances concurrently.
type RegistrationConfig struct {
	DiameterErrorTol float64 `yaml:"diameterErrorTol"`
	RansacTol        float64 `yaml:"ransacTol"`
	LinearityTol     float64 `yaml:"linearityTol"`
	FilterDegenerate bool    `yaml:"filterDegenerate"`
	Workers          int     `yaml:"workers"`
}

// DefaultRegistrationConfig returns the tolerance defaults from the
// external interface contract, with a worker count of one per CPU.
func DefaultRegistrationConfig() RegistrationConfig {
	return RegistrationConfig{
		DiameterErrorTol: DefaultDiameterErrorTol,
		RansacTol:        0.15,
		LinearityTol:     DefaultLinearityTol,
		FilterDegenerate: true,
		Workers:          runtime.NumCPU(),
	}
}

// Error kinds. InsufficientData is fatal at the driver level.
// NoCandidatePairs is a non-panicking outcome: the driver returns it
// with a Result carrying an identity transform and infinite MSE. A
// pair whose solve hits ErrNumericInstability is ranked last; the
// driver does not return ErrNumericInstability itself, and when no pair
// has a computed transform it reports NoCandidatePairs.
var (
	ErrInsufficientData = errors.New("stem: fewer than 3 stems remain on one side after pruning")
	ErrNoCandidatePairs = errors.New("stem: no candidate pair survived the pre-filter")
)

// Register is the core's pure entry point: given two stem maps and a
// configuration, it prunes unmatched stems, builds triplets and
// descriptors, generates and filters candidate pairs, solves and grows
// every surviving pair in parallel, then ranks and returns the best.
//
// Register does not mutate target or source; it operates on internal
// clones so repeated calls over the same maps are safe.
func Register(target, source *StemMap, cfg RegistrationConfig) (Result, error) {
	workTarget := target.Clone()
	workSource := source.Clone()

	removeLonelyStems(workTarget, workSource, cfg.DiameterErrorTol)

	if len(workTarget.Stems) < 3 || len(workSource.Stems) < 3 {
		return Result{}, fmt.Errorf("register: %w (target=%d, source=%d)",
			ErrInsufficientData, len(workTarget.Stems), len(workSource.Stems))
	}

	targetTriplets := GenerateTriplets(workTarget)
	sourceTriplets := GenerateTriplets(workSource)
	if cfg.FilterDegenerate {
		targetTriplets = FilterDegenerate(targetTriplets, cfg.LinearityTol)
		sourceTriplets = FilterDegenerate(sourceTriplets, cfg.LinearityTol)
	}

	pairs := GeneratePairs(targetTriplets, sourceTriplets, cfg.DiameterErrorTol, cfg.RansacTol, cfg.Workers)
	if len(pairs) == 0 {
		return Result{
			Transform: Identity4(),
			MSE:       math.Inf(1),
		}, fmt.Errorf("register: %w", ErrNoCandidatePairs)
	}

	solveAndGrowParallel(pairs, workTarget, workSource, cfg)

	sort.Slice(pairs, func(i, j int) bool {
		return Less(pairs[i], pairs[j])
	})

	best := pairs[0]
	if !best.TransformComputed() {
		return Result{
			Transform: Identity4(),
			MSE:       math.Inf(1),
		}, fmt.Errorf("register: %w", ErrNoCandidatePairs)
	}

	return Result{
		Transform:  best.BestTransform(),
		MSE:        best.MeanSquareError(),
		TargetUsed: best.TargetGroup(),
		SourceUsed: best.SourceGroup(),
	}, nil
}

// solveAndGrowParallel runs ComputeBestTransform then GrowConsensus for
// every pair concurrently. Each pair owns disjoint state, so no lock is
// needed during this phase; a worker pool just bounds concurrency.
func solveAndGrowParallel(pairs []*PairOfStemGroups, target, source *StemMap, cfg RegistrationConfig) {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	jobs := make(chan int, len(pairs))
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				p := pairs[i]
				if err := p.ComputeBestTransform(); err != nil {
					// Numeric instability: leave transformComputed false so
					// this pair sorts last; do not abort the batch.
					continue
				}
				// A growth failure (instability mid-growth) is likewise
				// non-fatal: the failed re-solve leaves transformComputed
				// false, so this pair also sorts last.
				_ = GrowConsensus(p, target, source, cfg.RansacTol, cfg.DiameterErrorTol)
			}
		}()
	}

	for i := range pairs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}

// removeLonelyStems drops, from each side, every stem with no
// counterpart on the other side within the diameter-similarity
// tolerance. This is an O(|src|*|tgt|) sweep performed once per side;
// indices to remove are collected and applied in a single filtering
// pass rather than the brittle descending-delete pattern.
func removeLonelyStems(target, source *StemMap, diamTol float64) {
	sourceRemove := make(map[int]bool)
	for i, s := range source.Stems {
		lonely := true
		for _, t := range target.Stems {
			if relativeDiameterError(t, s) <= diamTol {
				lonely = false
				break
			}
		}
		if lonely {
			sourceRemove[i] = true
		}
	}
	source.RemoveIndices(sourceRemove)

	targetRemove := make(map[int]bool)
	for i, t := range target.Stems {
		lonely := true
		for _, s := range source.Stems {
			if relativeDiameterError(s, t) <= diamTol {
				lonely = false
				break
			}
		}
		if lonely {
			targetRemove[i] = true
		}
	}
	target.RemoveIndices(targetRemove)
}
