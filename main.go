package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/kwv/stemreg/stem"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	targetPath      = flag.String("target", "", "Path to the target stem-map file (required)")
	sourcePath      = flag.String("source", "", "Path to the source stem-map file (required)")
	minDiam         = flag.Float64("min-diam", 0, "Minimum diameter to keep a stem record")
	diamTol         = flag.Float64("diam-tol", 0, "Diameter error tolerance override (0 = use config/default)")
	ransacTol       = flag.Float64("ransac-tol", 0, "RANSAC distance tolerance override, meters (0 = use config/default)")
	linearityTol    = flag.Float64("linearity-tol", 0, "Linearity tolerance override (0 = use config/default)")
	filterDegen     = flag.Bool("filter-degenerate", true, "Drop degenerate (colinear) triplets before pairing")
	workers         = flag.Int("workers", 0, "Parallel worker count (0 = use config/default)")
	configPath      = flag.String("config", "", "Optional YAML config overriding the tolerance defaults")
	cachePath       = flag.String("cache", ".stemreg-cache.json", "Registration cache path")
	renderPath      = flag.String("render", "", "Output PNG path for a before/after visualization")
	vectorFormatOut = flag.String("vector-format", "", "Output SVG path for a vector visualization")
	geojsonPath     = flag.String("geojson", "", "Output GeoJSON path for the aligned source stems")
)

func main() {
	flag.Parse()
	fmt.Printf("stemreg version: %s\n", Version)

	if *targetPath == "" || *sourcePath == "" {
		log.Fatalf("stemreg: -target and -source are required")
	}

	if err := run(); err != nil {
		log.Fatalf("stemreg: %v", err)
	}
}

func run() error {
	cfg := stem.DefaultRegistrationConfig()
	if *configPath != "" {
		loaded, err := stem.LoadConfig(*configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	// Only an explicitly given -filter-degenerate overrides the config.
	var degen *bool
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "filter-degenerate" {
			v := *filterDegen
			degen = &v
		}
	})
	cfg = stem.MergeOverrides(cfg,
		nonZero(*diamTol), nonZero(*ransacTol), nonZero(*linearityTol),
		nonZeroInt(*workers), degen)

	target, err := stem.ParseStemMapFile(*targetPath, *minDiam)
	if err != nil {
		return fmt.Errorf("parse target: %w", err)
	}
	source, err := stem.ParseStemMapFile(*sourcePath, *minDiam)
	if err != nil {
		return fmt.Errorf("parse source: %w", err)
	}

	log.Printf("loaded %d target stems, %d source stems", len(target.Stems), len(source.Stems))

	result, err := stem.Register(target, source, cfg)
	if err != nil {
		if errors.Is(err, stem.ErrInsufficientData) {
			return fmt.Errorf("registration failed: %w", err)
		}
		if errors.Is(err, stem.ErrNoCandidatePairs) {
			log.Printf("no correspondence found: %v", err)
		} else {
			return err
		}
	}

	reportResult(result)

	if *cachePath != "" {
		if err := updateCache(*cachePath, result); err != nil {
			log.Printf("warning: could not update cache: %v", err)
		}
	}

	if *renderPath != "" {
		renderer := stem.NewCompositeRenderer(target, source, result)
		if err := renderer.RenderPNG(*renderPath); err != nil {
			return fmt.Errorf("render png: %w", err)
		}
		log.Printf("wrote raster render to %s", *renderPath)
	}

	if *vectorFormatOut != "" {
		vr := stem.NewVectorRenderer(target, source, result)
		if err := vr.RenderToSVGFile(*vectorFormatOut); err != nil {
			return fmt.Errorf("render svg: %w", err)
		}
		log.Printf("wrote vector render to %s", *vectorFormatOut)
	}

	if *geojsonPath != "" {
		aligned := source.Clone()
		aligned.ApplyTransform(result.Transform)
		data, err := stem.WriteStemMapGeoJSON(aligned)
		if err != nil {
			return fmt.Errorf("build geojson: %w", err)
		}
		if err := os.WriteFile(*geojsonPath, data, 0o644); err != nil {
			return fmt.Errorf("write geojson: %w", err)
		}
		log.Printf("wrote geojson to %s", *geojsonPath)
	}

	return nil
}

func reportResult(r stem.Result) {
	fmt.Println("====== Best transform ======")
	for _, row := range r.Transform {
		fmt.Printf("%10.6f %10.6f %10.6f %10.6f\n", row[0], row[1], row[2], row[3])
	}
	fmt.Printf("MSE: %g\n", r.MSE)
	fmt.Printf("Number of used stems: %d\n", len(r.TargetUsed))
}

func updateCache(path string, r stem.Result) error {
	cache, err := stem.LoadCache(path)
	if err != nil {
		return err
	}
	key, err := stem.PairKey(*targetPath, *sourcePath)
	if err != nil {
		return err
	}
	cache.Entries[key] = stem.CachedTransform{
		Transform:  r.Transform,
		MSE:        r.MSE,
		ConsensusN: len(r.TargetUsed),
	}
	return cache.Save(path)
}

func nonZero(v float64) *float64 {
	if v == 0 {
		return nil
	}
	return &v
}

func nonZeroInt(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}
