// Package pipeline orchestrates the scraping run: a hashing pool feeds a
// bounded queue of content fingerprints, and a lookup pool consumes it,
// resolving each ROM's record, appending its romlist row and ensuring its
// media assets on disk. No ordering is guaranteed between ROMs; within one
// ROM the order is fixed: hash, lookup, resolve, row, assets.
package pipeline

import (
	"context"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/chanilino/romscrape/internal/logger"
	"github.com/chanilino/romscrape/pkg/catalog"
	"github.com/chanilino/romscrape/pkg/download"
	"github.com/chanilino/romscrape/pkg/hashing"
	"github.com/chanilino/romscrape/pkg/resolve"
)

// Lookup is the subset of the metadata client the pipeline uses.
type Lookup interface {
	LookupByHash(ctx context.Context, triple hashing.Triple) (resolve.Node, error)
	LookupByFilename(ctx context.Context, baseName string, systemID int) (resolve.Node, error)
}

// Downloader is the subset of the download manager the pipeline uses.
type Downloader interface {
	Ensure(ctx context.Context, asset catalog.MediaAsset) (download.Status, error)
}

// Pipeline ties the hasher, lookup client, record resolution and download
// manager together for one run. Construct it fully before calling Run; all
// fields are read-only afterwards.
type Pipeline struct {
	Lookup  Lookup
	DL      Downloader
	Systems catalog.Systems
	Record  catalog.Options
	Writer  *RowWriter

	// HashWorkers sizes the CPU-bound hashing pool. Zero means NumCPU.
	HashWorkers int
	// LookupWorkers sizes the network pool, capped by the service's
	// per-account thread allowance. Zero means one.
	LookupWorkers int

	// FilenameFallback enables the secondary lookup by ROM filename.
	FilenameFallback bool
	// FallbackSystemID scopes filename lookups; zero or negative means no
	// system filter.
	FallbackSystemID int
}

// Summary counts the outcomes of one run.
type Summary struct {
	Hashed       int
	HashFailures int
	Identified   int
	NotFound     int
	Downloaded   int
	Skipped      int
	AssetErrors  int
}

// queueDepthPerWorker bounds the hash-results queue so hashing cannot run
// arbitrarily far ahead of the network stage.
const queueDepthPerWorker = 4

// Run processes the given ROM files to completion. It returns once both
// stages have drained: the hashing pool is joined first, the results channel
// closed, then the lookup pool joined. Cancelling ctx stops both pools.
func (p *Pipeline) Run(ctx context.Context, files []string) Summary {
	hashWorkers := p.HashWorkers
	if hashWorkers <= 0 {
		hashWorkers = runtime.NumCPU()
	}
	lookupWorkers := p.LookupWorkers
	if lookupWorkers <= 0 {
		lookupWorkers = 1
	}

	var counts struct {
		hashed, hashFailures             atomic.Int64
		identified, notFound             atomic.Int64
		downloaded, skipped, assetErrors atomic.Int64
	}

	paths := make(chan string)
	triples := make(chan hashing.Triple, lookupWorkers*queueDepthPerWorker)

	var hashWG sync.WaitGroup
	for i := 0; i < hashWorkers; i++ {
		hashWG.Add(1)
		go func() {
			defer hashWG.Done()
			for path := range paths {
				triple, err := hashing.Compute(path)
				if err != nil {
					logger.Warn("failed to hash file, skipping",
						logger.Fields{"path": path, "error": err.Error()})
					counts.hashFailures.Add(1)
					continue
				}
				counts.hashed.Add(1)
				select {
				case triples <- triple:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	var lookupWG sync.WaitGroup
	for i := 0; i < lookupWorkers; i++ {
		lookupWG.Add(1)
		go func() {
			defer lookupWG.Done()
			for triple := range triples {
				if ctx.Err() != nil {
					return
				}
				outcome := p.process(ctx, triple)
				counts.identified.Add(outcome.identified)
				counts.notFound.Add(outcome.notFound)
				counts.downloaded.Add(outcome.downloaded)
				counts.skipped.Add(outcome.skipped)
				counts.assetErrors.Add(outcome.assetErrors)
			}
		}()
	}

	// Fill the path queue, then drain stage by stage.
feed:
	for _, path := range files {
		select {
		case paths <- path:
		case <-ctx.Done():
			break feed
		}
	}
	close(paths)
	hashWG.Wait()
	close(triples)
	lookupWG.Wait()

	return Summary{
		Hashed:       int(counts.hashed.Load()),
		HashFailures: int(counts.hashFailures.Load()),
		Identified:   int(counts.identified.Load()),
		NotFound:     int(counts.notFound.Load()),
		Downloaded:   int(counts.downloaded.Load()),
		Skipped:      int(counts.skipped.Load()),
		AssetErrors:  int(counts.assetErrors.Load()),
	}
}

type outcome struct {
	identified, notFound             int64
	downloaded, skipped, assetErrors int64
}

// process runs the per-ROM state machine: hash lookup, optional filename
// fallback, record resolution, row append, then each media asset in order.
func (p *Pipeline) process(ctx context.Context, triple hashing.Triple) outcome {
	response, err := p.Lookup.LookupByHash(ctx, triple)
	if err != nil && p.FilenameFallback {
		baseName := filepath.Base(triple.SourcePath)
		logger.Debug("hash lookup missed, trying filename",
			logger.Fields{"path": triple.SourcePath})
		response, err = p.Lookup.LookupByFilename(ctx, baseName, p.FallbackSystemID)
	}
	if err != nil {
		logger.Warn("no record found, dropping ROM",
			logger.Fields{"path": triple.SourcePath})
		return outcome{notFound: 1}
	}

	record, err := catalog.BuildRecord(response, triple.SourcePath, p.Systems, p.Record)
	if err != nil {
		logger.Warn("unusable record, dropping ROM",
			logger.Fields{"path": triple.SourcePath, "error": err.Error()})
		return outcome{notFound: 1}
	}

	if err := p.Writer.Append(record.RomlistFile(), record.Row()); err != nil {
		logger.Error("failed to append romlist row",
			logger.Fields{"path": triple.SourcePath, "error": err.Error()})
		return outcome{notFound: 1}
	}

	out := outcome{identified: 1}
	logger.Info("identified ROM", logger.Fields{
		"path": triple.SourcePath, "game": record.Name, "system": record.System,
	})

	for _, asset := range record.Media {
		if ctx.Err() != nil {
			return out
		}
		status, err := p.DL.Ensure(ctx, asset)
		switch status {
		case download.StatusDownloaded:
			out.downloaded++
			logger.Debug("downloaded media asset",
				logger.Fields{"game": record.Name, "category": asset.Category})
		case download.StatusSkipped:
			out.skipped++
		case download.StatusFailed:
			out.assetErrors++
			logger.Warn("failed to fetch media asset, continuing", logger.Fields{
				"game": record.Name, "category": asset.Category, "error": err.Error(),
			})
		}
	}
	return out
}
