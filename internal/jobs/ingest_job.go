package jobs

import (
	"context"
	"log"
	"time"

	"ticket-aggregator/internal/scrape"
	"ticket-aggregator/internal/services"
)

// IngestJob periodically re-crawls every configured search query across all
// registered marketplace sources. Re-running the same query is safe: the
// ingest pipeline is idempotent, so an unchanged marketplace page produces
// no writes.
type IngestJob struct {
	service *services.IngestService
	sources []scrape.Source
	queries []string
}

func NewIngestJob(service *services.IngestService, sources []scrape.Source, queries []string) *IngestJob {
	return &IngestJob{
		service: service,
		sources: sources,
		queries: queries,
	}
}

// Start begins the periodic crawl job
func (j *IngestJob) Start(interval time.Duration) {
	go func() {
		// Run immediately on start
		ctx := context.Background()
		j.runAll(ctx)

		// Then run periodically
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			j.runAll(ctx)
		}
	}()
}

func (j *IngestJob) runAll(ctx context.Context) {
	if len(j.sources) == 0 || len(j.queries) == 0 {
		log.Println("Ingest job idle: no sources or queries configured")
		return
	}

	for _, query := range j.queries {
		result, err := j.service.RunSession(ctx, j.sources, query)
		if err != nil {
			log.Printf("Ingest session for %q failed: %v", query, err)
			continue
		}
		log.Printf("Ingest %q: %d matched, %d created, %d skipped, %d tickets in, %d tickets retired",
			query, result.Matched, result.Created, result.Skipped,
			result.TicketsInserted, result.TicketsRetired)
	}
}
