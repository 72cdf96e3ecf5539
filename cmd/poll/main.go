package main

import (
	"context"
	"flag"
	"log"
	"path/filepath"
	"time"

	"course-catalog/internal/catalog"
	"course-catalog/internal/concurrency"
	"course-catalog/internal/config"
	"course-catalog/internal/filter"
	"course-catalog/internal/httpx"
	"course-catalog/internal/jsonval"
	"course-catalog/internal/providers/contentapi"
	"course-catalog/internal/sftpclient"
)

func main() {
	var (
		masterPath = flag.String("master", "", "master catalog path (overrides MASTER_FILE)")
		uploadSFTP = flag.Bool("sftp", false, "upload the master catalog via SFTP after the run")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 8*time.Hour)
	defer cancel()

	cfg := config.Load()
	if cfg.BaseURL == "" {
		log.Fatal("missing env var: BASE_URL")
	}
	if len(cfg.Keywords) == 0 {
		log.Fatal("missing env var: KEYWORDS")
	}

	master := cfg.MasterFile
	if *masterPath != "" {
		master = *masterPath
	}

	retry := httpx.DefaultRetryConfig()
	retry.MaxAttempts = cfg.MaxRetries
	retry.BaseDelay = cfg.BackoffBase
	retry.MaxDelay = cfg.BackoffCap
	retry.PreAttemptJitter = cfg.Jitter

	client := contentapi.New(cfg.BaseURL, contentapi.Headers{
		Referer:   cfg.Referer,
		Origin:    cfg.Origin,
		UserAgent: cfg.UserAgent,
	}, cfg.RequestTimeout, retry)

	batches := client.Batches(ctx)
	if batches.Len() == 0 {
		log.Fatal("no batches fetched")
	}

	matched := filter.Summaries(batches, filter.Compile(cfg.Keywords))
	if len(matched) == 0 {
		log.Fatal("no courses matched the configured keywords")
	}
	log.Printf("total courses matched: %d", len(matched))

	cat, err := catalog.Load(master)
	if err != nil {
		log.Fatalf("load master catalog: %v", err)
	}

	// Normalization fans out over the worker pool; each task owns its
	// course and shares only the HTTP connection pool.
	total := len(matched)
	results, _ := concurrency.ProcessParallel(ctx, matched,
		concurrency.ParallelOptions{MaxWorkers: cfg.Threads},
		func(ctx context.Context, i int, course *jsonval.Object) (*jsonval.Object, error) {
			return client.CourseDetail(ctx, course, i+1, total), nil
		})

	// Merging stays in this goroutine: upserts into the shared catalog are
	// never concurrent.
	for _, rec := range results {
		cat.Upsert(rec)
	}

	if err := cat.Save(master); err != nil {
		log.Fatalf("save master catalog: %v", err)
	}
	log.Printf("saved %d courses to %s", cat.Len(), master)

	if *uploadSFTP {
		upCtx, upCancel := context.WithTimeout(ctx, 5*time.Minute)
		defer upCancel()

		upCfg := sftpclient.Config{
			Host:                  cfg.SFTPHost,
			Port:                  cfg.SFTPPort,
			User:                  cfg.SFTPUser,
			Pass:                  cfg.SFTPPass,
			RemoteDir:             cfg.SFTPDir,
			InsecureIgnoreHostKey: cfg.SFTPInsecureIgnoreHostKey,
		}
		remoteName := filepath.Base(master)
		if err := sftpclient.UploadFile(upCtx, upCfg, master, remoteName); err != nil {
			log.Fatalf("sftp upload error: %v", err)
		}
		log.Printf("uploaded to sftp://%s:%d%s/%s", upCfg.Host, upCfg.Port, upCfg.RemoteDir, remoteName)
	}
}
