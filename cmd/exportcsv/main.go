package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"course-catalog/internal/catalog"
	"course-catalog/internal/config"
	"course-catalog/internal/export"
	"course-catalog/internal/sftpclient"
)

func main() {
	var (
		outPath    = flag.String("out", "CATALOG_SUMMARY.csv", "output csv path")
		masterPath = flag.String("master", "", "master catalog path (overrides MASTER_FILE)")
		uploadSFTP = flag.Bool("sftp", false, "upload the generated CSV via SFTP")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	cfg := config.Load()

	master := cfg.MasterFile
	if *masterPath != "" {
		master = *masterPath
	}

	if dir := filepath.Dir(*outPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatal(err)
		}
	}

	cat, err := catalog.Load(master)
	if err != nil {
		log.Fatalf("load master catalog: %v", err)
	}

	if err := export.WriteCatalogCSVFile(*outPath, cat.Courses()); err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote %d courses to %s", cat.Len(), *outPath)

	if *uploadSFTP {
		remoteName := filepath.Base(*outPath)

		upCfg := sftpclient.Config{
			Host:                  cfg.SFTPHost,
			Port:                  cfg.SFTPPort,
			User:                  cfg.SFTPUser,
			Pass:                  cfg.SFTPPass,
			RemoteDir:             cfg.SFTPDir,
			InsecureIgnoreHostKey: cfg.SFTPInsecureIgnoreHostKey,
		}

		upCtx, upCancel := context.WithTimeout(ctx, 2*time.Minute)
		defer upCancel()

		if err := sftpclient.UploadFile(upCtx, upCfg, *outPath, remoteName); err != nil {
			log.Fatalf("sftp upload error: %v", err)
		}
		log.Printf("uploaded to sftp://%s:%d%s/%s", upCfg.Host, upCfg.Port, upCfg.RemoteDir, remoteName)
	}
}
