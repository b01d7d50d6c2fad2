// Command copy_store copies every keyword record, soft-deleted ones
// included, from one store backend into another, preserving order.
//
//	go run ./scripts -from csv:keywords.csv -to bolt:keywords.db
//	go run ./scripts -from csv:keywords.csv -to postgres:postgres://localhost/keywords
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/andres10976/keyword-service/internal/database"
	"github.com/andres10976/keyword-service/internal/repository"
)

func main() {
	from := flag.String("from", "csv:keywords.csv", "source store as kind:location")
	to := flag.String("to", "", "target store as kind:location (csv, bolt or postgres)")
	flag.Parse()

	if *to == "" {
		log.Fatal("-to is required")
	}

	ctx := context.Background()

	src, srcCloser, err := open(ctx, *from)
	if err != nil {
		log.Fatalf("Failed to open source: %v", err)
	}
	defer srcCloser.Close()

	dst, dstCloser, err := open(ctx, *to)
	if err != nil {
		log.Fatalf("Failed to open target: %v", err)
	}
	defer dstCloser.Close()

	existing, err := dst.All(ctx)
	if err != nil {
		log.Fatalf("Failed to read target: %v", err)
	}
	if len(existing) > 0 {
		log.Fatalf("Target already holds %d records, refusing to append", len(existing))
	}

	records, err := src.All(ctx)
	if err != nil {
		log.Fatalf("Failed to read source: %v", err)
	}
	fmt.Printf("Copying %d records...\n", len(records))

	deleted := 0
	for i, kw := range records {
		if err := dst.Append(ctx, kw); err != nil {
			log.Fatalf("Failed to copy record %d (id %d): %v", i, kw.ID, err)
		}
		if kw.Deleted {
			deleted++
		}
		if (i+1)%100 == 0 {
			fmt.Printf("Copied %d/%d records...\n", i+1, len(records))
		}
	}

	fmt.Printf("Done: %d records (%d soft-deleted)\n", len(records), deleted)
}

type closeFunc func() error

func (f closeFunc) Close() error { return f() }

func open(ctx context.Context, store string) (repository.Backend, io.Closer, error) {
	kind, location, ok := strings.Cut(store, ":")
	if !ok || location == "" {
		return nil, nil, fmt.Errorf("store %q: want kind:location", store)
	}
	noop := closeFunc(func() error { return nil })

	switch kind {
	case "csv":
		return repository.NewCSVFile(location), noop, nil
	case "bolt":
		b, err := repository.OpenBolt(location)
		if err != nil {
			return nil, nil, err
		}
		return b, b, nil
	case "postgres":
		pool, err := database.Connect(location)
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repository.NewPostgres(pool), closeFunc(func() error { pool.Close(); return nil }), nil
	default:
		return nil, nil, fmt.Errorf("unknown store kind %q", kind)
	}
}
