package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"clusterlab/adapters/dataset"
	"clusterlab/adapters/embedding"
	"clusterlab/app"
	"clusterlab/domain/analysis"
	"clusterlab/internal/config"
)

func main() {
	var (
		inputPath   = flag.String("file", "", "input .xlsx or .csv file with identifier/text/label columns")
		outputPath  = flag.String("out", "", "write the JSON result here instead of stdout")
		numDims     = flag.Int("dims", 20, "number of top-ranked dimensions to cluster on")
		numClusters = flag.Int("k", 3, "number of clusters")
		seed        = flag.Int64("seed", 0, "k-means seed; 0 derives one from the clock")
	)
	flag.Parse()

	if *inputPath == "" {
		log.Fatal("missing required -file flag")
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	records, err := dataset.NewDataReader(*inputPath).ReadRecords()
	if err != nil {
		log.Fatalf("Failed to load records: %v", err)
	}

	service := app.NewAnalysisService(embedding.NewClient(cfg.Embedding))
	result, err := service.AnalyzeTexts(context.Background(), records, analysis.Config{
		NumDimensions: *numDims,
		NumClusters:   *numClusters,
		Seed:          *seed,
	})
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	out := os.Stdout
	if *outputPath != "" {
		f, err := os.Create(*outputPath)
		if err != nil {
			log.Fatalf("Failed to create output file: %v", err)
		}
		defer f.Close()
		out = f
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		log.Fatalf("Failed to encode result: %v", err)
	}
}
