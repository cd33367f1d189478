package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/wildstyl3r/miecoat/internal/config"
	"github.com/wildstyl3r/miecoat/internal/mie"
	"github.com/wildstyl3r/miecoat/internal/model"
	"github.com/wildstyl3r/miecoat/internal/utils"
)

func main() {
	df := model.NewDataFlags(flag.CommandLine)
	var configFileNamePointer = flag.String("input", "particles", "particle configuration in toml format")
	var threadsPointer = flag.Int("threads", runtime.NumCPU(), "worker goroutines per radius sweep, overrides Threads")
	var verbosePointer = flag.Bool("v", false, "report every model and solver warnings")
	flag.Parse()

	startTime := time.Now()
	fmt.Printf("Current time: %s\n", startTime.UTC().Format(time.UnixDate))

	globalConfig, meta, err := config.LoadConfig(*configFileNamePointer)
	if err != nil {
		log.Fatalln(err)
	}

	if globalConfig.OutputDir != "" && globalConfig.OutputDir != "." {
		if err := os.MkdirAll(globalConfig.OutputDir, 0750); err != nil {
			log.Fatalln(err)
		}
	}
	df.SetOutputPath(globalConfig.OutputDir)

	threads := *threadsPointer
	threadsSet := false
	flag.Visit(func(f *flag.Flag) { threadsSet = threadsSet || f.Name == "threads" })
	if !threadsSet && globalConfig.Threads > 0 {
		threads = globalConfig.Threads
	}

	var logger *log.Logger
	if *verbosePointer {
		logger = log.New(os.Stderr, "mie: ", log.LstdFlags)
	}
	solver := mie.NewSolver(
		mie.WithAngleCapacity(globalConfig.AngleCapacity),
		mie.WithOrderCapacity(globalConfig.OrderCapacity),
		mie.WithLogger(logger),
	)

	var chanWg sync.WaitGroup
	dataflow := make(chan *model.Model)
	rejected := 0
	for modelName, parameters := range globalConfig.Models {
		if err := parameters.CheckAndUnify(modelName, &globalConfig, &meta); err != nil {
			fmt.Fprintln(os.Stderr, err)
			rejected++
			continue
		}
		parameters.SetVerbosity(*verbosePointer)
		parameters.SetThreads(threads)
		m, err := model.NewModel(modelName, parameters)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			rejected++
			continue
		}
		chanWg.Add(1)
		//worker
		go func() {
			defer chanWg.Done()
			m.Run(solver)
			dataflow <- &m
		}()
	}

	// chan killer
	go func() {
		chanWg.Wait()
		close(dataflow)
	}()

	total := len(globalConfig.Models) - rejected
	counter := 0
	var summary utils.CSV
	fmt.Printf("\rDone:[0/%d]", total)
	for m := range dataflow {
		counter++
		fmt.Printf("\rDone:[%d/%d]", counter, total)
		de := model.NewDataExtractor(m)
		if err := de.Save(df); err != nil {
			fmt.Fprintln(os.Stderr, "\n"+m.Name+":", err)
		}
		summary = append(summary, de.SummaryRow())
	}
	fmt.Println()

	if len(summary) > 0 {
		if err := utils.WriteAsCSV(summary, globalConfig.OutputDir, ".", "efficiencies", model.SummaryColumns); err != nil {
			fmt.Fprintln(os.Stderr, "unable to save efficiencies:", err)
		}
	}
	fmt.Printf("Elapsed time: %v\n", time.Since(startTime))
	if rejected > 0 {
		os.Exit(1)
	}
}
