package main

import (
	"flag"
	"fmt"
	"os"
)

type AppFlags struct {
	StartURL         string
	GlobalConfigFile string
	ScraperMode      string
}

func ParseFlags() AppFlags {
	startURL := flag.String("url", "", "URL to open on startup.")
	startURLAlias := flag.String("u", "", "Alias for -url")

	globalConfigFile := flag.String("config", "", "Path to the global YAML/JSON configuration file. If not set, defaults are used.")
	globalConfigFileAlias := flag.String("c", "", "Alias for -config")

	scraperMode := flag.String("scraper", "", "Scraper mode: script or static (overrides config file if set)")
	scraperModeAlias := flag.String("s", "", "Alias for -scraper")

	flag.Parse()

	flags := AppFlags{}

	if *startURL != "" {
		flags.StartURL = *startURL
	} else if *startURLAlias != "" {
		flags.StartURL = *startURLAlias
	}

	if *globalConfigFile != "" {
		flags.GlobalConfigFile = *globalConfigFile
	} else if *globalConfigFileAlias != "" {
		flags.GlobalConfigFile = *globalConfigFileAlias
	}

	if *scraperMode != "" {
		flags.ScraperMode = *scraperMode
	} else if *scraperModeAlias != "" {
		flags.ScraperMode = *scraperModeAlias
	}

	if flags.StartURL == "" {
		fmt.Fprintln(os.Stderr, "[FATAL] --url argument is required")
		os.Exit(1)
	}

	return flags
}
