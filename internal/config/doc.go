// Package config provides configuration parsing for the reactive CLI.
//
// The configuration is stored in reactive.yaml in the working directory.
// This package handles loading, saving, and validating configuration.
//
// # Configuration File Structure
//
//	log:
//	  level: info
//	  format: text
//	scheduler:
//	  mode: batch
//	  maxRunsPerFlush: 1000
//	metrics:
//	  enabled: false
//	  namespace: reactive
//	debug:
//	  logEffectRuns: false
//	  logTriggers: false
//	  logTracks: false
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Scheduler:", cfg.Scheduler.Mode)
package config
