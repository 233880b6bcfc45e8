/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Command cpupeaks scans a host's CPU utilization history for its peak
// and alerts when the peak stayed below the configured levels: a host
// that never worked hard over the whole window is oversized.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/mfreeman451/checkmate/db"
	"github.com/mfreeman451/checkmate/pkg/check"
	"github.com/mfreeman451/checkmate/pkg/checker/cpupeaks"
)

const (
	exitArgumentError = 2
	exitInternalError = 3
)

func main() {
	warn := flag.Float64("w", 10, "WARN when the utilization peak stays at or below this percentage")
	crit := flag.Float64("c", 5, "CRIT when the utilization peak stays at or below this percentage")
	from := flag.Int64("f", 0, "start of the window as a unix timestamp (default: until minus 30 days)")
	until := flag.Int64("u", 0, "end of the window as a unix timestamp (default: now)")
	dbPath := flag.String("db", "/var/lib/checkmate/history.db", "path to the history store")
	verbose := flag.Bool("v", false, "verbose output")
	debug := flag.Bool("d", false, "debug mode: re-raise internal errors instead of reporting UNKNOWN")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [options] HOST\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(exitArgumentError)
	}

	host := flag.Arg(0)

	if *crit > *warn {
		fmt.Fprintf(os.Stderr, "crit level %v must not exceed warn level %v in floor mode\n", *crit, *warn)
		os.Exit(exitArgumentError)
	}

	untilTime := time.Now()
	if *until != 0 {
		untilTime = time.Unix(*until, 0)
	}

	fromTime := untilTime.Add(-cpupeaks.DefaultWindow)
	if *from != 0 {
		fromTime = time.Unix(*from, 0)
	}

	if !fromTime.Before(untilTime) {
		fmt.Fprintf(os.Stderr, "window start %v must be before its end %v\n", fromTime, untilTime)
		os.Exit(exitArgumentError)
	}

	if !*debug {
		// Internal errors become UNKNOWN instead of a crash; one broken
		// evaluation must not look like a monitoring outage.
		defer func() {
			if r := recover(); r != nil {
				fmt.Printf("UNKNOWN - %v\n", r)
				os.Exit(exitInternalError)
			}
		}()
	}

	if *verbose {
		log.Printf("Scanning %s from %v until %v (warn/crit at or below %v/%v)",
			host, fromTime, untilTime, *warn, *crit)
	}

	os.Exit(run(host, *dbPath, cpupeaks.Config{
		Warn:  *warn,
		Crit:  *crit,
		From:  fromTime,
		Until: untilTime,
	}, *debug))
}

func run(host, dbPath string, cfg cpupeaks.Config, debug bool) int {
	database, err := db.New(dbPath)
	if err != nil {
		if debug {
			panic(err)
		}

		fmt.Printf("UNKNOWN - cannot open history store: %v\n", err)

		return check.StateUnknown.ExitCode()
	}

	defer func() {
		if err := database.Close(); err != nil {
			log.Printf("Error closing history store: %v", err)
		}
	}()

	res := cpupeaks.New(database).Run(context.Background(), host, cfg)
	fmt.Println(res.Line())

	return res.State.ExitCode()
}
