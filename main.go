package main

import (
	"fmt"
	"log"
	"os"

	"github.com/apitests/reqres-contract-tests/apiclient"
	"github.com/apitests/reqres-contract-tests/framework"
	"github.com/apitests/reqres-contract-tests/reqrestests"
)

func main() {
	var params commandParams
	if !params.Read(os.Args) {
		os.Exit(1)
	}

	mainDebugLogger := framework.NullLogger()
	if params.debugAll {
		mainDebugLogger = log.New(os.Stdout, "", log.LstdFlags)
	}

	var sink framework.ReportSink
	if params.reportDir != "" {
		dirSink, err := framework.NewDirReportSink(params.reportDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Cannot use report directory: %s\n", err)
			os.Exit(1)
		}
		sink = dirSink
		mainDebugLogger.Printf("Writing attachments to %s", params.reportDir)
	}

	env := &reqrestests.Environment{
		Client:       apiclient.NewClient(params.serviceURL, params.headers.Header()),
		ResourcesDir: params.resourcesDir,
	}
	mainDebugLogger.Printf("Testing %s with resources from %s", params.serviceURL, params.resourcesDir)

	fmt.Println()
	framework.PrintFilterDescription(params.filters)

	fmt.Println("Running test suite")

	testLogger := framework.ConsoleTestLogger{
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}

	results := reqrestests.RunTestSuite(env, params.filters.AsFilter, testLogger, sink)

	fmt.Println()
	framework.PrintResults(results)
	if !results.OK() {
		os.Exit(1)
	}
}
