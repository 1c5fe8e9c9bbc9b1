package main

import (
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/apitests/reqres-contract-tests/framework"
	"github.com/apitests/reqres-contract-tests/servicedef"
)

type commandParams struct {
	serviceURL   string
	resourcesDir string
	headers      headerList
	reportDir    string
	filters      framework.RegexFilters
	debug        bool
	debugAll     bool
}

func (c *commandParams) Read(args []string) bool {
	fs := flag.NewFlagSet("", flag.ContinueOnError)
	fs.StringVar(&c.serviceURL, "url", servicedef.DefaultBaseURL, "base URL of the API under test")
	fs.StringVar(&c.resourcesDir, "resources", "resources",
		"directory containing schemas/ and images/ (images/7.jpeg is not shipped, see images/README.md)")
	fs.Var(&c.headers, "header", `header to send with every request, as "Name: value" (may be repeated)`)
	fs.StringVar(&c.reportDir, "report-dir", "", "directory to write request and response attachments to")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")

	if err := fs.Parse(args[1:]); err != nil {
		return false
	}
	if u, err := url.Parse(c.serviceURL); err != nil || u.Scheme == "" || u.Host == "" {
		fmt.Fprintf(os.Stderr, "-url must be an absolute URL, got %q\n", c.serviceURL)
		fs.Usage()
		return false
	}
	if info, err := os.Stat(c.resourcesDir); err != nil || !info.IsDir() {
		fmt.Fprintf(os.Stderr, "-resources directory %q not found\n", c.resourcesDir)
		fs.Usage()
		return false
	}
	return true
}

// headerList is a flag.Value that accumulates "Name: value" headers.
type headerList struct {
	header http.Header
}

func (h headerList) String() string {
	var ss []string
	for name, values := range h.header {
		for _, v := range values {
			ss = append(ss, name+": "+v)
		}
	}
	return strings.Join(ss, ", ")
}

// Set is called by the command line parser
func (h *headerList) Set(value string) error {
	parts := strings.SplitN(value, ":", 2)
	name := strings.TrimSpace(parts[0])
	if len(parts) != 2 || name == "" {
		return fmt.Errorf(`header must be in the form "Name: value", got %q`, value)
	}
	if h.header == nil {
		h.header = make(http.Header)
	}
	h.header.Add(name, strings.TrimSpace(parts[1]))
	return nil
}

func (h headerList) Header() http.Header {
	return h.header
}
