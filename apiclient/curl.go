package apiclient

import (
	"net/http"
	"sort"
	"strings"

	"github.com/alessio/shellescape"
)

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}

// ToCurl returns a shell command that would repeat the request. Headers are listed in sorted
// order so the output is stable. The body is passed separately because the request's own
// body reader may already have been consumed.
func ToCurl(req *http.Request, body []byte) string {
	var cmd commandBuilder
	cmd.add("curl", "-X", req.Method)

	names := make([]string, 0, len(req.Header))
	for name := range req.Header {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, value := range req.Header[name] {
			cmd.add("-H", name+": "+value)
		}
	}

	if len(body) > 0 {
		cmd.add("-d", string(body))
	}
	cmd.add(req.URL.String())
	return cmd.String()
}
