package reqrestests

import (
	"github.com/apitests/reqres-contract-tests/framework"
)

func RunTestSuite(
	env *Environment,
	filter framework.Filter,
	testLogger framework.TestLogger,
	sink framework.ReportSink,
) framework.Results {
	return framework.Run(filter, testLogger, sink, func(c *framework.Context) {
		t := &T{context: c, env: env}

		t.Group("login", DoLoginTests)
		t.Group("users", DoUserTests)
	})
}
