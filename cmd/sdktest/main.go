// sdktest runs the Connect SDK scenario suite against a Connect API
// endpoint, or serves the in-memory Connect twin.
//
// Usage:
//
//	sdktest                         Run every scenario
//	sdktest --only design,orders    Run selected scenarios
//	sdktest --format json           Print a JSON summary instead of text
//	sdktest list                    List scenarios in run order
//	sdktest twin --port 8080        Serve the Connect twin
//	sdktest version                 Print the version
package main

import (
	"os"

	"github.com/mypromo/connect-sdk-test/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
