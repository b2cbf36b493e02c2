// Command radio-buttons classifies a radio's modifier keys and publishes
// change events to MQTT.
package main

import (
	"os"
	"strings"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"

	"github.com/sweeney/radio-buttons/internal/logging"
)

// CLI is the root command line.
type CLI struct {
	Config   string `help:"Configuration file (.json, .yaml, .yml or .toml)." type:"path" env:"RADIO_BUTTONS_CONFIG"`
	LogLevel string `help:"Log level (error, warn, info, debug)." default:"info" env:"RADIO_BUTTONS_LOG_LEVEL"`

	Run     RunCmd     `cmd:"" default:"withargs" help:"Run the button daemon."`
	Sample  SampleCmd  `cmd:"" help:"Sample and classify the buttons, printing each result."`
	Layouts LayoutsCmd `cmd:"" help:"List the built-in platform layouts."`
}

func main() {
	userCfg := findUserConfig(os.Args[1:])
	jsonPaths, yamlPaths, tomlPaths := configCandidatePaths(userCfg)

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("radio-buttons"),
		kong.Description("Modifier button classifier for DMR radio front panels"),
		kong.UsageOnError(),
		// Flags and env override configuration file values.
		kong.Configuration(kong.JSON, jsonPaths...),
		kong.Configuration(kongyaml.Loader, yamlPaths...),
		kong.Configuration(kongtoml.Loader, tomlPaths...),
	)

	logger, err := logging.New(cli.LogLevel, os.Stderr)
	if err != nil {
		_, _ = os.Stderr.WriteString("radio-buttons: " + err.Error() + "\n")
		os.Exit(2)
	}
	ctx.Bind(logger)

	ctx.FatalIfErrorf(ctx.Run())
}

// findUserConfig pre-scans args for --config so the file can be handed to
// the loader matching its extension before kong parses anything.
func findUserConfig(args []string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if strings.HasPrefix(a, "--config=") {
			return a[len("--config="):]
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return os.Getenv("RADIO_BUTTONS_CONFIG")
}
