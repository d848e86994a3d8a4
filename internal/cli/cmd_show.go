package cli

import (
	"io"

	"bumpv/internal/config"
	"bumpv/internal/version"

	flag "github.com/spf13/pflag"
)

const showHelp = `  show                   Print the current version and its parts
    --bump <part>          Also print the version the bump would produce
    --current-version      Version to inspect [default: config current_version]`

func cmdShow(o *IO, cfg config.Config, args []string, environ []string) error {
	if hasHelpFlag(args) {
		o.Println("Usage: bumpv show [options]")
		o.Println()
		o.Println(showHelp)

		return nil
	}

	flagSet := flag.NewFlagSet("show", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	bumpPart := flagSet.String("bump", "", "Part to bump for the preview")
	currentVersion := flagSet.String("current-version", "", "Version to inspect")

	if err := flagSet.Parse(args); err != nil {
		return err
	}

	raw := *currentVersion
	if raw == "" {
		raw = cfg.CurrentVersion
	}

	if raw == "" {
		return errCurrentVersionRequired
	}

	bumper, err := newBumper(cfg, bumpOptions{parse: cfg.Parse, serialize: cfg.Serialize}, environ)
	if err != nil {
		return err
	}

	current, err := bumper.Schema.Parse(raw)
	if err != nil {
		return err
	}

	currentSerialized, err := version.Serialize(current, cfg.Serialize, bumper.Context(current))
	if err != nil {
		return err
	}

	for _, name := range current.Names() {
		part, _ := current.Part(name)
		o.Println(name + "=" + part.Value)
	}

	o.Println("current_version=" + currentSerialized)

	if *bumpPart == "" {
		return nil
	}

	result, err := bumper.Bump(raw, *bumpPart, "")
	if err != nil {
		return err
	}

	o.Println("new_version=" + result.NewSerialized)

	return nil
}
