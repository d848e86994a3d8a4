package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"bumpv/internal/config"
	"bumpv/internal/patch"
	"bumpv/internal/vcs"
	"bumpv/internal/version"

	flag "github.com/spf13/pflag"
)

var (
	errPartRequired = errors.New(
		"part name is required (e.g. bumpv bump patch)")
	errCurrentVersionRequired = errors.New(
		"current version is not configured (set current_version or pass --current-version)")
)

const bumpHelp = `  bump <part>            Bump the named part and rewrite configured files
    -n, --dry-run          Validate and report without writing anything
    --current-version      Version to bump [default: config current_version]
    --new-version          Use this exact new version instead of computing one
    --commit/--no-commit   Create a git commit of the touched files
    --tag/--no-tag         Tag the commit with the rendered tag name
    --allow-dirty          Skip the dirty working tree check
    --list                 Print current_version=/new_version= lines
    -v, --verbose          Report each file edit`

type bumpOptions struct {
	currentVersion string
	newVersion     string
	parse          string
	serialize      []string
	search         string
	replace        string
	message        string
	tagName        string
	tagMessage     string
	dryRun         bool
	allowDirty     bool
	commit         bool
	tag            bool
	signTags       bool
	list           bool
	verbose        bool
	part           string
}

func cmdBump(o *IO, cfg config.Config, cfgSource, workDir string, args []string, environ []string) error {
	if hasHelpFlag(args) {
		o.Println("Usage: bumpv bump <part> [options]")
		o.Println()
		o.Println(bumpHelp)

		return nil
	}

	opts, err := parseBumpFlags(cfg, args)
	if err != nil {
		return err
	}

	raw := opts.currentVersion
	if raw == "" {
		raw = cfg.CurrentVersion
	}

	if raw == "" {
		return errCurrentVersionRequired
	}

	bumper, err := newBumper(cfg, opts, environ)
	if err != nil {
		return err
	}

	result, err := bumper.Bump(raw, opts.part, opts.newVersion)
	if err != nil {
		return err
	}

	oldCtx, newCtx := renderContexts(bumper, result)

	rules, err := fileRules(cfg, opts, workDir, oldCtx, newCtx)
	if err != nil {
		return err
	}

	rules = appendConfigWriteBack(o, rules, cfg, cfgSource, result)

	var plan *patch.Plan

	if len(rules) > 0 {
		plan, err = patch.Compute(rules)
		if err != nil {
			return err
		}
	}

	if opts.list {
		o.Println("current_version=" + result.CurrentSerialized)
		o.Println("new_version=" + result.NewSerialized)
	}

	reportEdits(o, plan, opts)

	if opts.dryRun {
		return nil
	}

	return applyAndRecord(cfg, opts, workDir, cfgSource, plan, newCtx)
}

func parseBumpFlags(cfg config.Config, args []string) (bumpOptions, error) {
	flagSet := flag.NewFlagSet("bump", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	var opts bumpOptions

	flagSet.StringVar(&opts.currentVersion, "current-version", "", "Version to bump")
	flagSet.StringVar(&opts.newVersion, "new-version", "", "Explicit new version")
	flagSet.StringVar(&opts.parse, "parse", cfg.Parse, "Pattern with named groups")
	flagSet.StringArrayVar(&opts.serialize, "serialize", nil, "Candidate format (repeatable)")
	flagSet.StringVar(&opts.search, "search", cfg.Search, "Default search template")
	flagSet.StringVar(&opts.replace, "replace", cfg.Replace, "Default replace template")
	flagSet.StringVarP(&opts.message, "message", "m", cfg.Message, "Commit message template")
	flagSet.StringVar(&opts.tagName, "tag-name", cfg.TagName, "Tag name template")
	flagSet.StringVar(&opts.tagMessage, "tag-message", cfg.TagMessage, "Tag message template")
	flagSet.BoolVarP(&opts.dryRun, "dry-run", "n", false, "Do not write anything")
	flagSet.BoolVar(&opts.allowDirty, "allow-dirty", cfg.AllowDirty, "Skip dirty tree check")
	flagSet.BoolVarP(&opts.verbose, "verbose", "v", false, "Report each file edit")
	flagSet.BoolVar(&opts.list, "list", false, "Machine-readable output")
	flagSet.BoolVar(&opts.signTags, "sign-tags", cfg.SignTags, "Sign the created tag")

	commit := flagSet.Bool("commit", cfg.Commit, "Create a git commit")
	noCommit := flagSet.Bool("no-commit", false, "Do not create a git commit")
	tag := flagSet.Bool("tag", cfg.Tag, "Create a git tag")
	noTag := flagSet.Bool("no-tag", false, "Do not create a git tag")

	if err := flagSet.Parse(args); err != nil {
		return bumpOptions{}, err
	}

	opts.commit = *commit && !*noCommit
	opts.tag = *tag && !*noTag

	if len(opts.serialize) == 0 {
		opts.serialize = cfg.Serialize
	}

	opts.part = flagSet.Arg(0)
	if opts.part == "" {
		return bumpOptions{}, errPartRequired
	}

	return opts, nil
}

func newBumper(cfg config.Config, opts bumpOptions, environ []string) (*version.Bumper, error) {
	specs := make([]version.PartSpec, 0, len(cfg.Parts))

	for name, part := range cfg.Parts {
		specs = append(specs, version.PartSpec{
			Name:          name,
			Values:        part.Values,
			FirstValue:    part.FirstValue,
			OptionalValue: part.OptionalValue,
			ResetValue:    part.ResetValue,
			Independent:   part.Independent,
		})
	}

	schema, err := version.CompileSchema(opts.parse, specs)
	if err != nil {
		return nil, err
	}

	return &version.Bumper{
		Schema:     schema,
		Candidates: opts.serialize,
		Environ:    environ,
	}, nil
}

// renderContexts builds the old- and new-version render contexts, each
// with both version strings bound so search, replace, commit message and
// tag templates can reference either.
func renderContexts(bumper *version.Bumper, result *version.Result) (*version.Context, *version.Context) {
	oldCtx := bumper.Context(result.Current)
	newCtx := bumper.Context(result.New)

	for _, ctx := range []*version.Context{oldCtx, newCtx} {
		ctx.Bind("current_version", result.CurrentSerialized)
		ctx.Bind("new_version", result.NewSerialized)
	}

	return oldCtx, newCtx
}

// fileRules renders each configured file rule: search against the old
// context, replace against the new one.
func fileRules(
	cfg config.Config, opts bumpOptions, workDir string, oldCtx, newCtx *version.Context,
) ([]patch.Rule, error) {
	rules := make([]patch.Rule, 0, len(cfg.Files))

	for _, fileRule := range cfg.Files {
		searchTmpl := fileRule.Search
		if searchTmpl == "" {
			searchTmpl = opts.search
		}

		replaceTmpl := fileRule.Replace
		if replaceTmpl == "" {
			replaceTmpl = opts.replace
		}

		search, err := version.Render(searchTmpl, oldCtx)
		if err != nil {
			return nil, fmt.Errorf("file %s: %w", fileRule.Path, err)
		}

		replace, err := version.Render(replaceTmpl, newCtx)
		if err != nil {
			return nil, fmt.Errorf("file %s: %w", fileRule.Path, err)
		}

		path := fileRule.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(workDir, path)
		}

		rules = append(rules, patch.Rule{Path: path, Search: search, Replace: replace})
	}

	return rules, nil
}

// appendConfigWriteBack adds a rule rewriting the config file's
// current_version field so the next bump starts from the new version.
func appendConfigWriteBack(
	o *IO, rules []patch.Rule, cfg config.Config, cfgSource string, result *version.Result,
) []patch.Rule {
	if cfgSource == "" || cfg.CurrentVersion == "" {
		return rules
	}

	data, err := os.ReadFile(cfgSource)
	if err != nil {
		o.Warn("cannot read config file for write-back: " + err.Error())

		return rules
	}

	search := fmt.Sprintf("%q: %q", "current_version", cfg.CurrentVersion)
	replace := fmt.Sprintf("%q: %q", "current_version", result.NewSerialized)

	if !bytes.Contains(data, []byte(search)) {
		o.Warn("config file " + cfgSource + " does not contain " + search + "; current_version not updated")

		return rules
	}

	return append(rules, patch.Rule{Path: cfgSource, Search: search, Replace: replace})
}

func reportEdits(o *IO, plan *patch.Plan, opts bumpOptions) {
	if plan == nil || (!opts.verbose && !opts.dryRun) {
		return
	}

	verb := "patched"
	if opts.dryRun {
		verb = "would patch"
	}

	for _, edit := range plan.Edits() {
		noun := "occurrences"
		if edit.Occurrences == 1 {
			noun = "occurrence"
		}

		o.Printf("%s %s (%d %s of %q)\n", verb, edit.Path, edit.Occurrences, noun, edit.Search)
	}
}

func applyAndRecord(
	cfg config.Config, opts bumpOptions, workDir, cfgSource string,
	plan *patch.Plan, newCtx *version.Context,
) error {
	git := &vcs.Git{WorkDir: workDir}

	if opts.commit || opts.tag {
		if err := git.Available(); err != nil {
			return err
		}
	}

	touched := make([]string, 0, len(cfg.Files)+1)
	for _, fileRule := range cfg.Files {
		touched = append(touched, fileRule.Path)
	}

	if cfgSource != "" {
		touched = append(touched, cfgSource)
	}

	// A dirty working tree aborts the bump before anything is written,
	// whether or not a commit was requested. Outside a repo (or without
	// git installed) there is nothing to check.
	if !opts.allowDirty && git.InRepo() {
		if err := git.AssertNonDirty(touched); err != nil {
			return err
		}
	}

	if plan != nil {
		err := patch.WithLock(workDir, plan.Apply)
		if err != nil {
			return err
		}
	}

	if opts.commit {
		message, err := version.Render(opts.message, newCtx)
		if err != nil {
			return err
		}

		if err := git.Commit(touched, message); err != nil {
			return err
		}
	}

	if opts.tag {
		tagName, err := version.Render(opts.tagName, newCtx)
		if err != nil {
			return err
		}

		tagMessage, err := version.Render(opts.tagMessage, newCtx)
		if err != nil {
			return err
		}

		if err := git.Tag(tagName, tagMessage, opts.signTags); err != nil {
			return err
		}
	}

	return nil
}
