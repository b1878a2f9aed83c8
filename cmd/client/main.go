// Package main provides the jabbercracky-client command line interface: list and
// download hash lists, and submit cracked hashes once or on a fixed schedule.
package main

import (
	"cmp"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/jabbercracky/jabbercracky-client/internal/client/api"
	"github.com/jabbercracky/jabbercracky-client/internal/client/autosubmit"
	"github.com/jabbercracky/jabbercracky-client/internal/client/report"
	"github.com/jabbercracky/jabbercracky-client/internal/client/storage"
	"github.com/jabbercracky/jabbercracky-client/internal/config"
	"github.com/jabbercracky/jabbercracky-client/internal/logger"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], nil, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// app carries what every network command needs once configuration succeeded.
type app struct {
	opts   *config.ClientOptions
	client *api.Client
	log    *zap.Logger
	stdout io.Writer
	stderr io.Writer
}

// run dispatches args and returns the process exit code.
// environ replaces the process environment when non-nil.
func run(ctx context.Context, args []string, environ map[string]string, stdout, stderr io.Writer) int {
	listCmd := flag.NewFlagSet("list", flag.ContinueOnError)
	listCmd.SetOutput(stdout)
	listCmd.Usage = func() {
		fmt.Fprintln(stdout, "[*] Usage: list")
		fmt.Fprintln(stdout, "  Lists all available hash lists.")
		fmt.Fprintln(stdout, "Example:")
		fmt.Fprintln(stdout, "  $ jabbercracky-client list")
	}

	downloadCmd := flag.NewFlagSet("download", flag.ContinueOnError)
	downloadCmd.SetOutput(stdout)
	downloadCmd.Usage = func() {
		fmt.Fprintln(stdout, "[*] Usage: download -id <Hash List ID>")
		fmt.Fprintln(stdout, "  Downloads the hash list specified by the given ID to <ID>.left.")
		fmt.Fprintln(stdout, "Example:")
		fmt.Fprintln(stdout, "  $ jabbercracky-client download -id 12345")
	}
	downloadID := downloadCmd.String("id", "", "Hash List ID")

	submitCmd := flag.NewFlagSet("submit", flag.ContinueOnError)
	submitCmd.SetOutput(stdout)
	submitCmd.Usage = func() {
		fmt.Fprintln(stdout, "[*] Usage: submit -id <Hash List ID> -file <File Path>")
		fmt.Fprintln(stdout, "  Submits game data from the specified file to the hash list with the given ID.")
		fmt.Fprintln(stdout, "Example:")
		fmt.Fprintln(stdout, "  $ jabbercracky-client submit -id 12345 -file path/to/file.txt")
	}
	submitID := submitCmd.String("id", "", "Hash List ID")
	submitFile := submitCmd.String("file", "", "File path")

	autoSubmitCmd := flag.NewFlagSet("auto-submit", flag.ContinueOnError)
	autoSubmitCmd.SetOutput(stdout)
	autoSubmitCmd.Usage = func() {
		fmt.Fprintln(stdout, "[*] Usage: auto-submit -id <Hash List ID> -file <File Path>")
		fmt.Fprintln(stdout, "  Automatically submits game data from the specified file to the hash list with the given ID every 5 minutes.")
		fmt.Fprintln(stdout, "  Lines already forwarded are recorded in <ID>.submitted.")
		fmt.Fprintln(stdout, "Example:")
		fmt.Fprintln(stdout, "  $ jabbercracky-client auto-submit -id 12345 -file path/to/file.txt")
	}
	autoSubmitID := autoSubmitCmd.String("id", "", "Hash List ID")
	autoSubmitFile := autoSubmitCmd.String("file", "", "File path")

	usage := func() int {
		fmt.Fprintln(stdout, "[*] Available commands:")
		fmt.Fprintln(stdout, "[*] The client will look for credentials in the environment variable JABBERCRACKY_API_KEY.")
		fmt.Fprintln(stdout)
		for _, fs := range []*flag.FlagSet{listCmd, downloadCmd, submitCmd, autoSubmitCmd} {
			fs.Usage()
			fmt.Fprintln(stdout)
		}
		return 1
	}

	if len(args) < 1 {
		return usage()
	}

	switch args[0] {
	case "list":
		if err := listCmd.Parse(args[1:]); err != nil {
			return 1
		}
		return withApp(environ, stdout, stderr, func(a *app) int {
			return a.list(ctx)
		})
	case "download":
		if err := downloadCmd.Parse(args[1:]); err != nil {
			return 1
		}
		if !validID(*downloadID) {
			fmt.Fprintln(stdout, "[!] Please provide a hash list ID using -id flag.")
			downloadCmd.Usage()
			return 1
		}
		return withApp(environ, stdout, stderr, func(a *app) int {
			return a.download(ctx, *downloadID)
		})
	case "submit":
		if err := submitCmd.Parse(args[1:]); err != nil {
			return 1
		}
		if !validID(*submitID) || *submitFile == "" {
			fmt.Fprintln(stdout, "[!] Please provide a hash list ID using -id flag and a file path using -file flag.")
			submitCmd.Usage()
			return 1
		}
		return withApp(environ, stdout, stderr, func(a *app) int {
			return a.submit(ctx, *submitID, *submitFile)
		})
	case "auto-submit":
		if err := autoSubmitCmd.Parse(args[1:]); err != nil {
			return 1
		}
		if !validID(*autoSubmitID) || *autoSubmitFile == "" {
			fmt.Fprintln(stdout, "[!] Please provide a hash list ID using -id flag and a file path using -file flag.")
			autoSubmitCmd.Usage()
			return 1
		}
		return withApp(environ, stdout, stderr, func(a *app) int {
			return a.autoSubmit(ctx, *autoSubmitID, *autoSubmitFile)
		})
	case "version":
		fmt.Fprintf(stdout, "jabbercracky-client\nVersion: %s\nBuild Date: %s\n", cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))
		return 0
	default:
		return usage()
	}
}

// validID rejects identifiers that would escape the state directory.
func validID(id string) bool {
	return id != "" && id != "." && id != ".." && !strings.ContainsAny(id, `/\`)
}

// withApp resolves configuration and the bearer token, then runs fn.
// Nothing touches the network before the token is known.
func withApp(environ map[string]string, stdout, stderr io.Writer, fn func(*app) int) int {
	opts, err := config.ParseClient(environ)
	if err != nil {
		fmt.Fprintln(stderr, "[!] Error reading configuration:", err)
		return 1
	}
	token, err := opts.Token()
	if err != nil {
		fmt.Fprintln(stderr, "[!] Error getting API token:", err)
		return 1
	}

	log, err := logger.NewConsole(stderr, opts.LogLevel)
	if err != nil {
		fmt.Fprintln(stderr, "[!] Error creating logger:", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	httpClient, err := api.NewHTTPClient(opts.CAFile, opts.Timeout)
	if err != nil {
		fmt.Fprintln(stderr, "[!] Error creating HTTP client:", err)
		return 1
	}

	return fn(&app{
		opts:   opts,
		client: api.NewClient(httpClient, opts.BaseURL, token, log),
		log:    log,
		stdout: stdout,
		stderr: stderr,
	})
}

func (a *app) list(ctx context.Context) int {
	lists, err := a.client.ListHashLists(ctx)
	if err != nil {
		fmt.Fprintln(a.stderr, "[!] Error fetching hash lists:", err)
		return 1
	}

	fmt.Fprintln(a.stdout, "[*] Available hash lists:")
	for _, l := range lists {
		fmt.Fprintln(a.stdout, report.HashList(l))
	}
	return 0
}

func (a *app) download(ctx context.Context, id string) int {
	hashes, err := a.client.FetchHashList(ctx, id)
	if err != nil {
		fmt.Fprintln(a.stderr, "[!] Error fetching hash list:", err)
		return 1
	}

	path, n, err := storage.WriteHashList(a.opts.StateDir, id, hashes, a.stderr)
	if err != nil {
		fmt.Fprintln(a.stderr, "[!] Error saving hash list:", err)
		return 1
	}
	fmt.Fprintf(a.stdout, "[*] Saved %d hashes to %s\n", n, path)
	return 0
}

func (a *app) submit(ctx context.Context, id, filePath string) int {
	res, err := a.client.SubmitHashList(ctx, id, filePath)
	if err != nil {
		fmt.Fprintln(a.stderr, "[!] Error submitting game data:", err)
		return 1
	}
	fmt.Fprintln(a.stdout, report.Submission(id, res))
	return 0
}

func (a *app) autoSubmit(ctx context.Context, id, filePath string) int {
	loop := autosubmit.New(a.client, storage.NewRecord(a.opts.StateDir, id), id, filePath,
		autosubmit.WithOutput(a.stdout),
		autosubmit.WithLogger(a.log),
	)

	a.log.Info("auto-submit started",
		zap.String("hash_list_id", id),
		zap.String("file", filePath),
		zap.Duration("interval", autosubmit.DefaultInterval),
	)
	err := loop.Run(ctx)
	if errors.Is(err, context.Canceled) {
		fmt.Fprintf(a.stdout, "[*] Auto-submit stopped after %d cycles\n", loop.Cycles())
		return 0
	}
	fmt.Fprintln(a.stderr, "[!] Auto-submit failed:", err)
	return 1
}
