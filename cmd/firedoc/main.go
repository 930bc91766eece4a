// Copyright 2026 The Firedoc Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// firedoc reads and writes Firestore documents from the command line.
//
// Settings come from flags, falling back to environment variables, which may
// be set in a .env file in the working directory:
//
//	FIRESTORE_PROJECT        project ID
//	FIRESTORE_DATABASE       database name; defaults to "(default)"
//	FIRESTORE_COLLECTION     path prefix below the database's documents
//	FIRESTORE_TOKEN          bearer token
//	FIRESTORE_EMULATOR_HOST  host:port of the Firestore emulator
//
// Without FIRESTORE_TOKEN, a token is obtained from Application Default
// Credentials, unless the emulator is used.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	"firedoc.dev/firestore"
	"firedoc.dev/gcp"
	"firedoc.dev/requestlog"
	"github.com/google/subcommands"
	"github.com/joho/godotenv"
)

const helpSuffix = `

  Flags default to the FIRESTORE_* environment variables; see the package
  documentation for the list.
`

func main() {
	// A missing .env file is fine.
	_ = godotenv.Load()
	log.SetFlags(0)
	log.SetPrefix("firedoc: ")
	os.Exit(run(context.Background(), os.Args[1:], &stdio{in: os.Stdin, out: os.Stdout, err: os.Stderr}))
}

// stdio holds the streams commands read from and write to.
type stdio struct {
	in       io.Reader
	out, err io.Writer
}

func run(ctx context.Context, args []string, s *stdio) int {
	top := flag.NewFlagSet("firedoc", flag.ContinueOnError)
	top.SetOutput(s.err)
	cdr := subcommands.NewCommander(top, "firedoc")
	cdr.Output = s.out
	cdr.Error = s.err
	cdr.Register(cdr.HelpCommand(), "")
	cdr.Register(cdr.FlagsCommand(), "")
	cdr.Register(&getCmd{}, "")
	cdr.Register(&updateCmd{}, "")
	cdr.Register(&urlCmd{}, "")
	if err := top.Parse(args); err != nil {
		return int(subcommands.ExitUsageError)
	}
	return int(cdr.Execute(ctx, s))
}

// target is the set of flags that select a project, database and
// collection. Every command embeds it.
type target struct {
	project    string
	database   string
	collection string
	logReqs    bool
}

func (t *target) setFlags(f *flag.FlagSet) {
	f.StringVar(&t.project, "project", os.Getenv("FIRESTORE_PROJECT"), "project ID")
	f.StringVar(&t.database, "database", os.Getenv("FIRESTORE_DATABASE"), "database name")
	f.StringVar(&t.collection, "collection", os.Getenv("FIRESTORE_COLLECTION"), "path prefix below the database's documents")
	f.BoolVar(&t.logReqs, "log", false, "log each outgoing request to stderr")
}

// open returns a client for t. If authorize is false, no credentials are
// looked up.
func (t *target) open(ctx context.Context, s *stdio, authorize bool, opts firestore.Options) (*firestore.Client, error) {
	opts.Database = t.database
	opts.Token = os.Getenv("FIRESTORE_TOKEN")
	project := t.project
	if host := os.Getenv("FIRESTORE_EMULATOR_HOST"); host != "" {
		opts.Host = host
		opts.Insecure = true
	} else if authorize && (opts.Token == "" || project == "") {
		creds, err := gcp.DefaultCredentials(ctx)
		if err != nil {
			return nil, fmt.Errorf("no token given and no default credentials: %v", err)
		}
		if opts.Token == "" {
			if opts.Token, err = gcp.AccessToken(gcp.CredentialsTokenSource(creds)); err != nil {
				return nil, err
			}
		}
		if project == "" {
			id, err := gcp.DefaultProjectID(creds)
			if err != nil {
				return nil, err
			}
			project = string(id)
		}
	}
	if project == "" {
		return nil, errors.New("no project; set -project or FIRESTORE_PROJECT")
	}
	client := &http.Client{}
	if t.logReqs {
		client.Transport = requestlog.NewTransport(requestlog.NewNCSALogger(s.err, func(err error) {
			log.Printf("request log: %v", err)
		}), nil)
	}
	return firestore.OpenClient(firestore.NewHTTPTransport(client), &firestore.Config{
		ProjectID: project,
		SubPath:   t.collection,
		Options:   opts,
	}), nil
}

type getCmd struct {
	target
}

func (*getCmd) Name() string     { return "get" }
func (*getCmd) Synopsis() string { return "Print a document as JSON" }
func (*getCmd) Usage() string {
	return `get [flags] <document>

  Fetch <document> and print its decoded fields as JSON.

  Example:
    firedoc get -project myproject -collection users ada` + helpSuffix
}

func (cmd *getCmd) SetFlags(f *flag.FlagSet) { cmd.setFlags(f) }

func (cmd *getCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	s := args[0].(*stdio)
	c, err := cmd.open(ctx, s, true, firestore.Options{})
	if err != nil {
		log.Printf("Failed to open client: %v", err)
		return subcommands.ExitFailure
	}
	doc, err := c.GetDocument(ctx, f.Arg(0))
	if err != nil {
		log.Printf("Failed to get document: %v", err)
		return subcommands.ExitFailure
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		log.Printf("Failed to encode document: %v", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(s.out, "%s\n", b)
	return subcommands.ExitSuccess
}

type updateCmd struct {
	target
	check bool
}

func (*updateCmd) Name() string     { return "update" }
func (*updateCmd) Synopsis() string { return "Write fields to a document" }
func (*updateCmd) Usage() string {
	return `update [flags] <document> <fields>

  Write <fields> to <document>. <fields> is a JSON object of values in
  Firestore's wire form, or "-" to read it from stdin.

  Example:
    firedoc update -collection users ada '{"age": {"integerValue": "36"}}'` + helpSuffix
}

func (cmd *updateCmd) SetFlags(f *flag.FlagSet) {
	cmd.setFlags(f)
	f.BoolVar(&cmd.check, "check", false, "fail if the service rejects the write")
}

func (cmd *updateCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	s := args[0].(*stdio)
	var r io.Reader = strings.NewReader(f.Arg(1))
	if f.Arg(1) == "-" {
		r = s.in
	}
	fields, err := readFields(r)
	if err != nil {
		log.Printf("Failed to read fields: %v", err)
		return subcommands.ExitUsageError
	}
	c, err := cmd.open(ctx, s, true, firestore.Options{CheckWrites: cmd.check})
	if err != nil {
		log.Printf("Failed to open client: %v", err)
		return subcommands.ExitFailure
	}
	if err := c.UpdateDocument(ctx, f.Arg(0), fields); err != nil {
		log.Printf("Failed to update document: %v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// readFields reads a JSON object, keeping numbers as written.
func readFields(r io.Reader) (map[string]interface{}, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var fields map[string]interface{}
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, errors.New("fields must be a JSON object")
	}
	return fields, nil
}

type urlCmd struct {
	target
}

func (*urlCmd) Name() string     { return "url" }
func (*urlCmd) Synopsis() string { return "Print the request URL of a document" }
func (*urlCmd) Usage() string {
	return `url [flags] <document>

  Print the URL firedoc would request for <document>. No request is made.

  Example:
    firedoc url -project myproject -collection rooms/eros/messages m1` + helpSuffix
}

func (cmd *urlCmd) SetFlags(f *flag.FlagSet) { cmd.setFlags(f) }

func (cmd *urlCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	s := args[0].(*stdio)
	c, err := cmd.open(ctx, s, false, firestore.Options{})
	if err != nil {
		log.Printf("Failed to open client: %v", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintln(s.out, c.URL(f.Arg(0)))
	return subcommands.ExitSuccess
}
