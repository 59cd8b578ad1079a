// Command evalctl is a terminal client for the evaluation API.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/term"

	"github.com/stemsi/evaluation-backend/pkg/client"
)

const usage = `Usage: evalctl [-api URL] [-json] <command> [args]

Commands:
  subjects list
  subjects get <id>
  subjects create -name NAME [-description TEXT]
  subjects update <id> [-name NAME] [-description TEXT]
  subjects delete <id> [-yes]
  competencies list [-subject ID]
  competencies get <id>
  competencies create -subject ID -name NAME -marks N
  competencies update <id> [-name NAME] [-marks N]
  competencies delete <id> [-yes]
  counts
  export [-o FILE]
  health
`

var errUsage = errors.New("invalid usage")

// stderrNotifier surfaces store outcomes the way a toast would.
type stderrNotifier struct{}

func (stderrNotifier) Success(msg string) { fmt.Fprintln(os.Stderr, "✓", msg) }
func (stderrNotifier) Error(msg string)   { fmt.Fprintln(os.Stderr, "✗", msg) }

type app struct {
	api *client.Client
	out *printer
	in  *bufio.Reader
}

func main() {
	_ = godotenv.Load()

	defaultAPI := os.Getenv("EVAL_API_URL")
	if defaultAPI == "" {
		defaultAPI = "http://localhost:3001/api"
	}

	apiURL := flag.String("api", defaultAPI, "base URL of the evaluation API")
	forceJSON := flag.Bool("json", false, "print JSON even on a terminal")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{
		api: client.New(*apiURL),
		out: newPrinter(os.Stdout, *forceJSON || !term.IsTerminal(int(os.Stdout.Fd()))),
		in:  bufio.NewReader(os.Stdin),
	}

	if err := a.run(ctx, flag.Args()); err != nil {
		if errors.Is(err, errUsage) {
			flag.Usage()
			os.Exit(2)
		}
		var apiErr *client.APIError
		if !errors.As(err, &apiErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	switch args[0] {
	case "subjects":
		return a.subjects(ctx, args[1:])
	case "competencies":
		return a.competencies(ctx, args[1:])
	case "counts":
		return a.counts(ctx)
	case "export":
		return a.export(ctx, args[1:])
	case "health":
		return a.health(ctx)
	default:
		return errUsage
	}
}

// ─── Subjects ───────────────────────────────────────────────────────

func (a *app) subjects(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	store := client.NewSubjectStore(a.api, stderrNotifier{})

	switch args[0] {
	case "list":
		if err := store.Fetch(ctx); err != nil {
			return err
		}
		return a.out.Subjects(store.Subjects())

	case "get":
		id, _, err := splitID(args[1:])
		if err != nil {
			return err
		}
		s, err := a.api.GetSubject(ctx, id)
		if err != nil {
			return report(err)
		}
		return a.out.Subjects([]client.Subject{*s})

	case "create":
		fs := flag.NewFlagSet("subjects create", flag.ContinueOnError)
		name := fs.String("name", "", "subject name")
		desc := fs.String("description", "", "subject description")
		if err := fs.Parse(args[1:]); err != nil {
			return errUsage
		}
		req := client.CreateSubjectRequest{Name: *name}
		if isSet(fs, "description") {
			req.Description = desc
		}
		s, err := store.Create(ctx, req)
		if err != nil {
			return err
		}
		return a.out.Subjects([]client.Subject{*s})

	case "update":
		id, rest, err := splitID(args[1:])
		if err != nil {
			return err
		}
		fs := flag.NewFlagSet("subjects update", flag.ContinueOnError)
		name := fs.String("name", "", "subject name")
		desc := fs.String("description", "", "subject description")
		if err := fs.Parse(rest); err != nil {
			return errUsage
		}
		var req client.UpdateSubjectRequest
		if isSet(fs, "name") {
			req.Name = name
		}
		if isSet(fs, "description") {
			req.Description = desc
		}
		s, err := store.Update(ctx, id, req)
		if err != nil {
			return err
		}
		return a.out.Subjects([]client.Subject{*s})

	case "delete":
		id, rest, err := splitID(args[1:])
		if err != nil {
			return err
		}
		ok, err := a.confirm(rest, fmt.Sprintf("Delete subject %d and all of its competencies?", id))
		if err != nil || !ok {
			return err
		}
		return store.Delete(ctx, id)

	default:
		return errUsage
	}
}

func (a *app) counts(ctx context.Context) error {
	store := client.NewSubjectStore(a.api, stderrNotifier{})
	if err := store.Fetch(ctx); err != nil {
		return err
	}
	return a.out.Counts(store.Subjects(), store.CompetencyCounts(ctx))
}

// ─── Competencies ───────────────────────────────────────────────────

func (a *app) competencies(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	switch args[0] {
	case "list":
		fs := flag.NewFlagSet("competencies list", flag.ContinueOnError)
		subjectID := fs.Int("subject", 0, "only competencies of this subject")
		if err := fs.Parse(args[1:]); err != nil {
			return errUsage
		}
		if *subjectID > 0 {
			store := client.NewCompetencyStore(a.api, *subjectID, stderrNotifier{})
			if err := store.Fetch(ctx); err != nil {
				return err
			}
			return a.out.Competencies(store.Competencies())
		}
		list, err := a.api.ListCompetencies(ctx)
		if err != nil {
			return report(err)
		}
		return a.out.Competencies(list)

	case "get":
		id, _, err := splitID(args[1:])
		if err != nil {
			return err
		}
		c, err := a.api.GetCompetency(ctx, id)
		if err != nil {
			return report(err)
		}
		return a.out.Competencies([]client.Competency{*c})

	case "create":
		fs := flag.NewFlagSet("competencies create", flag.ContinueOnError)
		subjectID := fs.Int("subject", 0, "owning subject id")
		name := fs.String("name", "", "competency name")
		marks := fs.Float64("marks", 0, "marks between 0 and 10")
		if err := fs.Parse(args[1:]); err != nil {
			return errUsage
		}
		req := client.CreateCompetencyRequest{SubjectID: *subjectID, Name: *name}
		if isSet(fs, "marks") {
			req.Marks = marks
		}
		store := client.NewCompetencyStore(a.api, *subjectID, stderrNotifier{})
		c, err := store.Create(ctx, req)
		if err != nil {
			return err
		}
		return a.out.Competencies([]client.Competency{*c})

	case "update":
		id, rest, err := splitID(args[1:])
		if err != nil {
			return err
		}
		fs := flag.NewFlagSet("competencies update", flag.ContinueOnError)
		name := fs.String("name", "", "competency name")
		marks := fs.Float64("marks", 0, "marks between 0 and 10")
		if err := fs.Parse(rest); err != nil {
			return errUsage
		}
		var req client.UpdateCompetencyRequest
		if isSet(fs, "name") {
			req.Name = name
		}
		if isSet(fs, "marks") {
			req.Marks = marks
		}
		store := client.NewCompetencyStore(a.api, 0, stderrNotifier{})
		c, err := store.Update(ctx, id, req)
		if err != nil {
			return err
		}
		return a.out.Competencies([]client.Competency{*c})

	case "delete":
		id, rest, err := splitID(args[1:])
		if err != nil {
			return err
		}
		ok, err := a.confirm(rest, fmt.Sprintf("Delete competency %d?", id))
		if err != nil || !ok {
			return err
		}
		return client.NewCompetencyStore(a.api, 0, stderrNotifier{}).Delete(ctx, id)

	default:
		return errUsage
	}
}

// ─── Export / Health ────────────────────────────────────────────────

func (a *app) export(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	path := fs.String("o", "", "output file (default evaluation_<timestamp>.xlsx)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *path == "" {
		*path = "evaluation_" + time.Now().Format("20060102_150405") + ".xlsx"
	}

	f, err := os.Create(*path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := a.api.Export(ctx, f); err != nil {
		_ = os.Remove(*path)
		return report(err)
	}
	fmt.Fprintln(os.Stderr, "✓ Workbook written to", *path)
	return nil
}

// health reports the aggregated status of this client and the backend.
func (a *app) health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	h, err := a.api.Health(ctx)
	if err != nil {
		_ = a.out.Health("unhealthy", nil, client.Message(err))
		return err
	}
	status := "healthy"
	if h.Status != "OK" {
		status = "degraded"
	}
	return a.out.Health(status, h, "")
}

// ─── Helpers ────────────────────────────────────────────────────────

func (a *app) confirm(args []string, question string) (bool, error) {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	yes := fs.Bool("yes", false, "skip confirmation")
	if err := fs.Parse(args); err != nil {
		return false, errUsage
	}
	if *yes {
		return true, nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, errors.New("refusing to delete without -yes when stdin is not a terminal")
	}

	fmt.Fprintf(os.Stderr, "%s [y/N]: ", question)
	answer, _ := a.in.ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}

// splitID takes the leading positional id off args.
func splitID(args []string) (int, []string, error) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return 0, nil, errUsage
	}
	id, err := strconv.Atoi(args[0])
	if err != nil || id <= 0 {
		return 0, nil, fmt.Errorf("invalid id %q", args[0])
	}
	return id, args[1:], nil
}

func isSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// report prints direct client failures; store failures are already
// surfaced by the notifier.
func report(err error) error {
	stderrNotifier{}.Error(client.Message(err))
	return err
}
