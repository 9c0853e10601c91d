// Package cli implements the GradeKeeper admin tool: user registration,
// login, and kicking off background imports and bulk deletes over the REST
// API.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const usage = `usage: gradekeeper-cli <command> [args]

commands:
  register [-readonly]           create a user (prompts for credentials)
  login                          obtain a token pair
  import <token> <source>        queue a CSV import (local path or s3://bucket/key)
  bulk-delete <token> <id,...>   queue a bulk delete
  job <token> <job-id>           show background job status
`

type App struct {
	api    *APIClient
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(endpoint string) *App {
	return &App{
		api:    NewAPIClient(endpoint),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
}

// Run dispatches a single command and returns its error, if any.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return nil
	}

	switch args[0] {
	case "register":
		readonly := len(args) > 1 && args[1] == "-readonly"
		return a.register(ctx, readonly)
	case "login":
		return a.login(ctx)
	case "import":
		if len(args) != 3 {
			return fmt.Errorf("import needs a token and a source")
		}
		return a.importCSV(ctx, args[1], args[2])
	case "bulk-delete":
		if len(args) != 3 {
			return fmt.Errorf("bulk-delete needs a token and a comma-separated id list")
		}
		return a.bulkDelete(ctx, args[1], args[2])
	case "job":
		if len(args) != 3 {
			return fmt.Errorf("job needs a token and a job id")
		}
		return a.jobStatus(ctx, args[1], args[2])
	default:
		fmt.Fprint(a.out, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func (a *App) promptCredentials() (string, string, error) {
	username, err := GetSimpleText(a.reader, "Enter user name", a.out)
	if err != nil {
		return "", "", err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return "", "", err
	}
	return username, string(password), nil
}

func (a *App) register(ctx context.Context, readonly bool) error {
	username, password, err := a.promptCredentials()
	if err != nil {
		return err
	}
	if err := a.api.Register(ctx, username, password, readonly); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Success!")
	return nil
}

func (a *App) login(ctx context.Context) error {
	username, password, err := a.promptCredentials()
	if err != nil {
		return err
	}
	pair, err := a.api.Login(ctx, username, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "access token:  %s\nrefresh token: %s\n", pair.AccessToken, pair.RefreshToken)
	return nil
}

func (a *App) importCSV(ctx context.Context, token, source string) error {
	jobID, err := a.api.ImportCSV(ctx, token, source)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "import queued, job id: %s\n", jobID)
	return nil
}

func (a *App) bulkDelete(ctx context.Context, token, idList string) error {
	var ids []int64
	for _, part := range strings.Split(idList, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q", part)
		}
		ids = append(ids, id)
	}

	jobID, err := a.api.BulkDelete(ctx, token, ids)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "bulk delete queued, job id: %s\n", jobID)
	return nil
}

func (a *App) jobStatus(ctx context.Context, token, jobID string) error {
	job, err := a.api.JobStatus(ctx, token, jobID)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "job %s: %v\n", jobID, job["status"])
	if msg, ok := job["result"].(string); ok && msg != "" {
		fmt.Fprintln(a.out, msg)
	}
	if msg, ok := job["error"].(string); ok && msg != "" {
		fmt.Fprintln(a.out, "error:", msg)
	}
	return nil
}
