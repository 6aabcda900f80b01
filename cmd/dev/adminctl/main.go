package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"travelagency/pkg/apperr"
	"travelagency/pkg/client"
	"travelagency/pkg/config"
	"travelagency/pkg/retry"
)

const usage = `usage: adminctl [flags] <command> [args]

commands:
  booking <id>
  bookings [key=value ...]          e.g. status=PENDING search=nepal sort=createdAt order=desc
  booking-status <id> <status>
  payment-status <id> <status>
  export [key=value ...]            writes CSV to stdout
  review <id> <approve|reject|delete>
  application <id> [status] [notes]
  job-active <id> <true|false>
  role <user-id> <role>
`

func main() {
	var (
		baseURL = flag.String("url", "", "API base url (defaults to http://localhost<HTTP_ADDR>)")
		token   = flag.String("token", os.Getenv("ADMIN_TOKEN"), "admin access token")
		timeout = flag.Duration("timeout", 30*time.Second, "overall deadline")
	)
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage); flag.PrintDefaults() }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	if *baseURL == "" {
		*baseURL = "http://localhost" + cfg.HTTPAddr
	}
	c := client.New(*baseURL, *token, retry.FromConfig(cfg.Retry))
	c.Retry.OnRetry = func(op string, attempt int, err error) {
		fmt.Fprintf(os.Stderr, "retrying %s (attempt %d): %v\n", op, attempt, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	out, err := run(ctx, c, args[0], args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", args[0], err)
		os.Exit(exitCode(err))
	}
	if b, ok := out.([]byte); ok {
		_, _ = os.Stdout.Write(b)
		return
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
}

func run(ctx context.Context, c *client.Client, cmd string, args []string) (any, error) {
	need := func(n int) error {
		if len(args) < n {
			return apperr.Invalid("args", cmd, fmt.Sprintf("%s needs %d argument(s)", cmd, n))
		}
		return nil
	}
	changed := func(v any, changed bool, err error) (any, error) {
		if err != nil {
			return nil, err
		}
		return map[string]any{"record": v, "changed": changed}, nil
	}

	switch cmd {
	case "booking":
		if err := need(1); err != nil {
			return nil, err
		}
		return c.Booking(ctx, args[0])
	case "bookings":
		return c.Bookings(ctx, query(args))
	case "booking-status":
		if err := need(2); err != nil {
			return nil, err
		}
		return changed(c.SetBookingStatus(ctx, args[0], args[1]))
	case "payment-status":
		if err := need(2); err != nil {
			return nil, err
		}
		return changed(c.SetPaymentStatus(ctx, args[0], args[1]))
	case "export":
		return c.ExportBookings(ctx, query(args))
	case "review":
		if err := need(2); err != nil {
			return nil, err
		}
		return changed(c.ModerateReview(ctx, args[0], args[1]))
	case "application":
		if err := need(1); err != nil {
			return nil, err
		}
		var status, notes *string
		if len(args) > 1 && args[1] != "" {
			status = &args[1]
		}
		if len(args) > 2 {
			notes = &args[2]
		}
		return changed(c.UpdateApplication(ctx, args[0], status, notes))
	case "job-active":
		if err := need(2); err != nil {
			return nil, err
		}
		active, err := strconv.ParseBool(args[1])
		if err != nil {
			return nil, apperr.Invalid("isActive", args[1], "isActive must be true or false")
		}
		return changed(c.SetPostingActive(ctx, args[0], active))
	case "role":
		if err := need(2); err != nil {
			return nil, err
		}
		return changed(c.ChangeRole(ctx, args[0], args[1]))
	default:
		return nil, apperr.Invalid("command", cmd, "unknown command: "+cmd)
	}
}

// query turns key=value arguments into list query parameters.
func query(args []string) url.Values {
	q := url.Values{}
	for _, a := range args {
		if k, v, ok := strings.Cut(a, "="); ok {
			q.Add(k, v)
		}
	}
	return q
}

func exitCode(err error) int {
	switch apperr.HTTPStatus(err) {
	case 400:
		return 2
	case 401, 403:
		return 3
	case 404:
		return 4
	default:
		return 1
	}
}
