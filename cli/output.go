package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Vayras/admin-frontend-sub001/cohort"
	"github.com/Vayras/admin-frontend-sub001/httpclient"
	"github.com/Vayras/admin-frontend-sub001/validator"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	dateLayout  = "2006-01-02"
)

func validateOutput(format string) error {
	if format != outputTable && format != outputJSON {
		return fmt.Errorf("unsupported output format %q (table or json)", format)
	}
	return nil
}

type printer struct {
	w      io.Writer
	format string
}

// print writes v as indented JSON, or calls table with a tab-aligned writer.
func (p printer) print(v any, table func(w io.Writer)) error {
	if p.format == outputJSON {
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	table(tw)
	return tw.Flush()
}

func (p printer) cohorts(list []cohort.Cohort) error {
	return p.print(list, func(w io.Writer) {
		fmt.Fprintln(w, "ID\tNAME\tTYPE\tSEASON\tSTART\tEND\tSTATUS")
		for _, c := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
				c.ID, c.Name, c.Type, c.Season, date(c.StartDate), date(c.EndDate), c.Status)
		}
	})
}

func (p printer) cohort(c cohort.Cohort) error {
	return p.print(c, func(w io.Writer) {
		fmt.Fprintf(w, "ID:\t%s\n", c.ID)
		fmt.Fprintf(w, "Name:\t%s\n", c.Name)
		fmt.Fprintf(w, "Type:\t%s\n", c.Type)
		fmt.Fprintf(w, "Season:\t%d\n", c.Season)
		fmt.Fprintf(w, "Dates:\t%s to %s\n", date(c.StartDate), date(c.EndDate))
		fmt.Fprintf(w, "Capacity:\t%d\n", c.Capacity)
		fmt.Fprintf(w, "Status:\t%s\n", c.Status)
		if c.Description != "" {
			fmt.Fprintf(w, "Description:\t%s\n", c.Description)
		}
	})
}

func (p printer) user(u cohort.User) error {
	return p.print(u, func(w io.Writer) {
		fmt.Fprintf(w, "ID:\t%s\n", u.ID)
		fmt.Fprintf(w, "Name:\t%s\n", u.Name)
		fmt.Fprintf(w, "Email:\t%s\n", u.Email)
		fmt.Fprintf(w, "Role:\t%s\n", u.Role)
		fmt.Fprintf(w, "Cohorts:\t%s\n", strings.Join(u.CohortIDs, ", "))
	})
}

func (p printer) feedback(list []cohort.Feedback) error {
	return p.print(list, func(w io.Writer) {
		fmt.Fprintln(w, "WEEK\tRATING\tUSER\tCOMMENT")
		for _, f := range list {
			fmt.Fprintf(w, "%d\t%d\t%s\t%s\n", f.Week, f.Rating, f.UserID, f.Comment)
		}
	})
}

func date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(dateLayout)
}

// printError writes err for a person: per-field messages for invalid input,
// the server's message for API failures.
func printError(w io.Writer, err error) {
	if fields := validator.Fields(err); len(fields) > 0 {
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintln(w, "Error: invalid input")
		for _, name := range names {
			if name == "" {
				fmt.Fprintf(w, "  %s\n", fields[name])
				continue
			}
			fmt.Fprintf(w, "  %s: %s\n", name, fields[name])
		}
		return
	}
	if status, ok := httpclient.StatusOf(err); ok {
		fmt.Fprintf(w, "Error: %s (HTTP %d)\n", httpclient.MessageOf(err), status)
		return
	}
	fmt.Fprintf(w, "Error: %s\n", httpclient.MessageOf(err))
}
