// cmd/cli/main.go inspects the bot's storage file offline.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/jessevdk/go-flags"

	_ "github.com/keshon/modbot/internal/config" // loads .env
	"github.com/keshon/modbot/internal/storage"
)

type Options struct {
	Storage string `long:"storage" env:"STORAGE_PATH" description:"Path to the datastore file"`
}

type AutorolesCommand struct {
	Guild string `long:"guild" description:"Only show bindings of this guild"`

	opts *Options
	out  io.Writer
}

type HistoryCommand struct {
	Guild string `long:"guild" description:"Guild to show the command history of" required:"true"`
	Limit int    `long:"limit" default:"20" description:"Number of most recent records to print"`

	opts *Options
	out  io.Writer
}

func (o *Options) open() (*storage.Storage, error) {
	if o.Storage == "" {
		return nil, errors.New("--storage or STORAGE_PATH is required")
	}
	return storage.New(o.Storage)
}

func (c *AutorolesCommand) Execute(_ []string) error {
	st, err := c.opts.open()
	if err != nil {
		return err
	}
	defer st.Close()

	var records []storage.AutoroleRecord
	if c.Guild != "" {
		records, err = st.Autoroles(c.Guild)
	} else {
		records, err = st.AllAutoroles()
	}
	if err != nil {
		return err
	}
	return printAutoroles(c.out, records)
}

func (c *HistoryCommand) Execute(_ []string) error {
	st, err := c.opts.open()
	if err != nil {
		return err
	}
	defer st.Close()

	records, err := st.FetchCommandHistory(c.Guild)
	if err != nil {
		return err
	}
	if c.Limit > 0 && len(records) > c.Limit {
		records = records[len(records)-c.Limit:]
	}
	return printHistory(c.out, records)
}

func printAutoroles(w io.Writer, records []storage.AutoroleRecord) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "GUILD\tMESSAGE\tEMOJI\tROLE\tCREATED")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.GuildID, r.MessageID, r.Emoji, r.RoleID, formatTime(r.CreatedAt))
	}
	return tw.Flush()
}

func printHistory(w io.Writer, records []storage.CommandHistoryRecord) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tUSER\tCOMMAND\tARGS")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s (%s)\t%s\t%s\n", formatTime(r.Datetime), r.Username, r.UserID, r.Command, r.Args)
	}
	return tw.Flush()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}

func newParser(opts *Options, out io.Writer) *flags.Parser {
	parser := flags.NewParser(opts, flags.Default)
	_, _ = parser.AddCommand("autoroles", "List autorole bindings", "Print stored reaction-role bindings.",
		&AutorolesCommand{opts: opts, out: out})
	_, _ = parser.AddCommand("history", "Show command history", "Print the most recent commands run in a guild.",
		&HistoryCommand{opts: opts, out: out})
	return parser
}

func main() {
	var opts Options
	if _, err := newParser(&opts, os.Stdout).Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
}
