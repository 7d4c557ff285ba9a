package commands

import (
	"context"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	ferrors "git.home.luguber.info/inful/docgraph/internal/foundation/errors"
	"git.home.luguber.info/inful/docgraph/internal/loader"
	"git.home.luguber.info/inful/docgraph/internal/store"
)

// IDsCmd implements the 'ids' command.
type IDsCmd struct {
	Only   []string `name:"only" help:"Only list these versions"`
	Drafts bool     `help:"Also list draft documents"`

	ID       string `name:"id" help:"Look up one document in a saved database instead of loading the site"`
	In       string `name:"in" default:"current" help:"Version searched by --id"`
	Database string `help:"SQLite database searched by --id (overrides output.database)"`
}

func (c *IDsCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if c.ID != "" {
		path := c.Database
		if path == "" {
			path = cfg.Output.Database
		}
		return c.lookup(context.Background(), g.stdout(), path)
	}
	res, err := loader.New(cfg).Load(context.Background())
	if err != nil {
		return err
	}
	return c.print(g.stdout(), res)
}

func (c *IDsCmd) print(w io.Writer, res *loader.Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "VERSION\tID\tPERMALINK\tSIDEBAR\tMAIN"); err != nil {
		return err
	}
	for _, v := range res.Versions {
		if len(c.Only) > 0 && !slices.Contains(c.Only, v.Metadata.VersionName) {
			continue
		}
		for _, d := range v.Docs {
			sidebar := "-"
			if d.Sidebar != nil {
				sidebar = *d.Sidebar
			}
			mark := ""
			if d.ID == v.MainDocID {
				mark = "*"
			}
			if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", v.Metadata.VersionName, d.ID, d.Permalink, sidebar, mark); err != nil {
				return err
			}
		}
		if !c.Drafts {
			continue
		}
		for _, d := range v.Drafts {
			if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t(draft)\t\n", v.Metadata.VersionName, d.ID, d.Permalink); err != nil {
				return err
			}
		}
	}
	return tw.Flush()
}

func (c *IDsCmd) lookup(ctx context.Context, w io.Writer, path string) error {
	if path == "" {
		return ferrors.ConfigError("--id needs a database: set --database or output.database").Build()
	}
	db, err := store.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	d, ok, err := db.LookupDoc(ctx, c.In, c.ID)
	if err != nil {
		return err
	}
	if !ok {
		return ferrors.NewError(ferrors.CategoryNotFound, fmt.Sprintf("no doc %q in version %q", c.ID, c.In)).
			WithContext(ferrors.KeyDocID, c.ID).
			WithContext(ferrors.KeyVersion, c.In).
			Build()
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	sidebar := "-"
	if d.Metadata.Sidebar != nil {
		sidebar = *d.Metadata.Sidebar
	}
	if d.Draft {
		sidebar = "(draft)"
	}
	if _, err := fmt.Fprintln(tw, "VERSION\tID\tPERMALINK\tSIDEBAR\tFINGERPRINT"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", d.Version, d.Metadata.ID, d.Metadata.Permalink, sidebar, d.Fingerprint); err != nil {
		return err
	}
	return tw.Flush()
}
