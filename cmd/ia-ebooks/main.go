// Command ia-ebooks fetches Internet Archive ebook metadata for a library
// collection, optionally cross-referenced against CLIO catalog records.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/barmintor/ia-ebooks/pkg/archive"
	"github.com/barmintor/ia-ebooks/pkg/catalog"
	"github.com/barmintor/ia-ebooks/pkg/logging"
	"github.com/barmintor/ia-ebooks/pkg/output"
)

const (
	formatJSON = "json"
	formatTSV  = "tsv"

	defaultCollection = "ColumbiaUniversityLibraries"
	defaultUserAgent  = "ia-ebooks/0.1.0 (https://github.com/barmintor/ia-ebooks)"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "ia-ebooks",
		Usage: "fetch Internet Archive ebooks with optional CLIO cross-references",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "collection",
				Aliases: []string{"C"},
				Value:   defaultCollection,
				Usage:   "archive collection to query",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"F"},
				Value:   formatJSON,
				Usage:   "how to display data: json, or tsv (of identifiers)",
			},
			&cli.BoolFlag{
				Name:  "clio",
				Usage: "augment results with CLIO catalog data",
			},
			&cli.IntFlag{
				Name:  "page-size",
				Value: 100,
				Usage: "search results fetched per page",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: string(logging.LevelWarn),
				Usage: "diagnostic log level: debug, info, warn, error",
			},
		},
		Before: func(c *cli.Context) error {
			cfg := logging.DefaultConfig()
			cfg.Level = logging.LogLevel(c.String("log-level"))
			logging.Setup(cfg)
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "list-collections",
				Usage:  "list collection ids and descriptions; ids can be used as the collection flag value",
				Action: listCollections,
			},
			{
				Name:   "list-ebooks",
				Usage:  "list all ebooks in a collection",
				Action: listEbooks,
			},
			{
				Name:      "ebook",
				Usage:     "get one ebook by identifier",
				ArgsUsage: "<identifier>",
				Action:    fetchEbook,
			},
			{
				Name:      "clio",
				Usage:     "get one CLIO catalog record by bib id",
				ArgsUsage: "<bib-id>",
				Action:    fetchClio,
			},
		},
	}
}

func newArchiveClient() (*archive.Client, error) {
	cfg := archive.DefaultConfig(getEnv("IA_USER_AGENT", defaultUserAgent))
	cfg.BaseURL = getEnv("IA_BASE_URL", cfg.BaseURL)
	return archive.New(cfg)
}

func newResolver() *catalog.Resolver {
	cfg := catalog.DefaultConfig()
	cfg.BaseURL = getEnv("CLIO_BASE_URL", cfg.BaseURL)
	return catalog.NewResolver(cfg)
}

func listCollections(c *cli.Context) error {
	client, err := newArchiveClient()
	if err != nil {
		return err
	}

	it := client.Collections(c.String("collection"), c.Int("page-size"))

	if c.String("format") == formatTSV {
		tbl, err := output.NewTable(os.Stdout, "identifier", "description")
		if err != nil {
			return err
		}
		for it.Next(c.Context) {
			doc := it.Doc()
			if err := tbl.Row(doc.Identifier(), doc.Description()); err != nil {
				return err
			}
		}
		return it.Err()
	}

	aw := output.NewArrayWriter(os.Stdout)
	for it.Next(c.Context) {
		if err := aw.Write(output.NewCollection(it.Doc())); err != nil {
			return err
		}
	}
	if err := it.Err(); err != nil {
		return err
	}
	return aw.Close()
}

func listEbooks(c *cli.Context) error {
	if c.Args().Present() {
		return cli.Exit(`use the collection flag "-C" to scope the ebook list to a collection`, 2)
	}

	client, err := newArchiveClient()
	if err != nil {
		return err
	}

	it := client.Ebooks(c.String("collection"), c.Int("page-size"))

	if c.String("format") == formatTSV {
		tbl, err := output.NewTable(os.Stdout, "identifier", "clio_id")
		if err != nil {
			return err
		}
		for it.Next(c.Context) {
			doc := it.Doc()
			bibID, _ := catalog.BibID(doc)
			if err := tbl.Row(doc.Identifier(), bibID); err != nil {
				return err
			}
		}
		return it.Err()
	}

	var resolver *catalog.Resolver
	if c.Bool("clio") {
		resolver = newResolver()
	}

	// One item at a time: each document is shaped, resolved, and written
	// before the next is pulled from the iterator.
	aw := output.NewArrayWriter(os.Stdout)
	for it.Next(c.Context) {
		if err := aw.Write(shapeItem(c, resolver, it.Doc())); err != nil {
			return err
		}
	}
	if err := it.Err(); err != nil {
		return err
	}
	return aw.Close()
}

func fetchEbook(c *cli.Context) error {
	if !c.Args().Present() {
		return cli.Exit("an identifier is required to fetch a single document", 2)
	}

	client, err := newArchiveClient()
	if err != nil {
		return err
	}

	doc, err := client.Document(c.Context, c.Args().First())
	if err != nil {
		return err
	}

	if c.String("format") == formatTSV {
		tbl, err := output.NewTable(os.Stdout, "identifier", "clio_id")
		if err != nil {
			return err
		}
		bibID, _ := catalog.BibID(doc)
		return tbl.Row(doc.Identifier(), bibID)
	}

	var resolver *catalog.Resolver
	if c.Bool("clio") {
		resolver = newResolver()
	}
	return printJSON(shapeItem(c, resolver, doc))
}

func fetchClio(c *cli.Context) error {
	if !c.Args().Present() {
		return cli.Exit("a bib id is required to fetch a catalog record", 2)
	}

	rec := newResolver().Fetch(c.Context, c.Args().First())
	return printJSON(rec)
}

// shapeItem augments a document with links and, when a resolver is
// present, its catalog record. Documents without a discoverable bib id
// get the placeholder record rather than a lookup.
func shapeItem(c *cli.Context, resolver *catalog.Resolver, doc archive.Document) output.Item {
	if resolver == nil {
		return output.NewItem(doc, nil)
	}

	rec := catalog.EmptyRecord()
	if bibID, ok := catalog.BibID(doc); ok {
		rec = resolver.Fetch(c.Context, bibID)
	}
	return output.NewItem(doc, &rec)
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	_, err = fmt.Fprintln(os.Stdout, string(b))
	return err
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
