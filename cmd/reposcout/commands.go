package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/poiesic/reposcout"
	"github.com/poiesic/reposcout/core"
	"github.com/poiesic/reposcout/ingestion"
	"github.com/poiesic/reposcout/reindex"
)

func limitFlag() cli.Flag {
	return &cli.IntFlag{
		Name:    "limit",
		Aliases: []string{"n"},
		Usage:   "Maximum number of results (0 uses max_results)",
	}
}

func indexCommand() *cli.Command {
	return &cli.Command{
		Name:      "index",
		Usage:     "Index repository records read as JSON",
		ArgsUsage: "[file|-]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "pool-size",
				Usage: "Number of concurrent indexing workers (0 uses half the CPUs)",
			},
			&cli.IntFlag{
				Name:  "chunk-size",
				Usage: "Number of records embedded per task",
				Value: ingestion.DefaultChunkSize,
			},
		},
		Action: func(c *cli.Context) error {
			in := io.Reader(os.Stdin)
			if name := c.Args().First(); name != "" && name != "-" {
				f, err := os.Open(name)
				if err != nil {
					return fmt.Errorf("failed to open input: %w", err)
				}
				defer f.Close()
				in = f
			}
			docs, err := readDocs(in)
			if err != nil {
				return err
			}

			s, err := openScout(c)
			if err != nil {
				return err
			}
			defer s.Close()

			opts := []ingestion.Option{ingestion.WithChunkSize(c.Int("chunk-size"))}
			if n := c.Int("pool-size"); n > 0 {
				opts = append(opts, ingestion.WithPoolSize(n))
			}
			pipeline, err := s.NewIngestionPipeline(opts...)
			if err != nil {
				return err
			}
			defer pipeline.Release()

			ingestErr := pipeline.Ingest(context.Background(), docs)
			indexed, waitErr := pipeline.Wait()
			if err := errors.Join(ingestErr, waitErr); err != nil {
				return fmt.Errorf("indexing failed after %d records: %w", indexed, err)
			}
			if err := s.Engine().Save(); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "Indexed %d of %d records\n", indexed, len(docs))
			return nil
		},
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Semantic search",
		ArgsUsage: "QUERY",
		Flags:     []cli.Flag{limitFlag()},
		Action: func(c *cli.Context) error {
			query, err := queryArg(c)
			if err != nil {
				return err
			}
			s, err := openScout(c)
			if err != nil {
				return err
			}
			defer s.Close()

			results, err := s.Search(context.Background(), query, c.Int("limit"))
			if err != nil {
				return err
			}
			return printResults(c.App.Writer, results)
		},
	}
}

func hybridCommand() *cli.Command {
	return &cli.Command{
		Name:      "hybrid",
		Usage:     "Hybrid search combining BM25 keyword and semantic scores",
		ArgsUsage: "QUERY",
		Flags: []cli.Flag{
			limitFlag(),
			&cli.Float64Flag{
				Name:  "semantic-weight",
				Usage: "Weight of the semantic score in [0, 1]",
			},
		},
		Action: func(c *cli.Context) error {
			query, err := queryArg(c)
			if err != nil {
				return err
			}
			s, err := openScout(c)
			if err != nil {
				return err
			}
			defer s.Close()

			results, err := s.HybridSearch(context.Background(), query, c.Int("limit"))
			if err != nil {
				return err
			}
			return printResults(c.App.Writer, results)
		},
	}
}

func statsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show index statistics",
		Action: func(c *cli.Context) error {
			s, err := openScout(c)
			if err != nil {
				return err
			}
			defer s.Close()

			stored, err := s.Store().Count(context.Background())
			if err != nil {
				return err
			}
			st := s.Engine().Stats()
			w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Indexed:\t%d\n", s.Engine().IndexedCount())
			fmt.Fprintf(w, "Stored:\t%d\n", stored)
			fmt.Fprintf(w, "Model:\t%s\n", st.ModelName)
			fmt.Fprintf(w, "Dimension:\t%d\n", st.Dimension)
			fmt.Fprintf(w, "Index size:\t%d bytes\n", st.IndexSizeBytes)
			fmt.Fprintf(w, "Created:\t%s\n", st.CreatedAt.Format("2006-01-02 15:04:05"))
			fmt.Fprintf(w, "Updated:\t%s\n", st.LastUpdated.Format("2006-01-02 15:04:05"))
			fmt.Fprintf(w, "Cache path:\t%s\n", s.Config().Search.CachePath)
			return w.Flush()
		},
	}
}

func removeCommand() *cli.Command {
	return &cli.Command{
		Name:      "remove",
		Usage:     "Remove records from the index and store",
		ArgsUsage: "ID...",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("at least one record id (platform:owner/name) is required")
			}
			s, err := openScout(c)
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := context.Background()
			for _, id := range c.Args().Slice() {
				if err := s.Engine().RemoveRecord(ctx, id); err != nil {
					return fmt.Errorf("remove %s: %w", id, err)
				}
			}
			if err := s.Engine().Save(); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "Removed %d records\n", c.NArg())
			return nil
		},
	}
}

func rebuildCommand() *cli.Command {
	return &cli.Command{
		Name:  "rebuild",
		Usage: "Re-embed every stored record into the index",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "batch-size",
				Usage: "Number of records to process in each batch",
				Value: reindex.DefaultBatchSize,
			},
			&cli.IntFlag{
				Name:  "report-interval",
				Usage: "Report progress every N records",
				Value: 100,
			},
			&cli.BoolFlag{
				Name:  "keep",
				Usage: "Upsert into the existing index instead of starting empty",
			},
		},
		Action: func(c *cli.Context) error {
			config := &reindex.Config{
				BatchSize:      c.Int("batch-size"),
				ReportInterval: c.Int("report-interval"),
				Reset:          !c.Bool("keep"),
			}
			if config.BatchSize <= 0 {
				return fmt.Errorf("batch-size must be greater than 0")
			}
			if config.ReportInterval <= 0 {
				return fmt.Errorf("report-interval must be greater than 0")
			}

			s, err := openScout(c)
			if err != nil {
				return err
			}
			defer s.Close()

			if _, err := s.Reindex(context.Background(), config); err != nil {
				return fmt.Errorf("rebuild failed: %w", err)
			}
			return nil
		},
	}
}

func clearCommand() *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Delete the index and every stored record",
		Action: func(c *cli.Context) error {
			s, err := openScout(c)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Engine().Clear(context.Background()); err != nil {
				return err
			}
			if err := s.Engine().Save(); err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, "Index cleared")
			return nil
		},
	}
}

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Print the effective configuration",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "write",
				Usage: "Write the effective configuration to the config file",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, path, err := loadConfig(c)
			if err != nil {
				return err
			}
			if c.Bool("write") {
				if err := reposcout.SaveConfig(path, cfg); err != nil {
					return err
				}
				fmt.Fprintf(c.App.ErrWriter, "Wrote %s\n", path)
			}
			enc := yaml.NewEncoder(c.App.Writer)
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}

func queryArg(c *cli.Context) (string, error) {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return "", fmt.Errorf("a query is required")
	}
	return query, nil
}

// readDocs accepts either a JSON array of documents or a stream of
// concatenated documents (JSON lines).
func readDocs(r io.Reader) ([]*core.RecordDoc, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(br)
	if first == '[' {
		var docs []*core.RecordDoc
		if err := dec.Decode(&docs); err != nil {
			return nil, fmt.Errorf("invalid input: %w", err)
		}
		return docs, nil
	}

	var docs []*core.RecordDoc
	for {
		var doc core.RecordDoc
		err := dec.Decode(&doc)
		if err == io.EOF {
			return docs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("invalid input at document %d: %w", len(docs)+1, err)
		}
		docs = append(docs, &doc)
	}
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.Peek(1)
		if err != nil {
			return 0, err
		}
		if !bytes.ContainsAny(b, " \t\r\n") {
			return b[0], nil
		}
		if _, err := br.Discard(1); err != nil {
			return 0, err
		}
	}
}

func printResults(out io.Writer, results []*core.SearchResult) error {
	if len(results) == 0 {
		fmt.Fprintln(out, "No results")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tREPOSITORY\tSCORE\tSEMANTIC\tKEYWORD\tSTARS\tDESCRIPTION")
	for i, r := range results {
		kw := "-"
		if r.KeywordScore != nil {
			kw = fmt.Sprintf("%.3f", *r.KeywordScore)
		}
		fmt.Fprintf(w, "%d\t%s\t%.3f\t%.3f\t%s\t%d\t%s\n",
			i+1, r.Record.ID(), r.HybridScore, r.SemanticScore, kw, r.Record.Stars,
			truncateText(r.Record.Description, 60))
	}
	return w.Flush()
}

func truncateText(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
