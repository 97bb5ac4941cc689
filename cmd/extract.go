package main

import (
	"bufio"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/corpusfilter/internal/extract"
	"github.com/mohammad-safakhou/corpusfilter/internal/jsonl"
	"github.com/mohammad-safakhou/corpusfilter/internal/record"
	"github.com/mohammad-safakhou/corpusfilter/internal/runtime"
)

func extractCMD() *cobra.Command {
	var (
		inPath  string
		outPath string
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Convert {url, html} JSONL into {url, text} JSONL for the pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := runtime.NewLogger("EXTRACT")

			in, err := openInput(inPath)
			if err != nil {
				return err
			}
			defer in.Close()
			out, err := openOutput(outPath)
			if err != nil {
				return err
			}
			defer out.Close()

			var (
				json    = jsoniter.ConfigCompatibleWithStandardLibrary
				writer  = jsonl.NewWriter(out)
				scanner = bufio.NewScanner(in)
				line    int
				skipped int
			)
			scanner.Buffer(make([]byte, 64*1024), 64<<20)

			for scanner.Scan() {
				line++
				raw := scanner.Bytes()
				if len(raw) == 0 {
					continue
				}
				var page struct {
					URL  string `json:"url"`
					HTML string `json:"html"`
				}
				if err := json.Unmarshal(raw, &page); err != nil {
					skipped++
					logger.Printf("warn: skipping malformed line %d: %v", line, err)
					continue
				}
				text, err := extract.FromHTML([]byte(page.HTML), page.URL)
				if err != nil {
					skipped++
					logger.Printf("warn: extraction failed for %s: %v", page.URL, err)
					continue
				}
				if err := writer.Write(&record.Document{URL: page.URL, Text: text}); err != nil {
					return err
				}
			}
			if err := scanner.Err(); err != nil {
				return err
			}
			if err := writer.Flush(); err != nil {
				return err
			}
			logger.Printf("extracted %d documents (%d skipped)", writer.Count(), skipped)
			return nil
		},
	}

	cmd.Flags().StringVarP(&inPath, "input", "i", "-", "input JSONL with url and html fields ('-' = stdin)")
	cmd.Flags().StringVarP(&outPath, "output", "o", "-", "output JSONL ('-' = stdout)")
	return cmd
}
