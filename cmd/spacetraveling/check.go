package main

import (
	"fmt"
	"net/http"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/eringen/spacetraveling"
	"github.com/eringen/spacetraveling/prismic"
)

// checkCmd queries the repository the way the server does and prints what
// it got, so a misconfigured endpoint or token shows up before deploy.
func checkCmd() *cobra.Command {
	var pages int
	var uid string

	c := &cobra.Command{
		Use:   "check",
		Short: "Fetch posts from the CMS and print them",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := spacetraveling.ConfigFromEnv()
			if err := cfg.Validate(); err != nil {
				return err
			}

			opts := []prismic.Option{prismic.WithHTTPClient(&http.Client{Timeout: cfg.FetchTimeout})}
			if cfg.PrismicAccessToken != "" {
				opts = append(opts, prismic.WithAccessToken(cfg.PrismicAccessToken))
			}
			client, err := prismic.New(cfg.PrismicEndpoint, opts...)
			if err != nil {
				return err
			}
			src := spacetraveling.NewCMSSource(client, cfg.PostType)
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if uid != "" {
				post, err := src.Post(ctx, uid, "")
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s\n%s\n%s, %d min\n", post.Title, post.Author,
					spacetraveling.FormatDateTitle(post.FirstPublicationDate, cfg.Locale),
					spacetraveling.ReadingTime(post.Content, cfg.WordsPerMinute))
				return nil
			}

			page, err := src.FirstPage(ctx, cfg.PageSize, "")
			if err != nil {
				return err
			}
			for i := 1; i < pages && page.HasMore(); i++ {
				next, err := src.NextPage(ctx, page.NextPage)
				if err != nil {
					return err
				}
				page = page.Append(next)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "UID\tTITLE\tAUTHOR\tDATE")
			for _, p := range page.Results {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.UID, p.Title, p.Author,
					spacetraveling.FormatDate(p.FirstPublicationDate, cfg.Locale))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if page.HasMore() {
				fmt.Fprintf(out, "\nnext page: %s\n", page.NextPage)
			}
			return nil
		},
	}

	c.Flags().IntVarP(&pages, "pages", "p", 1, "number of pages to walk")
	c.Flags().StringVar(&uid, "uid", "", "print a single post instead of the list")
	return c
}
