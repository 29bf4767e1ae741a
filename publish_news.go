package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dwusrc/dwu-src-web-application-sub002/internal/models"
	"github.com/dwusrc/dwu-src-web-application-sub002/pkg/logger"
)

var (
	newsAuthor   string
	newsTitle    string
	newsSummary  string
	newsContent  string
	newsImageURL string
	newsDraft    bool
)

var publishNewsCmd = &cobra.Command{
	Use:   "publish-news",
	Short: "Post a news article to the portal feed",
	Example: `  src-portal publish-news --author pres@dwu.ac.pg --title "Elections" --content "Nominations open Monday."
  src-portal publish-news --author pres@dwu.ac.pg --title "Budget" --content "..." --draft`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, _, err := build(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close(cmd.Context())

		author, err := app.Identity.Lookup(cmd.Context(), newsAuthor)
		if err != nil {
			return err
		}
		if author == nil {
			return fmt.Errorf("no account for %s", newsAuthor)
		}
		a := &models.NewsArticle{
			Title:     newsTitle,
			Summary:   newsSummary,
			Content:   newsContent,
			AuthorID:  author.ID,
			ImageURL:  newsImageURL,
			Published: !newsDraft,
		}
		if err := app.News.Publish(cmd.Context(), a); err != nil {
			return err
		}
		logger.Infof("news article %s stored (published=%v)", a.ID, a.Published)
		return nil
	},
}

func init() {
	publishNewsCmd.Flags().StringVar(&newsAuthor, "author", "", "author account email")
	publishNewsCmd.Flags().StringVar(&newsTitle, "title", "", "headline")
	publishNewsCmd.Flags().StringVar(&newsSummary, "summary", "", "short teaser")
	publishNewsCmd.Flags().StringVar(&newsContent, "content", "", "article body")
	publishNewsCmd.Flags().StringVar(&newsImageURL, "image-url", "", "optional cover image URL")
	publishNewsCmd.Flags().BoolVar(&newsDraft, "draft", false, "store without publishing")
	for _, f := range []string{"author", "title", "content"} {
		_ = publishNewsCmd.MarkFlagRequired(f)
	}
}
