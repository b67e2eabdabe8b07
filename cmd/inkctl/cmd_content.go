package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"inkwell/internal/models"
	"inkwell/internal/services"
	"inkwell/internal/utils"
)

func newFeedCmd(c *cli) *cobra.Command {
	var category, query, sortBy, since string
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "List articles, optionally filtered by category or search text",
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := services.ParseSince(since)
			if err != nil {
				return err
			}
			articles, err := c.core.Content.Feed(cmd.Context(), c.mgr.Current(), services.FeedQuery{
				Category: category,
				Query:    query,
				Sort:     services.ParseSort(sortBy),
				Since:    from,
			})
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if ok, err := c.printJSON(w, articles); ok {
				return err
			}
			if len(articles) == 0 {
				fmt.Fprintln(w, "No articles found.")
				return nil
			}
			for _, a := range articles {
				fmt.Fprintf(w, "%-36s  %s\n", a.ID, a.Title)
				fmt.Fprintf(w, "%-36s  %s · %s · %d min · %s%d likes · %d bookmarks\n",
					"", a.Author.DisplayName, a.Category, a.ReadTime, flag(a.IsLiked, "♥ "), a.Likes, a.Bookmarks)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", models.CategoryAll, "category name ("+strings.Join(models.CategoryNames(), ", ")+")")
	cmd.Flags().StringVarP(&query, "query", "q", "", "search text")
	cmd.Flags().StringVar(&sortBy, "sort", "latest", "latest or top")
	cmd.Flags().StringVar(&since, "since", "", "only articles published on or after this date")
	return cmd
}

func flag(on bool, mark string) string {
	if on {
		return mark
	}
	return ""
}

func newReadCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "read <article-id>",
		Short: "Show an article",
		Args:  requireArg("article id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.core.Content.GetArticle(cmd.Context(), c.mgr.Current(), args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if ok, err := c.printJSON(w, a); ok {
				return err
			}
			fmt.Fprintf(w, "%s\n", a.Title)
			fmt.Fprintf(w, "by %s · %s · %s · %d min read\n", a.Author.DisplayName, a.Category, a.PublishedAt.Format("Jan 2, 2006"), a.ReadTime)
			if len(a.Tags) > 0 {
				fmt.Fprintf(w, "tags: %s\n", strings.Join(a.Tags, ", "))
			}
			fmt.Fprintf(w, "\n%s\n\n", utils.StripHTML(a.Content))
			fmt.Fprintf(w, "%d likes · %d bookmarks · %d views\n", a.Likes, a.Bookmarks, a.Views)
			return nil
		},
	}
}

func newThreadCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "thread <article-id>",
		Short: "Show an article's comments",
		Args:  requireArg("article id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			thread, err := c.core.Content.Thread(cmd.Context(), c.mgr.Current(), args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if ok, err := c.printJSON(w, thread); ok {
				return err
			}
			if len(thread) == 0 {
				fmt.Fprintln(w, "No comments yet.")
				return nil
			}
			for _, top := range thread {
				printComment(w, "", top)
				for _, r := range top.Replies {
					printComment(w, "    ", r)
				}
			}
			return nil
		},
	}
}

func printComment(w io.Writer, indent string, cm models.Comment) {
	fmt.Fprintf(w, "%s[%s] %s (%s%d likes)\n", indent, cm.ID, cm.Author.DisplayName, flag(cm.IsLiked, "♥ "), cm.Likes)
	fmt.Fprintf(w, "%s  %s\n", indent, cm.Content)
}

func newReactCmd(c *cli, kind, short string) *cobra.Command {
	return &cobra.Command{
		Use:   kind + " <article-id>",
		Short: short,
		Args:  requireArg("article id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			toggle := c.core.Content.ToggleLike
			if kind == "bookmark" {
				toggle = c.core.Content.ToggleBookmark
			}
			a, err := toggle(cmd.Context(), c.mgr.Current(), args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if ok, err := c.printJSON(w, a); ok {
				return err
			}
			if kind == "bookmark" {
				fmt.Fprintf(w, "%s: bookmarked=%t (%d bookmarks)\n", a.Title, a.IsBookmarked, a.Bookmarks)
				return nil
			}
			fmt.Fprintf(w, "%s: liked=%t (%d likes)\n", a.Title, a.IsLiked, a.Likes)
			return nil
		},
	}
}

func newCommentCmd(c *cli) *cobra.Command {
	var text, replyTo string
	cmd := &cobra.Command{
		Use:   "comment <article-id>",
		Short: "Comment on an article or reply to a comment",
		Args:  requireArg("article id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := services.CommentInput{ArticleID: args[0], Content: text}
			if replyTo != "" {
				in.ParentID = &replyTo
			}
			cm, err := c.core.Content.CreateComment(cmd.Context(), c.mgr.Current(), in)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if ok, err := c.printJSON(w, cm); ok {
				return err
			}
			fmt.Fprintf(w, "Comment %s posted.\n", cm.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&text, "text", "m", "", "comment text")
	cmd.Flags().StringVar(&replyTo, "reply-to", "", "id of the comment to reply to")
	return cmd
}

func newCommentLikeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "like-comment <comment-id>",
		Short: "Like or unlike a comment",
		Args:  requireArg("comment id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			cm, err := c.core.Content.ToggleCommentLike(cmd.Context(), c.mgr.Current(), args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if ok, err := c.printJSON(w, cm); ok {
				return err
			}
			fmt.Fprintf(w, "Comment %s: liked=%t (%d likes)\n", cm.ID, cm.IsLiked, cm.Likes)
			return nil
		},
	}
}

func newPublishCmd(c *cli) *cobra.Command {
	var (
		draft   services.ArticleDraft
		file    string
		asDraft bool
		asHTML  bool
	)
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish a markdown article",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("read %s: %w", file, err)
				}
				draft.Content = string(data)
			}
			if asDraft {
				draft.Status = models.StatusDraft
			}
			if asHTML {
				draft.Format = services.FormatHTML
			}
			a, err := c.core.Content.CreateArticle(cmd.Context(), c.mgr.Current(), draft)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if ok, err := c.printJSON(w, a); ok {
				return err
			}
			fmt.Fprintf(w, "Published %q as %s (%d min read).\n", a.Title, a.ID, a.ReadTime)
			return nil
		},
	}
	cmd.Flags().StringVar(&draft.Title, "title", "", "article title")
	cmd.Flags().StringVar(&draft.Category, "category", "", "category name")
	cmd.Flags().StringSliceVar(&draft.Tags, "tags", nil, "comma separated tags")
	cmd.Flags().StringVar(&draft.Content, "content", "", "markdown body")
	cmd.Flags().StringVar(&file, "file", "", "read the markdown body from a file")
	cmd.Flags().StringVar(&draft.CoverImage, "cover", "", "cover image URL")
	cmd.Flags().BoolVar(&asDraft, "draft", false, "save as a draft only you can see")
	cmd.Flags().BoolVar(&asHTML, "html", false, "the body is HTML rather than markdown")
	return cmd
}

func newImportCmd(c *cli) *cobra.Command {
	var req services.ImportRequest
	cmd := &cobra.Command{
		Use:   "import <feed-url>",
		Short: "Import entries of an RSS or Atom feed as your articles",
		Args:  requireArg("feed url"),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.URL = args[0]
			res, err := c.core.Import.Import(cmd.Context(), c.mgr.Current(), req)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if ok, err := c.printJSON(w, res); ok {
				return err
			}
			for _, a := range res.Imported {
				fmt.Fprintf(w, "%-36s  %s\n", a.ID, a.Title)
			}
			fmt.Fprintf(w, "Imported %d from %q, skipped %d.\n", len(res.Imported), res.Feed, res.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Category, "category", "", "category for the imported articles")
	cmd.Flags().IntVar(&req.Limit, "limit", 0, "import at most this many entries (default 10)")
	cmd.Flags().StringVar(&req.Since, "since", "", "skip entries published before this date")
	cmd.Flags().BoolVar(&req.FullText, "full-text", false, "fetch each entry's page for the full text")
	cmd.Flags().BoolVar(&req.Draft, "draft", false, "import as drafts")
	return cmd
}
