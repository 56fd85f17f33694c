package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/itchan-dev/tunetag/internal/store"
	"github.com/itchan-dev/tunetag/shared/domain"
	"github.com/spf13/cobra"
)

var (
	description string
	tags        []string
	showHTML    bool
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account with the configured credentials",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		u, p, err := cli.credentials()
		if err != nil {
			return err
		}
		cli.auth.Register(cmd.Context(), u, p)
		if err := storeError(cli.auth.Err()); err != nil {
			return err
		}
		user, _ := cli.auth.CurrentUser()
		fmt.Fprintln(cmd.OutOrStdout(), user)
		return nil
	},
}

var deleteUserCmd = &cobra.Command{
	Use:   "delete-user",
	Short: "Delete the configured account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		u, p, err := cli.credentials()
		if err != nil {
			return err
		}
		cli.auth.DeleteUser(cmd.Context(), u, p)
		return storeError(cli.auth.Err())
	},
}

var changePasswordCmd = &cobra.Command{
	Use:   "change-password NEW_PASSWORD",
	Short: "Change the password of the configured account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, p, err := cli.credentials()
		if err != nil {
			return err
		}
		cli.auth.ChangePassword(cmd.Context(), u, p, args[0])
		return storeError(cli.auth.Err())
	},
}

var whoisCmd = &cobra.Command{
	Use:   "whois USER_ID",
	Short: "Print the username of a user id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, ok := cli.auth.GetUserByID(cmd.Context(), args[0])
		if !ok {
			return storeError(cli.auth.Err())
		}
		fmt.Fprintln(cmd.OutOrStdout(), name)
		return nil
	},
}

var uploadCmd = &cobra.Command{
	Use:   "upload FILE",
	Short: "Upload a file and publish it as a tagged composition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cli.login(ctx); err != nil {
			return err
		}

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		info, err := f.Stat()
		if err != nil {
			return err
		}

		fileId, ok := cli.files.UploadFile(ctx, store.Upload{
			Name: filepath.Base(args[0]),
			Body: f,
			Size: info.Size(),
		})
		if !ok {
			return storeError(cli.files.Err())
		}

		if _, ok := cli.compositions.CreateComposition(ctx, store.NewComposition{
			FileID:      fileId,
			Description: description,
			Tags:        tags,
		}); !ok {
			return fmt.Errorf("file %s uploaded, but %s", fileId, cli.compositions.Err())
		}
		if !cli.comments.RegisterResource(ctx, fileId) {
			return fmt.Errorf("file %s uploaded, but %s", fileId, cli.comments.Err())
		}
		fmt.Fprintln(cmd.OutOrStdout(), fileId)
		return nil
	},
}

var compositionsCmd = &cobra.Command{
	Use:   "compositions [USER_ID]",
	Short: "List the compositions of a user (default: the logged in user)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		var user domain.UserId
		if len(args) == 1 {
			user = args[0]
		} else {
			if err := cli.login(ctx); err != nil {
				return err
			}
			user, _ = cli.auth.CurrentUser()
		}

		list := cli.compositions.GetCompositionsByUser(ctx, user)
		if err := storeError(cli.compositions.Err()); err != nil {
			return err
		}
		for _, c := range list {
			fmt.Fprintln(cmd.OutOrStdout(), c.String())
		}
		return nil
	},
}

var compositionCmd = &cobra.Command{
	Use:   "composition FILE_ID",
	Short: "Show one composition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		// a session only warms the cache
		if _, _, err := cli.credentials(); err == nil {
			if err := cli.login(ctx); err != nil {
				return err
			}
		}

		c := cli.compositions.FetchComposition(ctx, args[0])
		if c == nil {
			return storeError(cli.compositions.Err())
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "id:          %s\n", c.Id)
		fmt.Fprintf(out, "file:        %s\n", c.FileName)
		fmt.Fprintf(out, "owner:       %s\n", c.Owner)
		fmt.Fprintf(out, "url:         %s\n", c.Url)
		fmt.Fprintf(out, "description: %s\n", c.Description)
		fmt.Fprintf(out, "tags:        %s\n", strings.Join(c.Tags, ", "))
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search TAG...",
	Short: "Find compositions carrying every given tag",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		results := cli.compositions.SearchCompositions(cmd.Context(), args)
		if err := storeError(cli.compositions.Err()); err != nil {
			return err
		}
		for _, r := range results {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t[%s]\n", r.Resource, r.Description, strings.Join(r.Tags, ", "))
		}
		return nil
	},
}

var commentsCmd = &cobra.Command{
	Use:   "comments RESOURCE",
	Short: "List the comments of a resource with their tags",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cli.comments.FetchComments(cmd.Context(), args[0])
		state := cli.comments.State()
		if err := storeError(state.Error); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, c := range state.Comments {
			text := c.Text
			if showHTML {
				text = strings.TrimSpace(string(c.HTML))
			}
			fmt.Fprintf(out, "%s %s %s [%s]\n%s\n\n", c.Id, c.Date, c.Commenter, strings.Join(c.Tags, ", "), text)
		}
		return nil
	},
}

var commentCmd = &cobra.Command{
	Use:   "comment RESOURCE TEXT",
	Short: "Comment on a resource",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cli.login(ctx); err != nil {
			return err
		}
		id, ok := cli.comments.AddComment(ctx, args[0], args[1], tags)
		if !ok {
			return storeError(cli.comments.Err())
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

var uncommentCmd = &cobra.Command{
	Use:   "uncomment RESOURCE COMMENT_ID",
	Short: "Remove one of your comments",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cli.login(ctx); err != nil {
			return err
		}
		if !cli.comments.RemoveComment(ctx, args[1], args[0]) {
			return storeError(cli.comments.Err())
		}
		return nil
	},
}

var viewUrlCmd = &cobra.Command{
	Use:   "view-url OBJECT_NAME",
	Short: "Print a URL the stored object can be fetched from",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		viewUrl, ok := cli.files.GetViewURL(cmd.Context(), args[0])
		if !ok {
			return storeError(cli.files.Err())
		}
		fmt.Fprintln(cmd.OutOrStdout(), viewUrl)
		return nil
	},
}

func init() {
	uploadCmd.Flags().StringVarP(&description, "description", "d", "", "composition description")
	uploadCmd.Flags().StringSliceVarP(&tags, "tags", "t", nil, "comma separated tags")
	commentCmd.Flags().StringSliceVarP(&tags, "tags", "t", nil, "comma separated tags")
	commentsCmd.Flags().BoolVar(&showHTML, "html", false, "print rendered HTML instead of the raw text")

	rootCmd.AddCommand(
		registerCmd,
		deleteUserCmd,
		changePasswordCmd,
		whoisCmd,
		uploadCmd,
		compositionsCmd,
		compositionCmd,
		searchCmd,
		commentsCmd,
		commentCmd,
		uncommentCmd,
		viewUrlCmd,
	)
}
