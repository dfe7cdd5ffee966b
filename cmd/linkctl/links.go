package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	grpcserver "github.com/atinyakov/linkshort/internal/app/server/grpc"
)

func createCmd(opts *rootOptions) *cobra.Command {
	var code string

	command := &cobra.Command{
		Use:     "create <url>",
		Short:   "shorten a url",
		Example: "linkctl create https://example.com/docs -c docs01",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := structpb.NewStruct(map[string]any{"url": args[0], "code": code})
			if err != nil {
				return err
			}

			return opts.withClient(func(ctx context.Context, client *grpcserver.LinkDirectoryClient) error {
				link, err := client.Create(ctx, req)
				if err != nil {
					return err
				}

				fmt.Fprintln(opts.out, link.GetFields()["short_url"].GetStringValue())
				return nil
			})
		},
	}

	command.Flags().StringVarP(&code, "code", "c", "", "custom code, 6-8 alphanumeric characters")

	return command
}

func listCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list links, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withClient(func(ctx context.Context, client *grpcserver.LinkDirectoryClient) error {
				links, err := client.List(ctx, &emptypb.Empty{})
				if err != nil {
					return err
				}

				table := tabwriter.NewWriter(opts.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(table, "CODE\tCLICKS\tLAST CLICK\tCREATED\tTARGET")
				for _, v := range links.GetValues() {
					printRow(table, v.GetStructValue())
				}
				return table.Flush()
			})
		},
	}
}

func getCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <code>",
		Short: "show one link with its click stats",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withClient(func(ctx context.Context, client *grpcserver.LinkDirectoryClient) error {
				link, err := client.Get(ctx, wrapperspb.String(args[0]))
				if err != nil {
					return err
				}

				table := tabwriter.NewWriter(opts.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(table, "CODE\tCLICKS\tLAST CLICK\tCREATED\tTARGET")
				printRow(table, link)
				return table.Flush()
			})
		},
	}
}

func deleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <code>",
		Short: "delete a link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withClient(func(ctx context.Context, client *grpcserver.LinkDirectoryClient) error {
				if _, err := client.Delete(ctx, wrapperspb.String(args[0])); err != nil {
					return err
				}

				fmt.Fprintf(opts.out, "deleted %s\n", args[0])
				return nil
			})
		},
	}
}

func resolveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <code>",
		Short: "print the target of a code, counting it as a click",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withClient(func(ctx context.Context, client *grpcserver.LinkDirectoryClient) error {
				target, err := client.Redirect(ctx, wrapperspb.String(args[0]))
				if err != nil {
					return err
				}

				fmt.Fprintln(opts.out, target.GetValue())
				return nil
			})
		},
	}
}

func printRow(table *tabwriter.Writer, link *structpb.Struct) {
	fields := link.GetFields()

	lastClick := fields["last_clicked_at"].GetStringValue()
	if lastClick == "" {
		lastClick = "-"
	}

	fmt.Fprintf(table, "%s\t%d\t%s\t%s\t%s\n",
		fields["code"].GetStringValue(),
		int64(fields["total_clicks"].GetNumberValue()),
		lastClick,
		fields["created_at"].GetStringValue(),
		fields["target_url"].GetStringValue(),
	)
}
