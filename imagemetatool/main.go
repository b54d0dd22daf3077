package main

// imagemetatool bundles the library operations behind one command:
// clean an image, read or write the JPEG comment, list or add PNG tEXt
// chunks.

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/webimg/imagemeta"
)

func main() {
	app := &cli.Command{
		Name:  "imagemetatool",
		Usage: "JPEG/PNG metadata stripping and text fields",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			cleanCmd(),
			commentCmd(),
			textCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func outputFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "output",
		Aliases:  []string{"o"},
		Usage:    "path to write the rewritten image to",
		Required: true,
	}
}

func inputFile(cmd *cli.Command) ([]byte, string, error) {
	path := cmd.Args().First()
	if path == "" {
		return nil, "", fmt.Errorf("missing input file argument")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	return data, path, nil
}

func cleanCmd() *cli.Command {
	return &cli.Command{
		Name:      "clean",
		Usage:     "strip non-essential metadata from a JPEG or PNG file",
		ArgsUsage: "file",
		Flags:     []cli.Flag{outputFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			data, path, err := inputFile(cmd)
			if err != nil {
				return err
			}
			var cleaned []byte
			switch imagemeta.DetectFormat(data) {
			case imagemeta.FormatJPEG:
				cleaned, err = imagemeta.CleanMetadata(data)
			case imagemeta.FormatPNG:
				cleaned, err = imagemeta.CleanChunks(data)
			default:
				return fmt.Errorf("%s: unrecognized image format", path)
			}
			if err != nil {
				return err
			}
			if err := os.WriteFile(cmd.String("output"), cleaned, 0666); err != nil {
				return err
			}
			fmt.Printf("%d bytes -> %d bytes\n", len(data), len(cleaned))
			return nil
		},
	}
}

func commentCmd() *cli.Command {
	return &cli.Command{
		Name:  "comment",
		Usage: "read or write the JPEG comment segment",
		Commands: []*cli.Command{
			{
				Name:      "read",
				Usage:     "print the first comment of a JPEG file",
				ArgsUsage: "file",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					data, _, err := inputFile(cmd)
					if err != nil {
						return err
					}
					comment, found, err := imagemeta.ReadComment(data)
					if err != nil {
						return err
					}
					if !found {
						fmt.Println("(no comment)")
						return nil
					}
					fmt.Println(comment)
					return nil
				},
			},
			{
				Name:      "write",
				Usage:     "replace the comment of a JPEG file",
				ArgsUsage: "file",
				Flags: []cli.Flag{
					outputFlag(),
					&cli.StringFlag{
						Name:    "message",
						Aliases: []string{"m"},
						Usage:   "comment text (UTF-8)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					data, _, err := inputFile(cmd)
					if err != nil {
						return err
					}
					rewritten, err := imagemeta.WriteComment(data, cmd.String("message"))
					if err != nil {
						return err
					}
					return os.WriteFile(cmd.String("output"), rewritten, 0666)
				},
			},
		},
	}
}

func textCmd() *cli.Command {
	return &cli.Command{
		Name:  "text",
		Usage: "list or add PNG tEXt chunks",
		Commands: []*cli.Command{
			{
				Name:      "list",
				Usage:     "print the tEXt chunks of a PNG file",
				ArgsUsage: "file",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					data, _, err := inputFile(cmd)
					if err != nil {
						return err
					}
					chunks, err := imagemeta.ReadTextChunks(data)
					if err != nil {
						return err
					}
					for _, c := range chunks {
						fmt.Printf("%s: %s\n", c.Keyword, c.Text)
					}
					return nil
				},
			},
			{
				Name:      "add",
				Usage:     "append a tEXt chunk to a PNG file",
				ArgsUsage: "file",
				Flags: []cli.Flag{
					outputFlag(),
					&cli.StringFlag{
						Name:     "keyword",
						Aliases:  []string{"k"},
						Usage:    "tEXt keyword (1-79 ASCII alphanumeric or space characters)",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "value",
						Aliases: []string{"t"},
						Usage:   "tEXt text (UTF-8)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					data, _, err := inputFile(cmd)
					if err != nil {
						return err
					}
					rewritten, err := imagemeta.AddTextChunk(data, cmd.String("keyword"), cmd.String("value"))
					if err != nil {
						return err
					}
					return os.WriteFile(cmd.String("output"), rewritten, 0666)
				},
			},
		},
	}
}
