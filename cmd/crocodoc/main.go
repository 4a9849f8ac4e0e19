package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"

	"github.com/frusdelion/crocodoc/config"
	"github.com/frusdelion/crocodoc/pkg/client"
	"github.com/frusdelion/crocodoc/pkg/otel"
)

func main() {
	configFlag := flag.String("config", "", "config file")
	accountFlag := flag.String("account", "", "account name in config file")
	urlFlag := flag.String("url", os.Getenv("CROCODOC_URL"), "api url")
	tokenFlag := flag.String("token", os.Getenv("CROCODOC_TOKEN"), "api token")

	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: crocodoc [flags] upload <url|file>")
		fmt.Fprintln(os.Stderr, "       crocodoc [flags] status <uuid> [uuid...]")
		fmt.Fprintln(os.Stderr, "       crocodoc [flags] delete <uuid>")
		flag.PrintDefaults()
	}

	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	shutdown, err := otel.Setup(ctx, "crocodoc")

	if err != nil {
		panic(err)
	}

	defer shutdown(context.Background())

	c, err := newClient(*configFlag, *accountFlag, *urlFlag, *tokenFlag)

	if err != nil {
		fail(err)
	}

	args := flag.Args()

	if len(args) < 2 {
		flag.Usage()
		os.Exit(2)
	}

	switch args[0] {
	case "upload":
		err = upload(ctx, c, args[1])

	case "status":
		err = status(ctx, c, args[1:])

	case "delete":
		err = remove(ctx, c, args[1])

	default:
		flag.Usage()
		os.Exit(2)
	}

	if err != nil {
		fail(err)
	}
}

func newClient(path, account, url, token string) (*client.Client, error) {
	if path == "" {
		return client.New(url,
			client.WithToken(token),
			client.WithClient(otel.HTTPClient()),
			client.WithMiddleware(otel.Middleware("crocodoc")),
		), nil
	}

	cfg, err := config.Parse(path)

	if err != nil {
		return nil, err
	}

	c, err := cfg.Client(account)

	if err != nil {
		return nil, err
	}

	var overrides []client.RequestOption

	if url != "" {
		overrides = append(overrides, client.WithURL(url))
	}

	if token != "" {
		overrides = append(overrides, client.WithToken(token))
	}

	c.Documents.Options = append(slices.Clip(c.Documents.Options), overrides...)

	return c, nil
}

func upload(ctx context.Context, c *client.Client, source string) error {
	var uuid string
	var err error

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		uuid, err = c.Documents.UploadURL(ctx, source)
	} else {
		f, ferr := os.Open(source)

		if ferr != nil {
			return ferr
		}

		defer f.Close()

		uuid, err = c.Documents.UploadFile(ctx, filepath.Base(source), f)
	}

	if err != nil {
		return err
	}

	fmt.Println(uuid)
	return nil
}

func status(ctx context.Context, c *client.Client, uuids []string) error {
	if len(uuids) == 1 {
		result, err := c.Documents.Status(ctx, uuids[0])

		if err != nil {
			return err
		}

		printStatus(*result)
		return nil
	}

	results, err := c.Documents.StatusMany(ctx, uuids)

	if err != nil {
		return err
	}

	for _, result := range results {
		printStatus(result)
	}

	return nil
}

func printStatus(result client.StatusResult) {
	if result.Err != nil {
		fmt.Printf("%s\terror\t%s\n", result.UUID, result.Err.Message)
		return
	}

	fmt.Printf("%s\t%s\tviewable=%t\n", result.UUID, result.Document.Status, result.Document.Viewable)
}

func remove(ctx context.Context, c *client.Client, uuid string) error {
	ok, err := c.Documents.Delete(ctx, uuid)

	if err != nil {
		return err
	}

	if !ok {
		return errors.New("document not deleted: " + uuid)
	}

	fmt.Println("deleted", uuid)
	return nil
}

func fail(err error) {
	slog.Error("request failed", "error", err)
	os.Exit(1)
}
