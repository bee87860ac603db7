package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/fiapx/fiapx-video-events/internal/infra/broker"
	"github.com/fiapx/fiapx-video-events/internal/infra/config"
	"github.com/fiapx/fiapx-video-events/internal/infra/postgres"
	"github.com/fiapx/fiapx-video-events/internal/infra/storage"
	"github.com/fiapx/fiapx-video-events/internal/usecase"
	"github.com/fiapx/fiapx-video-events/pkg/logger"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const usage = `usage:
  videoctl upload   -user <id> -file <path>
  videoctl list     -user <id>
  videoctl download -user <id> -video <id> [-out <path>]`

type command struct {
	name    string
	userID  string
	file    string
	videoID string
	out     string
}

var errUsage = errors.New(usage)

func parseCommand(args []string) (command, error) {
	if len(args) == 0 {
		return command{}, errUsage
	}

	cmd := command{name: args[0]}
	fs := flag.NewFlagSet(cmd.name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&cmd.userID, "user", "", "owner user id")

	switch cmd.name {
	case "upload":
		fs.StringVar(&cmd.file, "file", "", "video file to upload")
	case "list":
	case "download":
		fs.StringVar(&cmd.videoID, "video", "", "video id")
		fs.StringVar(&cmd.out, "out", "", "output path (default <video>.zip)")
	default:
		return command{}, fmt.Errorf("unknown command %q\n%w", cmd.name, errUsage)
	}

	if err := fs.Parse(args[1:]); err != nil {
		return command{}, fmt.Errorf("%v\n%w", err, errUsage)
	}
	if cmd.userID == "" {
		return command{}, fmt.Errorf("-user is required\n%w", errUsage)
	}
	if cmd.name == "upload" && cmd.file == "" {
		return command{}, fmt.Errorf("-file is required\n%w", errUsage)
	}
	if cmd.name == "download" {
		if cmd.videoID == "" {
			return command{}, fmt.Errorf("-video is required\n%w", errUsage)
		}
		if cmd.out == "" {
			cmd.out = cmd.videoID + ".zip"
		}
	}
	return cmd, nil
}

func main() {
	cmd, err := parseCommand(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := run(cmd); err != nil {
		fmt.Fprintln(os.Stderr, "videoctl:", err)
		os.Exit(1)
	}
}

func run(cmd command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.RequireDatabase(); err != nil {
		return err
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	fileStorage, err := storage.New(ctx, cfg.StorageOptions(), log)
	if err != nil {
		return err
	}

	publisher := broker.NewPublisher(cfg.BrokerOptions(""), log)
	if cmd.name == "upload" {
		if err := publisher.Connect(ctx); err != nil {
			log.Warn("publisher unavailable, upload event will not be sent", zap.Error(err))
		}
		defer publisher.Disconnect()
	}

	uc := usecase.NewUploadVideoUseCase(postgres.NewVideoRepository(pool), fileStorage, publisher, log)

	switch cmd.name {
	case "upload":
		return upload(ctx, uc, cmd)
	case "list":
		return list(ctx, uc, cmd)
	default:
		return download(ctx, uc, cmd)
	}
}

func upload(ctx context.Context, uc *usecase.UploadVideoUseCase, cmd command) error {
	data, err := os.ReadFile(cmd.file)
	if err != nil {
		return err
	}

	video, err := uc.Upload(ctx, usecase.UploadVideoInput{
		UserID:      cmd.userID,
		Filename:    filepath.Base(cmd.file),
		ContentType: mime.TypeByExtension(filepath.Ext(cmd.file)),
		Data:        data,
	})
	if err != nil {
		return err
	}

	fmt.Printf("uploaded %s as %s (%s)\n", video.Filename, video.ID, video.StorageKey)
	return nil
}

func list(ctx context.Context, uc *usecase.UploadVideoUseCase, cmd command) error {
	videos, err := uc.List(ctx, cmd.userID)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFILENAME\tSTATUS\tCREATED")
	for _, v := range videos {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", v.ID, v.Filename, v.Status, v.CreatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}

func download(ctx context.Context, uc *usecase.UploadVideoUseCase, cmd command) error {
	dl, err := uc.GetDownload(ctx, cmd.userID, cmd.videoID)
	if err != nil {
		return err
	}
	if err := os.WriteFile(cmd.out, dl.Content, 0o644); err != nil {
		return err
	}

	fmt.Printf("saved frames of %s to %s\n", dl.Filename, cmd.out)
	return nil
}
