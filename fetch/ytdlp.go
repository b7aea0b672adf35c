package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/lrstanley/go-ytdlp"
	"github.com/schollz/progressbar/v3"
)

const progressInterval = 500 * time.Millisecond

// YtDlp runs jobs with the yt-dlp executable.
type YtDlp struct {
	// Executable is the path to yt-dlp; if empty, go-ytdlp looks it up.
	Executable string
	// Progress shows a progress bar on stderr while downloading.
	Progress bool
}

// Install downloads a yt-dlp build into go-ytdlp's cache if none is available, and returns its path.
func Install(ctx context.Context) (string, error) {
	resolved, err := ytdlp.Install(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to install yt-dlp: %w", err)
	}
	return resolved.Executable, nil
}

func (y *YtDlp) command(job Job) *ytdlp.Command {
	cmd := ytdlp.New().
		Format(job.Format).
		MergeOutputFormat(job.MergeFormat).
		Output(job.Output)
	if y.Executable != "" {
		cmd.SetExecutable(y.Executable)
	}
	return cmd
}

func (y *YtDlp) Run(ctx context.Context, job Job) error {
	cmd := y.command(job)

	if y.Progress {
		bar := progressbar.DefaultBytes(-1, "downloading")
		defer func() { _ = bar.Finish() }()
		cmd.ProgressFunc(progressInterval, func(update ytdlp.ProgressUpdate) {
			if update.TotalBytes > 0 && bar.GetMax() != update.TotalBytes {
				bar.ChangeMax(update.TotalBytes)
			}
			_ = bar.Set(update.DownloadedBytes)
		})
	}

	if _, err := cmd.Run(ctx, job.ManifestURL); err != nil {
		return err
	}
	return nil
}
