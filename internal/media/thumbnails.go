package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"

	"video-library/internal/logging"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

const (
	// Thumbnails are bounded to this edge length; smaller uploads are
	// kept at their native size.
	maxThumbEdge = 640

	jpegQuality = 85

	captureTimeout = 20 * time.Second
)

// ErrBadRef is returned when a stored thumbnail reference does not name
// a plain file inside the thumbnail directory.
var ErrBadRef = errors.New("invalid thumbnail reference")

var logger = logging.ForComponent("media")

// Thumbnails stores custom and auto-captured thumbnail images as JPEG
// files under a single directory. References handed back to the catalog
// are bare filenames.
type Thumbnails struct {
	dir string
	mu  sync.Mutex
}

func NewThumbnails(dir string) (*Thumbnails, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create thumbnail dir: %w", err)
	}
	return &Thumbnails{dir: dir}, nil
}

// SaveCustom decodes an uploaded image, bounds it to the thumbnail size
// and stores it for the given video. It returns the reference to store
// in the catalog.
func (t *Thumbnails) SaveCustom(id string, r io.Reader) (string, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}
	return t.write(id+"_custom.jpg", img)
}

// RemoveCustom deletes the stored custom thumbnail for a video. A
// missing file is not an error.
func (t *Thumbnails) RemoveCustom(id string) error {
	err := os.Remove(filepath.Join(t.dir, id+"_custom.jpg"))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// CaptureAuto extracts a frame from the video file with ffmpeg and
// stores it as the video's automatic thumbnail.
func (t *Thumbnails) CaptureAuto(ctx context.Context, id, videoPath string) (string, error) {
	img, err := captureFrame(ctx, videoPath)
	if err != nil {
		return "", err
	}
	return t.write(id+"_auto.jpg", img)
}

// Path resolves a stored reference to an absolute file path. References
// containing path separators are rejected.
func (t *Thumbnails) Path(ref string) (string, error) {
	if ref == "" || strings.ContainsAny(ref, `/\`) || ref != filepath.Base(ref) {
		return "", ErrBadRef
	}
	return filepath.Join(t.dir, ref), nil
}

func (t *Thumbnails) write(name string, img image.Image) (string, error) {
	bounds := img.Bounds()
	if bounds.Dx() > maxThumbEdge || bounds.Dy() > maxThumbEdge {
		img = imaging.Fit(img, maxThumbEdge, maxThumbEdge, imaging.Lanczos)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	path := filepath.Join(t.dir, name)
	if err := imaging.Save(img, path, imaging.JPEGQuality(jpegQuality)); err != nil {
		return "", fmt.Errorf("failed to write thumbnail: %w", err)
	}
	logger.Debug("Thumbnail written: %s", path)
	return name, nil
}

// captureFrame asks ffmpeg for a single frame one second in. Very short
// clips have no frame at that offset, so a second attempt without the
// seek covers them.
func captureFrame(ctx context.Context, videoPath string) (image.Image, error) {
	ctx, cancel := context.WithTimeout(ctx, captureTimeout)
	defer cancel()

	frame, err := runFFmpeg(ctx, "-ss", "00:00:01", "-i", videoPath)
	if err != nil {
		logger.Debug("Frame capture at offset failed for %s: %v", videoPath, err)
		frame, err = runFFmpeg(ctx, "-i", videoPath)
	}
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(frame))
	if err != nil {
		return nil, fmt.Errorf("failed to decode captured frame: %w", err)
	}
	return img, nil
}

func runFFmpeg(ctx context.Context, inputArgs ...string) ([]byte, error) {
	args := append(inputArgs,
		"-vframes", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg failed: %v, stderr: %s", err, strings.TrimSpace(stderr.String()))
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg produced no output")
	}
	return stdout.Bytes(), nil
}
