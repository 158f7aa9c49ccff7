// Package assets downloads the landmark model the detector needs.
package assets

import (
	"compress/bzip2"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/WIZARDISHUNGRY/eye-overlay/internal/logger"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
)

const (
	ModelURL  = "http://dlib.net/files/shape_predictor_68_face_landmarks.dat.bz2"
	ModelFile = "shape_predictor_68_face_landmarks.dat"
)

type Fetcher struct {
	Client   *http.Client
	URL      string
	Progress io.Writer // progress bar output, nil to disable
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		Client:   http.DefaultClient,
		URL:      ModelURL,
		Progress: os.Stderr,
	}
}

// ModelPath is where Fetch stores the model inside dir.
func ModelPath(dir string) string {
	return filepath.Join(dir, ModelFile)
}

// Fetch makes sure the extracted model exists in dir and returns its path.
// Nothing is downloaded when the model is already there.
func (f *Fetcher) Fetch(ctx context.Context, dir string) (string, error) {
	log := logger.Entry(ctx).WithField("component", "assets")
	dat := ModelPath(dir)

	if _, err := os.Stat(dat); err == nil {
		log.WithField("path", dat).Debug("model present")
		return dat, nil
	} else if !os.IsNotExist(err) {
		return "", errors.Wrap(err, "os.Stat")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrap(err, "os.MkdirAll")
	}

	archive := dat + ".bz2"
	log.WithField("url", f.URL).Info("downloading model")
	if err := f.download(ctx, archive); err != nil {
		os.Remove(archive)
		return "", err
	}

	log.WithField("path", dat).Info("extracting model")
	if err := extract(archive, dat); err != nil {
		os.Remove(archive)
		return "", err
	}
	if err := os.Remove(archive); err != nil {
		return "", errors.Wrap(err, "removing archive")
	}
	return dat, nil
}

func (f *Fetcher) download(ctx context.Context, dst string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return errors.Wrap(err, "http.NewRequest")
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return errors.Wrap(err, "client.Do")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad http code %d", resp.StatusCode)
	}

	out, err := os.Create(dst)
	if err != nil {
		return errors.Wrap(err, "os.Create")
	}
	defer out.Close()

	var w io.Writer = out
	if f.Progress != nil {
		bar := progressbar.NewOptions64(resp.ContentLength,
			progressbar.OptionSetDescription("Downloading model"),
			progressbar.OptionSetWriter(f.Progress),
			progressbar.OptionShowBytes(true),
		)
		defer bar.Finish()
		w = io.MultiWriter(out, bar)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return errors.Wrap(err, "download")
	}
	return out.Close()
}

// extract decompresses archive into dst. dst only appears once it is complete.
func extract(archive, dst string) error {
	in, err := os.Open(archive)
	if err != nil {
		return errors.Wrap(err, "os.Open")
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), filepath.Base(dst)+".*")
	if err != nil {
		return errors.Wrap(err, "os.CreateTemp")
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, bzip2.NewReader(in)); err != nil {
		tmp.Close()
		return errors.Wrap(err, "bzip2")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close")
	}
	return errors.Wrap(os.Rename(tmp.Name(), dst), "os.Rename")
}
