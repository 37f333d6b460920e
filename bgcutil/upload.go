/*
Copyright © 2023 the BGCData authors.
This file is part of BGCData.

BGCData is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

BGCData is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with BGCData.  If not, see <http://www.gnu.org/licenses/>.
*/

package bgcutil

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/go-cloud/blob"
	"github.com/spatialmodel/bgcdata"
)

// uploader redirects outputs under blob storage locations to temporary
// local ones, and uploads them once written.
type uploader struct {
	// dirs maps local directories to the blob locations their files are
	// uploaded to.
	dirs [][2]string
}

// maybeUploadDir returns dir if it is local, or a temporary directory
// whose files are uploaded under dir by upload.
func (u *uploader) maybeUploadDir(dir string) (string, error) {
	if !IsBlob(dir) {
		return dir, nil
	}
	local, err := ioutil.TempDir("", "bgcdata")
	if err != nil {
		return "", fmt.Errorf("bgcutil: creating temporary output directory: %v", err)
	}
	u.dirs = append(u.dirs, [2]string{local, dir})
	return local, nil
}

// upload copies the redirected outputs to blob storage.
func (u *uploader) upload(ctx context.Context) error {
	var files [][2]string
	for _, d := range u.dirs {
		err := filepath.Walk(d[0], func(p string, info os.FileInfo, err error) error {
			if err != nil || info.IsDir() {
				return err
			}
			rel, err := filepath.Rel(d[0], p)
			if err != nil {
				return err
			}
			files = append(files, [2]string{p, strings.TrimSuffix(d[1], "/") + "/" + filepath.ToSlash(rel)})
			return nil
		})
		if err != nil {
			return fmt.Errorf("bgcutil: listing outputs of %s: %v", d[0], err)
		}
	}
	for _, f := range files {
		if _, err := os.Stat(f[0]); os.IsNotExist(err) {
			continue
		}
		if err := uploadFile(ctx, f[0], f[1]); err != nil {
			return err
		}
	}
	return nil
}

func uploadFile(ctx context.Context, local, remote string) error {
	r, err := os.Open(local)
	if err != nil {
		return fmt.Errorf("bgcutil: opening file '%s' for upload: %v", local, err)
	}
	defer r.Close()
	u, err := url.Parse(remote)
	if err != nil {
		return fmt.Errorf("bgcutil: parsing url '%s' for upload: %v", remote, err)
	}
	bucket, err := OpenBucket(ctx, u.Scheme+"://"+u.Host)
	if err != nil {
		return fmt.Errorf("bgcutil: opening bucket to upload file '%s': %v", remote, err)
	}
	w, err := bucket.NewWriter(ctx, strings.TrimPrefix(u.Path, "/"), &blob.WriterOptions{})
	if err != nil {
		return fmt.Errorf("bgcutil: opening writer to upload file '%s': %v", remote, err)
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("bgcutil: uploading file '%s' to '%s': %v", local, remote, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("bgcutil: uploading file '%s' to '%s': %v", local, remote, err)
	}
	bgcdata.Log.WithField("file", remote).Info("uploaded")
	return nil
}
