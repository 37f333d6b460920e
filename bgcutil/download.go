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
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/cenkalti/backoff"
	"github.com/google/go-cloud/blob"
	"github.com/google/go-cloud/blob/fileblob"
	"github.com/google/go-cloud/blob/gcsblob"
	"github.com/google/go-cloud/blob/s3blob"
	"github.com/google/go-cloud/gcp"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/bgcdata"
)

// retryPolicy returns the back off between download attempts.
var retryPolicy = func() backoff.BackOff {
	return backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5)
}

// maybeDownload returns path if it is a local file. HTTP URLs and blobs
// are downloaded to a temporary directory and the path of the download
// is returned. Shapefiles are downloaded with their .dbf, .shx and .prj
// files.
func maybeDownload(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return path, nil
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return download(path, expandShp(path), func(name string) (io.ReadCloser, error) {
			resp, err := http.Get(name)
			if err != nil {
				return nil, err
			}
			if resp.StatusCode != http.StatusOK {
				resp.Body.Close()
				return nil, fmt.Errorf("bgcutil: downloading %s: %s", name, resp.Status)
			}
			return resp.Body, nil
		})
	}
	if IsBlob(path) {
		u, err := url.Parse(path)
		if err != nil {
			return "", fmt.Errorf("bgcutil: parsing %s: %v", path, err)
		}
		bucket, err := OpenBucket(ctx, u.Scheme+"://"+u.Host)
		if err != nil {
			return "", err
		}
		return download(path, expandShp(strings.TrimPrefix(u.Path, "/")), func(name string) (io.ReadCloser, error) {
			return bucket.NewReader(ctx, name)
		})
	}
	return path, nil
}

// download copies the files named names, opened with open, to a temporary
// directory and returns the path of the first one.
func download(path string, names []string, open func(name string) (io.ReadCloser, error)) (string, error) {
	dir, err := ioutil.TempDir("", "bgcdata")
	if err != nil {
		return "", fmt.Errorf("bgcutil: creating temporary download directory: %v", err)
	}
	for _, name := range names {
		local := filepath.Join(dir, filepath.Base(name))
		err := backoff.RetryNotify(
			func() error {
				r, err := open(name)
				if err != nil {
					return err
				}
				defer r.Close()
				w, err := os.Create(local)
				if err != nil {
					return err
				}
				if _, err := io.Copy(w, r); err != nil {
					w.Close()
					return err
				}
				return w.Close()
			},
			retryPolicy(),
			func(err error, d time.Duration) {
				bgcdata.Log.WithFields(logrus.Fields{"file": name, "retry_in": d}).Warn(err)
			},
		)
		if err != nil {
			return "", fmt.Errorf("bgcutil: downloading %s: %v", path, err)
		}
	}
	bgcdata.Log.WithFields(logrus.Fields{"file": path, "dir": dir}).Info("downloaded")
	return filepath.Join(dir, filepath.Base(names[0])), nil
}

// IsBlob returns whether path is a blob, starting with "gs://", "s3://" or
// "file://".
func IsBlob(path string) bool {
	return strings.HasPrefix(path, "gs://") || strings.HasPrefix(path, "s3://") || strings.HasPrefix(path, "file://")
}

// OpenBucket returns the blob storage bucket bucketName, formatted as
// "provider://name". Only the host part of bucketName names the bucket.
// The providers are "file" for the local filesystem, "gs" for Google Cloud
// Storage and "s3" for AWS S3.
func OpenBucket(ctx context.Context, bucketName string) (*blob.Bucket, error) {
	u, err := url.Parse(bucketName)
	if err != nil {
		return nil, fmt.Errorf("bgcutil.OpenBucket: %v", err)
	}
	switch u.Scheme {
	case "file":
		return fileblob.NewBucket(u.Hostname())
	case "gs":
		return gsBucket(ctx, u.Hostname())
	case "s3":
		return s3Bucket(ctx, u.Hostname())
	default:
		return nil, fmt.Errorf("bgcutil.OpenBucket: invalid provider %s", u.Scheme)
	}
}

func gsBucket(ctx context.Context, name string) (*blob.Bucket, error) {
	creds, err := gcp.DefaultCredentials(ctx)
	if err != nil {
		return nil, err
	}
	c, err := gcp.NewHTTPClient(gcp.DefaultTransport(), gcp.CredentialsTokenSource(creds))
	if err != nil {
		return nil, err
	}
	return gcsblob.OpenBucket(ctx, name, c)
}

// s3Bucket opens an S3 bucket with the credentials of the AWS_ACCESS_KEY_ID
// and AWS_SECRET_ACCESS_KEY environment variables, in region AWS_REGION.
func s3Bucket(ctx context.Context, name string) (*blob.Bucket, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "eu-north-1"
	}
	c := &aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewEnvCredentials(),
	}
	s, err := session.NewSession(c)
	if err != nil {
		return nil, err
	}
	return s3blob.OpenBucket(ctx, s, name)
}

// expandShp returns filename and, for shapefiles, the .dbf, .shx and .prj
// files going with it.
func expandShp(filename string) []string {
	o := []string{filename}
	if filepath.Ext(filename) != ".shp" {
		return o
	}
	base := strings.TrimSuffix(filename, ".shp")
	for _, ext := range []string{".dbf", ".shx", ".prj"} {
		o = append(o, base+ext)
	}
	return o
}
