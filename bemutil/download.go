/*
Copyright © 2025 the BEM authors.
This file is part of BEM.

BEM is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

BEM is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with BEM.  If not, see <http://www.gnu.org/licenses/>.
*/


package bemutil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spatialmodel/bem/cloud"
)

// isRemote returns whether p is a URL or a blob storage location.
func isRemote(p string) bool {
	return strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") || cloud.IsBlob(p)
}

// maybeDownload checks if the input is an existing file locally.
// If not, it checks if the file is a URL or a blob storage location.
// If it is, it downloads the file and returns the path to the
// downloaded file.
// c, if not nil, is a channel across which error and
// logging messages will be sent.
func maybeDownload(ctx context.Context, p string, c chan string) string {
	// Check if local file exists. If it does, return the given path.
	if _, err := os.Stat(p); !os.IsNotExist(err) {
		return p
	}
	if !isRemote(p) {
		return p
	}

	// Prepare a temporary directory for the download.
	dir, err := os.MkdirTemp("", "bem")
	if err != nil {
		send(c, fmt.Sprintf("bem: failed creating temporary download directory: %v\n", err))
		return p
	}

	if cloud.IsBlob(p) {
		f, err := cloud.Download(ctx, p, dir)
		if err != nil {
			send(c, err.Error()+"\n")
			return p
		}
		return f
	}
	f, err := downloadHTTP(ctx, p, dir)
	if err != nil {
		send(c, err.Error()+"\n")
		return p
	}
	return f
}

// downloadHTTP downloads a file from the specified URL into dir and returns
// the path to the downloaded file.
func downloadHTTP(ctx context.Context, url, dir string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bem: downloading %s: %s", url, resp.Status)
	}
	name := path.Base(strings.SplitN(url, "?", 2)[0])
	f := filepath.Join(dir, name)
	w, err := os.Create(f)
	if err != nil {
		return "", fmt.Errorf("bem: failed creating file for download: %v", err)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		w.Close()
		return "", err
	}
	return f, w.Close()
}

func send(c chan string, msg string) {
	if c != nil {
		c <- msg
	}
}
