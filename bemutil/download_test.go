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
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMaybeDownloadLocal(t *testing.T) {
	if k := maybeDownload(context.Background(), "/dev/null", nil); k != "/dev/null" {
		t.Error("Expected /dev/null, got ", k)
	}
	if k := maybeDownload(context.Background(), "/blah/test/", nil); k != "/blah/test/" {
		t.Error("Expected /blah/test/, got ", k)
	}
}

func TestMaybeDownloadRemoteFail(t *testing.T) {
	if k := maybeDownload(context.Background(), "http://blah.invalid/test.dat", nil); k != "http://blah.invalid/test.dat" {
		t.Error("Expected http://blah.invalid/test.dat, got ", k)
	}
}

func TestMaybeDownloadRemote(t *testing.T) {
	srv := httptest.NewServer(http.FileServer(http.Dir("../testdata")))
	defer srv.Close()

	k := maybeDownload(context.Background(), srv.URL+"/Test.opt", nil)
	if !strings.HasSuffix(k, "Test.opt") || strings.HasPrefix(k, "http") {
		t.Fatal("Expected tempDir/Test.opt, got ", k)
	}
	have, err := os.ReadFile(k)
	if err != nil {
		t.Fatal(err)
	}
	want, err := os.ReadFile("../testdata/Test.opt")
	if err != nil {
		t.Fatal(err)
	}
	if string(have) != string(want) {
		t.Error("downloaded file is different from the original")
	}

	missing := srv.URL + "/missing.opt"
	if k := maybeDownload(context.Background(), missing, nil); k != missing {
		t.Errorf("Expected %s, got %s", missing, k)
	}
}

func TestMaybeDownloadBlob(t *testing.T) {
	if err := os.MkdirAll("testbucket", os.ModePerm); err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll("testbucket")
	b, err := os.ReadFile("../testdata/Test_blade.dat")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join("testbucket", "Test_blade.dat"), b, 0644); err != nil {
		t.Fatal(err)
	}
	k := maybeDownload(context.Background(), "file://testbucket/Test_blade.dat", nil)
	if k == "file://testbucket/Test_blade.dat" || !strings.HasSuffix(k, "Test_blade.dat") {
		t.Fatal("Expected tempDir/Test_blade.dat, got ", k)
	}
	have, err := os.ReadFile(k)
	if err != nil {
		t.Fatal(err)
	}
	if string(have) != string(b) {
		t.Error("downloaded file is different from the original")
	}
}

func TestUploader(t *testing.T) {
	if err := os.MkdirAll("testbucket", os.ModePerm); err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll("testbucket")

	var u uploader
	local := filepath.Join(t.TempDir(), "results.txt")
	if f := u.maybeUpload(local); f != local {
		t.Errorf("local files should not be uploaded: %s", f)
	}
	f := u.maybeUpload("file://testbucket/run1/results.txt")
	if f == "" || strings.HasPrefix(f, "file://") {
		t.Fatalf("temporary location = %s", f)
	}
	if err := os.MkdirAll(filepath.Dir(f), os.ModePerm); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(f, []byte("Total Thrust: 107000.00 N\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := u.uploadOutput(context.Background()); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(filepath.Join("testbucket", "run1", "results.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "Total Thrust: 107000.00 N\n" {
		t.Errorf("uploaded %q", b)
	}
}
