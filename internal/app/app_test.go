package app

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"iptoasn/internal/config"
)

func writeDatasetFile(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte("8.8.8.0\t8.8.8.255\t15169\tUS\tGOOGLE\n")); err != nil {
		t.Fatalf("compress dataset: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close gzip writer: %v", err)
	}

	path := filepath.Join(t.TempDir(), "ip2asn.tsv.gz")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write dataset file: %v", err)
	}
	return path
}

func TestServeAnswersAndShutsDown(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	settings := config.Settings{
		DatabaseURL:     "file://" + writeDatasetFile(t),
		RefreshInterval: 0,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, settings, listener)
	}()

	base := "http://" + listener.Addr().String()
	deadline := time.Now().Add(5 * time.Second)
	for {
		req, err := http.NewRequest(http.MethodGet, base+"/v1/as/ip/8.8.8.8", nil)
		if err != nil {
			t.Fatalf("build request: %v", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := http.DefaultClient.Do(req)
		if err == nil {
			var answer struct {
				Announced bool   `json:"announced"`
				ASNumber  uint32 `json:"as_number"`
			}
			decodeErr := json.NewDecoder(resp.Body).Decode(&answer)
			resp.Body.Close()
			if decodeErr == nil && answer.Announced && answer.ASNumber == 15169 {
				break
			}
		}
		if time.Now().After(deadline) {
			t.Fatal("server never answered the lookup with the loaded dataset")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve returned error on shutdown: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not shut down after cancel")
	}
}

func TestRunRejectsBadListenAddr(t *testing.T) {
	err := Run(context.Background(), config.Settings{ListenAddr: "definitely:not:an:addr"})
	if err == nil {
		t.Fatal("Run should fail on an unusable listen address")
	}
}
